package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"slogansurvey/internal/subset"
	"slogansurvey/internal/types"
)

// DefaultPath is the config file looked up when --config is not given.
const DefaultPath = "survey.yaml"

// Config holds all survey builder configuration. The seed and the lure count
// are compile-time constants of the survey package and are not configurable.
type Config struct {
	Paths   PathsConfig   `yaml:"paths"`
	Build   BuildConfig   `yaml:"build"`
	Subset  SubsetConfig  `yaml:"subset"`
	Archive ArchiveConfig `yaml:"archive"`
	Logging LoggingConfig `yaml:"logging"`
}

// PathsConfig locates inputs and outputs. Relative paths resolve against
// RepoRoot.
type PathsConfig struct {
	RepoRoot         string `yaml:"repo_root"`
	BankCSV          string `yaml:"bank_csv"`
	ResultsDir       string `yaml:"results_dir"`
	LureBlocksDir    string `yaml:"lure_blocks_dir"`
	ControlBlocksDir string `yaml:"control_blocks_dir"`
	Metadata         string `yaml:"metadata"`
}

// BuildConfig toggles optional build outputs.
type BuildConfig struct {
	// WriteControl also writes the unmodified bank as control blocks.
	WriteControl bool `yaml:"write_control"`
}

// SubsetConfig configures the top-N extraction.
type SubsetConfig struct {
	BlockID     int   `yaml:"block_id"`
	QuestionIDs []int `yaml:"question_ids"`
}

// ArchiveConfig configures the SQLite build archive.
type ArchiveConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	ids := make([]int, len(subset.DefaultQuestionIDs))
	copy(ids, subset.DefaultQuestionIDs)

	return &Config{
		Paths: PathsConfig{
			RepoRoot:         ".",
			BankCSV:          "survey/stage_b_bank_blocks.csv",
			ResultsDir:       "results_clean",
			LureBlocksDir:    "survey/web/part2_blocks",
			ControlBlocksDir: "survey/web/blocks",
			Metadata:         "survey/web/part2_metadata.json",
		},
		Subset: SubsetConfig{
			BlockID:     subset.DefaultBlockID,
			QuestionIDs: ids,
		},
		Archive: ArchiveConfig{
			Enabled: false,
			Path:    "survey/build_archive.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies SURVEY_* environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SURVEY_REPO_ROOT"); v != "" {
		c.Paths.RepoRoot = v
	}
	if v := os.Getenv("SURVEY_BANK_CSV"); v != "" {
		c.Paths.BankCSV = v
	}
	if v := os.Getenv("SURVEY_RESULTS_DIR"); v != "" {
		c.Paths.ResultsDir = v
	}
	if v := os.Getenv("SURVEY_LURE_BLOCKS_DIR"); v != "" {
		c.Paths.LureBlocksDir = v
	}
	if v := os.Getenv("SURVEY_CONTROL_BLOCKS_DIR"); v != "" {
		c.Paths.ControlBlocksDir = v
	}

	// Setting an archive path turns the archive on
	if v := os.Getenv("SURVEY_ARCHIVE_PATH"); v != "" {
		c.Archive.Path = v
		c.Archive.Enabled = true
	}

	if v := os.Getenv("SURVEY_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks values that cannot be caught by YAML decoding.
func (c *Config) Validate() error {
	if c.Paths.BankCSV == "" || c.Paths.ResultsDir == "" || c.Paths.LureBlocksDir == "" {
		return fmt.Errorf("paths.bank_csv, paths.results_dir and paths.lure_blocks_dir are required: %w", types.ErrInvalidConfig)
	}
	if len(c.Subset.QuestionIDs) == 0 {
		return fmt.Errorf("subset.question_ids must not be empty: %w", types.ErrInvalidConfig)
	}
	if c.Subset.BlockID <= 0 {
		return fmt.Errorf("subset.block_id must be positive, got %d: %w", c.Subset.BlockID, types.ErrInvalidConfig)
	}
	if c.Archive.Enabled && c.Archive.Path == "" {
		return fmt.Errorf("archive.path is required when the archive is enabled: %w", types.ErrInvalidConfig)
	}
	return c.Logging.Validate()
}

// Resolve anchors p at the repository root unless it is absolute.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Paths.RepoRoot, p)
}

// BankPath returns the resolved question bank path.
func (c *Config) BankPath() string { return c.Resolve(c.Paths.BankCSV) }

// ResultsPath returns the resolved model table directory.
func (c *Config) ResultsPath() string { return c.Resolve(c.Paths.ResultsDir) }

// LureBlocksPath returns the resolved lure block directory.
func (c *Config) LureBlocksPath() string { return c.Resolve(c.Paths.LureBlocksDir) }

// ControlBlocksPath returns the resolved control block directory.
func (c *Config) ControlBlocksPath() string { return c.Resolve(c.Paths.ControlBlocksDir) }

// MetadataPath returns the resolved metadata document path.
func (c *Config) MetadataPath() string { return c.Resolve(c.Paths.Metadata) }

// ArchivePath returns the resolved archive database path.
func (c *Config) ArchivePath() string { return c.Resolve(c.Archive.Path) }
