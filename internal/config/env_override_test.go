package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvOverrides_Paths(t *testing.T) {
	clearSurveyEnv(t)
	t.Setenv("SURVEY_REPO_ROOT", "/repo")
	t.Setenv("SURVEY_BANK_CSV", "bank.csv")
	t.Setenv("SURVEY_RESULTS_DIR", "tables")
	t.Setenv("SURVEY_LURE_BLOCKS_DIR", "out/lures")
	t.Setenv("SURVEY_CONTROL_BLOCKS_DIR", "out/control")

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()

	assert.Equal(t, "/repo", cfg.Paths.RepoRoot)
	assert.Equal(t, "bank.csv", cfg.Paths.BankCSV)
	assert.Equal(t, "tables", cfg.Paths.ResultsDir)
	assert.Equal(t, "out/lures", cfg.Paths.LureBlocksDir)
	assert.Equal(t, "out/control", cfg.Paths.ControlBlocksDir)
}

func TestEnvOverrides_ArchivePathEnablesArchive(t *testing.T) {
	clearSurveyEnv(t)
	t.Setenv("SURVEY_ARCHIVE_PATH", "history.db")

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()

	assert.True(t, cfg.Archive.Enabled)
	assert.Equal(t, "history.db", cfg.Archive.Path)
}

func TestEnvOverrides_EmptyValuesIgnored(t *testing.T) {
	clearSurveyEnv(t)

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()

	assert.Equal(t, DefaultConfig(), cfg)
}

func TestEnvOverrides_AppliedByLoad(t *testing.T) {
	clearSurveyEnv(t)
	t.Setenv("SURVEY_LOG_LEVEL", "debug")

	path := filepath.Join(t.TempDir(), "survey.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: error\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadDotEnv(t *testing.T) {
	const key = "SURVEY_DOTENV_PROBE"
	require.NoError(t, os.Unsetenv(key))
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=from-file\n"), 0644))

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv(key))
}

func TestLoadDotEnv_DoesNotOverrideExisting(t *testing.T) {
	t.Setenv("SURVEY_DOTENV_SET", "from-env")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SURVEY_DOTENV_SET=from-file\n"), 0644))

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-env", os.Getenv("SURVEY_DOTENV_SET"))
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
}
