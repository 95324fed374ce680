package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"slogansurvey/internal/config"
	"slogansurvey/internal/logging"
)

var (
	// Global flags
	verbose  bool
	cfgPath  string
	repoRoot string

	// Set by the root pre-run
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "survey",
	Short: "Deterministic lure-substitution survey builder",
	Long: `survey turns the stage-B question bank and the per-model generation tables
into lure-substituted survey blocks.

Every label order and lure choice is derived from FNV-1a hashes of fixed
keys, so repeated builds from the same inputs are byte-identical.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(".env"); err != nil {
			return err
		}

		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		if repoRoot != "" {
			cfg.Paths.RepoRoot = repoRoot
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger, err = logging.New(cfg.Logging, verbose)
		if err != nil {
			return err
		}
		logging.For(logger, logging.CategoryBoot).Debug("Configuration loaded",
			zap.String("config", cfgPath),
			zap.String("repo_root", cfg.Paths.RepoRoot))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", config.DefaultPath, "Config file")
	rootCmd.PersistentFlags().StringVarP(&repoRoot, "root", "r", "", "Repository root (overrides paths.repo_root)")

	buildCmd.Flags().StringVar(&archivePath, "archive", "", "Also archive the build into this SQLite file")
	buildCmd.Flags().BoolVar(&writeControl, "control", false, "Also write control blocks")

	subsetCmd.Flags().IntSliceVar(&subsetIDs, "ids", nil, "Question ids in presentation order (default from config)")
	subsetCmd.Flags().IntVar(&subsetBlockID, "block-id", 0, "Block id of the subset (default from config)")

	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of builds to list (0 for all)")
	showCmd.Flags().BoolVar(&showControl, "control", false, "Show the control variant")

	hashCmd.Flags().IntVar(&hashQuestion, "question", 0, "Also print the label shuffle and lure labels of this question id")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(subsetCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(hashCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
