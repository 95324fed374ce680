package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"slogansurvey/internal/pipeline"
)

var (
	archivePath  string
	writeControl bool
)

// buildCmd runs the full lure-substitution build
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build lure-substituted survey blocks",
	Long: `Loads every model table under paths.results_dir and the question bank,
verifies each bank slogan against its model table, substitutes lures and
writes one JSON file per block plus the build metadata.

Nothing is written when any question fails validation.

Example:
  survey build
  survey build --control --archive survey/build_archive.db`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func runBuild(cmd *cobra.Command, args []string) error {
	if archivePath != "" {
		cfg.Archive.Enabled = true
		cfg.Archive.Path = archivePath
	}
	if writeControl {
		cfg.Build.WriteControl = true
	}

	report, err := pipeline.Build(commandContext(cmd), cfg, logger, nil)
	if err != nil {
		return err
	}

	fmt.Printf("Wrote %d lure blocks (%d questions) to %s\n",
		len(report.LurePaths), report.Metadata.NumQuestions, cfg.LureBlocksPath())
	if len(report.ControlPaths) > 0 {
		fmt.Printf("Wrote %d control blocks to %s\n", len(report.ControlPaths), cfg.ControlBlocksPath())
	}
	if cfg.Paths.Metadata != "" {
		fmt.Printf("Metadata: %s\n", report.MetadataPath)
	}
	fmt.Printf("Run %s: seed %d, %d lures substituted",
		report.Metadata.RunID, report.Metadata.Seed, report.Stats.Substituted)
	if n := len(report.Stats.FailOpen); n > 0 {
		fmt.Printf(", %d kept original text", n)
	}
	fmt.Println()
	if report.ArchivePath != "" {
		fmt.Printf("Archived to %s\n", report.ArchivePath)
	}
	return nil
}

// commandContext returns the command's context, or Background when the
// command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
