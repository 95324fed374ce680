package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"slogansurvey/internal/pipeline"
)

var (
	subsetIDs     []int
	subsetBlockID int
)

// subsetCmd extracts the top-N questions into their own block
var subsetCmd = &cobra.Command{
	Use:   "subset",
	Short: "Extract selected questions into a dedicated block",
	Long: `Copies the listed questions from the question bank (control) and from the
lure blocks already on disk into a new block, in the listed order.
Run "survey build" first.

If any id is missing from either source nothing is written.

Example:
  survey subset
  survey subset --ids 65,12,188 --block-id 11`,
	Args: cobra.NoArgs,
	RunE: runSubset,
}

func runSubset(cmd *cobra.Command, args []string) error {
	if len(subsetIDs) > 0 {
		cfg.Subset.QuestionIDs = subsetIDs
	}
	if subsetBlockID != 0 {
		cfg.Subset.BlockID = subsetBlockID
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	report, err := pipeline.Subset(cfg, logger)
	if err != nil {
		return err
	}

	fmt.Printf("Wrote %d questions to block %d\n", report.Questions, cfg.Subset.BlockID)
	fmt.Printf("  control: %s\n", report.ControlPath)
	fmt.Printf("  lure:    %s\n", report.LurePath)
	return nil
}
