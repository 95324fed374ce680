package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"slogansurvey/internal/detrand"
	"slogansurvey/internal/survey"
)

var hashQuestion int

// hashCmd prints the deterministic hash and first draw of keys
var hashCmd = &cobra.Command{
	Use:   "hash [key...]",
	Short: "Print FNV-1a hashes and first stream draws for seed keys",
	Long: `Debug helper for reproducing label shuffles and lure choices.

For each key prints the 32-bit FNV-1a hash and the first 32-bit output of the
stream seeded with it. With --question, also prints the label key, the
shuffled label order and the lure labels of that question.

Example:
  survey hash "2026|65|labels"
  survey hash --question 65`,
	RunE: runHash,
}

func runHash(cmd *cobra.Command, args []string) error {
	withQuestion := cmd.Flags().Changed("question")
	if len(args) == 0 && !withQuestion {
		return fmt.Errorf("at least one key or --question is required")
	}

	for _, key := range args {
		printKey(key)
	}

	if withQuestion {
		key := survey.LabelKey(survey.GlobalSeed, hashQuestion)
		printKey(key)
		order := survey.LureLabels(survey.GlobalSeed, hashQuestion, 4)
		fmt.Printf("  order: %s\n", strings.Join(order, " "))
		fmt.Printf("  lures: %s\n", strings.Join(order[:survey.LuresPerQuestion], " "))
	}
	return nil
}

func printKey(key string) {
	fmt.Printf("%-24q fnv1a32=0x%08x first=%d\n", key, detrand.Hash(key), detrand.FromKey(key).Uint32())
}
