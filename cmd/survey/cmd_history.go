package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"slogansurvey/internal/pipeline"
	"slogansurvey/internal/store"
)

var (
	historyLimit int
	showControl  bool
)

// historyCmd lists archived builds
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List archived builds",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

// showCmd prints one question of an archived build
var showCmd = &cobra.Command{
	Use:   "show [run-id] [question-id]",
	Short: "Show a question from an archived build",
	Long: `Prints the options of one question as recorded by "survey build --archive".

Example:
  survey show 0b6f0d8e-5c1a-4c5e-9f44-2f1a3c7d9e10 65
  survey show 0b6f0d8e-5c1a-4c5e-9f44-2f1a3c7d9e10 65 --control`,
	Args: cobra.ExactArgs(2),
	RunE: runShow,
}

func runHistory(cmd *cobra.Command, args []string) error {
	builds, err := pipeline.History(commandContext(cmd), cfg, logger, historyLimit)
	if err != nil {
		return err
	}
	if len(builds) == 0 {
		fmt.Printf("No builds archived in %s\n", cfg.ArchivePath())
		return nil
	}

	for _, b := range builds {
		fmt.Printf("%s  %s  seed=%d lures=%d blocks=%d questions=%d substituted=%d fail_open=%d\n",
			b.CreatedAt, b.RunID, b.Seed, b.LuresPerQuestion,
			b.NumBlocks, b.NumQuestions, b.Substituted, b.FailOpen)
		fmt.Printf("    models: %s\n", strings.Join(b.ModelFiles, ", "))
	}
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	qid, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid question id %q: %w", args[1], err)
	}
	variant := store.VariantLure
	if showControl {
		variant = store.VariantControl
	}

	q, err := pipeline.ArchivedQuestion(commandContext(cmd), cfg, logger, args[0], variant, qid)
	if err != nil {
		return err
	}

	fmt.Printf("Question %d (%s), scenario %d\n", q.QuestionID, variant, q.ScenarioID)
	fmt.Printf("Brand: %s\nPersona: %s\n", q.Brand, q.Persona)
	for _, o := range q.Options {
		fmt.Printf("  %s. %s\n", o.Label, o.Text)
	}
	return nil
}
