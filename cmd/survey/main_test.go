package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"slogansurvey/internal/config"
)

// setupWorkspace writes a one-question repository and points the global
// config at it.
func setupWorkspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	writeFile(t, filepath.Join(root, "results_clean", "m1_results.csv"),
		"scenario,Generation_1,Generation_2,Generation_3,Generation_4\n"+
			"0,first,second,third,fourth\n")
	writeFile(t, filepath.Join(root, "survey", "stage_b_bank_blocks.csv"),
		"block_id,question_id,scenario_id,brand,persona,"+
			"option_A_model,option_A_source_col,option_A_slogan,"+
			"option_B_model,option_B_source_col,option_B_slogan,"+
			"option_C_model,option_C_source_col,option_C_slogan,"+
			"option_D_model,option_D_source_col,option_D_slogan\n"+
			"1,1,0,Acme,Parents,"+
			"m1,Generation_1,first,m1,Generation_2,second,"+
			"m1,Generation_3,third,m1,Generation_4,fourth\n")

	logger = zap.NewNop()
	cfg = config.DefaultConfig()
	cfg.Paths.RepoRoot = root
	cfg.Subset.QuestionIDs = []int{1}
	archivePath = ""
	writeControl = false
	subsetIDs = nil
	subsetBlockID = 0
	return root
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestRunHashPrintsKnownVector(t *testing.T) {
	output := captureOutput(t, func() {
		if err := runHash(&cobra.Command{}, []string{"a"}); err != nil {
			t.Fatalf("runHash returned error: %v", err)
		}
	})

	if !strings.Contains(output, "fnv1a32=0xe40c292c") {
		t.Fatalf("expected FNV-1a hash of \"a\", got: %s", output)
	}
}

// setQuestionFlag sets --question on hashCmd and restores it afterwards.
func setQuestionFlag(t *testing.T, value string) {
	t.Helper()
	if err := hashCmd.Flags().Set("question", value); err != nil {
		t.Fatalf("set --question: %v", err)
	}
	t.Cleanup(func() {
		hashQuestion = 0
		hashCmd.Flags().Lookup("question").Changed = false
	})
}

func TestRunHashQuestion(t *testing.T) {
	setQuestionFlag(t, "65")

	output := captureOutput(t, func() {
		if err := runHash(hashCmd, nil); err != nil {
			t.Fatalf("runHash returned error: %v", err)
		}
	})

	if !strings.Contains(output, `"2026|65|labels"`) {
		t.Fatalf("expected label key in output, got: %s", output)
	}
	if !strings.Contains(output, "order: D B C A") || !strings.Contains(output, "lures: D B") {
		t.Fatalf("expected label order and lures, got: %s", output)
	}
}

func TestRunHashQuestionZero(t *testing.T) {
	setQuestionFlag(t, "0")

	output := captureOutput(t, func() {
		if err := runHash(hashCmd, nil); err != nil {
			t.Fatalf("runHash returned error: %v", err)
		}
	})

	if !strings.Contains(output, `"2026|0|labels"`) {
		t.Fatalf("expected label key of question 0, got: %s", output)
	}
}

func TestRunHashRequiresInput(t *testing.T) {
	if err := runHash(hashCmd, nil); err == nil {
		t.Fatal("expected error without keys")
	}
}

func TestRunBuildThenSubset(t *testing.T) {
	root := setupWorkspace(t)

	output := captureOutput(t, func() {
		if err := runBuild(&cobra.Command{}, nil); err != nil {
			t.Fatalf("runBuild returned error: %v", err)
		}
	})
	if !strings.Contains(output, "Wrote 1 lure blocks (1 questions)") {
		t.Fatalf("unexpected build output: %s", output)
	}
	if _, err := os.Stat(filepath.Join(root, "survey", "web", "part2_blocks", "block_01.json")); err != nil {
		t.Fatalf("expected lure block: %v", err)
	}

	output = captureOutput(t, func() {
		if err := runSubset(&cobra.Command{}, nil); err != nil {
			t.Fatalf("runSubset returned error: %v", err)
		}
	})
	if !strings.Contains(output, "Wrote 1 questions to block 10") {
		t.Fatalf("unexpected subset output: %s", output)
	}
}

func TestRunSubsetMissingID(t *testing.T) {
	setupWorkspace(t)
	captureOutput(t, func() {
		if err := runBuild(&cobra.Command{}, nil); err != nil {
			t.Fatalf("runBuild returned error: %v", err)
		}
	})

	subsetIDs = []int{1, 2}
	if err := runSubset(&cobra.Command{}, nil); err == nil {
		t.Fatal("expected error for id missing from the bank")
	}
}

func TestRunHistoryWithArchive(t *testing.T) {
	root := setupWorkspace(t)
	archivePath = filepath.Join(root, "archive.db")

	captureOutput(t, func() {
		if err := runBuild(&cobra.Command{}, nil); err != nil {
			t.Fatalf("runBuild returned error: %v", err)
		}
	})

	output := captureOutput(t, func() {
		if err := runHistory(&cobra.Command{}, nil); err != nil {
			t.Fatalf("runHistory returned error: %v", err)
		}
	})
	if !strings.Contains(output, "questions=1") || !strings.Contains(output, "m1_results.csv") {
		t.Fatalf("unexpected history output: %s", output)
	}
}

func TestRootRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "survey.yaml")
	writeFile(t, path, "logging:\n  level: loud\n")

	rootCmd.SetArgs([]string{"--config", path, "hash", "a"})
	defer rootCmd.SetArgs(nil)

	captureOutput(t, func() {
		if err := rootCmd.Execute(); err == nil {
			t.Fatal("expected invalid log level to fail")
		}
	})
}

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	origOut := os.Stdout
	origErr := os.Stderr
	rOut, wOut, _ := os.Pipe()
	rErr, wErr, _ := os.Pipe()
	os.Stdout = wOut
	os.Stderr = wErr

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, rOut)
		_, _ = io.Copy(&buf, rErr)
		done <- buf.String()
	}()

	fn()

	_ = wOut.Close()
	_ = wErr.Close()
	os.Stdout = origOut
	os.Stderr = origErr
	return <-done
}
