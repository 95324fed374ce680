package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"slogansurvey/internal/emit"
	"slogansurvey/internal/store"
	"slogansurvey/internal/types"
)

// TestMain ensures no goroutines leak from closed database handles.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func sampleRecord(runID, createdAt string) store.BuildRecord {
	lure := []types.Block{{BlockID: 1, Questions: []types.Question{{
		QuestionID: 4, ScenarioID: 2, Brand: "Acme", Persona: "Parent",
		Options: []types.Option{
			{Label: "A", Text: "decoy a"}, {Label: "B", Text: "orig b"},
			{Label: "C", Text: "decoy c"}, {Label: "D", Text: "orig d"},
		},
	}}}}
	control := []types.Block{{BlockID: 1, Questions: []types.Question{{
		QuestionID: 4, ScenarioID: 2, Brand: "Acme", Persona: "Parent",
		Options: []types.Option{
			{Label: "A", Text: "orig a"}, {Label: "B", Text: "orig b"},
			{Label: "C", Text: "orig c"}, {Label: "D", Text: "orig d"},
		},
	}}}}
	return store.BuildRecord{
		Metadata: &emit.Metadata{
			CreatedAtUTC:     createdAt,
			RunID:            runID,
			Seed:             2026,
			LuresPerQuestion: 2,
			BankCSV:          "survey/stage_b_bank_blocks.csv",
			ResultsDir:       "results_clean",
			ModelFiles:       []string{"gpt_results.csv", "qwq_results.csv"},
			NumBlocks:        1,
			NumQuestions:     1,
		},
		Substituted: 2,
		Lure:        lure,
		Control:     control,
	}
}

func TestArchive_SaveAndList(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "archive.db")

	a, err := store.Open(ctx, path, nil)
	require.NoError(t, err)
	defer a.Close()
	assert.Equal(t, path, a.Path())

	require.NoError(t, a.SaveBuild(ctx, sampleRecord("run-1", "2026-01-01T00:00:00.000000+00:00")))
	require.NoError(t, a.SaveBuild(ctx, sampleRecord("run-2", "2026-02-01T00:00:00.000000+00:00")))

	builds, err := a.ListBuilds(ctx, 0)
	require.NoError(t, err)
	require.Len(t, builds, 2)
	assert.Equal(t, "run-2", builds[0].RunID)
	assert.Equal(t, []string{"gpt_results.csv", "qwq_results.csv"}, builds[0].ModelFiles)
	assert.Equal(t, 2, builds[0].Substituted)

	latest, err := a.ListBuilds(ctx, 1)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, "run-2", latest[0].RunID)
}

func TestArchive_QuestionVariants(t *testing.T) {
	ctx := context.Background()
	a, err := store.Open(ctx, filepath.Join(t.TempDir(), "archive.db"), nil)
	require.NoError(t, err)
	defer a.Close()

	rec := sampleRecord("run-q", "2026-01-01T00:00:00.000000+00:00")
	require.NoError(t, a.SaveBuild(ctx, rec))

	lure, err := a.Question(ctx, "run-q", store.VariantLure, 4)
	require.NoError(t, err)
	assert.Equal(t, rec.Lure[0].Questions[0], lure)

	control, err := a.Question(ctx, "run-q", store.VariantControl, 4)
	require.NoError(t, err)
	assert.Equal(t, rec.Control[0].Questions[0], control)

	_, err = a.Question(ctx, "run-q", store.VariantLure, 99)
	assert.True(t, errors.Is(err, types.ErrMissingData))
}

func TestArchive_DuplicateRunRollsBack(t *testing.T) {
	ctx := context.Background()
	a, err := store.Open(ctx, filepath.Join(t.TempDir(), "archive.db"), nil)
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, a.SaveBuild(ctx, sampleRecord("dup", "2026-01-01T00:00:00.000000+00:00")))
	assert.Error(t, a.SaveBuild(ctx, sampleRecord("dup", "2026-01-02T00:00:00.000000+00:00")))

	builds, err := a.ListBuilds(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, builds, 1)
}

func TestArchive_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "archive.db")

	a, err := store.Open(ctx, path, nil)
	require.NoError(t, err)
	require.NoError(t, a.SaveBuild(ctx, sampleRecord("persisted", "2026-01-01T00:00:00.000000+00:00")))
	require.NoError(t, a.Close())

	b, err := store.Open(ctx, path, nil)
	require.NoError(t, err)
	defer b.Close()
	builds, err := b.ListBuilds(ctx, 0)
	require.NoError(t, err)
	require.Len(t, builds, 1)
	assert.Equal(t, "persisted", builds[0].RunID)
}

func TestArchive_SaveRequiresMetadata(t *testing.T) {
	ctx := context.Background()
	a, err := store.Open(ctx, filepath.Join(t.TempDir(), "archive.db"), nil)
	require.NoError(t, err)
	defer a.Close()
	assert.Error(t, a.SaveBuild(ctx, store.BuildRecord{}))
}
