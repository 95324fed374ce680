// Package pipeline wires loaders, the assembler and the emitters into the
// build and subset runs. Each run validates everything before its first
// write.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"slogansurvey/internal/bank"
	"slogansurvey/internal/config"
	"slogansurvey/internal/emit"
	"slogansurvey/internal/logging"
	"slogansurvey/internal/modeltable"
	"slogansurvey/internal/store"
	"slogansurvey/internal/subset"
	"slogansurvey/internal/survey"
	"slogansurvey/internal/types"
)

// BuildReport describes a finished build.
type BuildReport struct {
	Metadata     *emit.Metadata
	LurePaths    []string
	ControlPaths []string
	MetadataPath string
	ArchivePath  string
	Stats        survey.Stats
}

// Clock returns the build timestamp. Tests pin it.
type Clock func() time.Time

// Build loads the bank and model tables, assembles the lure variant and
// writes blocks, metadata and, when enabled, control blocks and the archive.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger, now Clock) (*BuildReport, error) {
	if now == nil {
		now = time.Now
	}
	loadLog := logging.For(logger, logging.CategoryLoader)

	tables, err := modeltable.LoadDir(cfg.ResultsPath())
	if err != nil {
		return nil, fmt.Errorf("load model tables: %w", err)
	}
	loadLog.Info("Loaded model tables",
		zap.String("dir", cfg.ResultsPath()),
		zap.Strings("files", tables.SourceFiles()))

	rows, err := bank.Load(cfg.BankPath())
	if err != nil {
		return nil, fmt.Errorf("load question bank: %w", err)
	}
	loadLog.Info("Loaded question bank", zap.String("path", cfg.BankPath()), zap.Int("rows", len(rows)))

	build, err := survey.NewAssembler(logging.For(logger, logging.CategoryAssembler)).Assemble(rows, tables)
	if err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}

	lureBlocks := build.LureBlocks()
	controlBlocks := build.ControlBlocks()
	meta, err := emit.NewMetadata(emit.MetadataInput{
		Now:              now(),
		RepoRoot:         cfg.Paths.RepoRoot,
		BankCSV:          cfg.BankPath(),
		ResultsDir:       cfg.ResultsPath(),
		ModelFiles:       tables.SourceFiles(),
		Seed:             build.Seed,
		LuresPerQuestion: build.LuresPerQuestion,
		NumBlocks:        len(lureBlocks),
		NumQuestions:     types.CountQuestions(lureBlocks),
	})
	if err != nil {
		return nil, fmt.Errorf("metadata: %w", err)
	}

	// Everything below writes; all validation is done.
	emitLog := logging.For(logger, logging.CategoryEmit)
	report := &BuildReport{Metadata: meta, Stats: build.Stats, MetadataPath: cfg.MetadataPath()}

	report.LurePaths, err = emit.WriteBlocks(cfg.LureBlocksPath(), lureBlocks)
	if err != nil {
		return nil, fmt.Errorf("write lure blocks: %w", err)
	}
	emitLog.Info("Wrote lure blocks", zap.String("dir", cfg.LureBlocksPath()), zap.Int("blocks", len(lureBlocks)))

	if cfg.Build.WriteControl {
		report.ControlPaths, err = emit.WriteBlocks(cfg.ControlBlocksPath(), controlBlocks)
		if err != nil {
			return nil, fmt.Errorf("write control blocks: %w", err)
		}
		emitLog.Info("Wrote control blocks", zap.String("dir", cfg.ControlBlocksPath()), zap.Int("blocks", len(controlBlocks)))
	}

	if cfg.Paths.Metadata != "" {
		if err := emit.WriteMetadata(cfg.MetadataPath(), meta); err != nil {
			return nil, fmt.Errorf("write metadata: %w", err)
		}
		emitLog.Info("Wrote metadata", zap.String("path", cfg.MetadataPath()), zap.String("run_id", meta.RunID))
	}

	if cfg.Archive.Enabled {
		archive, err := store.Open(ctx, cfg.ArchivePath(), logging.For(logger, logging.CategoryStore))
		if err != nil {
			return nil, fmt.Errorf("open archive: %w", err)
		}
		defer archive.Close()

		if err := archive.SaveBuild(ctx, store.BuildRecord{
			Metadata:    meta,
			Substituted: build.Stats.Substituted,
			FailOpen:    len(build.Stats.FailOpen),
			Lure:        lureBlocks,
			Control:     controlBlocks,
		}); err != nil {
			return nil, fmt.Errorf("archive build: %w", err)
		}
		report.ArchivePath = archive.Path()
	}

	return report, nil
}

// SubsetReport describes a finished subset extraction.
type SubsetReport struct {
	ControlPath string
	LurePath    string
	Questions   int
}

// Subset extracts the configured question ids from the bank and the lure
// blocks already on disk. Missing ids abort before anything is written.
func Subset(cfg *config.Config, logger *zap.Logger) (*SubsetReport, error) {
	log := logging.For(logger, logging.CategorySubset)

	rows, err := bank.Load(cfg.BankPath())
	if err != nil {
		return nil, fmt.Errorf("load question bank: %w", err)
	}
	lures, err := emit.ReadBlocks(cfg.LureBlocksPath())
	if err != nil {
		return nil, fmt.Errorf("load lure blocks: %w", err)
	}

	res, err := subset.Extract(cfg.Subset.QuestionIDs, cfg.Subset.BlockID, bank.Index(rows), lures)
	if err != nil {
		return nil, err
	}

	controlPath, lurePath, err := res.Write(cfg.ControlBlocksPath(), cfg.LureBlocksPath())
	if err != nil {
		return nil, fmt.Errorf("write subset: %w", err)
	}
	log.Info("Wrote subset block",
		zap.Int("block_id", cfg.Subset.BlockID),
		zap.Int("questions", len(res.Control.Questions)),
		zap.String("control", controlPath),
		zap.String("lure", lurePath))

	return &SubsetReport{ControlPath: controlPath, LurePath: lurePath, Questions: len(res.Control.Questions)}, nil
}

// History lists archived builds, newest first.
func History(ctx context.Context, cfg *config.Config, logger *zap.Logger, limit int) ([]store.BuildSummary, error) {
	archive, err := store.Open(ctx, cfg.ArchivePath(), logging.For(logger, logging.CategoryStore))
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer archive.Close()
	return archive.ListBuilds(ctx, limit)
}

// ArchivedQuestion loads one question variant of an archived build.
func ArchivedQuestion(ctx context.Context, cfg *config.Config, logger *zap.Logger, runID, variant string, questionID int) (types.Question, error) {
	archive, err := store.Open(ctx, cfg.ArchivePath(), logging.For(logger, logging.CategoryStore))
	if err != nil {
		return types.Question{}, fmt.Errorf("open archive: %w", err)
	}
	defer archive.Close()
	return archive.Question(ctx, runID, variant, questionID)
}
