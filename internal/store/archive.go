// Package store archives survey builds in SQLite so earlier runs can be
// listed and individual questions compared across builds.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"slogansurvey/internal/emit"
	"slogansurvey/internal/types"
)

// Variants stored per question.
const (
	VariantLure    = "lure"
	VariantControl = "control"
)

var schema = []string{`
CREATE TABLE IF NOT EXISTS builds (
	run_id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	seed INTEGER NOT NULL,
	lures_per_question INTEGER NOT NULL,
	bank_csv TEXT NOT NULL,
	results_dir TEXT NOT NULL,
	model_files TEXT NOT NULL,
	num_blocks INTEGER NOT NULL,
	num_questions INTEGER NOT NULL,
	substituted INTEGER NOT NULL,
	fail_open INTEGER NOT NULL
)`, `
CREATE TABLE IF NOT EXISTS questions (
	run_id TEXT NOT NULL REFERENCES builds(run_id),
	variant TEXT NOT NULL,
	block_id INTEGER NOT NULL,
	question_id INTEGER NOT NULL,
	scenario_id INTEGER NOT NULL,
	brand TEXT NOT NULL,
	persona TEXT NOT NULL,
	PRIMARY KEY (run_id, variant, question_id)
)`, `
CREATE TABLE IF NOT EXISTS options (
	run_id TEXT NOT NULL,
	variant TEXT NOT NULL,
	question_id INTEGER NOT NULL,
	position INTEGER NOT NULL,
	label TEXT NOT NULL,
	text TEXT NOT NULL,
	PRIMARY KEY (run_id, variant, question_id, position)
)`,
	`CREATE INDEX IF NOT EXISTS idx_builds_created ON builds(created_at)`,
}

// Archive is a SQLite-backed build history.
type Archive struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// Open creates or opens the archive at path.
func Open(ctx context.Context, path string, logger *zap.Logger) (*Archive, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy_timeout: %w", err)
	}
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize schema: %w", err)
		}
	}

	logger.Debug("Opened build archive", zap.String("path", path))
	return &Archive{db: db, path: path, logger: logger}, nil
}

// Close releases the database handle.
func (a *Archive) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}

// BuildRecord is one build to archive.
type BuildRecord struct {
	Metadata    *emit.Metadata
	Substituted int
	FailOpen    int
	Lure        []types.Block
	Control     []types.Block
}

// SaveBuild writes a build and all its questions in one transaction.
func (a *Archive) SaveBuild(ctx context.Context, rec BuildRecord) error {
	if rec.Metadata == nil {
		return errors.New("build record has no metadata")
	}
	m := rec.Metadata
	files, err := json.Marshal(m.ModelFiles)
	if err != nil {
		return fmt.Errorf("encode model files: %w", err)
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO builds (run_id, created_at, seed, lures_per_question, bank_csv,
			results_dir, model_files, num_blocks, num_questions, substituted, fail_open)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.RunID, m.CreatedAtUTC, m.Seed, m.LuresPerQuestion, m.BankCSV,
		m.ResultsDir, string(files), m.NumBlocks, m.NumQuestions, rec.Substituted, rec.FailOpen,
	); err != nil {
		return fmt.Errorf("insert build %s: %w", m.RunID, err)
	}

	qStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO questions (run_id, variant, block_id, question_id, scenario_id, brand, persona)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare questions: %w", err)
	}
	defer qStmt.Close()

	oStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO options (run_id, variant, question_id, position, label, text)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare options: %w", err)
	}
	defer oStmt.Close()

	for _, set := range []struct {
		variant string
		blocks  []types.Block
	}{{VariantLure, rec.Lure}, {VariantControl, rec.Control}} {
		for _, b := range set.blocks {
			for _, q := range b.Questions {
				if _, err := qStmt.ExecContext(ctx, m.RunID, set.variant, b.BlockID,
					q.QuestionID, q.ScenarioID, q.Brand, q.Persona); err != nil {
					return fmt.Errorf("insert %s question %d: %w", set.variant, q.QuestionID, err)
				}
				for pos, o := range q.Options {
					if _, err := oStmt.ExecContext(ctx, m.RunID, set.variant, q.QuestionID,
						pos, o.Label, o.Text); err != nil {
						return fmt.Errorf("insert %s question %d option %s: %w",
							set.variant, q.QuestionID, o.Label, err)
					}
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit build %s: %w", m.RunID, err)
	}
	a.logger.Info("Archived build",
		zap.String("run_id", m.RunID),
		zap.Int("questions", m.NumQuestions))
	return nil
}

// BuildSummary is one row of the build history.
type BuildSummary struct {
	RunID            string
	CreatedAt        string
	Seed             int
	LuresPerQuestion int
	ModelFiles       []string
	NumBlocks        int
	NumQuestions     int
	Substituted      int
	FailOpen         int
}

// ListBuilds returns the most recent builds first. limit <= 0 returns all.
func (a *Archive) ListBuilds(ctx context.Context, limit int) ([]BuildSummary, error) {
	query := `SELECT run_id, created_at, seed, lures_per_question, model_files,
		num_blocks, num_questions, substituted, fail_open
		FROM builds ORDER BY created_at DESC, run_id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	var out []BuildSummary
	for rows.Next() {
		var s BuildSummary
		var files string
		if err := rows.Scan(&s.RunID, &s.CreatedAt, &s.Seed, &s.LuresPerQuestion, &files,
			&s.NumBlocks, &s.NumQuestions, &s.Substituted, &s.FailOpen); err != nil {
			return nil, fmt.Errorf("scan build: %w", err)
		}
		if err := json.Unmarshal([]byte(files), &s.ModelFiles); err != nil {
			return nil, fmt.Errorf("decode model files of %s: %w", s.RunID, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Question loads one archived question variant.
func (a *Archive) Question(ctx context.Context, runID, variant string, questionID int) (types.Question, error) {
	q := types.Question{QuestionID: questionID}
	err := a.db.QueryRowContext(ctx, `
		SELECT scenario_id, brand, persona FROM questions
		WHERE run_id = ? AND variant = ? AND question_id = ?`,
		runID, variant, questionID,
	).Scan(&q.ScenarioID, &q.Brand, &q.Persona)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Question{}, fmt.Errorf("question %d (%s) in build %s: %w",
			questionID, variant, runID, types.ErrMissingData)
	}
	if err != nil {
		return types.Question{}, fmt.Errorf("query question: %w", err)
	}

	rows, err := a.db.QueryContext(ctx, `
		SELECT label, text FROM options
		WHERE run_id = ? AND variant = ? AND question_id = ?
		ORDER BY position`,
		runID, variant, questionID)
	if err != nil {
		return types.Question{}, fmt.Errorf("query options: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var o types.Option
		if err := rows.Scan(&o.Label, &o.Text); err != nil {
			return types.Question{}, fmt.Errorf("scan option: %w", err)
		}
		q.Options = append(q.Options, o)
	}
	return q, rows.Err()
}

// Path returns the database file location.
func (a *Archive) Path() string {
	return a.path
}
