package emit

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// createdAtLayout matches an ISO-8601 UTC timestamp with microseconds and an
// explicit +00:00 offset.
const createdAtLayout = "2006-01-02T15:04:05.000000-07:00"

// Metadata records the provenance of one build.
type Metadata struct {
	CreatedAtUTC     string   `json:"created_at_utc"`
	RunID            string   `json:"run_id"`
	Seed             int      `json:"seed"`
	LuresPerQuestion int      `json:"lures_per_question"`
	BankCSV          string   `json:"stage_b_bank_blocks_csv"`
	ResultsDir       string   `json:"results_clean_dir"`
	ModelFiles       []string `json:"model_files"`
	NumBlocks        int      `json:"num_blocks"`
	NumQuestions     int      `json:"num_questions"`
}

// MetadataInput carries what NewMetadata needs.
type MetadataInput struct {
	Now              time.Time
	RepoRoot         string
	BankCSV          string
	ResultsDir       string
	ModelFiles       []string
	Seed             int
	LuresPerQuestion int
	NumBlocks        int
	NumQuestions     int
}

// NewMetadata stamps a fresh run id and expresses source paths relative to
// the repository root with forward slashes.
func NewMetadata(in MetadataInput) (*Metadata, error) {
	bankRel, err := relSlash(in.RepoRoot, in.BankCSV)
	if err != nil {
		return nil, err
	}
	resultsRel, err := relSlash(in.RepoRoot, in.ResultsDir)
	if err != nil {
		return nil, err
	}
	files := in.ModelFiles
	if files == nil {
		files = []string{}
	}

	return &Metadata{
		CreatedAtUTC:     in.Now.UTC().Format(createdAtLayout),
		RunID:            uuid.NewString(),
		Seed:             in.Seed,
		LuresPerQuestion: in.LuresPerQuestion,
		BankCSV:          bankRel,
		ResultsDir:       resultsRel,
		ModelFiles:       files,
		NumBlocks:        in.NumBlocks,
		NumQuestions:     in.NumQuestions,
	}, nil
}

func relSlash(root, path string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve repo root: %w", err)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil {
		return "", fmt.Errorf("%s relative to %s: %w", path, root, err)
	}
	return filepath.ToSlash(rel), nil
}

// WriteMetadata writes m to path.
func WriteMetadata(path string, m *Metadata) error {
	return WriteJSON(path, m)
}
