// Package survey assembles the lure variant of the question bank.
//
// For every bank row a seeded shuffle of the labels picks which options get
// a decoy, and each chosen option's text is replaced by a slogan drawn from
// the same scenario's other generations. All randomness is derived from
// string keys built from the global seed and the question id, so the output
// depends only on the bank, the model tables and the seed.
package survey

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"slogansurvey/internal/bank"
	"slogansurvey/internal/detrand"
	"slogansurvey/internal/modeltable"
	"slogansurvey/internal/types"
)

const (
	// GlobalSeed is the root of every derived random stream.
	GlobalSeed = 2026

	// LuresPerQuestion is the number of options replaced in each question.
	LuresPerQuestion = 2
)

// LabelKey is the seed key of a question's label shuffle.
func LabelKey(seed, questionID int) string {
	return strconv.Itoa(seed) + "|" + strconv.Itoa(questionID) + "|labels"
}

// LureKey is the seed key of one option's decoy draw.
func LureKey(seed, questionID int, label string) string {
	return strconv.Itoa(seed) + "|" + strconv.Itoa(questionID) + "|" + label + "|lure"
}

// LureLabels shuffles the labels with the question's stream and returns the
// first n of them.
func LureLabels(seed, questionID, n int) []string {
	labels := make([]string, len(types.Labels))
	copy(labels, types.Labels[:])
	detrand.FromKey(LabelKey(seed, questionID)).Shuffle(len(labels), func(i, j int) {
		labels[i], labels[j] = labels[j], labels[i]
	})
	return labels[:n]
}

// FailOpen records a lure label whose candidate pool was empty.
type FailOpen struct {
	QuestionID int
	Label      string
	Model      string
}

// Stats summarizes a build.
type Stats struct {
	Questions   int
	Substituted int
	FailOpen    []FailOpen
}

// Build is the assembled output of one run. Both accumulators are keyed by
// block id.
type Build struct {
	Seed             int
	LuresPerQuestion int
	Stats            Stats

	lure    map[int][]types.Question
	control map[int][]types.Question
}

// LureBlocks returns the lure variant grouped and sorted.
func (b *Build) LureBlocks() []types.Block {
	return types.GroupBlocks(b.lure)
}

// ControlBlocks returns the bank questions with trimmed, unsubstituted text,
// grouped and sorted.
func (b *Build) ControlBlocks() []types.Block {
	return types.GroupBlocks(b.control)
}

// LureQuestions indexes the lure variant by question id.
func (b *Build) LureQuestions() map[int]types.Question {
	out := make(map[int]types.Question)
	for _, qs := range b.lure {
		for _, q := range qs {
			out[q.QuestionID] = q
		}
	}
	return out
}

// Assembler turns bank rows into a Build.
type Assembler struct {
	Seed             int
	LuresPerQuestion int
	Logger           *zap.Logger
}

// NewAssembler returns an assembler with the compiled-in seed and lure count.
func NewAssembler(logger *zap.Logger) *Assembler {
	return &Assembler{
		Seed:             GlobalSeed,
		LuresPerQuestion: LuresPerQuestion,
		Logger:           logger,
	}
}

// Assemble processes every row and stops at the first error. Nothing is
// returned on failure, so a caller that writes only after success never
// commits partial output.
func (a *Assembler) Assemble(rows []bank.Row, tables modeltable.Set) (*Build, error) {
	if a.LuresPerQuestion < 0 || a.LuresPerQuestion > len(types.Labels) {
		return nil, fmt.Errorf("lures per question %d not in [0,%d]: %w",
			a.LuresPerQuestion, len(types.Labels), types.ErrInvalidConfig)
	}
	log := a.Logger
	if log == nil {
		log = zap.NewNop()
	}

	build := &Build{
		Seed:             a.Seed,
		LuresPerQuestion: a.LuresPerQuestion,
		lure:             make(map[int][]types.Question),
		control:          make(map[int][]types.Question),
	}
	seen := make(map[int]int, len(rows))

	for i, row := range rows {
		if first, dup := seen[row.QuestionID]; dup {
			return nil, fmt.Errorf("question %d appears in bank rows %d and %d: %w",
				row.QuestionID, first+1, i+1, types.ErrIntegrity)
		}
		seen[row.QuestionID] = i

		lq, cq, err := a.assembleQuestion(row, tables, &build.Stats, log)
		if err != nil {
			return nil, err
		}
		build.lure[row.BlockID] = append(build.lure[row.BlockID], lq)
		build.control[row.BlockID] = append(build.control[row.BlockID], cq)
		build.Stats.Questions++
	}

	log.Debug("Assembled lure variant",
		zap.Int("questions", build.Stats.Questions),
		zap.Int("substituted", build.Stats.Substituted),
		zap.Int("fail_open", len(build.Stats.FailOpen)))
	return build, nil
}

// assembleQuestion returns the lure and control variants of row. Both carry
// the trimmed bank text, so they differ only at substituted labels.
func (a *Assembler) assembleQuestion(row bank.Row, tables modeltable.Set, stats *Stats, log *zap.Logger) (lure, control types.Question, err error) {
	lureSet := make(map[string]bool, a.LuresPerQuestion)
	for _, l := range LureLabels(a.Seed, row.QuestionID, a.LuresPerQuestion) {
		lureSet[l] = true
	}

	lureOpts := make([]types.Option, 0, len(row.Options))
	controlOpts := make([]types.Option, 0, len(row.Options))
	for _, ref := range row.Options {
		table, err := tables.Lookup(ref.Model)
		if err != nil {
			return lure, control, fmt.Errorf("question %d label %s: %w", row.QuestionID, ref.Label, err)
		}
		modelRow, err := table.Row(row.ScenarioID)
		if err != nil {
			return lure, control, fmt.Errorf("question %d label %s: %w", row.QuestionID, ref.Label, err)
		}

		original := strings.TrimSpace(ref.Slogan)
		recorded := strings.TrimSpace(modelRow[ref.SourceColumn])
		if recorded != "" && recorded != original {
			return lure, control, &types.IntegrityError{
				QuestionID: row.QuestionID,
				Label:      ref.Label,
				Model:      ref.Model,
				BankText:   original,
				ModelText:  recorded,
			}
		}

		text := original
		if lureSet[ref.Label] {
			text = ChooseLure(modelRow, table.GenerationColumns, ref.SourceColumn, original,
				LureKey(a.Seed, row.QuestionID, ref.Label))
			if text == original {
				stats.FailOpen = append(stats.FailOpen, FailOpen{
					QuestionID: row.QuestionID,
					Label:      ref.Label,
					Model:      ref.Model,
				})
				log.Warn("No lure candidates; keeping original text",
					zap.Int("question_id", row.QuestionID),
					zap.String("label", ref.Label),
					zap.String("model", ref.Model))
			} else {
				stats.Substituted++
			}
		}
		lureOpts = append(lureOpts, types.Option{Label: ref.Label, Text: text})
		controlOpts = append(controlOpts, types.Option{Label: ref.Label, Text: original})
	}

	lure = types.Question{
		QuestionID: row.QuestionID,
		ScenarioID: row.ScenarioID,
		Brand:      row.Brand,
		Persona:    row.Persona,
		Options:    lureOpts,
	}
	control = lure
	control.Options = controlOpts
	return lure, control, nil
}
