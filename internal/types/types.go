// Package types holds the survey records shared by the loaders, the
// assembler, the emitters and the subset extractor.
package types

import "sort"

// Labels is the fixed option order of every question.
var Labels = [...]string{"A", "B", "C", "D"}

// Option is one labeled answer text.
type Option struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Question is one assembled survey question. Field order is the
// serialized key order.
type Question struct {
	QuestionID int      `json:"question_id"`
	ScenarioID int      `json:"scenario_id"`
	Brand      string   `json:"brand"`
	Persona    string   `json:"persona"`
	Options    []Option `json:"options"`
}

// OptionText returns the text for label and whether the label exists.
func (q Question) OptionText(label string) (string, bool) {
	for _, o := range q.Options {
		if o.Label == label {
			return o.Text, true
		}
	}
	return "", false
}

// Block is a group of questions presented together.
type Block struct {
	BlockID   int        `json:"block_id"`
	Questions []Question `json:"questions"`
}

// GroupBlocks turns a block-id accumulator into blocks sorted by id, each
// with its questions sorted by question id. The input is not modified.
func GroupBlocks(acc map[int][]Question) []Block {
	ids := make([]int, 0, len(acc))
	for id := range acc {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	blocks := make([]Block, 0, len(ids))
	for _, id := range ids {
		qs := make([]Question, len(acc[id]))
		copy(qs, acc[id])
		sort.SliceStable(qs, func(i, j int) bool {
			return qs[i].QuestionID < qs[j].QuestionID
		})
		blocks = append(blocks, Block{BlockID: id, Questions: qs})
	}
	return blocks
}

// CountQuestions sums the questions across blocks.
func CountQuestions(blocks []Block) int {
	n := 0
	for _, b := range blocks {
		n += len(b.Questions)
	}
	return n
}
