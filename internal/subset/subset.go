// Package subset re-projects a fixed list of questions from the control bank
// and the built lure blocks into one synthetic block with display ids.
package subset

import (
	"fmt"
	"path/filepath"

	"slogansurvey/internal/bank"
	"slogansurvey/internal/emit"
	"slogansurvey/internal/types"
)

// DefaultBlockID is the block id of the extracted subset.
const DefaultBlockID = 10

// DefaultQuestionIDs is the top-20 list, in presentation order.
var DefaultQuestionIDs = []int{
	65, 12, 188, 193, 7, 41, 50, 114, 82, 99,
	144, 184, 196, 15, 24, 39, 74, 84, 131, 134,
}

// ControlEntry is a control question annotated for the subset block.
type ControlEntry struct {
	QuestionID    int            `json:"question_id"`
	DisplayID     int            `json:"display_id"`
	SourceBlockID int            `json:"source_block_id"`
	ScenarioID    int            `json:"scenario_id"`
	Brand         string         `json:"brand"`
	Persona       string         `json:"persona"`
	Options       []types.Option `json:"options"`
}

// LureEntry is a built lure question with the subset annotations appended.
type LureEntry struct {
	types.Question
	DisplayID     int `json:"display_id"`
	SourceBlockID int `json:"source_block_id"`
}

// ControlBlock is the control half of the subset.
type ControlBlock struct {
	BlockID   int            `json:"block_id"`
	Questions []ControlEntry `json:"questions"`
}

// LureBlock is the lure half of the subset.
type LureBlock struct {
	BlockID   int         `json:"block_id"`
	Questions []LureEntry `json:"questions"`
}

// Result holds both halves; they share display ids.
type Result struct {
	Control ControlBlock
	Lure    LureBlock
}

// MissingError lists requested ids absent from a source.
type MissingError struct {
	Source string
	IDs    []int
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("missing question_id(s) in %s: %v", e.Source, e.IDs)
}

// Unwrap lets errors.Is(err, types.ErrMissingData) match.
func (e *MissingError) Unwrap() error {
	return types.ErrMissingData
}

// Extract builds the subset. Every id must exist in both bankRows and
// lureQuestions; otherwise nothing is built. An empty id list is rejected.
func Extract(ids []int, blockID int, bankRows map[int]bank.Row, lureQuestions map[int]types.Question) (*Result, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("no question ids to extract: %w", types.ErrInvalidConfig)
	}
	var missingBank, missingLure []int
	for _, id := range ids {
		if _, ok := bankRows[id]; !ok {
			missingBank = append(missingBank, id)
		}
	}
	if len(missingBank) > 0 {
		return nil, &MissingError{Source: "question bank", IDs: missingBank}
	}
	for _, id := range ids {
		if _, ok := lureQuestions[id]; !ok {
			missingLure = append(missingLure, id)
		}
	}
	if len(missingLure) > 0 {
		return nil, &MissingError{Source: "lure blocks", IDs: missingLure}
	}

	res := &Result{
		Control: ControlBlock{BlockID: blockID, Questions: make([]ControlEntry, 0, len(ids))},
		Lure:    LureBlock{BlockID: blockID, Questions: make([]LureEntry, 0, len(ids))},
	}
	for i, id := range ids {
		row := bankRows[id]
		ctrl := row.Control()
		res.Control.Questions = append(res.Control.Questions, ControlEntry{
			QuestionID:    id,
			DisplayID:     i + 1,
			SourceBlockID: row.BlockID,
			ScenarioID:    ctrl.ScenarioID,
			Brand:         ctrl.Brand,
			Persona:       ctrl.Persona,
			Options:       ctrl.Options,
		})

		lq := lureQuestions[id]
		opts := make([]types.Option, len(lq.Options))
		copy(opts, lq.Options)
		lq.Options = opts
		res.Lure.Questions = append(res.Lure.Questions, LureEntry{
			Question:      lq,
			DisplayID:     i + 1,
			SourceBlockID: row.BlockID,
		})
	}
	return res, nil
}

// Write stores the control half under controlDir and the lure half under
// lureDir, both as block_NN.json.
func (r *Result) Write(controlDir, lureDir string) (controlPath, lurePath string, err error) {
	controlPath = filepath.Join(controlDir, emit.BlockFileName(r.Control.BlockID))
	lurePath = filepath.Join(lureDir, emit.BlockFileName(r.Lure.BlockID))
	if err := emit.WriteJSON(controlPath, r.Control); err != nil {
		return "", "", err
	}
	if err := emit.WriteJSON(lurePath, r.Lure); err != nil {
		return "", "", err
	}
	return controlPath, lurePath, nil
}
