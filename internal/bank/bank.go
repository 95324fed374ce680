// Package bank loads the question bank: one row per question naming its
// block, scenario, brand/persona context and the four labeled options.
package bank

import (
	"fmt"
	"strconv"
	"strings"

	"slogansurvey/internal/tabular"
	"slogansurvey/internal/types"
)

// OptionRef points one labeled option at the model table cell it came from.
type OptionRef struct {
	Label        string
	Model        string
	SourceColumn string
	Slogan       string
}

// Row is a parsed bank record.
type Row struct {
	BlockID    int
	QuestionID int
	ScenarioID int
	Brand      string
	Persona    string
	Options    [len(types.Labels)]OptionRef
}

// Control returns the question with the bank slogans exactly as recorded.
func (r Row) Control() types.Question {
	opts := make([]types.Option, 0, len(r.Options))
	for _, o := range r.Options {
		opts = append(opts, types.Option{Label: o.Label, Text: o.Slogan})
	}
	return types.Question{
		QuestionID: r.QuestionID,
		ScenarioID: r.ScenarioID,
		Brand:      r.Brand,
		Persona:    r.Persona,
		Options:    opts,
	}
}

// Columns lists every column the bank must carry.
func Columns() []string {
	cols := []string{"block_id", "question_id", "scenario_id", "brand", "persona"}
	for _, l := range types.Labels {
		cols = append(cols,
			"option_"+l+"_model",
			"option_"+l+"_source_col",
			"option_"+l+"_slogan",
		)
	}
	return cols
}

// Load reads and parses the bank CSV at path.
func Load(path string) ([]Row, error) {
	recs, err := tabular.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if missing := recs.MissingColumns(Columns()); len(missing) > 0 {
		return nil, fmt.Errorf("%s lacks columns %s: %w",
			path, strings.Join(missing, ", "), types.ErrMissingData)
	}

	rows := make([]Row, 0, len(recs.Rows))
	for i, rec := range recs.Rows {
		row, err := Parse(rec)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+1, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Parse converts one header-keyed record into a Row.
func Parse(rec map[string]string) (Row, error) {
	var row Row
	var err error

	if row.BlockID, err = intField(rec, "block_id"); err != nil {
		return Row{}, err
	}
	if row.QuestionID, err = intField(rec, "question_id"); err != nil {
		return Row{}, err
	}
	if row.ScenarioID, err = intField(rec, "scenario_id"); err != nil {
		return Row{}, err
	}
	row.Brand = rec["brand"]
	row.Persona = rec["persona"]

	for i, l := range types.Labels {
		row.Options[i] = OptionRef{
			Label:        l,
			Model:        rec["option_"+l+"_model"],
			SourceColumn: rec["option_"+l+"_source_col"],
			Slogan:       rec["option_"+l+"_slogan"],
		}
	}
	return row, nil
}

func intField(rec map[string]string, name string) (int, error) {
	raw, ok := rec[name]
	if !ok {
		return 0, fmt.Errorf("column %s: %w", name, types.ErrMissingData)
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("column %s: parse %q: %w", name, raw, err)
	}
	return v, nil
}

// Index maps question ids to rows. A repeated id keeps the later row.
func Index(rows []Row) map[int]Row {
	idx := make(map[int]Row, len(rows))
	for _, r := range rows {
		idx[r.QuestionID] = r
	}
	return idx
}
