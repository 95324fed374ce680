package types

import (
	"errors"
	"fmt"
)

// Error taxonomy. Every failure is fatal to the build; callers match with
// errors.Is and never retry.
var (
	// ErrMissingData: no source tables, unknown model, or an id absent from a
	// dependent dataset.
	ErrMissingData = errors.New("missing data")

	// ErrRange: a scenario index outside its model's rows.
	ErrRange = errors.New("index out of range")

	// ErrIntegrity: two sources disagree about the same logical field.
	ErrIntegrity = errors.New("integrity violation")

	// ErrMalformedHeader: a source table without a header row.
	ErrMalformedHeader = errors.New("malformed header")

	// ErrInvalidConfig: a configuration value outside its allowed range.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// IntegrityError reports a bank slogan that disagrees with the model table.
type IntegrityError struct {
	QuestionID int
	Label      string
	Model      string
	BankText   string
	ModelText  string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("slogan mismatch qid=%d label=%s model=%s: bank=%q model_table=%q",
		e.QuestionID, e.Label, e.Model, e.BankText, e.ModelText)
}

// Unwrap lets errors.Is(err, ErrIntegrity) match.
func (e *IntegrityError) Unwrap() error {
	return ErrIntegrity
}
