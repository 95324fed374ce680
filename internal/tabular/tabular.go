// Package tabular reads header-keyed CSV files into ordered row maps.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"slogansurvey/internal/types"
)

// Records is a parsed table: the header in file order and one map per data
// row keyed by column name.
type Records struct {
	Header []string
	Rows   []map[string]string
}

// HasColumn reports whether name appears in the header.
func (r *Records) HasColumn(name string) bool {
	for _, h := range r.Header {
		if h == name {
			return true
		}
	}
	return false
}

// MissingColumns returns the names in want that the header lacks, in the
// order given.
func (r *Records) MissingColumns(want []string) []string {
	var missing []string
	for _, w := range want {
		if !r.HasColumn(w) {
			missing = append(missing, w)
		}
	}
	return missing
}

// ReadFile opens path and parses it with Read.
func ReadFile(path string) (*Records, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	recs, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recs, nil
}

// Read parses CSV from r. The first record is the header; an input without
// one fails with types.ErrMalformedHeader. Short rows are padded with empty
// strings and cells beyond the header are ignored. When a column name
// repeats, the rightmost cell wins.
func Read(r io.Reader) (*Records, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("missing header row: %w", types.ErrMalformedHeader)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	recs := &Records{Header: header}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(recs.Rows)+1, err)
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = ""
			}
		}
		recs.Rows = append(recs.Rows, row)
	}
	return recs, nil
}
