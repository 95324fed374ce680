// Package modeltable loads per-model result tables: one CSV per model whose
// rows are scenarios and whose Generation_<n> columns hold candidate slogans.
package modeltable

import (
	"fmt"
	"math"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"slogansurvey/internal/tabular"
	"slogansurvey/internal/types"
)

const generationPrefix = "Generation_"

// malformedIndex orders Generation_ columns without a numeric suffix after
// every numbered one.
const malformedIndex = 1_000_000_000

var (
	timestampSuffix = regexp.MustCompile(`_\d{8}_\d{6}$`)
	generationIndex = regexp.MustCompile(`^Generation_(\d+)$`)
)

// Table is one model's scenario rows. It is read-only after loading.
type Table struct {
	Model             string
	SourcePath        string
	Rows              []map[string]string
	GenerationColumns []string
}

// Row returns the scenario row at index.
func (t *Table) Row(scenario int) (map[string]string, error) {
	if scenario < 0 || scenario >= len(t.Rows) {
		return nil, fmt.Errorf("scenario %d for model %s (rows=%d): %w",
			scenario, t.Model, len(t.Rows), types.ErrRange)
	}
	return t.Rows[scenario], nil
}

// Set maps model names to their tables.
type Set map[string]*Table

// Lookup returns the table for model.
func (s Set) Lookup(model string) (*Table, error) {
	t, ok := s[model]
	if !ok {
		return nil, fmt.Errorf("no model table for %q: %w", model, types.ErrMissingData)
	}
	return t, nil
}

// SourceFiles returns the base names of the loaded files, sorted.
func (s Set) SourceFiles() []string {
	names := make([]string, 0, len(s))
	for _, t := range s {
		names = append(names, filepath.Base(t.SourcePath))
	}
	sort.Strings(names)
	return names
}

// ModelName derives a model identity from a result file name: the .csv
// extension, a trailing _YYYYMMDD_HHMMSS stamp and the _results/_extracted
// decorations are removed.
func ModelName(filename string) string {
	name := strings.ReplaceAll(filename, ".csv", "")
	name = timestampSuffix.ReplaceAllString(name, "")
	name = strings.ReplaceAll(name, "_results", "")
	name = strings.ReplaceAll(name, "_extracted", "")
	return name
}

// GenerationColumns selects the Generation_ columns of header ordered by
// their numeric index. Columns with a malformed index keep header order at
// the end.
func GenerationColumns(header []string) []string {
	var cols []string
	for _, c := range header {
		if strings.HasPrefix(c, generationPrefix) {
			cols = append(cols, c)
		}
	}
	sort.SliceStable(cols, func(i, j int) bool {
		return generationKey(cols[i]) < generationKey(cols[j])
	})
	return cols
}

func generationKey(col string) int64 {
	m := generationIndex.FindStringSubmatch(col)
	if m == nil {
		return malformedIndex
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return math.MaxInt64
	}
	return n
}

// LoadFile reads a single model table.
func LoadFile(path string) (*Table, error) {
	recs, err := tabular.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &Table{
		Model:             ModelName(filepath.Base(path)),
		SourcePath:        path,
		Rows:              recs.Rows,
		GenerationColumns: GenerationColumns(recs.Header),
	}, nil
}

// LoadDir reads every *.csv in dir, in name order.
func LoadDir(dir string) (Set, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("list model tables: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no CSV files found under %s: %w", dir, types.ErrMissingData)
	}
	sort.Strings(files)

	set := make(Set, len(files))
	for _, fp := range files {
		t, err := LoadFile(fp)
		if err != nil {
			return nil, err
		}
		if prev, dup := set[t.Model]; dup {
			return nil, fmt.Errorf("model %q loaded from both %s and %s: %w",
				t.Model, filepath.Base(prev.SourcePath), filepath.Base(fp), types.ErrIntegrity)
		}
		set[t.Model] = t
	}
	return set, nil
}
