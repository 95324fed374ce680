package survey

import (
	"strings"

	"slogansurvey/internal/detrand"
)

// LurePool collects the decoy candidates for one option: the trimmed value of
// every generation column except excludedColumn, skipping empty values and
// values equal to originalText. Duplicates among the remaining columns are
// kept, so a slogan produced twice is twice as likely to be drawn.
func LurePool(row map[string]string, generationColumns []string, excludedColumn, originalText string) []string {
	var pool []string
	for _, col := range generationColumns {
		if col == excludedColumn {
			continue
		}
		text := strings.TrimSpace(row[col])
		if text == "" || text == originalText {
			continue
		}
		pool = append(pool, text)
	}
	return pool
}

// ChooseLure picks one decoy from the pool using a stream derived from
// seedKey. An empty pool returns originalText unchanged.
func ChooseLure(row map[string]string, generationColumns []string, excludedColumn, originalText, seedKey string) string {
	pool := LurePool(row, generationColumns, excludedColumn, originalText)
	if len(pool) == 0 {
		return originalText
	}
	return pool[detrand.FromKey(seedKey).Intn(len(pool))]
}
