// Package emit writes block and metadata documents. Output is two-space
// indented JSON with a trailing newline and no HTML escaping, so regenerated
// files diff cleanly against earlier runs.
package emit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"slogansurvey/internal/types"
)

// BlockFileName is the file name of a block document.
func BlockFileName(blockID int) string {
	return fmt.Sprintf("block_%02d.json", blockID)
}

// Encode renders v in the canonical output form.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteJSON encodes v and replaces path atomically.
func WriteJSON(path string, v any) error {
	data, err := Encode(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}

// WriteBlocks writes one block_NN.json per block into dir and returns the
// written paths in block order.
func WriteBlocks(dir string, blocks []types.Block) ([]string, error) {
	paths := make([]string, 0, len(blocks))
	for _, b := range blocks {
		path := filepath.Join(dir, BlockFileName(b.BlockID))
		if err := WriteJSON(path, b); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// ReadBlocks loads every block_*.json under dir in name order. The returned
// map is keyed by question id; a question repeated in a later file replaces
// the earlier one.
func ReadBlocks(dir string) (map[int]types.Question, error) {
	files, err := filepath.Glob(filepath.Join(dir, "block_*.json"))
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}

	questions := make(map[int]types.Question)
	for _, fp := range files {
		data, err := os.ReadFile(fp)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", fp, err)
		}
		var b types.Block
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, fmt.Errorf("parse %s: %w", fp, err)
		}
		for _, q := range b.Questions {
			questions[q.QuestionID] = q
		}
	}
	return questions, nil
}
