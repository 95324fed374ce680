package tabular

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"slogansurvey/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead_RowsKeyedByHeader(t *testing.T) {
	in := "id,Generation_1,Generation_2\n0,\"Fast, bold\",Swift\n1,Quiet\n"
	recs, err := Read(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "Generation_1", "Generation_2"}, recs.Header)
	require.Len(t, recs.Rows, 2)
	assert.Equal(t, "Fast, bold", recs.Rows[0]["Generation_1"])
	assert.Equal(t, "Quiet", recs.Rows[1]["Generation_1"])
	assert.Equal(t, "", recs.Rows[1]["Generation_2"], "short rows pad with empty strings")
}

func TestRead_MultilineQuotedCell(t *testing.T) {
	in := "a,b\n\"line one\nline two\",x\n"
	recs, err := Read(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, recs.Rows, 1)
	assert.Equal(t, "line one\nline two", recs.Rows[0]["a"])
}

func TestRead_EmptyInputIsMalformedHeader(t *testing.T) {
	_, err := Read(strings.NewReader(""))
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrMalformedHeader))
}

func TestRead_HeaderOnly(t *testing.T) {
	recs, err := Read(strings.NewReader("a,b\n"))
	require.NoError(t, err)
	assert.Empty(t, recs.Rows)
}

func TestMissingColumns(t *testing.T) {
	recs := &Records{Header: []string{"a", "c"}}
	assert.Equal(t, []string{"b", "d"}, recs.MissingColumns([]string{"a", "b", "c", "d"}))
	assert.Nil(t, recs.MissingColumns([]string{"a"}))
}

func TestReadFile_WrapsPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	_, err := ReadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty.csv")
	assert.True(t, errors.Is(err, types.ErrMalformedHeader))
}
