package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIDList(t *testing.T) {
	input := "# genes of interest\n" +
		"BRCA1\n" +
		"\n" +
		"  BRCA2\textra column\n" +
		"TP53\n"

	ids, err := parseIDList(strings.NewReader(input))
	require.NoError(t, err)

	assert.Len(t, ids, 3)
	assert.True(t, ids.Allows("BRCA1"))
	assert.True(t, ids.Allows("BRCA2"))
	assert.False(t, ids.Allows("KRAS"))
	assert.False(t, ids.Allows("#"), "comment lines should be skipped")
}

func TestIDList_EmptyAllowsAll(t *testing.T) {
	var ids IDList
	assert.True(t, ids.Allows("anything"))
}

func TestLoadIDList(t *testing.T) {
	ids, err := LoadIDList("")
	require.NoError(t, err)
	assert.Empty(t, ids)

	path := filepath.Join(t.TempDir(), "transcripts.txt")
	require.NoError(t, os.WriteFile(path, []byte("ENST001\nENST002\n"), 0o644))

	ids, err = LoadIDList(path)
	require.NoError(t, err)
	assert.Equal(t, IDList{"ENST001": true, "ENST002": true}, ids)

	_, err = LoadIDList(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
