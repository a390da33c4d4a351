package cache

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/biogo/hts/bgzf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const indexDB = "# transcript database\n" + forwardRecord + "\n" + reverseRecord + "\n"

func writeGzip(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := gzip.NewWriter(f)
	_, err = zw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

func writeBgzf(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	bw := bgzf.NewWriter(f, 1)
	_, err = bw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, bw.Close())
	require.NoError(t, f.Close())
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "db.txt")
	require.NoError(t, os.WriteFile(plain, []byte(indexDB), 0644))
	gz := filepath.Join(dir, "db.txt.gz")
	writeGzip(t, gz, indexDB)
	bgz := filepath.Join(dir, "db.txt.bgz")
	writeBgzf(t, bgz, indexDB)
	empty := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(empty, nil, 0644))

	for name, path := range map[string]string{"plain": plain, "gzip": gz, "bgzip": bgz} {
		t.Run(name, func(t *testing.T) {
			rc, err := Open(path)
			require.NoError(t, err)
			data, err := io.ReadAll(rc)
			require.NoError(t, err)
			assert.NoError(t, rc.Close())
			assert.Equal(t, indexDB, string(data))
		})
	}

	rc, err := Open(empty)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Empty(t, data)
	rc.Close()

	_, err = Open(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

func TestLoadIndexFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.txt.gz")
	writeBgzf(t, path, indexDB)

	x, err := LoadIndexFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, x.Len())
	assert.Equal(t, []string{"1"}, x.Contigs())
	assert.True(t, x.HasContig("1"))

	recs := x.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, forwardRecord, recs[0].Line)
	assert.Equal(t, int64(100), recs[0].Start)
	assert.Equal(t, int64(500), recs[0].End)

	_, err = LoadIndexFile(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
