package dbsnp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-cava/internal/annotate"
	"github.com/inodb/vibe-cava/internal/vcf"
)

// Small test fixture in dbSNP TSV format.
const testTSV = `#rsid	chrom	pos	alts
rs121913529	12	25245350	A,G,T
rs112445441	12	25245350	T
rs1	chrX	100	C

rs2	chrX	200	CA
`

func openLoaded(t *testing.T) *Store {
	t.Helper()
	store, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	path := filepath.Join(t.TempDir(), "dbsnp.tsv")
	require.NoError(t, os.WriteFile(path, []byte(testTSV), 0644))
	n, err := store.Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	return store
}

func TestLoadAndLookup(t *testing.T) {
	store := openLoaded(t)
	assert.True(t, store.Loaded())

	ids, err := store.Lookup("12", 25245350, "A")
	require.NoError(t, err)
	assert.Equal(t, []string{"rs121913529"}, ids)

	ids, err = store.Lookup("12", 25245350, "T")
	require.NoError(t, err)
	assert.Equal(t, []string{"rs112445441", "rs121913529"}, ids)

	ids, err = store.Lookup("12", 25245350, "C")
	require.NoError(t, err)
	assert.Empty(t, ids)

	ids, err = store.Lookup("12", 1, "A")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestLoadReplaces(t *testing.T) {
	store := openLoaded(t)

	path := filepath.Join(t.TempDir(), "small.tsv")
	require.NoError(t, os.WriteFile(path, []byte("rs9\t3\t10\tG\n"), 0644))
	n, err := store.Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	count, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.False(t, store.HasContig("12"))
	assert.True(t, store.HasContig("3"))
}

func TestLoadErrors(t *testing.T) {
	store, err := Open("")
	require.NoError(t, err)
	defer store.Close()

	dir := t.TempDir()
	short := filepath.Join(dir, "short.tsv")
	require.NoError(t, os.WriteFile(short, []byte("rs1\t1\t100\n"), 0644))
	_, err = store.Load(short)
	assert.ErrorContains(t, err, "line 1")

	badPos := filepath.Join(dir, "pos.tsv")
	require.NoError(t, os.WriteFile(badPos, []byte("#header\nrs1\t1\tx\tA\n"), 0644))
	_, err = store.Load(badPos)
	assert.ErrorContains(t, err, "line 2")

	_, err = store.Load(filepath.Join(dir, "missing.tsv"))
	assert.Error(t, err)
}

func TestLookupEmpty(t *testing.T) {
	store, err := Open("")
	require.NoError(t, err)
	defer store.Close()

	assert.False(t, store.Loaded())
	assert.False(t, store.HasContig("1"))
	ids, err := store.Lookup("1", 1, "T")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSource(t *testing.T) {
	src := NewSource(openLoaded(t))
	assert.Equal(t, "dbsnp", src.Name())
	require.Len(t, src.Columns(), 1)
	assert.Equal(t, FlagDBSNP, src.Columns()[0].Name)
	assert.Contains(t, src.Columns()[0].Description, "comma-separated")

	tests := []struct {
		name string
		v    *vcf.Variant
		want string
	}{
		{"single match", vcf.NewVariant("12", 25245350, "C", "G"), "rs121913529"},
		{"several ids", vcf.NewVariant("12", 25245350, "C", "T"), "rs112445441,rs121913529"},
		{"no matching alt", vcf.NewVariant("X", 100, "A", "G"), ""},
		{"chr prefix fallback", vcf.NewVariant("X", 100, "A", "C"), "rs1"},
		{"unknown contig", vcf.NewVariant("7", 100, "A", "C"), ""},
		{"not a substitution", vcf.NewVariant("X", 200, "C", "CA"), ""},
		{"normalized substitution", vcf.NewVariant("12", 25245349, "GC", "GA"), "rs121913529"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ann := &annotate.Annotation{Variant: tt.v}
			src.Annotate(tt.v, ann)
			got, ok := ann.GetExtra(FlagDBSNP)
			assert.True(t, ok, "flag is always set")
			assert.Equal(t, tt.want, got)
		})
	}
}
