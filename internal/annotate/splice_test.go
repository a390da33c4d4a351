package annotate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntronOffset(t *testing.T) {
	tests := []struct {
		coord string
		want  int
		ok    bool
	}{
		{"123+5", 5, true},
		{"123-8", -8, true},
		{"-12-3", 0, false},
		{"-12+3", 3, true},
		{"*40+2", 2, true},
		{"*40-2", -2, true},
		{"123", 0, false},
		{"-12", 0, false},
		{"123+x", 0, false},
	}
	for _, tt := range tests {
		got, ok := intronOffset(tt.coord)
		assert.Equal(t, tt.ok, ok, tt.coord)
		assert.Equal(t, tt.want, got, tt.coord)
	}
}

func TestIsDupOverlappingSSBoundary(t *testing.T) {
	tests := []struct {
		name string
		csn  string
		want bool
	}{
		{"single base at +8", "c.50+8dupC", true},
		{"single base at -8", "c.51-8dupT", true},
		{"single base inside region", "c.50+7dupC", false},
		{"range across +8", "c.50+6_50+9dupCCTG", true},
		{"range ending at -8", "c.51-10_51-8dupAGT", true},
		{"range inside intron", "c.50+10_50+12dupAAA", false},
		{"3'UTR intron coordinate", "c.*12+8dupA", true},
		{"5'UTR intron coordinate before the exon", "c.-12-8dupA", false},
		{"exonic duplication", "c.4_6dupAAA_p.Lys2dup", false},
		{"not a duplication", "c.50+8C>T", false},
		{"placeholder", ".", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDupOverlappingSSBoundary(tt.csn, 8))
		})
	}
}

func TestCorrectClasses(t *testing.T) {
	p, m := CorrectClasses("c.50+8dupC", ClassSpliceSite, ClassIntronic, 8)
	assert.Equal(t, ClassIntronic, p)
	assert.Equal(t, ClassIntronic, m)

	p, m = CorrectClasses("c.50+8dupC", ClassIntronic, ClassSpliceSite, 8)
	assert.Equal(t, ClassIntronic, p)
	assert.Equal(t, ClassIntronic, m)

	// Other disagreements are kept.
	p, m = CorrectClasses("c.50+8dupC", ClassSpliceSite5, ClassIntronic, 8)
	assert.Equal(t, ClassSpliceSite5, p)
	assert.Equal(t, ClassIntronic, m)

	p, m = CorrectClasses("c.50+7dupC", ClassSpliceSite, ClassIntronic, 8)
	assert.Equal(t, ClassSpliceSite, p)
	assert.Equal(t, ClassIntronic, m)

	// The boundary follows the configured range.
	p, m = CorrectClasses("c.50+5dupC", ClassSpliceSite, ClassIntronic, 5)
	assert.Equal(t, ClassIntronic, p)
	assert.Equal(t, ClassIntronic, m)
}

func TestCorrectSOs(t *testing.T) {
	p, m := CorrectSOs("c.50+8dupC", intronSpliceRegion, SOIntron)
	assert.Equal(t, SOIntron, p)
	assert.Equal(t, SOIntron, m)

	p, m = CorrectSOs("c.51-8dupA", SOIntron, intronSpliceRegion)
	assert.Equal(t, SOIntron, p)
	assert.Equal(t, SOIntron, m)

	p, m = CorrectSOs("c.50+9dupC", intronSpliceRegion, SOIntron)
	assert.Equal(t, intronSpliceRegion, p)
	assert.Equal(t, SOIntron, m)
}
