package annotate

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-cava/internal/vcf"
)

func TestTranslateFromCDSStart(t *testing.T) {
	ref := testReference()
	codons := StandardCodonTable()

	tp := testTranscript(t, recordTP)
	exons, ok := exonSequences(ref, tp)
	require.True(t, ok)
	assert.Equal(t, "MKELFGTWHRNDSPIVQYAT*", translateFromCDSStart(codons, tp, exons))

	tm := testTranscript(t, recordTM)
	exons, ok = exonSequences(ref, tm)
	require.True(t, ok)
	assert.Equal(t, []string{tmExon1, tmExon2}, exons)
	assert.Equal(t, "MAWKPDFSELY*", translateFromCDSStart(codons, tm, exons))

	tc := testTranscript(t, recordTC)
	exons, ok = exonSequences(ref, tc)
	require.True(t, ok)
	assert.Equal(t, "", translateFromCDSStart(codons, tc, exons))
}

func TestExonSequences_MissingContig(t *testing.T) {
	tp := testTranscript(t, recordTP)
	tp.Chrom = "22"
	_, ok := exonSequences(testReference(), tp)
	assert.False(t, ok)
}

func TestMutateExons(t *testing.T) {
	ref := testReference()
	tm := testTranscript(t, recordTM)
	exons, ok := exonSequences(ref, tm)
	require.True(t, ok)

	// Genomic insertion of T before 50 is an A after the first base of exon 2.
	mutated, ok := mutateExons(tm, exons, vcf.NewVariant("2", 49, "T", "TT"))
	require.True(t, ok)
	assert.Equal(t, tmExon1, mutated[0])
	assert.Equal(t, tmExon2[:1]+"A"+tmExon2[1:], mutated[1])
	assert.Equal(t, tmExon2, exons[1], "input is not modified")

	mutated, ok = mutateExons(tm, exons, vcf.NewVariant("2", 92, "C", "G"))
	require.True(t, ok)
	assert.Equal(t, tmExon1[:8]+"C"+tmExon1[9:], mutated[0])

	tp := testTranscript(t, recordTP)
	exons, ok = exonSequences(ref, tp)
	require.True(t, ok)
	mutated, ok = mutateExons(tp, exons, vcf.NewVariant("1", 32, "GTTC", "G"))
	require.True(t, ok)
	assert.Equal(t, "GCTAGCTTGCATGAAAGAGCTGGGCAC", mutated[0])

	_, ok = mutateExons(tp, exons, vcf.NewVariant("1", 37, "GCACGTA", "G"))
	assert.False(t, ok, "variant leaving the exon")
}

func TestProteinCache(t *testing.T) {
	c := newProteinCache()
	for i := 0; i < proteinCacheSize; i++ {
		c.put(fmt.Sprintf("T%d", i), translation{protein: "M*"})
	}
	assert.Equal(t, proteinCacheSize, c.len())
	_, ok := c.get("T0")
	assert.True(t, ok)

	c.put("T-next", translation{protein: "MK*"})
	assert.Equal(t, 1, c.len())
	tr, ok := c.get("T-next")
	assert.True(t, ok)
	assert.Equal(t, "MK*", tr.protein)
	_, ok = c.get("T0")
	assert.False(t, ok)
}
