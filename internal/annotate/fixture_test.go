package annotate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-cava/internal/cache"
	"github.com/inodb/vibe-cava/internal/genome"
)

// Contig 1 carries the forward-strand transcript TP:
//
//	exon 1  11..40   5'UTR 11..20, start codon at 21
//	intron  41..80
//	exon 2  81..110
//	intron  111..150
//	exon 3  151..190 stop codon ends at 163
//
// Protein: MKELFGTWHRNDSPIVQYAT*
var contig1 = strings.Join([]string{
	"TTGACCTGAC",           // 1..10
	"GCTAGCTTGC",           // 11..20
	"ATGAAAGAGCTGTTCGGCAC", // 21..40
	"GTAAGTCTGATTTTTCGACTCATGCATGCATCTCCCTCAG", // 41..80
	"CTGGCATCGTAACGATTCACCAATCGTGCA",           // 81..110
	"GTGAGTACCTGACCTGATCATGACTGACTACTTTTCACAG", // 111..150
	"GTACGCAACTTAAGCCTGACTCGATCGGATCAGCTAGTCA", // 151..190
	"CCGATAGCTAGGCTAACGTGTCAGTCGACT",           // 191..220
}, "")

// Contig 2 carries the reverse-strand transcript TM, built from its mRNA:
//
//	exon 1  71..100  5'UTR cDNA 1..5, start codon at 95
//	intron  51..70
//	exon 2  21..50   stop codon ends at 40
//
// Protein: MAWKPDFSELY*
const (
	tmExon1  = "GACTAATGGCTTGGAAACCGGATTTCAGCG"
	tmIntron = "GTAAGTCCTTTTCTTCTCAG"
	tmExon2  = "AACTGTACTGAGCATGCAACGTTCAGGACT"
)

var contig2 = "CATCGATGCATGACGTACGA" +
	ReverseComplement(tmExon2) +
	ReverseComplement(tmIntron) +
	ReverseComplement(tmExon1) +
	"TGCATCGATCGTACGATCGA"

// Contig 3 carries two adjacent single-exon non-coding transcripts TA and
// TB, and TC spanning both.
var contig3 = strings.Repeat("ACGT", 30)

const (
	recordTP = "TP\tGENEP\tENSGP\tNM_P.1\t1\t1\t10\t190\t11\t21\t163\t10\t40\t80\t110\t150\t190"
	recordTM = "TM\tGENEM\tENSGM\tNM_M.1\t2\t-1\t20\t100\t6\t95\t40\t70\t100\t20\t50"
	recordTA = "TA\tGA\tENSGA\t.\t3\t1\t10\t50\t.\t.\t.\t10\t50"
	recordTB = "TB\tGB\tENSGB\t.\t3\t1\t50\t90\t.\t.\t.\t50\t90"
	recordTC = "TC\tGC\tENSGC\t.\t3\t1\t0\t100\t.\t.\t.\t0\t100"
)

func testReference() *genome.Reference {
	m := genome.NewMemStore()
	m.Add("1", contig1)
	m.Add("2", contig2)
	m.Add("3", contig3)
	return genome.NewReference(m)
}

func testIndex(t *testing.T) *cache.Index {
	t.Helper()
	db := strings.Join([]string{recordTP, recordTM, recordTA, recordTB, recordTC}, "\n")
	x, err := cache.LoadIndex(strings.NewReader(db))
	require.NoError(t, err)
	return x
}

func testTranscript(t *testing.T, record string) *cache.Transcript {
	t.Helper()
	tx, err := cache.ParseTranscript(record)
	require.NoError(t, err)
	return tx
}

func newTestAnnotator(t *testing.T, opts Options) *Annotator {
	t.Helper()
	a, err := NewAnnotator(testIndex(t), testReference(), opts)
	require.NoError(t, err)
	return a
}

// flagValue returns an emitted flag, failing the test if it is absent.
func flagValue(t *testing.T, ann *Annotation, name string) string {
	t.Helper()
	v, ok := ann.Flag(name)
	require.True(t, ok, "flag %s not emitted", name)
	return v
}
