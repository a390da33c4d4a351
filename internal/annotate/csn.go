package annotate

import (
	"strconv"

	"github.com/inodb/vibe-cava/internal/cache"
	"github.com/inodb/vibe-cava/internal/vcf"
)

// maxListedBases is the longest deleted or duplicated sequence spelled out
// in a CSN description.
const maxListedBases = 10

// effect holds what is known about one alignment of a variant on a transcript.
type effect struct {
	loc  Location
	diff *proteinDiff // nil when no protein comparison applies
	ref  string       // reference protein
}

// newEffect compares the proteins for a variant at loc. The comparison is
// skipped for non-coding locations or when either translation is missing.
func newEffect(t *cache.Transcript, v *vcf.Variant, loc Location, protein, mutProtein string) effect {
	eff := effect{loc: loc, ref: protein}
	if loc.NonCoding() || protein == "" || mutProtein == "" || !t.IsProteinCoding() {
		return eff
	}
	net := len(v.Alt) - len(v.Ref)
	d := compareProteins(protein, mutProtein, net%3 != 0, variantCodon(t, v))
	eff.diff = &d
	return eff
}

// variantCodon returns the codon number of the variant's 5'-most base.
func variantCodon(t *cache.Transcript, v *vcf.Variant) int {
	start, end := v.Footprint()
	first := start
	if t.Precedes(end, start) {
		first = end
	}
	from, _ := t.CodingRange()
	c := t.CDNA(first) - from + 1
	if c < 1 {
		return 1
	}
	return int((c-1)/3 + 1)
}

// CSN renders the CSN description of v on t together with the protein
// change triple.
func CSN(t *cache.Transcript, v *vcf.Variant, ref vcf.Sequencer, eff effect) (string, ProteinChange) {
	s := dnaChange(t, v, ref)
	if eff.diff == nil {
		return s, noProteinChange
	}
	return s + "_p." + eff.diff.hgvs(eff.ref), eff.diff.triple()
}

// dnaChange renders the c. (or n. for non-coding transcripts) part.
func dnaChange(t *cache.Transcript, v *vcf.Variant, ref vcf.Sequencer) string {
	prefix := "c."
	if !t.IsProteinCoding() {
		prefix = "n."
	}
	start, end := v.Footprint()
	first, last := start, end
	if t.Precedes(end, start) {
		first, last = end, start
	}
	refT, altT := v.Ref, v.Alt
	if t.Strand == -1 {
		refT, altT = ReverseComplement(refT), ReverseComplement(altT)
	}
	span := func(a, b int64) string {
		if a == b {
			return codingCoord(t, a)
		}
		return codingCoord(t, a) + "_" + codingCoord(t, b)
	}

	switch v.Kind() {
	case vcf.Substitution:
		return prefix + codingCoord(t, v.Pos) + refT + ">" + altT
	case vcf.Deletion:
		return prefix + span(first, last) + "del" + listed(refT)
	case vcf.Insertion:
		if a, b, ok := duplicatedBlock(t, v, ref, altT); ok {
			return prefix + span(a, b) + "dup" + listed(altT)
		}
		return prefix + codingCoord(t, first) + "_" + codingCoord(t, last) + "ins" + altT
	}
	return prefix + span(first, last) + "delins" + altT
}

// duplicatedBlock checks whether the inserted bases (transcript orientation)
// repeat the adjacent reference, 5' side first. It returns the duplicated
// block's genomic ends in transcript order.
func duplicatedBlock(t *cache.Transcript, v *vcf.Variant, ref vcf.Sequencer, ins string) (first, last int64, ok bool) {
	n := int64(len(ins))
	// Genomic blocks either side of the insertion point.
	left := [2]int64{v.Pos - n, v.Pos - 1}
	right := [2]int64{v.Pos, v.Pos + n - 1}
	blocks := [][2]int64{left, right}
	if t.Strand == -1 {
		blocks = [][2]int64{right, left}
	}

	for _, b := range blocks {
		seq, found := ref.Sequence(v.Chrom, b[0], b[1])
		if !found || int64(len(seq)) != n {
			continue
		}
		if t.Strand == -1 {
			seq = ReverseComplement(seq)
		}
		if seq == ins {
			if t.Strand == -1 {
				return b[1], b[0], true
			}
			return b[0], b[1], true
		}
	}
	return 0, 0, false
}

func listed(bases string) string {
	if len(bases) > maxListedBases {
		return ""
	}
	return bases
}

// codingCoord renders a genomic position as a transcript coordinate: N
// inside the coding sequence, -N in the 5'UTR, *N in the 3'UTR, and an
// exon boundary plus an intronic offset for intronic positions.
func codingCoord(t *cache.Transcript, pos int64) string {
	if c := t.CDNA(pos); c > 0 {
		return cdnaCoord(t, c)
	}
	idx := t.IntronIndex(pos)
	if idx < 0 {
		return "?"
	}
	up := t.Exons[idx].LastBase(t.Strand)
	down := t.Exons[idx+1].FirstBase(t.Strand)
	du, dd := abs64(pos-up), abs64(down-pos)
	if du <= dd {
		return cdnaCoord(t, t.CDNA(up)) + "+" + strconv.FormatInt(du, 10)
	}
	return cdnaCoord(t, t.CDNA(down)) + "-" + strconv.FormatInt(dd, 10)
}

func cdnaCoord(t *cache.Transcript, c int64) string {
	if !t.IsProteinCoding() {
		return strconv.FormatInt(c, 10)
	}
	from, to := t.CodingRange()
	switch {
	case c < from:
		return "-" + strconv.FormatInt(from-c, 10)
	case c > to:
		return "*" + strconv.FormatInt(c-to, 10)
	}
	return strconv.FormatInt(c-from+1, 10)
}

func abs64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
