package annotate

import (
	"strings"

	"github.com/inodb/vibe-cava/internal/cache"
	"github.com/inodb/vibe-cava/internal/vcf"
)

// proteinCacheSize bounds the per-annotator translation cache.
const proteinCacheSize = 6

// translation is a cached reference protein with the exon sequences it was
// built from.
type translation struct {
	protein string
	exons   []string
}

// proteinCache maps transcript IDs to reference translations. It is cleared
// entirely when full and is not safe for concurrent use.
type proteinCache struct {
	entries map[string]translation
}

func newProteinCache() *proteinCache {
	return &proteinCache{entries: make(map[string]translation, proteinCacheSize)}
}

func (c *proteinCache) get(id string) (translation, bool) {
	tr, ok := c.entries[id]
	return tr, ok
}

func (c *proteinCache) put(id string, tr translation) {
	if len(c.entries) >= proteinCacheSize {
		clear(c.entries)
	}
	c.entries[id] = tr
}

func (c *proteinCache) len() int {
	return len(c.entries)
}

// exonSequences fetches the exons of t in transcript order, reverse
// complemented for reverse-strand transcripts.
func exonSequences(ref vcf.Sequencer, t *cache.Transcript) ([]string, bool) {
	exons := make([]string, len(t.Exons))
	for i, e := range t.Exons {
		seq, ok := ref.Sequence(t.Chrom, e.Start, e.End)
		if !ok || int64(len(seq)) != e.Len() {
			return nil, false
		}
		if t.Strand == -1 {
			seq = ReverseComplement(seq)
		}
		exons[i] = seq
	}
	return exons, true
}

// translateFromCDSStart translates the spliced exons from the start codon
// through the first stop codon, reading into the 3'UTR if needed.
func translateFromCDSStart(codons CodonTable, t *cache.Transcript, exons []string) string {
	from, _ := t.CodingRange()
	if from == 0 {
		return ""
	}
	cdna := strings.Join(exons, "")
	if int(from) > len(cdna) {
		return ""
	}
	return codons.Translate(cdna[from-1:])
}

// mutateExons returns a copy of exons with v applied. It returns false when
// the variant is not contained in a single exon.
func mutateExons(t *cache.Transcript, exons []string, v *vcf.Variant) ([]string, bool) {
	start, end := v.Footprint()
	idx := t.ExonIndex(start)
	if idx < 0 || idx != t.ExonIndex(end) || idx >= len(exons) {
		return nil, false
	}
	e := t.Exons[idx]
	seq := exons[idx]
	if int64(len(seq)) != e.Len() {
		return nil, false
	}

	var lo, hi int64 // replaced slice of seq
	alt := v.Alt
	if t.Strand == 1 {
		lo = v.Pos - e.Start
		hi = lo + int64(len(v.Ref))
	} else {
		alt = ReverseComplement(alt)
		if v.IsInsertion() {
			lo = e.End - (v.Pos - 1)
			hi = lo
		} else {
			lo = e.End - end
			hi = e.End - v.Pos + 1
		}
	}
	if lo < 0 || hi > int64(len(seq)) || lo > hi {
		return nil, false
	}

	mutated := make([]string, len(exons))
	copy(mutated, exons)
	mutated[idx] = seq[:lo] + alt + seq[hi:]
	return mutated, true
}
