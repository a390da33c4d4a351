package annotate

import (
	"strings"

	"github.com/inodb/vibe-cava/internal/cache"
	"github.com/inodb/vibe-cava/internal/vcf"
)

// CLASS codes.
const (
	ClassFrameshift       = "FS"
	ClassStopGained       = "SG"
	ClassEssentialSplice  = "ESS"
	ClassStopLost         = "SL"
	ClassStartLost        = "IM"
	ClassExonEnd          = "EE"
	ClassInframe          = "IF"
	ClassNonSynonymous    = "NSY"
	ClassSpliceSite5      = "SS5"
	ClassSpliceSite       = "SS"
	ClassSynonymous       = "SY"
	ClassFivePrimeUTR     = "5PU"
	ClassThreePrimeUTR    = "3PU"
	ClassIntronic         = "INT"
	classNotApplicable    = "."
	soSpliceRegionMaxBase = 8
)

// classPrecedence orders CLASS codes from most to least severe.
var classPrecedence = []string{
	ClassFrameshift, ClassStopGained, ClassEssentialSplice, ClassStopLost,
	ClassStartLost, ClassExonEnd, ClassInframe, ClassNonSynonymous,
	ClassSpliceSite5, ClassSpliceSite, ClassSynonymous, ClassFivePrimeUTR,
	ClassThreePrimeUTR, ClassIntronic,
}

// Sequence Ontology terms, in the order they are joined.
const (
	SOFrameshift        = "frameshift_variant"
	SOStopGained        = "stop_gained"
	SOStopLost          = "stop_lost"
	SOStartLost         = "start_lost"
	SOInframeInsertion  = "inframe_insertion"
	SOInframeDeletion   = "inframe_deletion"
	SOProteinAltering   = "protein_altering_variant"
	SOMissense          = "missense_variant"
	SOStopRetained      = "stop_retained_variant"
	SOSynonymous        = "synonymous_variant"
	SONonCodingExon     = "non_coding_transcript_exon_variant"
	SOFivePrimeUTR      = "5_prime_UTR_variant"
	SOThreePrimeUTR     = "3_prime_UTR_variant"
	SOIntron            = "intron_variant"
	SOSpliceDonor       = "splice_donor_variant"
	SOSpliceAcceptor    = "splice_acceptor_variant"
	SOSpliceDonor5th    = "splice_donor_5th_base_variant"
	SOSpliceRegion      = "splice_region_variant"
	soTermSeparator     = "|"
	exonicSpliceRegion  = 3
	essentialSpliceBase = 2
)

var soOrder = []string{
	SOFrameshift, SOStopGained, SOStopLost, SOStartLost, SOInframeInsertion,
	SOInframeDeletion, SOProteinAltering, SOMissense, SOStopRetained,
	SOSynonymous, SONonCodingExon, SOFivePrimeUTR, SOThreePrimeUTR, SOIntron,
	SOSpliceDonor, SOSpliceAcceptor, SOSpliceDonor5th, SOSpliceRegion,
}

// intronHit describes the intronic bases a variant covers in one intron.
// Offsets are counted from the donor side: base +1 follows the upstream exon.
type intronHit struct {
	minOffset, maxOffset int64
	length               int64 // intron length
}

// covers reports whether any covered donor offset lies in [lo, hi].
func (h intronHit) covers(lo, hi int64) bool {
	return h.minOffset <= hi && h.maxOffset >= lo && lo <= hi
}

// coversDonor reports whether donor offsets +lo..+hi are covered.
func (h intronHit) coversDonor(lo, hi int64) bool {
	return h.covers(lo, hi)
}

// coversAcceptor reports whether acceptor offsets -lo..-hi are covered.
func (h intronHit) coversAcceptor(lo, hi int64) bool {
	return h.covers(h.length+1-hi, h.length+1-lo)
}

// exonHit describes the exonic bases a variant covers in one exon.
type exonHit struct {
	index          int   // index into Transcript.Exons
	cdnaLo, cdnaHi int64 // covered cDNA range
	firstOffset    int64 // distance in bases of the covered range from the exon's first base
	lastOffset     int64 // distance in bases of the covered range from the exon's last base
}

// footprintHits intersects the variant footprint with the exons and introns of t.
func footprintHits(t *cache.Transcript, v *vcf.Variant) ([]exonHit, []intronHit) {
	lo, hi := v.Footprint()
	var exons []exonHit
	var introns []intronHit

	for i, e := range t.Exons {
		a, b := max(lo, e.Start), min(hi, e.End)
		if a <= b {
			c1, c2 := t.CDNA(a), t.CDNA(b)
			if c1 > c2 {
				c1, c2 = c2, c1
			}
			first, last := e.FirstBase(t.Strand), e.LastBase(t.Strand)
			exons = append(exons, exonHit{
				index:       i,
				cdnaLo:      c1,
				cdnaHi:      c2,
				firstOffset: min(abs64(a-first), abs64(b-first)),
				lastOffset:  min(abs64(a-last), abs64(b-last)),
			})
		}
		if i+1 == len(t.Exons) {
			continue
		}

		donor := e.LastBase(t.Strand)
		acceptor := t.Exons[i+1].FirstBase(t.Strand)
		il, ih := min(donor, acceptor)+1, max(donor, acceptor)-1
		a, b = max(lo, il), min(hi, ih)
		if a > b {
			continue
		}
		o1, o2 := abs64(a-donor), abs64(b-donor)
		introns = append(introns, intronHit{
			minOffset: min(o1, o2),
			maxOffset: max(o1, o2),
			length:    ih - il + 1,
		})
	}
	return exons, introns
}

// coversStartCodon reports whether a deletion or complex variant removes
// part of the start codon.
func coversStartCodon(t *cache.Transcript, v *vcf.Variant, exons []exonHit) bool {
	if v.IsInsertion() || !t.IsProteinCoding() {
		return false
	}
	from, _ := t.CodingRange()
	for _, h := range exons {
		if h.cdnaLo <= from+2 && h.cdnaHi >= from {
			return true
		}
	}
	return false
}

// coversStopCodon reports whether a deletion or complex variant removes
// part of the stop codon.
func coversStopCodon(t *cache.Transcript, v *vcf.Variant, exons []exonHit) bool {
	if v.IsInsertion() || !t.IsProteinCoding() {
		return false
	}
	_, to := t.CodingRange()
	for _, h := range exons {
		if h.cdnaLo <= to && h.cdnaHi >= to-2 {
			return true
		}
	}
	return false
}

// ClassAnnotation derives the CLASS code of one alignment of v on t.
func ClassAnnotation(t *cache.Transcript, v *vcf.Variant, eff effect, ssRange int) string {
	if eff.loc.First.Kind == RegionOut || eff.loc.First.Kind == RegionUnknown {
		return classNotApplicable
	}

	found := make(map[string]bool)
	exons, introns := footprintHits(t, v)
	from, to := t.CodingRange()
	ss := int64(ssRange)

	for _, h := range introns {
		found[ClassIntronic] = true
		if h.coversDonor(1, essentialSpliceBase) || h.coversAcceptor(1, essentialSpliceBase) {
			found[ClassEssentialSplice] = true
		}
		if h.coversDonor(5, 5) {
			found[ClassSpliceSite5] = true
		}
		if h.coversDonor(essentialSpliceBase+1, ss) || h.coversAcceptor(essentialSpliceBase+1, ss) {
			found[ClassSpliceSite] = true
		}
	}

	for _, h := range exons {
		if !t.IsProteinCoding() {
			continue
		}
		if h.cdnaLo < from {
			found[ClassFivePrimeUTR] = true
		}
		if h.cdnaHi > to {
			found[ClassThreePrimeUTR] = true
		}
		if h.index+1 < len(t.Exons) && h.lastOffset == 0 && h.cdnaHi >= from && h.cdnaLo <= to {
			found[ClassExonEnd] = true
		}
	}

	if eff.diff != nil {
		switch eff.diff.kind {
		case changeFrameshift:
			found[ClassFrameshift] = true
		case changeStopGained:
			found[ClassStopGained] = true
		case changeStopLost:
			found[ClassStopLost] = true
		case changeStartLost:
			found[ClassStartLost] = true
		case changeMissense:
			found[ClassNonSynonymous] = true
		case changeDeletion, changeInsertion, changeDuplication:
			found[ClassInframe] = true
		case changeDelins:
			if len(eff.diff.ref) == len(eff.diff.alt) {
				found[ClassNonSynonymous] = true
			} else {
				found[ClassInframe] = true
			}
		case changeSynonymous:
			found[ClassSynonymous] = true
		}
	} else if eff.loc.NonCoding() {
		if coversStartCodon(t, v, exons) {
			found[ClassStartLost] = true
		}
		if coversStopCodon(t, v, exons) {
			found[ClassStopLost] = true
		}
	}

	for _, c := range classPrecedence {
		if found[c] {
			return c
		}
	}
	return classNotApplicable
}

// SOAnnotation derives the '|'-joined Sequence Ontology terms of one
// alignment of v on t. Splice regions use the fixed 3..8 intronic window.
func SOAnnotation(t *cache.Transcript, v *vcf.Variant, eff effect) string {
	if eff.loc.First.Kind == RegionOut || eff.loc.First.Kind == RegionUnknown {
		return classNotApplicable
	}

	found := make(map[string]bool)
	exons, introns := footprintHits(t, v)
	from, to := t.CodingRange()

	for _, h := range introns {
		if h.coversDonor(1, essentialSpliceBase) {
			found[SOSpliceDonor] = true
		}
		if h.coversAcceptor(1, essentialSpliceBase) {
			found[SOSpliceAcceptor] = true
		}
		// Bases outside both essential windows.
		if h.covers(essentialSpliceBase+1, h.length-essentialSpliceBase) {
			found[SOIntron] = true
		}
		if h.coversDonor(5, 5) {
			found[SOSpliceDonor5th] = true
		}
		if h.coversDonor(essentialSpliceBase+1, soSpliceRegionMaxBase) ||
			h.coversAcceptor(essentialSpliceBase+1, soSpliceRegionMaxBase) {
			found[SOSpliceRegion] = true
		}
	}

	for _, h := range exons {
		if h.index+1 < len(t.Exons) && h.lastOffset < exonicSpliceRegion {
			found[SOSpliceRegion] = true
		}
		if h.index > 0 && h.firstOffset < exonicSpliceRegion {
			found[SOSpliceRegion] = true
		}
		if !t.IsProteinCoding() {
			found[SONonCodingExon] = true
			continue
		}
		if h.cdnaLo < from {
			found[SOFivePrimeUTR] = true
		}
		if h.cdnaHi > to {
			found[SOThreePrimeUTR] = true
		}
	}

	if d := eff.diff; d != nil {
		switch d.kind {
		case changeFrameshift:
			found[SOFrameshift] = true
		case changeStopGained:
			found[SOStopGained] = true
		case changeStopLost:
			found[SOStopLost] = true
		case changeStartLost:
			found[SOStartLost] = true
		case changeMissense:
			found[SOMissense] = true
		case changeDeletion:
			found[SOInframeDeletion] = true
		case changeInsertion, changeDuplication:
			found[SOInframeInsertion] = true
		case changeDelins:
			if len(d.ref) == 1 && len(d.alt) == 1 {
				found[SOMissense] = true
			} else {
				found[SOProteinAltering] = true
			}
		case changeSynonymous:
			if d.ref == "*" {
				found[SOStopRetained] = true
			} else {
				found[SOSynonymous] = true
			}
		}
	} else if eff.loc.NonCoding() {
		if coversStartCodon(t, v, exons) {
			found[SOStartLost] = true
		}
		if coversStopCodon(t, v, exons) {
			found[SOStopLost] = true
		}
	}

	var terms []string
	for _, term := range soOrder {
		if found[term] {
			terms = append(terms, term)
		}
	}
	if len(terms) == 0 {
		return classNotApplicable
	}
	return strings.Join(terms, soTermSeparator)
}

// Impact maps a CLASS code to its impact level: "None" for unlisted codes.
func (m ImpactMap) Impact(class string) string {
	if level, ok := m[class]; ok {
		return level
	}
	return "None"
}
