package annotate

import (
	"fmt"

	"github.com/inodb/vibe-cava/internal/cache"
	"github.com/inodb/vibe-cava/internal/vcf"
)

// RegionKind is the transcript region category of a single genomic position.
type RegionKind uint8

const (
	RegionUnknown RegionKind = iota // no transcript lookup ("." in LOC)
	RegionOut                       // variant only partially overlaps the transcript
	RegionFivePrimeUTR
	RegionThreePrimeUTR
	RegionExonic
	RegionIntronic
	RegionUnresolved // inside the transcript span but neither exon nor intron
)

// Region locates one position: Exon is the exon number for coding exonic
// positions, the upstream exon number for intronic ones and zero otherwise.
type Region struct {
	Kind RegionKind
	Exon int
}

func (r Region) String() string {
	switch r.Kind {
	case RegionOut:
		return "OUT"
	case RegionFivePrimeUTR:
		return "5UTR"
	case RegionThreePrimeUTR:
		return "3UTR"
	case RegionExonic:
		return fmt.Sprintf("EX%d", r.Exon)
	case RegionIntronic:
		return fmt.Sprintf("IN%d/%d", r.Exon, r.Exon+1)
	case RegionUnresolved:
		return "XX"
	}
	return "."
}

// Location is the transcript-relative location of a variant: the regions of
// its first and last footprint positions in transcript order.
type Location struct {
	First Region
	Last  Region
}

var (
	// LocationUnknown is rendered "." and marks a missed transcript lookup.
	LocationUnknown = Location{}
	// LocationOut marks a transcript the variant only partially overlaps.
	LocationOut = Location{First: Region{Kind: RegionOut}, Last: Region{Kind: RegionOut}}
)

// IsSpan returns true when the footprint ends lie in different regions.
func (l Location) IsSpan() bool {
	return l.First != l.Last
}

// NonCoding returns true when the location rules out a protein change:
// UTRs, introns, region spans, OUT and unknown locations.
func (l Location) NonCoding() bool {
	if l.IsSpan() {
		return true
	}
	switch l.First.Kind {
	case RegionExonic, RegionUnresolved:
		return false
	}
	return true
}

func (l Location) String() string {
	if l.IsSpan() {
		return l.First.String() + "-" + l.Last.String()
	}
	return l.First.String()
}

// regionOf locates a single genomic position within t.
func regionOf(t *cache.Transcript, pos int64) Region {
	if idx := t.ExonIndex(pos); idx >= 0 {
		exon := t.Exons[idx].Number
		if !t.IsProteinCoding() {
			return Region{Kind: RegionExonic, Exon: exon}
		}
		c := t.CDNA(pos)
		from, to := t.CodingRange()
		switch {
		case c < from:
			return Region{Kind: RegionFivePrimeUTR}
		case c > to:
			return Region{Kind: RegionThreePrimeUTR}
		}
		return Region{Kind: RegionExonic, Exon: exon}
	}
	if idx := t.IntronIndex(pos); idx >= 0 {
		return Region{Kind: RegionIntronic, Exon: t.Exons[idx].Number}
	}
	return Region{Kind: RegionUnresolved}
}

// Locate returns the location of v within t, the two footprint regions
// ordered 5' to 3' along the transcript.
func Locate(t *cache.Transcript, v *vcf.Variant) Location {
	start, end := v.Footprint()
	a, b := regionOf(t, start), regionOf(t, end)
	if t.Precedes(end, start) {
		a, b = b, a
	}
	return Location{First: a, Last: b}
}
