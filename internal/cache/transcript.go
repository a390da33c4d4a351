// Package cache provides transcript database parsing and indexing.
package cache

import (
	"fmt"
	"strconv"
	"strings"
)

// minRecordFields is the column count of a record with a single exon.
const minRecordFields = 13

// Transcript represents a specific gene isoform parsed from one database record.
//
// All coordinates are 1-based and inclusive. Exons are held in transcript
// order (exon 1 first), so they ascend for forward-strand transcripts and
// descend for reverse-strand transcripts.
type Transcript struct {
	ID          string // Transcript ID (e.g., ENST00000311936)
	GeneSymbol  string // Parent gene symbol
	GeneID      string // Parent gene ID
	Info        string // Free-text TRINFO descriptor
	Chrom       string // Chromosome
	Strand      int8   // +1 or -1
	Start       int64  // Transcript start
	End         int64  // Transcript end
	CodingStart int64  // cDNA offset of the coding start as recorded
	CDSStart    int64  // Genomic position of the first base of the start codon, 0 if non-coding
	CDSEnd      int64  // Genomic position of the last base of the stop codon, 0 if non-coding
	Exons       []Exon // Exons in transcript order

	cdsFrom int64 // cDNA position of CDSStart
	cdsTo   int64 // cDNA position of CDSEnd
}

// Exon represents a single exon within a transcript.
type Exon struct {
	Number int   // Exon number in transcript order (1-based)
	Start  int64 // Genomic start
	End    int64 // Genomic end
}

// Len returns the exon length in bases.
func (e Exon) Len() int64 {
	return e.End - e.Start + 1
}

// RecordError reports a malformed transcript database record.
type RecordError struct {
	Line    int
	Message string
}

func (e *RecordError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("transcript record error at line %d: %s", e.Line, e.Message)
	}
	return "transcript record error: " + e.Message
}

// ParseTranscript parses one tab-separated transcript database record.
//
// Columns: id, gene symbol, gene id, TRINFO, chrom, strand (1|-1),
// transcript start (0-based), transcript end, coding start (cDNA), coding
// start genomic, coding end genomic, then exon start (0-based) and end pairs
// in transcript order.
func ParseTranscript(line string) (*Transcript, error) {
	fields := strings.Split(strings.TrimRight(line, "\r\n"), "\t")
	if len(fields) < minRecordFields || (len(fields)-11)%2 != 0 {
		return nil, &RecordError{Message: fmt.Sprintf("expected 11 columns plus exon pairs, found %d", len(fields))}
	}

	t := &Transcript{
		ID:         fields[0],
		GeneSymbol: fields[1],
		GeneID:     fields[2],
		Info:       fields[3],
		Chrom:      fields[4],
	}

	switch fields[5] {
	case "1", "+1", "+":
		t.Strand = 1
	case "-1", "-":
		t.Strand = -1
	default:
		return nil, &RecordError{Message: fmt.Sprintf("%s: invalid strand %q", t.ID, fields[5])}
	}

	ints := make([]int64, len(fields)-6)
	for i, f := range fields[6:] {
		if f == "" || f == "." {
			continue
		}
		n, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil, &RecordError{Message: fmt.Sprintf("%s: invalid coordinate %q in column %d", t.ID, f, i+7)}
		}
		ints[i] = n
	}

	t.Start = ints[0] + 1
	t.End = ints[1]
	t.CodingStart = ints[2]
	t.CDSStart = ints[3]
	t.CDSEnd = ints[4]
	if t.Start > t.End {
		return nil, &RecordError{Message: fmt.Sprintf("%s: transcript start %d after end %d", t.ID, t.Start, t.End)}
	}

	for i := 5; i+1 < len(ints); i += 2 {
		e := Exon{Number: len(t.Exons) + 1, Start: ints[i] + 1, End: ints[i+1]}
		if e.Start > e.End {
			return nil, &RecordError{Message: fmt.Sprintf("%s: exon %d start %d after end %d", t.ID, e.Number, e.Start, e.End)}
		}
		if n := len(t.Exons); n > 0 {
			prev := t.Exons[n-1]
			if (t.Strand == 1 && e.Start <= prev.End) || (t.Strand == -1 && e.End >= prev.Start) {
				return nil, &RecordError{Message: fmt.Sprintf("%s: exon %d out of transcript order", t.ID, e.Number)}
			}
		}
		t.Exons = append(t.Exons, e)
	}

	if t.CDSStart > 0 && t.CDSEnd > 0 {
		t.cdsFrom = t.CDNA(t.CDSStart)
		t.cdsTo = t.CDNA(t.CDSEnd)
	}
	if t.cdsFrom == 0 || t.cdsTo == 0 || t.cdsFrom > t.cdsTo {
		t.CDSStart, t.CDSEnd, t.cdsFrom, t.cdsTo = 0, 0, 0, 0
	}

	return t, nil
}

// IsProteinCoding returns true if the transcript has a coding sequence.
func (t *Transcript) IsProteinCoding() bool {
	return t.cdsFrom > 0
}

// Contains returns true if the given position is within the transcript boundaries.
func (t *Transcript) Contains(pos int64) bool {
	return pos >= t.Start && pos <= t.End
}

// CodingRange returns the cDNA positions of the first base of the start
// codon and the last base of the stop codon, or zeros if non-coding.
func (t *Transcript) CodingRange() (from, to int64) {
	return t.cdsFrom, t.cdsTo
}

// Precedes reports whether genomic position a comes before b in transcript order.
func (t *Transcript) Precedes(a, b int64) bool {
	if t.Strand == 1 {
		return a < b
	}
	return a > b
}

// ExonIndex returns the index into Exons of the exon containing pos, or -1.
// Uses binary search over the transcript-ordered exons.
func (t *Transcript) ExonIndex(pos int64) int {
	lo, hi := 0, len(t.Exons)-1
	for lo <= hi {
		mid := lo + (hi-lo)/2
		e := &t.Exons[mid]
		if pos >= e.Start && pos <= e.End {
			return mid
		}
		if t.Strand == 1 {
			if pos < e.Start {
				hi = mid - 1
			} else {
				lo = mid + 1
			}
		} else {
			// Descending: higher Start values come first
			if pos > e.End {
				hi = mid - 1
			} else {
				lo = mid + 1
			}
		}
	}
	return -1
}

// IntronIndex returns i when pos lies in the intron between Exons[i] and
// Exons[i+1], or -1.
func (t *Transcript) IntronIndex(pos int64) int {
	for i := 0; i+1 < len(t.Exons); i++ {
		a, b := t.Exons[i], t.Exons[i+1]
		if t.Strand == 1 && pos > a.End && pos < b.Start {
			return i
		}
		if t.Strand == -1 && pos < a.Start && pos > b.End {
			return i
		}
	}
	return -1
}

// FirstBase returns the genomic position of the first exon base in transcript order.
func (e Exon) FirstBase(strand int8) int64 {
	if strand == 1 {
		return e.Start
	}
	return e.End
}

// LastBase returns the genomic position of the last exon base in transcript order.
func (e Exon) LastBase(strand int8) int64 {
	if strand == 1 {
		return e.End
	}
	return e.Start
}

// CDNA returns the 1-based cDNA position of an exonic genomic position, or 0
// if pos is not exonic.
func (t *Transcript) CDNA(pos int64) int64 {
	idx := t.ExonIndex(pos)
	if idx < 0 {
		return 0
	}
	var offset int64
	for _, e := range t.Exons[:idx] {
		offset += e.Len()
	}
	e := t.Exons[idx]
	if t.Strand == 1 {
		return offset + pos - e.Start + 1
	}
	return offset + e.End - pos + 1
}
