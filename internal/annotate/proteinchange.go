package annotate

import (
	"strconv"
	"strings"
)

// changeKind classifies the difference between a reference and mutant protein.
type changeKind uint8

const (
	changeSynonymous changeKind = iota
	changeStartLost
	changeFrameshift
	changeStopLost
	changeStopGained
	changeMissense
	changeDeletion
	changeInsertion
	changeDuplication
	changeDelins
	changeUnknown
)

// proteinDiff describes a protein change. Positions are 1-based residues of
// the reference protein.
type proteinDiff struct {
	kind  changeKind
	start int    // first affected residue
	end   int    // last affected residue
	ref   string // affected reference residues
	alt   string // replacing residues
	ext   int    // stop-lost extension length, 0 when no new stop is reached
}

// ProteinChange is the PROTPOS/PROTREF/PROTALT triple.
type ProteinChange struct {
	Pos string
	Ref string
	Alt string
}

// noProteinChange is the placeholder triple.
var noProteinChange = ProteinChange{Pos: ".", Ref: ".", Alt: "."}

// compareProteins derives the change from ref to mut. codon is the 1-based
// codon holding the variant, used to report synonymous changes.
func compareProteins(ref, mut string, frameshift bool, codon int) proteinDiff {
	if ref == mut {
		k := min(max(codon, 1), len(ref))
		return proteinDiff{kind: changeSynonymous, start: k, end: k, ref: ref[k-1 : k], alt: ref[k-1 : k]}
	}

	i := 0
	for i < len(ref) && i < len(mut) && ref[i] == mut[i] {
		i++
	}
	if i >= len(ref) {
		// Reference lacks a stop codon and the mutant reads further.
		return proteinDiff{kind: changeUnknown}
	}
	at := func(s string, j int) string {
		if j < len(s) {
			return s[j : j+1]
		}
		return ""
	}

	switch {
	case i == 0:
		return proteinDiff{kind: changeStartLost, start: 1, end: 1, ref: ref[:1], alt: "?"}
	case frameshift:
		return proteinDiff{kind: changeFrameshift, start: i + 1, end: i + 1, ref: ref[i : i+1], alt: "fs"}
	case ref[i] == '*':
		d := proteinDiff{kind: changeStopLost, start: i + 1, end: i + 1, ref: "*", alt: at(mut, i)}
		if n := strings.IndexByte(mut[min(i+1, len(mut)):], '*'); n >= 0 {
			d.ext = n + 1
		}
		return d
	case i < len(mut) && mut[i] == '*':
		return proteinDiff{kind: changeStopGained, start: i + 1, end: i + 1, ref: ref[i : i+1], alt: "*"}
	}

	// Trim the shared suffix without crossing the shared prefix.
	pe, me := len(ref), len(mut)
	for pe > i && me > i && ref[pe-1] == mut[me-1] {
		pe--
		me--
	}
	dp, dm := ref[i:pe], mut[i:me]

	switch {
	case len(dp) == 1 && len(dm) == 1:
		return proteinDiff{kind: changeMissense, start: i + 1, end: i + 1, ref: dp, alt: dm}
	case len(dm) == 0:
		return proteinDiff{kind: changeDeletion, start: i + 1, end: pe, ref: dp}
	case len(dp) == 0:
		n := len(dm)
		if i >= n && ref[i-n:i] == dm {
			return proteinDiff{kind: changeDuplication, start: i - n + 1, end: i, alt: dm}
		}
		return proteinDiff{kind: changeInsertion, start: i, end: i + 1, alt: dm}
	}
	return proteinDiff{kind: changeDelins, start: i + 1, end: pe, ref: dp, alt: dm}
}

// hgvs renders the protein part of a CSN description without the "p."
// prefix, using three-letter residue codes.
func (d proteinDiff) hgvs(ref string) string {
	res := func(pos int) string { return threeLetter(ref[pos-1:pos]) + strconv.Itoa(pos) }
	span := func() string {
		if d.start == d.end {
			return res(d.start)
		}
		return res(d.start) + "_" + res(d.end)
	}

	switch d.kind {
	case changeSynonymous:
		return "="
	case changeStartLost:
		return res(1) + "?"
	case changeFrameshift:
		return res(d.start) + "fs"
	case changeStopLost:
		ext := "?"
		if d.ext > 0 {
			ext = strconv.Itoa(d.ext)
		}
		return res(d.start) + threeLetter(d.alt) + "ext*" + ext
	case changeStopGained:
		return res(d.start) + "*"
	case changeMissense:
		return res(d.start) + threeLetter(d.alt)
	case changeDeletion:
		return span() + "del"
	case changeDuplication:
		return span() + "dup"
	case changeInsertion:
		return res(d.start) + "_" + res(d.end) + "ins" + threeLetter(d.alt)
	case changeDelins:
		return span() + "delins" + threeLetter(d.alt)
	}
	return "?"
}

// triple renders the PROTPOS/PROTREF/PROTALT values.
func (d proteinDiff) triple() ProteinChange {
	if d.kind == changeUnknown {
		return noProteinChange
	}
	pos := strconv.Itoa(d.start)
	if d.end != d.start {
		pos += "-" + strconv.Itoa(d.end)
	}
	pc := ProteinChange{Pos: pos, Ref: d.ref, Alt: d.alt}
	switch d.kind {
	case changeInsertion, changeDuplication:
		pc.Ref = "-"
	case changeDeletion:
		pc.Alt = "-"
	}
	if pc.Alt == "" {
		pc.Alt = "-"
	}
	return pc
}
