package annotate

import (
	"strconv"
	"strings"
)

// intronOffset parses the signed intronic offset of a CSN coordinate such as
// "123+5", "123-8" or "*40+2". The first '-' past the leading character wins,
// then the first '+'; a 5'UTR coordinate like "-12-3" only yields an offset
// with '+'. ok is false when the coordinate is exonic or malformed.
func intronOffset(coord string) (int, bool) {
	idx := strings.IndexByte(coord, '-')
	if idx < 1 {
		idx = strings.IndexByte(coord, '+')
	}
	if idx < 1 {
		return 0, false
	}
	n, err := strconv.Atoi(coord[idx:])
	if err != nil {
		return 0, false
	}
	return n, true
}

func between(x, y, a int) bool {
	return (x <= a && a <= y) || (y <= a && a <= x)
}

// IsDupOverlappingSSBoundary reports whether csn describes a duplication
// whose intronic offsets reach the splice-region boundary at ±ssRange.
// Descriptions that are not intronic duplications yield false.
func IsDupOverlappingSSBoundary(csn string, ssRange int) bool {
	cpart, _, _ := strings.Cut(csn, "_p")
	idx := strings.Index(cpart, "dup")
	if idx < 2 {
		return false
	}
	coords := cpart[2:idx]

	x, y, isRange := strings.Cut(coords, "_")
	if !isRange {
		off, ok := intronOffset(coords)
		return ok && (off == ssRange || off == -ssRange)
	}

	xo, ok1 := intronOffset(x)
	yo, ok2 := intronOffset(y)
	if !ok1 || !ok2 {
		return false
	}
	return between(xo, yo, ssRange) || between(xo, yo, -ssRange)
}

// CorrectClasses collapses an SS/INT disagreement between the two alignments
// to INT/INT when csn is a duplication straddling the splice-region boundary.
func CorrectClasses(csn, classPlus, classMinus string, ssRange int) (string, string) {
	if IsDupOverlappingSSBoundary(csn, ssRange) {
		if (classPlus == ClassSpliceSite && classMinus == ClassIntronic) ||
			(classPlus == ClassIntronic && classMinus == ClassSpliceSite) {
			return ClassIntronic, ClassIntronic
		}
	}
	return classPlus, classMinus
}

// intronSpliceRegion is the SO term pair of an intronic splice-region base.
var intronSpliceRegion = SOIntron + soTermSeparator + SOSpliceRegion

// CorrectSOs is the Sequence Ontology counterpart of CorrectClasses. The SO
// splice region is fixed, so the default range is always used.
func CorrectSOs(csn, soPlus, soMinus string) (string, string) {
	if IsDupOverlappingSSBoundary(csn, DefaultSSRange) {
		if (soPlus == intronSpliceRegion && soMinus == SOIntron) ||
			(soPlus == SOIntron && soMinus == intronSpliceRegion) {
			return SOIntron, SOIntron
		}
	}
	return soPlus, soMinus
}
