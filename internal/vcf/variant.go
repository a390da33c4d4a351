// Package vcf provides VCF file parsing and the core variant model.
package vcf

import "strings"

// Kind classifies a normalized variant.
type Kind int

const (
	Substitution Kind = iota
	Insertion
	Deletion
	Complex
)

func (k Kind) String() string {
	switch k {
	case Substitution:
		return "substitution"
	case Insertion:
		return "insertion"
	case Deletion:
		return "deletion"
	default:
		return "complex"
	}
}

// Variant represents a single genomic variant.
//
// Records read from a VCF file keep the VCF representation (shared anchor
// base included). The annotation engine works on the normalized form
// returned by Normalize, where an insertion has an empty Ref and sits
// immediately before Pos.
type Variant struct {
	Chrom         string                 // Chromosome name (e.g., "12", "chr12")
	Pos           int64                  // 1-based genomic position
	ID            string                 // Variant identifier (e.g., rs ID)
	Ref           string                 // Reference allele
	Alt           string                 // Alternate allele (single allele after splitting)
	Qual          float64                // Quality score
	Filter        string                 // Filter status (PASS or filter name)
	Info          map[string]interface{} // INFO field key-value pairs
	SampleColumns string                 // FORMAT and sample columns, tab-joined
}

// NewVariant returns the normalized variant for the given alleles.
func NewVariant(chrom string, pos int64, ref, alt string) *Variant {
	v := &Variant{Chrom: chrom, Pos: pos, Ref: ref, Alt: alt}
	return v.Normalize()
}

// Normalize upper-cases the alleles and strips the bases shared by Ref and
// Alt, leading bases first (advancing Pos) and then trailing bases.
// Normalizing a normalized variant returns it unchanged.
func (v *Variant) Normalize() *Variant {
	ref := strings.ToUpper(v.Ref)
	alt := strings.ToUpper(v.Alt)
	pos := v.Pos

	for len(ref) > 0 && len(alt) > 0 && ref[0] == alt[0] {
		ref, alt = ref[1:], alt[1:]
		pos++
	}
	for len(ref) > 0 && len(alt) > 0 && ref[len(ref)-1] == alt[len(alt)-1] {
		ref, alt = ref[:len(ref)-1], alt[:len(alt)-1]
	}

	if pos == v.Pos && ref == v.Ref && alt == v.Alt {
		return v
	}
	n := *v
	n.Pos, n.Ref, n.Alt = pos, ref, alt
	return &n
}

// Kind classifies a normalized variant from its allele lengths and content.
func (v *Variant) Kind() Kind {
	switch {
	case len(v.Ref) == 1 && len(v.Alt) == 1 && isBase(v.Ref[0]) && isBase(v.Alt[0]):
		return Substitution
	case v.Ref == "" && v.Alt != "":
		return Insertion
	case v.Alt == "" && v.Ref != "":
		return Deletion
	default:
		return Complex
	}
}

// IsSubstitution returns true for a single-base substitution.
func (v *Variant) IsSubstitution() bool { return v.Kind() == Substitution }

// IsInsertion returns true if bases are inserted without consuming reference.
func (v *Variant) IsInsertion() bool { return v.Kind() == Insertion }

// IsDeletion returns true if reference bases are removed without replacement.
func (v *Variant) IsDeletion() bool { return v.Kind() == Deletion }

// IsComplex returns true for multi-base substitutions and delins events.
func (v *Variant) IsComplex() bool { return v.Kind() == Complex }

// IsSymbolic returns true for alleles the engine cannot place on the
// reference: missing ("." or "*") and symbolic ("<DEL>", breakends).
func (v *Variant) IsSymbolic() bool {
	switch v.Alt {
	case ".", "*":
		return true
	}
	return strings.ContainsAny(v.Alt, "<>[]") || v.Ref == "" && v.Alt == ""
}

// Footprint returns the genomic positions bounding the variant. For an
// insertion these are the two bases either side of the insertion point.
func (v *Variant) Footprint() (start, end int64) {
	if v.IsInsertion() {
		return v.Pos - 1, v.Pos
	}
	return v.Pos, v.Pos + int64(len(v.Ref)) - 1
}

func isBase(b byte) bool {
	switch b {
	case 'A', 'C', 'G', 'T', 'N':
		return true
	}
	return false
}
