package annotate

import (
	"strings"

	"github.com/inodb/vibe-cava/internal/vcf"
)

// Flag names.
const (
	FlagTranscript = "TRANSCRIPT"
	FlagGene       = "GENE"
	FlagGeneID     = "GENEID"
	FlagTrInfo     = "TRINFO"
	FlagLoc        = "LOC"
	FlagCSN        = "CSN"
	FlagProtPos    = "PROTPOS"
	FlagProtRef    = "PROTREF"
	FlagProtAlt    = "PROTALT"
	FlagClass      = "CLASS"
	FlagSO         = "SO"
	FlagImpact     = "IMPACT"
	FlagAltAnn     = "ALTANN"
	FlagAltClass   = "ALTCLASS"
	FlagAltSO      = "ALTSO"
	FlagAltFlag    = "ALTFLAG"
)

// ALTFLAG values.
const (
	AltFlagNone             = "None"
	AltFlagAnnAndClass      = "AnnAndClass"
	AltFlagAnnNotClass      = "AnnNotClass"
	AltFlagAnnAndSO         = "AnnAndSO"
	AltFlagAnnNotSO         = "AnnNotSO"
	AltFlagAnnAndClassAndSO = "AnnAndClassAndSO"
	AltFlagAnnAndClassNotSO = "AnnAndClassNotSO"
	AltFlagAnnAndSONotClass = "AnnAndSONotClass"
	AltFlagAnnNotClassNotSO = "AnnNotClassNotSO"
)

// placeholder marks a flag that does not apply to a transcript.
const placeholder = "."

// Row is the annotation of a variant against one transcript.
type Row struct {
	Transcript string
	Gene       string
	GeneID     string
	TrInfo     string
	Loc        string
	CSN        string
	ProtPos    string
	ProtRef    string
	ProtAlt    string
	Class      string
	SO         string
	Impact     string
	AltAnn     string
	AltClass   string
	AltSO      string
	AltFlag    string
}

// field returns the row value of a flag.
func (r *Row) field(flag string) string {
	switch flag {
	case FlagTranscript:
		return r.Transcript
	case FlagGene:
		return r.Gene
	case FlagGeneID:
		return r.GeneID
	case FlagTrInfo:
		return r.TrInfo
	case FlagLoc:
		return r.Loc
	case FlagCSN:
		return r.CSN
	case FlagProtPos:
		return r.ProtPos
	case FlagProtRef:
		return r.ProtRef
	case FlagProtAlt:
		return r.ProtAlt
	case FlagClass:
		return r.Class
	case FlagSO:
		return r.SO
	case FlagImpact:
		return r.Impact
	case FlagAltAnn:
		return r.AltAnn
	case FlagAltClass:
		return r.AltClass
	case FlagAltSO:
		return r.AltSO
	case FlagAltFlag:
		return r.AltFlag
	}
	return ""
}

// Annotation is the result of annotating one variant: one Row per
// contributing transcript, partial overlaps first, each group sorted by
// transcript ID. Every emitted flag joins one value per row, so all flag
// strings have the same number of ':'-separated segments.
type Annotation struct {
	Variant *vcf.Variant
	Rows    []Row
	flags   []string
	extra   map[string]string
}

// Flags returns the names of the emitted transcript flags in output order.
func (a *Annotation) Flags() []string {
	return a.flags
}

// Flag returns the ':'-joined value of an emitted flag. ok is false when
// the flag is not emitted under the annotator's options.
func (a *Annotation) Flag(name string) (value string, ok bool) {
	for _, f := range a.flags {
		if f == name {
			return a.Join(name), true
		}
	}
	return "", false
}

// Join returns the ':'-joined row values of a flag, whether or not it is
// emitted.
func (a *Annotation) Join(name string) string {
	var b strings.Builder
	for i := range a.Rows {
		if i > 0 {
			b.WriteByte(':')
		}
		b.WriteString(a.Rows[i].field(name))
	}
	return b.String()
}

// SetExtra sets a per-variant flag contributed by an annotation source.
func (a *Annotation) SetExtra(flag, value string) {
	if a.extra == nil {
		a.extra = make(map[string]string)
	}
	a.extra[flag] = value
}

// GetExtra returns a per-variant source flag.
func (a *Annotation) GetExtra(flag string) (string, bool) {
	v, ok := a.extra[flag]
	return v, ok
}

// emittedFlags lists the transcript flags produced under opts.
func emittedFlags(opts Options) []string {
	flags := []string{
		FlagTranscript, FlagGene, FlagGeneID, FlagTrInfo, FlagLoc, FlagCSN,
		FlagProtPos, FlagProtRef, FlagProtAlt,
	}
	if opts.Ontology.EmitClass {
		flags = append(flags, FlagClass)
	}
	if opts.Ontology.EmitSO {
		flags = append(flags, FlagSO)
	}
	if opts.Impact != nil {
		flags = append(flags, FlagImpact)
	}
	if opts.GiveAlt {
		flags = append(flags, FlagAltAnn)
		if opts.Ontology.EmitClass {
			flags = append(flags, FlagAltClass)
		}
		if opts.Ontology.EmitSO {
			flags = append(flags, FlagAltSO)
		}
	}
	if opts.emitAltFlag() {
		flags = append(flags, FlagAltFlag)
	}
	return flags
}

// altFlag summarizes how the two alignments disagree.
func altFlag(o Ontology, csnPlus, csnMinus, classPlus, classMinus, soPlus, soMinus string) string {
	annDiffers := csnPlus != csnMinus
	classDiffers := classPlus != classMinus
	soDiffers := soPlus != soMinus

	switch {
	case o.EmitClass && o.EmitSO:
		switch {
		case classDiffers && soDiffers:
			return AltFlagAnnAndClassAndSO
		case classDiffers:
			return AltFlagAnnAndClassNotSO
		case !annDiffers:
			return AltFlagNone
		case soDiffers:
			return AltFlagAnnAndSONotClass
		}
		return AltFlagAnnNotClassNotSO
	case o.EmitClass:
		switch {
		case classDiffers:
			return AltFlagAnnAndClass
		case annDiffers:
			return AltFlagAnnNotClass
		}
		return AltFlagNone
	case o.EmitSO:
		switch {
		case soDiffers:
			return AltFlagAnnAndSO
		case annDiffers:
			return AltFlagAnnNotSO
		}
		return AltFlagNone
	}
	return ""
}
