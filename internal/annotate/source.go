package annotate

import "github.com/inodb/vibe-cava/internal/vcf"

// AnnotationSource adds per-variant flags from external data.
type AnnotationSource interface {
	Name() string         // e.g. "dbsnp"
	Columns() []ColumnDef // flags this source provides
	// Annotate sets the source's flags on ann for the normalized variant v.
	Annotate(v *vcf.Variant, ann *Annotation)
}

// ColumnDef describes a flag provided by an annotation source.
type ColumnDef struct {
	Name        string // flag name, e.g. "DBSNP"
	Description string // human-readable description
}

// CoreColumns describes the transcript flags produced by the annotator.
var CoreColumns = []ColumnDef{
	{Name: FlagTranscript, Description: "Transcript identifier"},
	{Name: FlagGene, Description: "HGNC gene symbol"},
	{Name: FlagGeneID, Description: "Gene identifier"},
	{Name: FlagTrInfo, Description: "Transcript information"},
	{Name: FlagLoc, Description: "Location of variant in transcript"},
	{Name: FlagCSN, Description: "CSN annotation"},
	{Name: FlagProtPos, Description: "Protein position"},
	{Name: FlagProtRef, Description: "Reference amino acids"},
	{Name: FlagProtAlt, Description: "Alternate amino acids"},
	{Name: FlagClass, Description: "Variant class"},
	{Name: FlagSO, Description: "Sequence Ontology term"},
	{Name: FlagImpact, Description: "Impact level of the variant class"},
	{Name: FlagAltAnn, Description: "Alternate CSN annotation"},
	{Name: FlagAltClass, Description: "Alternate variant class"},
	{Name: FlagAltSO, Description: "Alternate Sequence Ontology term"},
	{Name: FlagAltFlag, Description: "Differences between left and right aligned annotations"},
}
