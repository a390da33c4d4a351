package dbsnp

import (
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/vibe-cava/internal/annotate"
	"github.com/inodb/vibe-cava/internal/vcf"
)

// FlagDBSNP is the flag set by Source.
const FlagDBSNP = "DBSNP"

// idSeparator joins the rsIDs of several matching records.
const idSeparator = ","

// Source wraps a dbSNP Store as an annotate.AnnotationSource.
type Source struct {
	store  *Store
	logger *zap.Logger
}

// NewSource creates an AnnotationSource backed by the given Store.
func NewSource(store *Store) *Source {
	return &Source{store: store, logger: zap.NewNop()}
}

// SetLogger sets the logger for lookup failures.
func (s *Source) SetLogger(l *zap.Logger) {
	s.logger = l
}

func (s *Source) Name() string { return "dbsnp" }

func (s *Source) Columns() []annotate.ColumnDef {
	return []annotate.ColumnDef{
		{Name: FlagDBSNP, Description: "rsIDs of matching dbSNP records, comma-separated when several match"},
	}
}

// Annotate sets DBSNP to the ids of matching records for substitutions.
// Other variants, unknown contigs and unmatched alleles get an empty flag.
func (s *Source) Annotate(v *vcf.Variant, ann *annotate.Annotation) {
	ann.SetExtra(FlagDBSNP, s.lookup(v))
}

func (s *Source) lookup(v *vcf.Variant) string {
	if !v.IsSubstitution() {
		return ""
	}
	chrom := v.Chrom
	if !s.store.HasContig(chrom) {
		chrom = "chr" + chrom
		if !s.store.HasContig(chrom) {
			return ""
		}
	}

	ids, err := s.store.Lookup(chrom, v.Pos, v.Alt)
	if err != nil {
		s.logger.Warn("dbsnp lookup failed",
			zap.String("chrom", chrom),
			zap.Int64("pos", v.Pos),
			zap.Error(err))
		return ""
	}
	return strings.Join(ids, idSeparator)
}

// Store returns the underlying dbSNP store.
func (s *Source) Store() *Store {
	return s.store
}
