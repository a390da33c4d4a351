package vcf

// VariantParser is the interface for sources of input variants, such as
// a *Parser over a VCF stream.
type VariantParser interface {
	// Next reads the next variant record, alleles as written.
	// Returns nil, nil when there are no more variants.
	Next() (*Variant, error)

	// Close closes the parser and releases resources.
	Close() error

	// LineNumber returns the current line number being processed.
	LineNumber() int
}

var _ VariantParser = (*Parser)(nil)
