// Package genome provides reference sequence access.
package genome

import (
	"strings"

	"go.uber.org/zap"
)

// Store is a random-access reference sequence store.
type Store interface {
	// References returns the contig names held by the store.
	References() []string
	// Fetch returns the bases of chrom in the 0-based half-open range [start, end).
	Fetch(chrom string, start, end int64) (string, error)
	// Length returns the contig length, or false if chrom is unknown.
	Length(chrom string) (int64, bool)
}

// Reference resolves contig names against a Store and serves upper-cased,
// clamped 1-based sequence requests. A Reference is safe for concurrent use
// when its Store is.
type Reference struct {
	store  Store
	logger *zap.Logger
}

// NewReference wraps a Store.
func NewReference(store Store) *Reference {
	return &Reference{store: store, logger: zap.NewNop()}
}

// SetLogger sets the logger used for lookup misses.
func (r *Reference) SetLogger(l *zap.Logger) {
	r.logger = l
}

// Resolve maps chrom onto a contig of the store: as given, then with a "chr"
// prefix added or removed, then MT as chrM.
func (r *Reference) Resolve(chrom string) (string, bool) {
	if _, ok := r.store.Length(chrom); ok {
		return chrom, true
	}
	if _, ok := r.store.Length("chr" + chrom); ok {
		return "chr" + chrom, true
	}
	if bare, found := strings.CutPrefix(chrom, "chr"); found {
		if _, ok := r.store.Length(bare); ok {
			return bare, true
		}
	}
	if chrom == "MT" {
		if _, ok := r.store.Length("chrM"); ok {
			return "chrM", true
		}
	}
	return "", false
}

// Sequence returns the upper-cased bases of chrom between start and end
// (1-based, inclusive). The range is clamped to the contig; an empty range
// yields "". ok is false when the contig cannot be resolved or read.
func (r *Reference) Sequence(chrom string, start, end int64) (string, bool) {
	contig, ok := r.Resolve(chrom)
	if !ok {
		r.logger.Debug("reference contig not found", zap.String("chrom", chrom))
		return "", false
	}
	if end < start {
		return "", true
	}
	if start < 1 {
		start = 1
	}
	if last, _ := r.store.Length(contig); end > last {
		end = last
	}
	if end < start {
		return "", true
	}

	seq, err := r.store.Fetch(contig, start-1, end)
	if err != nil {
		r.logger.Debug("reference fetch failed",
			zap.String("chrom", contig),
			zap.Int64("start", start),
			zap.Int64("end", end),
			zap.Error(err))
		return "", false
	}
	return strings.ToUpper(seq), true
}
