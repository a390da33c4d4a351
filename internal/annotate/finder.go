package annotate

import (
	"go.uber.org/zap"

	"github.com/inodb/vibe-cava/internal/cache"
	"github.com/inodb/vibe-cava/internal/vcf"
)

// TranscriptIndex is a positional index of raw transcript records.
type TranscriptIndex interface {
	HasContig(chrom string) bool
	// Fetch returns the raw records on chrom overlapping [start, end] (1-based).
	Fetch(chrom string, start, end int64) ([]string, error)
}

// Finder finds the transcripts a variant falls in.
type Finder struct {
	index       TranscriptIndex
	genes       cache.IDList
	transcripts cache.IDList
	logger      *zap.Logger
}

// NewFinder creates a finder over index with optional gene and transcript
// allow-lists.
func NewFinder(index TranscriptIndex, genes, transcripts cache.IDList) *Finder {
	return &Finder{index: index, genes: genes, transcripts: transcripts, logger: zap.NewNop()}
}

// SetLogger sets the logger for lookup misses and malformed records.
func (f *Finder) SetLogger(l *zap.Logger) {
	f.logger = l
}

// resolveContig tries chrom as given, then with a "chr" prefix.
func (f *Finder) resolveContig(chrom string) (string, bool) {
	if f.index.HasContig(chrom) {
		return chrom, true
	}
	if f.index.HasContig("chr" + chrom) {
		return "chr" + chrom, true
	}
	return "", false
}

// FindTranscripts returns the transcripts whose span contains both ends of
// the variant footprint (inRange) and, for deletions and complex variants,
// those containing only one end (partial). Substitutions have no partial
// overlaps and insertions never record them. Transcripts outside the
// allow-lists are dropped. An unknown chromosome yields two empty maps.
func (f *Finder) FindTranscripts(v *vcf.Variant) (inRange, partial map[string]*cache.Transcript) {
	inRange = make(map[string]*cache.Transcript)
	partial = make(map[string]*cache.Transcript)

	contig, ok := f.resolveContig(v.Chrom)
	if !ok {
		f.logger.Debug("chromosome not in transcript index", zap.String("chrom", v.Chrom))
		return inRange, partial
	}

	start, end := v.Footprint()

	if v.IsSubstitution() {
		for _, t := range f.hits(contig, end) {
			inRange[t.ID] = t
		}
		return inRange, partial
	}

	atStart := make(map[string]*cache.Transcript)
	for _, t := range f.hits(contig, start) {
		atStart[t.ID] = t
	}
	atEnd := make(map[string]*cache.Transcript)
	for _, t := range f.hits(contig, end) {
		atEnd[t.ID] = t
	}

	// Only two adjacent transcripts are resolved for wide deletions.
	for id, t := range atStart {
		if _, both := atEnd[id]; both {
			inRange[id] = t
		} else if !v.IsInsertion() {
			partial[id] = t
		}
	}
	if !v.IsInsertion() {
		for id, t := range atEnd {
			if _, both := atStart[id]; !both {
				partial[id] = t
			}
		}
	}
	return inRange, partial
}

// hits returns the allowed transcripts whose span contains pos.
func (f *Finder) hits(contig string, pos int64) []*cache.Transcript {
	lines, err := f.index.Fetch(contig, pos, pos)
	if err != nil {
		f.logger.Debug("transcript index fetch failed",
			zap.String("chrom", contig),
			zap.Int64("pos", pos),
			zap.Error(err))
		return nil
	}

	var out []*cache.Transcript
	for _, line := range lines {
		t, err := cache.ParseTranscript(line)
		if err != nil {
			f.logger.Warn("skipping malformed transcript record", zap.Error(err))
			continue
		}
		if !f.genes.Allows(t.GeneSymbol) || !f.transcripts.Allows(t.ID) {
			continue
		}
		if !t.Contains(pos) {
			continue
		}
		out = append(out, t)
	}
	return out
}
