package annotate

import (
	"fmt"
	"runtime"
	"sort"

	"go.uber.org/zap"

	"github.com/inodb/vibe-cava/internal/cache"
	"github.com/inodb/vibe-cava/internal/vcf"
)

// Annotator annotates variants against a transcript index and a reference.
//
// An Annotator owns a small translation cache and is not safe for
// concurrent use; Clone gives each worker its own.
type Annotator struct {
	index    TranscriptIndex
	ref      vcf.Sequencer
	opts     Options
	finder   *Finder
	proteins *proteinCache
	sources  []AnnotationSource
	flags    []string
	logger   *zap.Logger
}

// NewAnnotator creates an annotator. Options are validated once here.
func NewAnnotator(index TranscriptIndex, ref vcf.Sequencer, opts Options) (*Annotator, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("annotator options: %w", err)
	}
	if opts.Codons == nil {
		opts.Codons = StandardCodonTable()
	}
	return &Annotator{
		index:    index,
		ref:      ref,
		opts:     opts,
		finder:   NewFinder(index, opts.GeneList, opts.TranscriptList),
		proteins: newProteinCache(),
		flags:    emittedFlags(opts),
		logger:   zap.NewNop(),
	}, nil
}

// SetLogger sets the logger for warning and debug messages.
func (a *Annotator) SetLogger(l *zap.Logger) {
	a.logger = l
	a.finder.SetLogger(l)
}

// AddSource registers an external per-variant annotation source.
func (a *Annotator) AddSource(s AnnotationSource) {
	a.sources = append(a.sources, s)
}

// Sources returns the registered annotation sources.
func (a *Annotator) Sources() []AnnotationSource {
	return a.sources
}

// Flags returns the transcript flags emitted under the annotator's options.
func (a *Annotator) Flags() []string {
	return a.flags
}

// Clone returns an annotator sharing the index, reference and sources but
// owning an empty translation cache.
func (a *Annotator) Clone() *Annotator {
	c := *a
	c.proteins = newProteinCache()
	return &c
}

// alignments holds the finder results for both alignments of a variant.
type alignments struct {
	plus, minus       *vcf.Variant
	difference        bool
	inPlus, outPlus   map[string]*cache.Transcript
	inMinus, outMinus map[string]*cache.Transcript
}

// Annotate annotates a single variant. Lookup misses never fail: a variant
// on an unknown chromosome gets an annotation without rows.
func (a *Annotator) Annotate(v *vcf.Variant) *Annotation {
	ann := &Annotation{Variant: v, flags: a.flags}
	core := v.Normalize()

	if core.IsSymbolic() {
		a.logger.Debug("skipping symbolic allele",
			zap.String("chrom", v.Chrom),
			zap.Int64("pos", v.Pos),
			zap.String("alt", v.Alt))
		return ann
	}

	al := alignments{plus: core, minus: core}
	if !core.IsSubstitution() {
		al.plus = core.AlignOnPlusStrand(a.ref)
		al.minus = core.AlignOnMinusStrand(a.ref)
	}
	al.difference = al.plus.Pos != al.minus.Pos

	al.inPlus, al.outPlus = a.finder.FindTranscripts(al.plus)
	al.inMinus, al.outMinus = a.finder.FindTranscripts(al.minus)

	full := sortedIDs(al.inPlus, al.inMinus)
	isFull := make(map[string]bool, len(full))
	for _, id := range full {
		isFull[id] = true
	}

	for _, id := range sortedIDs(al.outPlus, al.outMinus) {
		if isFull[id] {
			continue
		}
		ann.Rows = append(ann.Rows, partialRow(id, al))
	}
	for _, id := range full {
		ann.Rows = append(ann.Rows, a.annotateTranscript(id, al))
	}

	for _, s := range a.sources {
		s.Annotate(core, ann)
	}
	return ann
}

func sortedIDs(a, b map[string]*cache.Transcript) []string {
	seen := make(map[string]bool, len(a)+len(b))
	ids := make([]string, 0, len(a)+len(b))
	for _, m := range []map[string]*cache.Transcript{a, b} {
		for id := range m {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	sort.Strings(ids)
	return ids
}

func pick(id string, a, b map[string]*cache.Transcript) *cache.Transcript {
	if t, ok := a[id]; ok {
		return t
	}
	return b[id]
}

// partialRow builds the row of a transcript the variant only partially overlaps.
func partialRow(id string, al alignments) Row {
	t := pick(id, al.outPlus, al.outMinus)
	own := al.outMinus
	if t.Strand == 1 {
		own = al.outPlus
	}
	loc := placeholder
	if _, ok := own[id]; ok {
		loc = LocationOut.String()
	}
	return Row{
		Transcript: id,
		Gene:       t.GeneSymbol,
		GeneID:     t.GeneID,
		TrInfo:     t.Info,
		Loc:        loc,
		CSN:        placeholder,
		ProtPos:    placeholder,
		ProtRef:    placeholder,
		ProtAlt:    placeholder,
		Class:      placeholder,
		SO:         placeholder,
		Impact:     placeholder,
		AltAnn:     placeholder,
		AltClass:   placeholder,
		AltSO:      placeholder,
		AltFlag:    placeholder,
	}
}

// aligned is the annotation of one alignment of a variant on a transcript.
type aligned struct {
	loc    Location
	csn    string
	change ProteinChange
	class  string
	so     string
	impact string
}

func locate(t *cache.Transcript, v *vcf.Variant, in, out map[string]*cache.Transcript) Location {
	if _, ok := in[t.ID]; ok {
		return Locate(t, v)
	}
	if _, ok := out[t.ID]; ok {
		return LocationOut
	}
	return LocationUnknown
}

// annotateTranscript builds the row of a transcript that fully contains at
// least one alignment of the variant.
func (a *Annotator) annotateTranscript(id string, al alignments) Row {
	t := pick(id, al.inPlus, al.inMinus)
	_, foundPlus := al.inPlus[id]
	_, foundMinus := al.inMinus[id]

	var p, m aligned
	p.loc = locate(t, al.plus, al.inPlus, al.outPlus)
	m.loc = p.loc
	if al.difference {
		m.loc = locate(t, al.minus, al.inMinus, al.outMinus)
	}

	// Translation is skipped when neither alignment can change the protein.
	var protein string
	var exons []string
	if !p.loc.NonCoding() || !m.loc.NonCoding() {
		protein, exons = a.referenceTranslation(t)
	}
	var mutPlus, mutMinus string
	if !p.loc.NonCoding() {
		mutPlus = a.mutantTranslation(t, exons, al.plus)
	}
	mutMinus = mutPlus
	if al.difference {
		mutMinus = ""
		if !m.loc.NonCoding() {
			mutMinus = a.mutantTranslation(t, exons, al.minus)
		}
	}

	effPlus := newEffect(t, al.plus, p.loc, protein, mutPlus)
	effMinus := effPlus
	if al.difference {
		effMinus = newEffect(t, al.minus, m.loc, protein, mutMinus)
	}

	p.csn, p.change = placeholder, noProteinChange
	if foundPlus {
		p.csn, p.change = CSN(t, al.plus, a.ref, effPlus)
	}
	m.csn, m.change = p.csn, p.change
	if al.difference {
		m.csn, m.change = placeholder, noProteinChange
		if foundMinus {
			m.csn, m.change = CSN(t, al.minus, a.ref, effMinus)
		}
	}

	if a.opts.computeClass() {
		p.class = placeholder
		if foundPlus {
			p.class = ClassAnnotation(t, al.plus, effPlus, a.opts.SSRange)
		}
		m.class = p.class
		if al.difference {
			m.class = placeholder
			if foundMinus {
				m.class = ClassAnnotation(t, al.minus, effMinus, a.opts.SSRange)
			}
		}
	}

	if a.opts.Impact != nil {
		p.impact, m.impact = placeholder, placeholder
		if foundPlus {
			p.impact = a.opts.Impact.Impact(p.class)
		}
		if foundMinus {
			m.impact = a.opts.Impact.Impact(m.class)
		}
	}

	if a.opts.Ontology.EmitSO {
		p.so = placeholder
		if foundPlus {
			p.so = SOAnnotation(t, al.plus, effPlus)
		}
		m.so = p.so
		if al.difference {
			m.so = placeholder
			if foundMinus {
				m.so = SOAnnotation(t, al.minus, effMinus)
			}
		}
	}

	// The alignment matching the transcript strand is reported; it also
	// drives the splice-boundary duplication correction.
	driver := p.csn
	if t.Strand != 1 {
		driver = m.csn
	}
	p.class, m.class = CorrectClasses(driver, p.class, m.class, a.opts.SSRange)
	p.so, m.so = CorrectSOs(driver, p.so, m.so)

	primary, alt := p, m
	if t.Strand != 1 {
		primary, alt = m, p
	}

	row := Row{
		Transcript: id,
		Gene:       t.GeneSymbol,
		GeneID:     t.GeneID,
		TrInfo:     t.Info,
		Loc:        primary.loc.String(),
		CSN:        primary.csn,
		ProtPos:    primary.change.Pos,
		ProtRef:    primary.change.Ref,
		ProtAlt:    primary.change.Alt,
		Class:      primary.class,
		SO:         primary.so,
		Impact:     primary.impact,
	}

	if a.opts.GiveAlt {
		row.AltAnn, row.AltClass, row.AltSO = placeholder, placeholder, placeholder
		if p.csn != m.csn {
			row.AltAnn = alt.csn
		}
		if p.class != m.class {
			row.AltClass = alt.class
		}
		if p.so != m.so {
			row.AltSO = alt.so
		}
	}
	if a.opts.emitAltFlag() {
		row.AltFlag = altFlag(a.opts.Ontology, p.csn, m.csn, p.class, m.class, p.so, m.so)
	}
	return row
}

// referenceTranslation returns the cached or freshly built reference protein
// of t and its exon sequences. A reference miss yields an empty protein.
func (a *Annotator) referenceTranslation(t *cache.Transcript) (string, []string) {
	if tr, ok := a.proteins.get(t.ID); ok {
		return tr.protein, tr.exons
	}
	exons, ok := exonSequences(a.ref, t)
	if !ok {
		a.logger.Debug("reference sequence unavailable for transcript",
			zap.String("transcript", t.ID),
			zap.String("chrom", t.Chrom))
	}
	tr := translation{exons: exons}
	if ok {
		tr.protein = translateFromCDSStart(a.opts.Codons, t, exons)
	}
	a.proteins.put(t.ID, tr)
	return tr.protein, tr.exons
}

func (a *Annotator) mutantTranslation(t *cache.Transcript, exons []string, v *vcf.Variant) string {
	if exons == nil {
		return ""
	}
	mutated, ok := mutateExons(t, exons, v)
	if !ok {
		return ""
	}
	return translateFromCDSStart(a.opts.Codons, t, mutated)
}

// AnnotateAll annotates all variants from a parser, splitting multi-allelic
// records, and writes them in input order.
func (a *Annotator) AnnotateAll(parser vcf.VariantParser, writer AnnotationWriter, workers int) error {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	items := make(chan WorkItem, 2*workers)
	var parseErr error
	variantCount := 0

	go func() {
		defer close(items)
		seq := 0
		for {
			v, err := parser.Next()
			if err != nil {
				parseErr = fmt.Errorf("read variant: %w", err)
				return
			}
			if v == nil {
				return
			}
			variantCount++

			// Split multi-allelic variants, each gets its own sequence number.
			for _, variant := range vcf.SplitMultiAllelic(v) {
				items <- WorkItem{Seq: seq, Variant: variant}
				seq++
			}
		}
	}()

	results := a.ParallelAnnotate(items, workers)

	if err := OrderedCollect(results, func(r WorkResult) error {
		if err := writer.Write(r.Ann); err != nil {
			return fmt.Errorf("write annotation: %w", err)
		}
		return nil
	}); err != nil {
		return err
	}

	if parseErr != nil {
		return parseErr
	}

	a.logger.Info("annotation complete", zap.Int("variants", variantCount))
	return writer.Flush()
}

// AnnotationWriter defines the interface for writing annotations.
type AnnotationWriter interface {
	WriteHeader() error
	Write(ann *Annotation) error
	Flush() error
}
