package annotate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-cava/internal/cache"
	"github.com/inodb/vibe-cava/internal/vcf"
)

type rowExpectation struct {
	loc, csn, class, so, impact string
	protPos, protRef, protAlt   string
}

func assertSingleRow(t *testing.T, ann *Annotation, transcript string, want rowExpectation) {
	t.Helper()
	require.Len(t, ann.Rows, 1)
	assert.Equal(t, transcript, flagValue(t, ann, FlagTranscript))
	assert.Equal(t, want.loc, flagValue(t, ann, FlagLoc), "LOC")
	assert.Equal(t, want.csn, flagValue(t, ann, FlagCSN), "CSN")
	assert.Equal(t, want.class, flagValue(t, ann, FlagClass), "CLASS")
	assert.Equal(t, want.so, flagValue(t, ann, FlagSO), "SO")
	assert.Equal(t, want.impact, flagValue(t, ann, FlagImpact), "IMPACT")
	assert.Equal(t, want.protPos, flagValue(t, ann, FlagProtPos), "PROTPOS")
	assert.Equal(t, want.protRef, flagValue(t, ann, FlagProtRef), "PROTREF")
	assert.Equal(t, want.protAlt, flagValue(t, ann, FlagProtAlt), "PROTALT")
}

func TestAnnotate_ForwardStrandSubstitutions(t *testing.T) {
	a := newTestAnnotator(t, DefaultOptions())

	tests := []struct {
		name string
		pos  int64
		ref  string
		alt  string
		want rowExpectation
	}{
		{"synonymous", 102, "A", "G", rowExpectation{
			"EX2", "c.42A>G_p.=", ClassSynonymous, SOSynonymous, "3", "14", "P", "P"}},
		{"missense", 100, "C", "T", rowExpectation{
			"EX2", "c.40C>T_p.Pro14Ser", ClassNonSynonymous, SOMissense, "2", "14", "P", "S"}},
		{"stop gained", 24, "A", "T", rowExpectation{
			"EX1", "c.4A>T_p.Lys2*", ClassStopGained, SOStopGained, "1", "2", "K", "*"}},
		{"start lost", 21, "A", "G", rowExpectation{
			"EX1", "c.1A>G_p.Met1?", ClassStartLost, SOStartLost, "2", "1", "M", "?"}},
		{"stop lost", 162, "A", "C", rowExpectation{
			"EX3", "c.62A>C_p.*21Serext*2", ClassStopLost, SOStopLost, "2", "21", "*", "S"}},
		{"5'UTR", 15, "G", "A", rowExpectation{
			"5UTR", "c.-6G>A", ClassFivePrimeUTR, SOFivePrimeUTR, "3", ".", ".", "."}},
		{"3'UTR", 170, "C", "T", rowExpectation{
			"3UTR", "c.*7C>T", ClassThreePrimeUTR, SOThreePrimeUTR, "3", ".", ".", "."}},
		{"essential splice donor", 42, "T", "C", rowExpectation{
			"IN1/2", "c.20+2T>C", ClassEssentialSplice, SOSpliceDonor, "1", ".", ".", "."}},
		{"donor fifth base", 45, "G", "A", rowExpectation{
			"IN1/2", "c.20+5G>A", ClassSpliceSite5,
			"intron_variant|splice_donor_5th_base_variant|splice_region_variant", "2", ".", ".", "."}},
		{"acceptor splice region", 78, "C", "T", rowExpectation{
			"IN1/2", "c.21-3C>T", ClassSpliceSite, "intron_variant|splice_region_variant", "3", ".", ".", "."}},
		{"deep intronic", 60, "T", "C", rowExpectation{
			"IN1/2", "c.20+20T>C", ClassIntronic, SOIntron, "3", ".", ".", "."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.ref, contig1[tt.pos-1:tt.pos], "fixture reference base")
			ann := a.Annotate(vcf.NewVariant("1", tt.pos, tt.ref, tt.alt))
			assertSingleRow(t, ann, "TP", tt.want)
			assert.Equal(t, "GENEP", flagValue(t, ann, FlagGene))
			assert.Equal(t, "ENSGP", flagValue(t, ann, FlagGeneID))
			assert.Equal(t, "NM_P.1", flagValue(t, ann, FlagTrInfo))
			assert.Equal(t, AltFlagNone, flagValue(t, ann, FlagAltFlag))
		})
	}
}

func TestAnnotate_ForwardStrandIndels(t *testing.T) {
	a := newTestAnnotator(t, DefaultOptions())

	tests := []struct {
		name    string
		pos     int64
		ref     string
		alt     string
		want    rowExpectation
		altFlag string
	}{
		{"frameshift deletion", 94, "GA", "G", rowExpectation{
			"EX2", "c.35delA_p.Asp12fs", ClassFrameshift, SOFrameshift, "1", "12", "D", "fs"}, AltFlagNone},
		{"in-frame deletion", 32, "GTTC", "G", rowExpectation{
			"EX1", "c.13_15delTTC_p.Phe5del", ClassInframe, SOInframeDeletion, "2", "5", "F", "-"}, AltFlagNone},
		{"delins", 30, "CT", "GA", rowExpectation{
			"EX1", "c.10_11delinsGA_p.Leu4Glu", ClassNonSynonymous, SOMissense, "2", "4", "L", "E"}, AltFlagNone},
		// Both alignments describe the same duplication.
		{"in-frame duplication", 26, "A", "AAAA", rowExpectation{
			"EX1", "c.4_6dupAAA_p.Lys2dup", ClassInframe, SOInframeInsertion, "2", "2", "-", "K"}, AltFlagNone},
		{"intronic homopolymer insertion", 50, "A", "AT", rowExpectation{
			"IN1/2", "c.20+11dupT", ClassIntronic, SOIntron, "3", ".", ".", "."}, AltFlagAnnNotClassNotSO},
		{"duplication across the splice region boundary", 117, "A", "AC", rowExpectation{
			"IN2/3", "c.50+8dupC", ClassIntronic, SOIntron, "3", ".", ".", "."}, AltFlagAnnNotClassNotSO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.ref[:1], contig1[tt.pos-1:tt.pos], "fixture reference base")
			ann := a.Annotate(vcf.NewVariant("1", tt.pos, tt.ref, tt.alt))
			assertSingleRow(t, ann, "TP", tt.want)
			assert.Equal(t, tt.altFlag, flagValue(t, ann, FlagAltFlag))
		})
	}
}

func TestAnnotate_AlternativeAnnotations(t *testing.T) {
	opts := DefaultOptions()
	opts.GiveAlt = true
	a := newTestAnnotator(t, opts)

	ann := a.Annotate(vcf.NewVariant("1", 50, "A", "AT"))
	assert.Equal(t, "c.20+11dupT", flagValue(t, ann, FlagCSN))
	assert.Equal(t, "c.20+15dupT", flagValue(t, ann, FlagAltAnn))
	assert.Equal(t, ".", flagValue(t, ann, FlagAltClass))
	assert.Equal(t, ".", flagValue(t, ann, FlagAltSO))
	_, ok := ann.Flag(FlagAltFlag)
	assert.False(t, ok, "ALTFLAG is dropped when alternatives are given")

	// Without a difference every alternative is a placeholder.
	ann = a.Annotate(vcf.NewVariant("1", 100, "C", "T"))
	assert.Equal(t, ".", flagValue(t, ann, FlagAltAnn))
	assert.Equal(t, ".", flagValue(t, ann, FlagAltClass))
	assert.Equal(t, ".", flagValue(t, ann, FlagAltSO))

	opts.GiveAltFlag = true
	a = newTestAnnotator(t, opts)
	ann = a.Annotate(vcf.NewVariant("1", 50, "A", "AT"))
	assert.Equal(t, AltFlagAnnNotClassNotSO, flagValue(t, ann, FlagAltFlag))
}

func TestAnnotate_ReverseStrand(t *testing.T) {
	opts := DefaultOptions()
	opts.GiveAlt = true
	opts.GiveAltFlag = true
	a := newTestAnnotator(t, opts)

	t.Run("missense", func(t *testing.T) {
		require.Equal(t, "C", contig2[91:92])
		ann := a.Annotate(vcf.NewVariant("2", 92, "C", "G"))
		assertSingleRow(t, ann, "TM", rowExpectation{
			"EX1", "c.4G>C_p.Ala2Pro", ClassNonSynonymous, SOMissense, "2", "2", "A", "P"})
	})

	t.Run("essential splice donor", func(t *testing.T) {
		require.Equal(t, "A", contig2[68:69])
		ann := a.Annotate(vcf.NewVariant("2", 69, "A", "G"))
		assertSingleRow(t, ann, "TM", rowExpectation{
			"IN1/2", "c.25+2T>C", ClassEssentialSplice, SOSpliceDonor, "1", ".", ".", "."})
	})

	t.Run("deletion reports the right-aligned description", func(t *testing.T) {
		require.Equal(t, "GTTC", contig2[47:51])
		ann := a.Annotate(vcf.NewVariant("2", 48, "GT", "G"))
		assertSingleRow(t, ann, "TM", rowExpectation{
			"EX2", "c.26delA_p.Glu9fs", ClassFrameshift,
			"frameshift_variant|splice_region_variant", "1", "9", "E", "fs"})
		assert.Equal(t, "c.27delA_p.Glu9fs", flagValue(t, ann, FlagAltAnn))
		assert.Equal(t, ".", flagValue(t, ann, FlagAltClass))
		assert.Equal(t, AltFlagAnnNotClassNotSO, flagValue(t, ann, FlagAltFlag))
	})
}

func TestAnnotate_PartialOverlaps(t *testing.T) {
	a := newTestAnnotator(t, DefaultOptions())

	// Delete 45..55: the end of TA, the start of TB, all inside TC.
	ann := a.Annotate(vcf.NewVariant("3", 44, contig3[43:55], contig3[43:44]))
	require.Len(t, ann.Rows, 3)

	assert.Equal(t, "TA:TB:TC", flagValue(t, ann, FlagTranscript))
	assert.Equal(t, "GA:GB:GC", flagValue(t, ann, FlagGene))
	assert.Equal(t, "OUT:OUT:EX1", flagValue(t, ann, FlagLoc))
	assert.Equal(t, ".:.:n.45_55del", flagValue(t, ann, FlagCSN))
	assert.Equal(t, ".:.:.", flagValue(t, ann, FlagClass))
	assert.Equal(t, ".:.:"+SONonCodingExon, flagValue(t, ann, FlagSO))
	assert.Equal(t, ".:.:None", flagValue(t, ann, FlagImpact))
	assert.Equal(t, ".:.:.", flagValue(t, ann, FlagProtPos))

	for _, f := range ann.Flags() {
		v, _ := ann.Flag(f)
		assert.Len(t, strings.Split(v, ":"), 3, "flag %s", f)
	}
}

func TestAnnotate_NoRows(t *testing.T) {
	a := newTestAnnotator(t, DefaultOptions())

	tests := []struct {
		name string
		v    *vcf.Variant
	}{
		{"unknown chromosome", vcf.NewVariant("5", 100, "A", "G")},
		{"intergenic", vcf.NewVariant("1", 200, "T", "G")},
		{"symbolic allele", vcf.NewVariant("1", 100, "C", "<DEL>")},
		{"spanning deletion allele", vcf.NewVariant("1", 100, "C", "*")},
		{"identical alleles", vcf.NewVariant("1", 100, "C", "C")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ann := a.Annotate(tt.v)
			assert.Empty(t, ann.Rows)
			assert.Equal(t, a.Flags(), ann.Flags())
			v, ok := ann.Flag(FlagTranscript)
			assert.True(t, ok)
			assert.Equal(t, "", v)
		})
	}
}

func TestAnnotate_ChrPrefixedIndex(t *testing.T) {
	prefixed := strings.Replace(recordTP, "\t1\t1\t", "\tchr1\t1\t", 1)
	idx, err := cache.LoadIndex(strings.NewReader(prefixed))
	require.NoError(t, err)

	a, err := NewAnnotator(idx, testReference(), DefaultOptions())
	require.NoError(t, err)

	ann := a.Annotate(vcf.NewVariant("1", 100, "C", "T"))
	assert.Equal(t, "TP", flagValue(t, ann, FlagTranscript))
	assert.Equal(t, "c.40C>T_p.Pro14Ser", flagValue(t, ann, FlagCSN))
}

func TestAnnotate_Ontologies(t *testing.T) {
	t.Run("CLASS only", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Ontology = Ontology{EmitClass: true}
		a := newTestAnnotator(t, opts)
		ann := a.Annotate(vcf.NewVariant("1", 100, "C", "T"))
		_, ok := ann.Flag(FlagSO)
		assert.False(t, ok)
		assert.Equal(t, ClassNonSynonymous, flagValue(t, ann, FlagClass))
	})

	t.Run("SO only still derives IMPACT", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Ontology = Ontology{EmitSO: true}
		a := newTestAnnotator(t, opts)
		ann := a.Annotate(vcf.NewVariant("1", 24, "A", "T"))
		_, ok := ann.Flag(FlagClass)
		assert.False(t, ok)
		assert.Equal(t, SOStopGained, flagValue(t, ann, FlagSO))
		assert.Equal(t, "1", flagValue(t, ann, FlagImpact))
	})

	t.Run("no impact definition", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Impact = nil
		a := newTestAnnotator(t, opts)
		assert.NotContains(t, a.Flags(), FlagImpact)
	})
}

func TestAnnotate_AllowLists(t *testing.T) {
	opts := DefaultOptions()
	opts.TranscriptList = cache.IDList{"TC": true}
	a := newTestAnnotator(t, opts)

	ann := a.Annotate(vcf.NewVariant("3", 44, contig3[43:55], contig3[43:44]))
	assert.Equal(t, "TC", flagValue(t, ann, FlagTranscript))

	opts = DefaultOptions()
	opts.GeneList = cache.IDList{"GENEM": true}
	a = newTestAnnotator(t, opts)
	ann = a.Annotate(vcf.NewVariant("1", 100, "C", "T"))
	assert.Empty(t, ann.Rows)
}

func TestAnnotate_RejectsInvalidOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.Ontology = Ontology{}
	_, err := NewAnnotator(testIndex(t), testReference(), opts)
	assert.Error(t, err)
}

type recordingSource struct {
	seen []*vcf.Variant
}

func (s *recordingSource) Name() string { return "recording" }
func (s *recordingSource) Columns() []ColumnDef {
	return []ColumnDef{{Name: "SEEN", Description: "test"}}
}
func (s *recordingSource) Annotate(v *vcf.Variant, ann *Annotation) {
	s.seen = append(s.seen, v)
	ann.SetExtra("SEEN", v.Ref+">"+v.Alt)
}

func TestAnnotate_SourcesSeeNormalizedVariant(t *testing.T) {
	a := newTestAnnotator(t, DefaultOptions())
	src := &recordingSource{}
	a.AddSource(src)
	require.Len(t, a.Sources(), 1)

	ann := a.Annotate(vcf.NewVariant("1", 94, "GA", "G"))
	require.Len(t, src.seen, 1)
	assert.Equal(t, int64(95), src.seen[0].Pos)
	v, ok := ann.GetExtra("SEEN")
	assert.True(t, ok)
	assert.Equal(t, "A>", v)
}

func TestAnnotator_CloneOwnsTranslationCache(t *testing.T) {
	a := newTestAnnotator(t, DefaultOptions())
	a.Annotate(vcf.NewVariant("1", 100, "C", "T"))
	assert.Equal(t, 1, a.proteins.len())

	c := a.Clone()
	assert.Equal(t, 0, c.proteins.len())
	assert.Equal(t, a.Flags(), c.Flags())
}
