package annotate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inodb/vibe-cava/internal/cache"
	"github.com/inodb/vibe-cava/internal/vcf"
)

func TestLocate(t *testing.T) {
	transcripts := map[string]*cache.Transcript{
		"TP": testTranscript(t, recordTP),
		"TM": testTranscript(t, recordTM),
		"TC": testTranscript(t, recordTC),
	}

	tests := []struct {
		name      string
		id        string
		v         *vcf.Variant
		want      string
		nonCoding bool
	}{
		{"coding exon", "TP", vcf.NewVariant("1", 102, "A", "G"), "EX2", false},
		{"5'UTR", "TP", vcf.NewVariant("1", 15, "G", "A"), "5UTR", true},
		{"3'UTR", "TP", vcf.NewVariant("1", 170, "C", "T"), "3UTR", true},
		{"intron", "TP", vcf.NewVariant("1", 60, "T", "C"), "IN1/2", true},
		{"second intron", "TP", vcf.NewVariant("1", 120, "T", "C"), "IN2/3", true},
		{"deletion across exon end", "TP", vcf.NewVariant("1", 37, "GCACGTA", "G"), "EX1-IN1/2", true},
		{"insertion at exon boundary", "TP", vcf.NewVariant("1", 40, "C", "CG"), "EX1-IN1/2", true},
		{"UTR into coding", "TP", vcf.NewVariant("1", 19, "GCA", "G"), "5UTR-EX1", true},
		{"reverse strand exon", "TM", vcf.NewVariant("2", 92, "C", "G"), "EX1", false},
		{"reverse strand intron", "TM", vcf.NewVariant("2", 69, "A", "G"), "IN1/2", true},
		{"reverse strand 5'UTR", "TM", vcf.NewVariant("2", 98, "G", "T"), "5UTR", true},
		{"reverse strand span in transcript order", "TM", vcf.NewVariant("2", 47, "AGTTCA", "A"), "IN1/2-EX2", true},
		{"non-coding exon", "TC", vcf.NewVariant("3", 45, "A", "C"), "EX1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc := Locate(transcripts[tt.id], tt.v)
			assert.Equal(t, tt.want, loc.String())
			assert.Equal(t, tt.nonCoding, loc.NonCoding())
		})
	}
}

func TestLocation_Placeholders(t *testing.T) {
	assert.Equal(t, ".", LocationUnknown.String())
	assert.Equal(t, "OUT", LocationOut.String())
	assert.True(t, LocationUnknown.NonCoding())
	assert.True(t, LocationOut.NonCoding())
	assert.False(t, LocationOut.IsSpan())
	assert.Equal(t, "XX", Region{Kind: RegionUnresolved}.String())
}
