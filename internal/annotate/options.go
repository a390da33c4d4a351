package annotate

import (
	"fmt"
	"strings"

	"github.com/inodb/vibe-cava/internal/cache"
)

// DefaultImpactDef groups CLASS codes into impact levels 1, 2 and 3.
const DefaultImpactDef = "SG,ESS,FS|SS5,IM,SL,EE,IF,NSY|SY,SS,INT,5PU,3PU"

// DefaultSSRange is the default splice-region width in intronic bases.
const DefaultSSRange = 8

// Ontology selects the consequence vocabularies to emit.
type Ontology struct {
	EmitClass bool
	EmitSO    bool
}

// ParseOntology parses CLASS, SO or BOTH (case-insensitive).
func ParseOntology(s string) (Ontology, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CLASS":
		return Ontology{EmitClass: true}, nil
	case "SO":
		return Ontology{EmitSO: true}, nil
	case "BOTH":
		return Ontology{EmitClass: true, EmitSO: true}, nil
	}
	return Ontology{}, fmt.Errorf("unknown ontology %q (want CLASS, SO or BOTH)", s)
}

func (o Ontology) String() string {
	switch {
	case o.EmitClass && o.EmitSO:
		return "BOTH"
	case o.EmitClass:
		return "CLASS"
	case o.EmitSO:
		return "SO"
	}
	return "NONE"
}

// ImpactMap maps CLASS codes to impact levels.
type ImpactMap map[string]string

// ParseImpactDef parses '|'-separated groups of ','-separated CLASS codes;
// the n-th group is impact level n. An empty definition yields nil.
func ParseImpactDef(def string) (ImpactMap, error) {
	def = strings.TrimSpace(def)
	if def == "" {
		return nil, nil
	}
	m := make(ImpactMap)
	for i, group := range strings.Split(def, "|") {
		for _, code := range strings.Split(group, ",") {
			code = strings.TrimSpace(code)
			if code == "" {
				continue
			}
			if _, dup := m[code]; dup {
				return nil, fmt.Errorf("impact definition lists %s twice", code)
			}
			m[code] = fmt.Sprint(i + 1)
		}
	}
	return m, nil
}

// Options configures an Annotator.
type Options struct {
	Ontology       Ontology
	SSRange        int
	GiveAlt        bool // emit ALTANN/ALTCLASS/ALTSO
	GiveAltFlag    bool // emit ALTFLAG even when GiveAlt is set
	GeneList       cache.IDList
	TranscriptList cache.IDList
	Impact         ImpactMap // nil disables IMPACT
	Codons         CodonTable
}

// DefaultOptions returns options with both ontologies, the default splice
// range and the default impact definition.
func DefaultOptions() Options {
	impact, _ := ParseImpactDef(DefaultImpactDef)
	return Options{
		Ontology: Ontology{EmitClass: true, EmitSO: true},
		SSRange:  DefaultSSRange,
		Impact:   impact,
		Codons:   StandardCodonTable(),
	}
}

// Validate checks option consistency.
func (o Options) Validate() error {
	if !o.Ontology.EmitClass && !o.Ontology.EmitSO {
		return fmt.Errorf("no ontology selected")
	}
	if o.SSRange < 0 {
		return fmt.Errorf("ssrange must be non-negative, got %d", o.SSRange)
	}
	if o.SSRange > 0 && o.SSRange < 3 {
		return fmt.Errorf("ssrange must be at least 3, got %d", o.SSRange)
	}
	return nil
}

// computeClass reports whether CLASS must be derived; IMPACT needs it too.
func (o Options) computeClass() bool {
	return o.Ontology.EmitClass || o.Impact != nil
}

// emitAltFlag reports whether ALTFLAG is emitted.
func (o Options) emitAltFlag() bool {
	return !o.GiveAlt || o.GiveAltFlag
}
