// Package fact defines the atomic data model of the reasoning engine: the
// subject-predicate-object Fact, its provenance Source, and the triple
// Pattern used by graph queries and rule antecedents.
package fact

import (
	"fmt"
	"strings"
)

// Fact represents a semantic statement following the Subject-Predicate-Object
// pattern.
//
// Fact design follows these principles:
//   - Subject: an entity identifier (e.g. "student.s-1042") or ontology concept
//   - Predicate: semantic property using three-level dotted notation
//     (e.g. "wellness.evidence.emotion"), defined in the vocabulary package
//   - Object: an ontology concept class (e.g. "Insomnia") or entity reference
//   - Source: provenance tracking for explanation reconstruction
//
// A Fact is immutable once created and uniquely identified by its three
// components; provenance never participates in identity. Session graphs
// silently drop duplicate identities regardless of where they came from.
type Fact struct {
	// Subject identifies the entity this fact describes.
	Subject string `json:"subject"`

	// Predicate identifies the semantic property using three-level dotted
	// notation (domain.category.property).
	Predicate string `json:"predicate"`

	// Object contains the ontology concept class or entity reference.
	Object string `json:"object"`

	// Source identifies where this assertion came from: either a user turn
	// or a rule firing. Enables causal-chain reconstruction.
	Source Source `json:"source"`
}

// Source records fact provenance. Exactly one of Turn or RuleID is set:
// evidence facts carry the 1-based turn index they were observed in, derived
// facts carry the id of the rule that produced them.
type Source struct {
	Turn   int    `json:"turn,omitempty"`
	RuleID string `json:"rule_id,omitempty"`
}

// FromTurn returns provenance for evidence observed in the given turn.
func FromTurn(turn int) Source {
	return Source{Turn: turn}
}

// FromRule returns provenance for a fact derived by the given rule.
func FromRule(ruleID string) Source {
	return Source{RuleID: ruleID}
}

// IsDerived reports whether the fact was produced by a rule rather than
// asserted from turn evidence.
func (s Source) IsDerived() bool {
	return s.RuleID != ""
}

// String renders the provenance tag, e.g. "turn:3" or "rule:R_ANX_01".
func (s Source) String() string {
	if s.RuleID != "" {
		return "rule:" + s.RuleID
	}
	return fmt.Sprintf("turn:%d", s.Turn)
}

// Key returns the canonical identity of the fact: subject, predicate and
// object joined with "|". Provenance is excluded so the same statement
// asserted twice maps to one key. Keys are the unit of deduplication and the
// inputs to the audit reference hash.
func (f Fact) Key() string {
	return f.Subject + "|" + f.Predicate + "|" + f.Object
}

// String renders the fact for logs and error messages.
func (f Fact) String() string {
	return fmt.Sprintf("(%s %s %s)", f.Subject, f.Predicate, f.Object)
}

// Equal reports identity equality (subject, predicate, object). Provenance
// is deliberately ignored.
func (f Fact) Equal(other Fact) bool {
	return f.Subject == other.Subject &&
		f.Predicate == other.Predicate &&
		f.Object == other.Object
}

// Validate checks structural well-formedness: no empty components and a
// three-level dotted predicate. Vocabulary membership is checked by the
// graph store, not here.
func (f Fact) Validate() error {
	if f.Subject == "" || f.Predicate == "" || f.Object == "" {
		return fmt.Errorf("fact has empty component: %s", f)
	}
	if strings.Count(f.Predicate, ".") != 2 {
		return fmt.Errorf("predicate %q is not three-level dotted notation", f.Predicate)
	}
	return nil
}
