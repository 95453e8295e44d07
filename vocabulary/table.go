// Package vocabulary provides the ontology vocabulary for the reasoning engine:
// the fixed set of recognized concept classes and semantic predicates used to
// validate facts and rules at load time.
package vocabulary

import (
	"sort"
	"strings"
)

// Category classifies a concept within the wellness ontology.
//
// Categories drive evidence-diversity scoring in ranking and label selection
// in explanations. They carry no weighting of their own.
type Category string

const (
	// CategoryEmotion marks emotional-state concepts (Anxiety, Stress, Panic).
	CategoryEmotion Category = "emotion"

	// CategorySymptom marks physiological or behavioral symptom concepts
	// (Insomnia, Fatigue, SocialWithdrawal).
	CategorySymptom Category = "symptom"

	// CategoryTrigger marks situational trigger concepts (ExamPressure,
	// FinancialConcern).
	CategoryTrigger Category = "trigger"

	// CategoryRiskFactor marks session-level risk factor concepts
	// (RepeatedStressExposure).
	CategoryRiskFactor Category = "risk-factor"

	// CategoryRiskState marks derivable risk state concepts (AnxietyRisk,
	// PanicRisk). Risk states only enter the graph through rule consequents.
	CategoryRiskState Category = "risk-state"

	// CategorySession marks structural concepts (Session, Student).
	CategorySession Category = "session"
)

// String returns the string representation of the category
func (c Category) String() string {
	return string(c)
}

// ConceptMetadata describes a registered ontology concept class.
type ConceptMetadata struct {
	// Name is the concept class identifier, e.g. "AnxietyRisk".
	Name string

	// Category classifies the concept within the ontology.
	Category Category

	// Label is the human-readable display form, e.g. "Anxiety Risk".
	Label string

	// Description explains what the concept represents.
	Description string
}

// PredicateMetadata describes a registered semantic predicate.
//
// Predicates use three-level dotted notation: domain.category.property
// (e.g. "wellness.evidence.emotion").
type PredicateMetadata struct {
	Name        string
	Domain      string
	Category    string
	Description string

	// ObjectCategory restricts the concept category a fact's object may carry
	// under this predicate. Empty means unrestricted.
	ObjectCategory Category
}

// Table is an immutable vocabulary of concepts and predicates.
//
// A Table is constructed once at startup via NewTable (or Standard) and passed
// by reference into every reasoning call. It is never mutated after
// construction and is safe for unlimited concurrent readers.
type Table struct {
	concepts   map[string]ConceptMetadata
	predicates map[string]PredicateMetadata
}

// ConceptOption is a functional option for concept registration.
type ConceptOption func(*ConceptMetadata)

// WithLabel sets the human-readable display label of the concept.
func WithLabel(label string) ConceptOption {
	return func(m *ConceptMetadata) {
		m.Label = label
	}
}

// WithConceptDescription sets the concept's description.
func WithConceptDescription(desc string) ConceptOption {
	return func(m *ConceptMetadata) {
		m.Description = desc
	}
}

// PredicateOption is a functional option for predicate registration.
type PredicateOption func(*PredicateMetadata)

// WithDescription sets the human-readable description of the predicate.
func WithDescription(desc string) PredicateOption {
	return func(m *PredicateMetadata) {
		m.Description = desc
	}
}

// WithObjectCategory restricts the concept category allowed as the object of
// facts using this predicate.
func WithObjectCategory(cat Category) PredicateOption {
	return func(m *PredicateMetadata) {
		m.ObjectCategory = cat
	}
}

// Builder accumulates registrations and produces an immutable Table.
type Builder struct {
	concepts   map[string]ConceptMetadata
	predicates map[string]PredicateMetadata
}

// NewBuilder creates an empty vocabulary builder.
func NewBuilder() *Builder {
	return &Builder{
		concepts:   make(map[string]ConceptMetadata),
		predicates: make(map[string]PredicateMetadata),
	}
}

// Concept registers a concept class. Re-registering a name overwrites the
// previous entry (enables domain-specific overrides).
func (b *Builder) Concept(name string, category Category, opts ...ConceptOption) *Builder {
	meta := ConceptMetadata{
		Name:     name,
		Category: category,
		Label:    displayLabel(name),
	}
	for _, opt := range opts {
		opt(&meta)
	}
	b.concepts[name] = meta
	return b
}

// Predicate registers a predicate. The name must follow three-level dotted
// notation: domain.category.property.
func (b *Builder) Predicate(name string, opts ...PredicateOption) *Builder {
	domain, category := parseDomainCategory(name)
	meta := PredicateMetadata{
		Name:     name,
		Domain:   domain,
		Category: category,
	}
	for _, opt := range opts {
		opt(&meta)
	}
	b.predicates[name] = meta
	return b
}

// Build produces the immutable Table. The builder's maps are copied so later
// builder mutation cannot leak into a built table.
func (b *Builder) Build() *Table {
	t := &Table{
		concepts:   make(map[string]ConceptMetadata, len(b.concepts)),
		predicates: make(map[string]PredicateMetadata, len(b.predicates)),
	}
	for k, v := range b.concepts {
		t.concepts[k] = v
	}
	for k, v := range b.predicates {
		t.predicates[k] = v
	}
	return t
}

// HasConcept reports whether the concept class is registered.
func (t *Table) HasConcept(name string) bool {
	_, ok := t.concepts[name]
	return ok
}

// HasPredicate reports whether the predicate is registered.
func (t *Table) HasPredicate(name string) bool {
	_, ok := t.predicates[name]
	return ok
}

// Concept retrieves metadata for a concept class.
// The second return value is false if the concept is not registered.
func (t *Table) Concept(name string) (ConceptMetadata, bool) {
	meta, ok := t.concepts[name]
	return meta, ok
}

// Predicate retrieves metadata for a predicate.
func (t *Table) Predicate(name string) (PredicateMetadata, bool) {
	meta, ok := t.predicates[name]
	return meta, ok
}

// ConceptCategory returns the category of a registered concept, or the empty
// category if unknown.
func (t *Table) ConceptCategory(name string) Category {
	if meta, ok := t.concepts[name]; ok {
		return meta.Category
	}
	return ""
}

// Label returns the display label for a concept, falling back to a derived
// label for unregistered names so explanation output never shows raw
// identifiers gone wrong.
func (t *Table) Label(name string) string {
	if meta, ok := t.concepts[name]; ok && meta.Label != "" {
		return meta.Label
	}
	return displayLabel(name)
}

// Concepts returns all registered concept names in lexical order.
func (t *Table) Concepts() []string {
	names := make([]string, 0, len(t.concepts))
	for name := range t.concepts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Predicates returns all registered predicate names in lexical order.
func (t *Table) Predicates() []string {
	names := make([]string, 0, len(t.predicates))
	for name := range t.predicates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ConceptsByCategory returns all concept names with the given category, in
// lexical order.
func (t *Table) ConceptsByCategory(cat Category) []string {
	var names []string
	for name, meta := range t.concepts {
		if meta.Category == cat {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// parseDomainCategory extracts domain and category from a dotted predicate
// name. For "wellness.evidence.emotion", returns ("wellness", "evidence").
func parseDomainCategory(name string) (domain, category string) {
	parts := strings.SplitN(name, ".", 3)
	if len(parts) < 2 {
		return name, ""
	}
	if len(parts) == 2 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

// displayLabel converts a concept identifier to a human-readable label:
// "RapidHeartRate" becomes "Rapid Heart Rate".
func displayLabel(name string) string {
	name = strings.ReplaceAll(name, "_", " ")
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' && i > 0 && name[i-1] != ' ' {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}
