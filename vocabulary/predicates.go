package vocabulary

// Predicate vocabulary using three-level dotted notation: domain.category.property
//
// Design principles:
//   - Three levels: domain.category.property (e.g., "wellness.evidence.emotion")
//   - Human readable: "wellness.state.risk" is clear and semantic
//   - Domain scoped: each domain manages its own predicate categories
//
// Predicate naming conventions:
//   - domain: lowercase, represents the business domain (wellness)
//   - category: lowercase, groups related properties (evidence, state, risk)
//   - property: lowercase, specific property name (emotion, symptom, trigger)
//   - No underscores or special characters (dots only for level separation)

// Evidence predicates record per-turn observations attached to a session
// subject. The object is always an ontology concept class.
const (
	// EvidenceEmotion links a subject to an observed emotion concept.
	EvidenceEmotion = "wellness.evidence.emotion"
	// EvidenceSymptom links a subject to an observed symptom concept.
	EvidenceSymptom = "wellness.evidence.symptom"
	// EvidenceTrigger links a subject to an observed trigger concept.
	EvidenceTrigger = "wellness.evidence.trigger"
)

// Derived-state predicates record rule consequents.
const (
	// StateRisk links a subject to a derived risk state concept. Facts with
	// this predicate only enter the graph through rule consequents.
	StateRisk = "wellness.state.risk"
)

// Risk-factor predicates record session-level aggravating factors.
const (
	// RiskFactor links a subject to a risk factor concept such as
	// RepeatedStressExposure.
	RiskFactor = "wellness.risk.factor"
)

// Session predicates record structural and safety events.
const (
	// SessionEscalated marks a turn on which the safety gate triggered.
	// The object is the escalation category concept.
	SessionEscalated = "wellness.session.escalated"
)

// registerPredicates adds the standard wellness predicates to a builder.
func registerPredicates(b *Builder) {
	b.Predicate(EvidenceEmotion,
		WithDescription("Observed emotion evidence for a subject"),
		WithObjectCategory(CategoryEmotion))
	b.Predicate(EvidenceSymptom,
		WithDescription("Observed symptom evidence for a subject"),
		WithObjectCategory(CategorySymptom))
	b.Predicate(EvidenceTrigger,
		WithDescription("Observed situational trigger for a subject"),
		WithObjectCategory(CategoryTrigger))
	b.Predicate(StateRisk,
		WithDescription("Derived risk state for a subject"),
		WithObjectCategory(CategoryRiskState))
	b.Predicate(RiskFactor,
		WithDescription("Session-level risk factor for a subject"),
		WithObjectCategory(CategoryRiskFactor))
	b.Predicate(SessionEscalated,
		WithDescription("Safety gate trigger marker for a turn"))
}
