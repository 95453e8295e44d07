// Package wellgraph is a session reasoning engine for a student
// wellness assistant.
//
// Each conversation session owns a knowledge graph of subject,
// predicate, object triples built from per-turn evidence (emotions,
// symptoms, triggers). An immutable rule catalog is evaluated to
// fixpoint by forward chaining over the graph; derived risk states are
// ranked deterministically, explained step by step from their
// supporting evidence, and gated by a safety escalation check that
// short-circuits reasoning on crisis signals. Every turn leaves an
// audit record.
//
// Package layout:
//
//   - vocabulary: the closed set of concepts and predicates
//   - fact: triples, patterns, and variable bindings
//   - graph: the per-session fact store
//   - catalog: rule representation, validation, and the built-in rules
//   - evaluator: forward chaining to fixpoint
//   - ranking: deterministic scoring and confidence
//   - explain: step-by-step explanations and causal chains
//   - escalation: the safety gate and post-reasoning advisories
//   - engine: per-turn orchestration
//   - audit, storage: SQLite-backed audit trail and session persistence
//   - gateway/http: the JSON API
package wellgraph
