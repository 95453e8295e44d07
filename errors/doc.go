// Package errors provides standardized error handling patterns for WellGraph
// components.
//
// # Error Classification
//
// Errors are classified into three classes for handling purposes:
//
//   - Transient: temporary conditions such as storage contention (retry recommended)
//   - Invalid: malformed input or rejected facts (do not retry)
//   - Fatal: unrecoverable states such as catalog validation failure or the
//     evaluator's iteration bound being exceeded (stop processing, surface to caller)
//
// Classification integrates with Go's standard error handling, supporting
// errors.Is(), errors.As(), and error wrapping chains.
//
// # Error Wrapping Pattern
//
// All error wrapping follows the standardized format:
//
//	"component.method: action failed: %w"
//
// Three wrapper functions provide classification-aware wrapping:
//
//	errors.WrapTransient(err, "Store", "Save", "write session graph")
//	errors.WrapInvalid(err, "Graph", "Add", "validate concept")
//	errors.WrapFatal(err, "Catalog", "Load", "vocabulary validation")
//
// The generic Wrap() function adds context without setting a class.
//
// # Domain Error Variables
//
// The reasoning engine's error taxonomy is expressed as standard variables:
//
//   - ErrInvalidFact: a fact referencing unknown ontology concepts was rejected
//     (the single add fails, the turn continues)
//   - ErrUnknownVocabulary: a rule catalog referenced vocabulary that does not
//     exist (load-time, fatal — the process must not start)
//   - ErrNonTerminatingRuleSet: the evaluator exceeded its safety iteration
//     bound (fatal for the turn, graph left unchanged)
//
// Fatal conditions always surface to the caller; silent failure in a
// safety-relevant system is unacceptable.
package errors
