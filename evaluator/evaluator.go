// Package evaluator implements naive forward chaining to a fixpoint over
// a session graph snapshot. It never mutates the graph it is given; the
// engine commits derived facts after a successful evaluation.
package evaluator

import (
	"log/slog"

	"github.com/wellgraph/wellgraph/catalog"
	"github.com/wellgraph/wellgraph/errors"
	"github.com/wellgraph/wellgraph/fact"
	"github.com/wellgraph/wellgraph/graph"
)

// Derivation records how one fact was produced: the firing rule, the
// variable bindings that satisfied its antecedent, and the facts that
// supported the match. Owned by the per-turn invocation; surfaced in
// explanations, never persisted as graph state.
type Derivation struct {
	Fact       fact.Fact
	RuleID     string
	Bindings   fact.Bindings
	Supporting []fact.Fact
}

// Result is the outcome of one evaluation run. Derived lists the new
// facts in derivation order; Derivations is keyed by fact key.
type Result struct {
	Derived     []fact.Fact
	Derivations map[string]Derivation
	Iterations  int
	RulesFired  []string
}

// Derivation returns the derivation record for f, if f was derived in
// this run.
func (r *Result) Derivation(f fact.Fact) (Derivation, bool) {
	d, ok := r.Derivations[f.Key()]
	return d, ok
}

// Evaluator applies a rule catalog to session graphs. Stateless apart
// from the read-only catalog; safe for concurrent use across sessions.
type Evaluator struct {
	catalog *catalog.Catalog
	logger  *slog.Logger
}

// New creates an evaluator over cat.
func New(cat *catalog.Catalog, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{
		catalog: cat,
		logger:  logger.With("component", "Evaluator"),
	}
}

// Evaluate runs forward chaining over a snapshot of g until no rule
// produces a new fact. Rules apply in priority order; when several
// rules could derive the same fact, the first match gets derivation
// credit. Exceeding the catalog's iteration bound returns a fatal
// ErrNonTerminatingRuleSet and the graph is untouched.
//
// Determinism: for a fixed graph and catalog the derived set, the
// derivation records, and their order are identical run-to-run. Facts
// are scanned in insertion order and antecedent patterns join in
// declaration order.
func (e *Evaluator) Evaluate(g *graph.Graph) (*Result, error) {
	working := g.All()
	present := make(map[string]bool, len(working))
	for _, f := range working {
		present[f.Key()] = true
	}

	res := &Result{Derivations: make(map[string]Derivation)}
	firedSeen := make(map[string]bool)
	maxIterations := e.catalog.MaxIterations()

	for {
		res.Iterations++
		if res.Iterations > maxIterations {
			return nil, errors.WrapFatal(
				errors.Newf("%w: no fixpoint after %d iterations",
					errors.ErrNonTerminatingRuleSet, maxIterations),
				"Evaluator", "Evaluate", "reach fixpoint")
		}

		var passNew []fact.Fact
		for _, rule := range e.catalog.Rules() {
			for _, m := range MatchAntecedent(working, rule.Antecedent) {
				candidate, err := rule.Consequent.Instantiate(m.Bindings, fact.FromRule(rule.ID))
				if err != nil {
					// Load guarantees consequent variables are bound.
					return nil, errors.WrapFatal(err, "Evaluator", "Evaluate", "instantiate consequent")
				}
				if present[candidate.Key()] {
					continue
				}
				present[candidate.Key()] = true
				passNew = append(passNew, candidate)
				res.Derived = append(res.Derived, candidate)
				res.Derivations[candidate.Key()] = Derivation{
					Fact:       candidate,
					RuleID:     rule.ID,
					Bindings:   m.Bindings,
					Supporting: m.Supporting,
				}
				if !firedSeen[rule.ID] {
					firedSeen[rule.ID] = true
					res.RulesFired = append(res.RulesFired, rule.ID)
				}
			}
		}

		if len(passNew) == 0 {
			break
		}
		working = append(working, passNew...)
	}

	e.logger.Debug("evaluation complete",
		"session_id", g.SessionID(),
		"derived", len(res.Derived),
		"iterations", res.Iterations)
	return res, nil
}

// Match is one consistent binding of a full antecedent together with
// the facts that satisfied each pattern, in pattern order.
type Match struct {
	Bindings   fact.Bindings
	Supporting []fact.Fact
}

// MatchAntecedent joins the antecedent patterns against facts in
// declaration order, threading one consistent binding set through all
// patterns. Session graphs are small, so a nested scan per pattern is
// fine; no query planning. Ranking reuses it to recompute session-wide
// support for states derived in earlier turns.
func MatchAntecedent(facts []fact.Fact, patterns []fact.Pattern) []Match {
	matches := []Match{{Bindings: fact.Bindings{}}}
	for _, p := range patterns {
		var next []Match
		for _, m := range matches {
			for _, f := range facts {
				extended, ok := p.Match(f, m.Bindings)
				if !ok {
					continue
				}
				supporting := make([]fact.Fact, len(m.Supporting), len(m.Supporting)+1)
				copy(supporting, m.Supporting)
				next = append(next, Match{
					Bindings:   extended,
					Supporting: append(supporting, f),
				})
			}
		}
		if len(next) == 0 {
			return nil
		}
		matches = next
	}
	return matches
}
