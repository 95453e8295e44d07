// Package explain reconstructs human-readable causal traces for derived
// facts: which rule fired, on which bindings, supported by which
// evidence, recursively down to the raw turn evidence. Output is
// deterministic for a fixed graph and catalog.
package explain

import (
	"fmt"
	"strings"

	"github.com/wellgraph/wellgraph/catalog"
	"github.com/wellgraph/wellgraph/evaluator"
	"github.com/wellgraph/wellgraph/fact"
	"github.com/wellgraph/wellgraph/graph"
	"github.com/wellgraph/wellgraph/vocabulary"
)

// DefaultMaxDepth bounds the recursive chain reconstruction. The
// evaluator's derivation graph is acyclic, but hydrated graphs are
// external input, so depth is bounded anyway.
const DefaultMaxDepth = 8

// Explanation is the causal trace for one derived risk state.
type Explanation struct {
	State              string   `json:"state"`
	Label              string   `json:"label"`
	Steps              []string `json:"steps"`
	CausalChain        []string `json:"causal_chain"`
	UncertaintyDrivers []string `json:"uncertainty_drivers"`
	Notes              string   `json:"notes"`
}

// Explainer renders explanations against a catalog and vocabulary.
// Safe for concurrent use across sessions.
type Explainer struct {
	catalog  *catalog.Catalog
	vocab    *vocabulary.Table
	maxDepth int
}

// Option configures an Explainer.
type Option func(*Explainer)

// WithMaxDepth overrides the recursion bound.
func WithMaxDepth(d int) Option {
	return func(e *Explainer) {
		if d > 0 {
			e.maxDepth = d
		}
	}
}

// New creates an Explainer.
func New(cat *catalog.Catalog, vocab *vocabulary.Table, opts ...Option) *Explainer {
	e := &Explainer{catalog: cat, vocab: vocab, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Explain builds the trace for one risk-state fact. Derivation records
// from the current turn are preferred; states derived in earlier turns
// are reconstructed by re-matching their crediting rule against the
// graph, so explanations survive session hydration.
func (e *Explainer) Explain(g *graph.Graph, res *evaluator.Result, target fact.Fact) Explanation {
	facts := g.All()

	var steps []string
	seen := make(map[string]bool)
	e.walk(facts, res, target, 0, seen, &steps)

	leaves := e.rawLeaves(facts, res, target)
	rules := e.firingRules(facts, res, target)

	return Explanation{
		State:              target.Object,
		Label:              e.vocab.Label(target.Object),
		Steps:              steps,
		CausalChain:        e.causalChain(leaves, rules, target.Object),
		UncertaintyDrivers: e.uncertaintyDrivers(leaves, rules),
		Notes:              stateNotes(target.Object),
	}
}

// walk appends steps post-order: the supports of a derived fact come
// before its own rule firing line, so a reader sees evidence first.
func (e *Explainer) walk(facts []fact.Fact, res *evaluator.Result, f fact.Fact, depth int, seen map[string]bool, steps *[]string) {
	if seen[f.Key()] || depth > e.maxDepth {
		return
	}
	seen[f.Key()] = true

	if !f.Source.IsDerived() {
		*steps = append(*steps, fmt.Sprintf("Detected %s in turn %d", f.Object, f.Source.Turn))
		return
	}

	d, ok := e.derivationFor(facts, res, f)
	if !ok {
		*steps = append(*steps, fmt.Sprintf("Derived %s by rule %s", f.Object, f.Source.RuleID))
		return
	}
	for _, support := range d.Supporting {
		e.walk(facts, res, support, depth+1, seen, steps)
	}
	rule, _ := e.catalog.Rule(d.RuleID)
	*steps = append(*steps, fmt.Sprintf("Rule %s fired: %s", d.RuleID, rule.Summary()))
}

// derivationFor resolves the derivation record for f, falling back to
// re-matching the crediting rule for facts derived before this turn.
func (e *Explainer) derivationFor(facts []fact.Fact, res *evaluator.Result, f fact.Fact) (evaluator.Derivation, bool) {
	if res != nil {
		if d, ok := res.Derivation(f); ok {
			return d, true
		}
	}
	rule, ok := e.catalog.Rule(f.Source.RuleID)
	if !ok {
		return evaluator.Derivation{}, false
	}
	for _, m := range evaluator.MatchAntecedent(facts, rule.Antecedent) {
		derived, err := rule.Consequent.Instantiate(m.Bindings, f.Source)
		if err != nil || !derived.Equal(f) {
			continue
		}
		return evaluator.Derivation{
			Fact:       f,
			RuleID:     rule.ID,
			Bindings:   m.Bindings,
			Supporting: m.Supporting,
		}, true
	}
	return evaluator.Derivation{}, false
}

// rawLeaves collects the distinct raw evidence facts under target, in
// trace order.
func (e *Explainer) rawLeaves(facts []fact.Fact, res *evaluator.Result, target fact.Fact) []fact.Fact {
	var leaves []fact.Fact
	seen := make(map[string]bool)
	var visit func(f fact.Fact, depth int)
	visit = func(f fact.Fact, depth int) {
		if seen[f.Key()] || depth > e.maxDepth {
			return
		}
		seen[f.Key()] = true
		if !f.Source.IsDerived() {
			leaves = append(leaves, f)
			return
		}
		if d, ok := e.derivationFor(facts, res, f); ok {
			for _, s := range d.Supporting {
				visit(s, depth+1)
			}
		}
	}
	visit(target, 0)
	return leaves
}

// firingRules collects the distinct rule ids in the chain under target.
func (e *Explainer) firingRules(facts []fact.Fact, res *evaluator.Result, target fact.Fact) []string {
	var rules []string
	seenRule := make(map[string]bool)
	seenFact := make(map[string]bool)
	var visit func(f fact.Fact, depth int)
	visit = func(f fact.Fact, depth int) {
		if seenFact[f.Key()] || depth > e.maxDepth || !f.Source.IsDerived() {
			return
		}
		seenFact[f.Key()] = true
		if _, known := e.catalog.Rule(f.Source.RuleID); known && !seenRule[f.Source.RuleID] {
			seenRule[f.Source.RuleID] = true
			rules = append(rules, f.Source.RuleID)
		}
		if d, ok := e.derivationFor(facts, res, f); ok {
			for _, s := range d.Supporting {
				visit(s, depth+1)
			}
		}
	}
	visit(target, 0)
	return rules
}

func (e *Explainer) causalChain(leaves []fact.Fact, rules []string, state string) []string {
	byCategory := make(map[vocabulary.Category][]string)
	for _, f := range leaves {
		cat := e.vocab.ConceptCategory(f.Object)
		byCategory[cat] = append(byCategory[cat], e.vocab.Label(f.Object))
	}

	var chain []string
	if v := byCategory[vocabulary.CategoryEmotion]; len(v) > 0 {
		chain = append(chain, "Emotional state observed: "+strings.Join(v, ", "))
	}
	if v := byCategory[vocabulary.CategorySymptom]; len(v) > 0 {
		chain = append(chain, "Symptoms manifested: "+strings.Join(v, ", "))
	}
	if v := byCategory[vocabulary.CategoryTrigger]; len(v) > 0 {
		chain = append(chain, "Triggers identified: "+strings.Join(v, ", "))
	}
	if v := byCategory[vocabulary.CategoryRiskFactor]; len(v) > 0 {
		chain = append(chain, "Risk factors present: "+strings.Join(v, ", "))
	}
	if len(rules) > 0 {
		descs := make([]string, 0, len(rules))
		for _, id := range rules {
			if r, ok := e.catalog.Rule(id); ok && r.Description != "" {
				descs = append(descs, r.Description)
			} else {
				descs = append(descs, id)
			}
		}
		chain = append(chain, "Reasoning patterns matched: "+strings.Join(descs, "; "))
	}
	chain = append(chain, "State inferred: "+e.vocab.Label(state))
	return chain
}

// uncertaintyDrivers lists symbolic limits of the inference. These are
// explanatory strings, never scores, and do not affect ranking.
func (e *Explainer) uncertaintyDrivers(leaves []fact.Fact, rules []string) []string {
	var drivers []string

	if len(leaves) < 3 {
		drivers = append(drivers, "Limited evidence: fewer than 3 distinct supporting facts")
	}
	switch len(rules) {
	case 0:
		drivers = append(drivers, "No rule chain: state was not derived by the current catalog")
	case 1:
		drivers = append(drivers, "Single reasoning pattern: only one rule in the chain")
	}

	categories := make(map[vocabulary.Category]bool)
	hasPersistence := false
	hasSymptom := false
	hasEmotion := false
	hasTrigger := false
	for _, f := range leaves {
		cat := e.vocab.ConceptCategory(f.Object)
		categories[cat] = true
		switch cat {
		case vocabulary.CategoryRiskFactor:
			hasPersistence = true
		case vocabulary.CategorySymptom:
			hasSymptom = true
		case vocabulary.CategoryEmotion:
			hasEmotion = true
		case vocabulary.CategoryTrigger:
			hasTrigger = true
		}
	}
	if !hasPersistence && len(leaves) > 0 {
		drivers = append(drivers, "Missing persistence: no repeated stress exposure detected")
	}
	if len(categories) < 2 {
		drivers = append(drivers, "Weak causal diversity: evidence from only one category")
	}
	if hasEmotion && !hasSymptom {
		drivers = append(drivers, "No physiological symptoms: emotional evidence only")
	}
	if !hasTrigger {
		drivers = append(drivers, "No situational triggers identified")
	}
	return drivers
}
