// Package ranking orders derived risk states for presentation. Scoring
// is pure integer arithmetic over counts: rule priority, distinct
// supporting evidence, and persistence across turns. Ranking never adds
// or suppresses a state, it only orders what the evaluator derived.
package ranking

import (
	"fmt"
	"sort"

	"github.com/wellgraph/wellgraph/catalog"
	"github.com/wellgraph/wellgraph/evaluator"
	"github.com/wellgraph/wellgraph/fact"
	"github.com/wellgraph/wellgraph/graph"
	"github.com/wellgraph/wellgraph/vocabulary"
)

// RankedState is one derived risk state with its score breakdown.
type RankedState struct {
	State             string `json:"state"`
	Label             string `json:"label"`
	RuleID            string `json:"rule_id"`
	Priority          int    `json:"priority"`
	EvidenceCount     int    `json:"evidence_count"`
	PersistenceFactor int    `json:"persistence_factor"`
	Score             int    `json:"score"`
	Rationale         string `json:"rationale"`
}

// Confidence is a symbolic label computed from counts only. No
// probabilities anywhere.
type Confidence string

const (
	ConfidenceLow    Confidence = "LOW"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceHigh   Confidence = "HIGH"
)

// Ranking is the ordered output for one turn.
type Ranking struct {
	States     []RankedState `json:"states"`
	Confidence Confidence    `json:"confidence"`
}

// Primary returns the top-ranked state id, or empty when no state was
// derived.
func (r Ranking) Primary() string {
	if len(r.States) == 0 {
		return ""
	}
	return r.States[0].State
}

// Ranker scores risk states against the session graph. Read-only over
// the catalog and vocabulary; safe for concurrent use across sessions.
type Ranker struct {
	catalog *catalog.Catalog
	vocab   *vocabulary.Table
}

// New creates a Ranker.
func New(cat *catalog.Catalog, vocab *vocabulary.Table) *Ranker {
	return &Ranker{catalog: cat, vocab: vocab}
}

// Rank orders every risk-state fact in the graph, newly derived or
// carried over from earlier turns.
//
// Score = rulePriority x evidenceCount x persistenceFactor, where
// evidenceCount is the number of distinct facts in the state's support
// closure and persistenceFactor is the number of distinct turns that
// contributed at least one raw evidence fact (never below 1). Ties
// break by rule id, then state id, giving a total order.
func (r *Ranker) Rank(g *graph.Graph) Ranking {
	facts := g.All()
	states := g.Query(fact.Pattern{Subject: "?s", Predicate: vocabulary.StateRisk, Object: "?state"})

	ranked := make([]RankedState, 0, len(states))
	rulesSeen := make(map[string]bool)
	categories := make(map[vocabulary.Category]bool)
	totalEvidence := make(map[string]bool)
	persistent := false

	for _, st := range states {
		support := r.supportClosure(facts, st)
		evidenceCount := len(support)
		persistence := distinctTurns(support)
		if persistence < 1 {
			persistence = 1
		}
		if persistence > 1 {
			persistent = true
		}

		priority := 1
		ruleID := st.Source.RuleID
		if rule, ok := r.catalog.Rule(ruleID); ok {
			priority = rule.Priority
		}
		for _, f := range support {
			totalEvidence[f.Key()] = true
			if !f.Source.IsDerived() {
				categories[r.vocab.ConceptCategory(f.Object)] = true
			}
		}
		rulesSeen[ruleID] = true

		score := priority * evidenceCount * persistence
		ranked = append(ranked, RankedState{
			State:             st.Object,
			Label:             r.vocab.Label(st.Object),
			RuleID:            ruleID,
			Priority:          priority,
			EvidenceCount:     evidenceCount,
			PersistenceFactor: persistence,
			Score:             score,
			Rationale: fmt.Sprintf("%s: rule %s (priority %d), %d supporting fact(s) across %d turn(s), score %d",
				st.Object, ruleID, priority, evidenceCount, persistence, score),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		if ranked[i].RuleID != ranked[j].RuleID {
			return ranked[i].RuleID < ranked[j].RuleID
		}
		return ranked[i].State < ranked[j].State
	})

	return Ranking{
		States:     ranked,
		Confidence: confidence(len(rulesSeen), len(categories), len(totalEvidence), persistent),
	}
}

// supportClosure collects the distinct facts supporting st: the direct
// antecedent matches of its crediting rule, expanded recursively
// through derived supporters. The derivation order of the evaluator is
// acyclic, but hydrated graphs are external input, so the walk is
// visit-guarded anyway.
func (r *Ranker) supportClosure(facts []fact.Fact, st fact.Fact) []fact.Fact {
	var out []fact.Fact
	seen := map[string]bool{st.Key(): true}
	r.collectSupport(facts, st, seen, &out)
	return out
}

func (r *Ranker) collectSupport(facts []fact.Fact, target fact.Fact, seen map[string]bool, out *[]fact.Fact) {
	rule, ok := r.catalog.Rule(target.Source.RuleID)
	if !ok {
		return
	}
	for _, m := range evaluator.MatchAntecedent(facts, rule.Antecedent) {
		derived, err := rule.Consequent.Instantiate(m.Bindings, target.Source)
		if err != nil || !derived.Equal(target) {
			continue
		}
		for _, f := range m.Supporting {
			if seen[f.Key()] {
				continue
			}
			seen[f.Key()] = true
			*out = append(*out, f)
			if f.Source.IsDerived() {
				r.collectSupport(facts, f, seen, out)
			}
		}
	}
}

func distinctTurns(support []fact.Fact) int {
	turns := make(map[int]bool)
	for _, f := range support {
		if !f.Source.IsDerived() && f.Source.Turn > 0 {
			turns[f.Source.Turn] = true
		}
	}
	return len(turns)
}

// confidence maps symbolic signals to a label. Thresholds follow the
// original scoring: rules fired, category diversity, persistence, and
// evidence volume each add to a small integer score.
func confidence(rules, categories, evidence int, persistent bool) Confidence {
	score := 0
	switch {
	case rules >= 3:
		score += 2
	case rules >= 2:
		score++
	}
	switch {
	case categories >= 3:
		score += 2
	case categories >= 2:
		score++
	}
	if persistent {
		score++
	}
	if evidence >= 5 {
		score++
	}

	switch {
	case score >= 5:
		return ConfidenceHigh
	case score >= 3:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
