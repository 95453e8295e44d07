// Package graph holds the per-session knowledge graph. A Graph is an
// insertion-ordered set of facts scoped to one conversation session,
// validated fail-closed against an immutable vocabulary table.
//
// A Graph is not safe for concurrent use. Callers serialize access per
// session; the HTTP gateway does this with a per-session mutex.
package graph

import (
	"log/slog"

	"github.com/wellgraph/wellgraph/errors"
	"github.com/wellgraph/wellgraph/fact"
	"github.com/wellgraph/wellgraph/vocabulary"
)

// Graph is a session-scoped triple store. Facts are deduplicated by
// their subject|predicate|object key; the first occurrence wins and
// keeps its provenance.
type Graph struct {
	sessionID string
	vocab     *vocabulary.Table
	logger    *slog.Logger

	facts []fact.Fact
	index map[string]int // fact key -> position in facts
	turn  int
}

// New creates an empty session graph validated against vocab.
func New(sessionID string, vocab *vocabulary.Table, logger *slog.Logger) *Graph {
	if logger == nil {
		logger = slog.Default()
	}
	return &Graph{
		sessionID: sessionID,
		vocab:     vocab,
		logger:    logger.With("component", "Graph", "session_id", sessionID),
		index:     make(map[string]int),
	}
}

// SessionID returns the owning session identifier.
func (g *Graph) SessionID() string { return g.sessionID }

// Turn returns the current turn counter. It is zero until the first
// BeginTurn call.
func (g *Graph) Turn() int { return g.turn }

// BeginTurn advances the turn counter and returns the new value.
func (g *Graph) BeginTurn() int {
	g.turn++
	return g.turn
}

// Add validates f against the vocabulary and appends it if not already
// present. It reports whether the graph changed. Validation is
// fail-closed: a structurally invalid fact or an unknown concept or
// predicate rejects the whole fact.
func (g *Graph) Add(f fact.Fact) (bool, error) {
	if err := g.validate(f); err != nil {
		return false, err
	}
	key := f.Key()
	if _, ok := g.index[key]; ok {
		return false, nil
	}
	g.index[key] = len(g.facts)
	g.facts = append(g.facts, f)
	return true, nil
}

func (g *Graph) validate(f fact.Fact) error {
	if err := f.Validate(); err != nil {
		return errors.WrapInvalid(
			errors.Newf("%w: %v", errors.ErrInvalidFact, err),
			"Graph", "Add", "validate fact")
	}
	if !g.vocab.HasPredicate(f.Predicate) {
		return errors.WrapInvalid(
			errors.Newf("%w: predicate %q", errors.ErrUnknownVocabulary, f.Predicate),
			"Graph", "Add", "validate predicate")
	}
	if !g.vocab.HasConcept(f.Object) {
		return errors.WrapInvalid(
			errors.Newf("%w: concept %q", errors.ErrUnknownVocabulary, f.Object),
			"Graph", "Add", "validate concept")
	}
	return nil
}

// Has reports whether an equal fact (ignoring provenance) is present.
func (g *Graph) Has(f fact.Fact) bool {
	_, ok := g.index[f.Key()]
	return ok
}

// Query returns every fact matching p, in insertion order.
func (g *Graph) Query(p fact.Pattern) []fact.Fact {
	var out []fact.Fact
	for _, f := range g.facts {
		if _, ok := p.Match(f, nil); ok {
			out = append(out, f)
		}
	}
	return out
}

// All returns the facts in insertion order. The returned slice is a
// copy; mutating it does not affect the graph.
func (g *Graph) All() []fact.Fact {
	out := make([]fact.Fact, len(g.facts))
	copy(out, g.facts)
	return out
}

// Len returns the number of facts in the graph.
func (g *Graph) Len() int { return len(g.facts) }

// Remove deletes the fact with the same key as f, if present, and
// reports whether the graph changed. Removal preserves the insertion
// order of the remaining facts. The engine uses it to roll back a turn
// whose evaluation failed.
func (g *Graph) Remove(f fact.Fact) bool {
	pos, ok := g.index[f.Key()]
	if !ok {
		return false
	}
	g.facts = append(g.facts[:pos], g.facts[pos+1:]...)
	delete(g.index, f.Key())
	for i := pos; i < len(g.facts); i++ {
		g.index[g.facts[i].Key()] = i
	}
	return true
}

// Snapshot captures the current state for persistence. Turn is the
// turn counter at capture time.
type Snapshot struct {
	SessionID string      `json:"session_id"`
	Turn      int         `json:"turn"`
	Facts     []fact.Fact `json:"facts"`
}

// Export captures the graph as a Snapshot.
func (g *Graph) Export() Snapshot {
	return Snapshot{
		SessionID: g.sessionID,
		Turn:      g.turn,
		Facts:     g.All(),
	}
}

// Rollback restores state captured by Export from this same graph.
// Validation is skipped; the facts were accepted before. The engine
// uses it to discard a turn whose evaluation failed.
func (g *Graph) Rollback(snap Snapshot) {
	g.facts = make([]fact.Fact, len(snap.Facts))
	copy(g.facts, snap.Facts)
	g.index = make(map[string]int, len(snap.Facts))
	for i, f := range g.facts {
		g.index[f.Key()] = i
	}
	g.turn = snap.Turn
}

// Hydrate restores a previously exported snapshot into an empty graph.
// Facts are re-validated against the current vocabulary so a snapshot
// written under a wider vocabulary cannot smuggle unknown concepts in.
func (g *Graph) Hydrate(snap Snapshot) error {
	if len(g.facts) > 0 {
		return errors.WrapInvalid(
			errors.New("hydrate target not empty"),
			"Graph", "Hydrate", "check state")
	}
	for _, f := range snap.Facts {
		if _, err := g.Add(f); err != nil {
			return errors.Wrap(err, "Graph", "Hydrate", "restore fact")
		}
	}
	g.turn = snap.Turn
	g.logger.Debug("graph hydrated", "facts", len(g.facts), "turn", g.turn)
	return nil
}
