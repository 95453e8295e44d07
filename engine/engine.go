// Package engine orchestrates one conversation turn: safety gate,
// evidence ingestion, forward chaining, ranking, explanation, advisory
// escalation, and the audit record. The engine is read-only after
// construction and shared across sessions; callers serialize turns per
// session.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/wellgraph/wellgraph/audit"
	"github.com/wellgraph/wellgraph/catalog"
	"github.com/wellgraph/wellgraph/errors"
	"github.com/wellgraph/wellgraph/escalation"
	"github.com/wellgraph/wellgraph/evaluator"
	"github.com/wellgraph/wellgraph/evidence"
	"github.com/wellgraph/wellgraph/explain"
	"github.com/wellgraph/wellgraph/fact"
	"github.com/wellgraph/wellgraph/graph"
	"github.com/wellgraph/wellgraph/metric"
	"github.com/wellgraph/wellgraph/ranking"
	"github.com/wellgraph/wellgraph/vocabulary"
)

// Params bundles the engine's collaborators.
type Params struct {
	Catalog    *catalog.Catalog
	Vocabulary *vocabulary.Table
	Gate       *escalation.Gate
	Sink       audit.Sink
	Metrics    *metric.Metrics
	Logger     *slog.Logger
	// ExplainDepth bounds explanation reconstruction; zero selects the
	// default.
	ExplainDepth int
}

// Engine processes turns against session graphs.
type Engine struct {
	catalog   *catalog.Catalog
	vocab     *vocabulary.Table
	gate      *escalation.Gate
	evaluator *evaluator.Evaluator
	ranker    *ranking.Ranker
	explainer *explain.Explainer
	sink      audit.Sink
	metrics   *metric.Metrics
	logger    *slog.Logger
}

// New wires an Engine. Catalog and Vocabulary are required; Gate, Sink,
// Metrics, and Logger default to a standard gate, a no-op sink, fresh
// metrics, and slog.Default.
func New(p Params) (*Engine, error) {
	if p.Catalog == nil || p.Vocabulary == nil {
		return nil, errors.WrapFatal(
			errors.New("catalog and vocabulary are required"),
			"Engine", "New", "check params")
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if p.Gate == nil {
		p.Gate = escalation.NewGate(logger)
	}
	if p.Sink == nil {
		p.Sink = audit.NoopSink{}
	}
	if p.Metrics == nil {
		p.Metrics = metric.NewMetrics()
	}

	var explainOpts []explain.Option
	if p.ExplainDepth > 0 {
		explainOpts = append(explainOpts, explain.WithMaxDepth(p.ExplainDepth))
	}

	return &Engine{
		catalog:   p.Catalog,
		vocab:     p.Vocabulary,
		gate:      p.Gate,
		evaluator: evaluator.New(p.Catalog, logger),
		ranker:    ranking.New(p.Catalog, p.Vocabulary),
		explainer: explain.New(p.Catalog, p.Vocabulary, explainOpts...),
		sink:      p.Sink,
		metrics:   p.Metrics,
		logger:    logger.With("component", "Engine"),
	}, nil
}

// Response is the per-turn output handed to the API layer.
type Response struct {
	SessionID          string                     `json:"session_id"`
	Turn               int                        `json:"turn"`
	Escalation         escalation.Verdict         `json:"escalation"`
	Crisis             *escalation.CrisisPayload  `json:"crisis,omitempty"`
	States             []ranking.RankedState      `json:"states"`
	PrimaryState       string                     `json:"primary_state,omitempty"`
	Confidence         ranking.Confidence         `json:"confidence"`
	Explanations       []explain.Explanation      `json:"explanations,omitempty"`
	Advisory           escalation.Advisory        `json:"advisory"`
	NeedsClarification bool                       `json:"needs_clarification"`
	Clarification      string                     `json:"clarification,omitempty"`
	SkippedConcepts    []string                   `json:"skipped_concepts,omitempty"`
	AuditRef           string                     `json:"audit_ref"`
	Disclaimer         string                     `json:"disclaimer"`
}

// ProcessTurn runs one turn against g. The caller must serialize calls
// per session; different sessions may run in parallel. Either the turn
// fully completes and leaves one consistent graph state, or it fails
// and the graph is exactly as it was before the call.
func (e *Engine) ProcessTurn(ctx context.Context, g *graph.Graph, ev evidence.Evidence) (*Response, error) {
	started := time.Now()
	checkpoint := g.Export()
	turn := g.BeginTurn()
	logger := e.logger.With("session_id", g.SessionID(), "turn", turn)

	verdict := e.gate.Check(ev)
	appended, skipped := e.appendEvidence(g, ev, turn, logger)

	if verdict.Triggered {
		return e.escalate(ctx, g, turn, verdict, appended, skipped, logger, started)
	}

	evalStart := time.Now()
	res, err := e.evaluator.Evaluate(g)
	e.metrics.RecordEvaluateDuration(time.Since(evalStart))
	if err != nil {
		g.Rollback(checkpoint)
		e.metrics.RecordTurn("error")
		e.metrics.RecordError("Evaluator", "fatal")
		logger.Error("evaluation failed, turn aborted", "error", err)
		return nil, errors.WrapFatal(
			errors.Newf("%w: %v", errors.ErrTurnAborted, err),
			"Engine", "ProcessTurn", "evaluate rules")
	}

	for _, f := range res.Derived {
		if _, err := g.Add(f); err != nil {
			g.Rollback(checkpoint)
			e.metrics.RecordTurn("error")
			return nil, errors.WrapFatal(err, "Engine", "ProcessTurn", "commit derived facts")
		}
	}
	e.metrics.FactsDerived.Add(float64(len(res.Derived)))
	for _, id := range res.RulesFired {
		e.metrics.RecordRuleFiring(id)
	}

	rank := e.ranker.Rank(g)
	explanations := make([]explain.Explanation, 0, len(rank.States))
	for _, st := range rank.States {
		target := fact.Fact{
			Subject:   subjectFor(g.SessionID()),
			Predicate: vocabulary.StateRisk,
			Object:    st.State,
			Source:    fact.FromRule(st.RuleID),
		}
		explanations = append(explanations, e.explainer.Explain(g, res, target))
	}

	advisory := escalation.Advise(stateIDs(rank.States), e.hasPersistence(g))

	resp := &Response{
		SessionID:       g.SessionID(),
		Turn:            turn,
		Escalation:      verdict,
		States:          rank.States,
		PrimaryState:    rank.Primary(),
		Confidence:      rank.Confidence,
		Explanations:    explanations,
		Advisory:        advisory,
		SkippedConcepts: skipped,
		Disclaimer:      escalation.Disclaimer,
	}
	e.clarify(resp, ev, rank)

	contributing := append(factKeys(appended), factKeys(res.Derived)...)
	resp.AuditRef = audit.Ref(g.SessionID(), turn, contributing)
	e.writeAudit(ctx, audit.Record{
		ID:            audit.NewID(),
		SessionID:     g.SessionID(),
		Turn:          turn,
		RulesFired:    res.RulesFired,
		DerivedStates: stateIDs(rank.States),
		AdvisoryLevel: string(advisory.Level),
		Ref:           resp.AuditRef,
		CreatedAt:     time.Now().UTC(),
	}, logger)

	e.metrics.RecordTurn("ok")
	e.metrics.RecordTurnDuration(time.Since(started))
	logger.Info("turn processed",
		"appended", len(appended),
		"derived", len(res.Derived),
		"primary_state", resp.PrimaryState,
		"advisory", string(advisory.Level))
	return resp, nil
}

// escalate finishes a gate-triggered turn: evidence and the escalation
// marker stay on the graph for traceability, reasoning is skipped, and
// the fixed crisis payload is returned.
func (e *Engine) escalate(ctx context.Context, g *graph.Graph, turn int, verdict escalation.Verdict,
	appended []fact.Fact, skipped []string, logger *slog.Logger, started time.Time) (*Response, error) {

	marker := fact.Fact{
		Subject:   "session." + g.SessionID(),
		Predicate: vocabulary.SessionEscalated,
		Object:    markerConcept(verdict.Category),
		Source:    fact.FromTurn(turn),
	}
	if changed, err := g.Add(marker); err != nil {
		logger.Warn("escalation marker rejected", "error", err)
	} else if changed {
		appended = append(appended, marker)
	}

	crisis := escalation.Crisis()
	resp := &Response{
		SessionID:       g.SessionID(),
		Turn:            turn,
		Escalation:      verdict,
		Crisis:          &crisis,
		SkippedConcepts: skipped,
		Advisory: escalation.Advisory{
			Level:          escalation.LevelCritical,
			Reasons:        []string{"Safety gate triggered: " + string(verdict.Category)},
			Recommendation: crisis.Message,
			Disclaimer:     escalation.Disclaimer,
		},
		Disclaimer: escalation.Disclaimer,
	}
	resp.AuditRef = audit.Ref(g.SessionID(), turn, factKeys(appended))
	e.writeAudit(ctx, audit.Record{
		ID:                 audit.NewID(),
		SessionID:          g.SessionID(),
		Turn:               turn,
		Escalated:          true,
		EscalationCategory: string(verdict.Category),
		AdvisoryLevel:      string(escalation.LevelCritical),
		Ref:                resp.AuditRef,
		CreatedAt:          time.Now().UTC(),
	}, logger)

	e.metrics.RecordTurn("escalated")
	e.metrics.RecordEscalation(string(verdict.Category))
	e.metrics.RecordTurnDuration(time.Since(started))
	logger.Warn("turn escalated", "category", string(verdict.Category))
	return resp, nil
}

// appendEvidence adds the turn's evidence facts. Per-fact validation
// failures are logged and skipped rather than aborting the turn. A
// concept recurring from an earlier turn records repeated stress
// exposure on the graph.
func (e *Engine) appendEvidence(g *graph.Graph, ev evidence.Evidence, turn int, logger *slog.Logger) (appended []fact.Fact, skipped []string) {
	subject := subjectFor(g.SessionID())
	recurred := false

	add := func(predicate string, concepts []string) {
		for _, concept := range concepts {
			f := fact.Fact{Subject: subject, Predicate: predicate, Object: concept, Source: fact.FromTurn(turn)}
			changed, err := g.Add(f)
			if err != nil {
				logger.Warn("evidence fact skipped", "concept", concept, "error", err)
				skipped = append(skipped, concept)
				continue
			}
			if changed {
				appended = append(appended, f)
				continue
			}
			// Deduplicated: the concept was already on the graph. A
			// first occurrence in an earlier turn counts as recurrence.
			if existing := g.Query(fact.Pattern{Subject: subject, Predicate: predicate, Object: concept}); len(existing) == 1 {
				if !existing[0].Source.IsDerived() && existing[0].Source.Turn < turn {
					recurred = true
				}
			}
		}
	}
	add(vocabulary.EvidenceEmotion, ev.Emotions)
	add(vocabulary.EvidenceSymptom, ev.Symptoms)
	add(vocabulary.EvidenceTrigger, ev.Triggers)

	if recurred {
		rf := fact.Fact{
			Subject:   subject,
			Predicate: vocabulary.RiskFactor,
			Object:    vocabulary.RepeatedStressExposure,
			Source:    fact.FromTurn(turn),
		}
		if changed, err := g.Add(rf); err == nil && changed {
			appended = append(appended, rf)
			logger.Info("repeated stress exposure recorded")
		}
	}

	e.metrics.FactsAppended.Add(float64(len(appended)))
	return appended, skipped
}

func (e *Engine) clarify(resp *Response, ev evidence.Evidence, rank ranking.Ranking) {
	switch {
	case ev.IsEmpty() && len(rank.States) == 0:
		resp.NeedsClarification = true
		resp.Clarification = "Could you share a bit more about how you have been feeling?"
	case len(rank.States) == 0:
		resp.NeedsClarification = true
		resp.PrimaryState = vocabulary.NeedsMoreContext
		resp.Clarification = "Thanks for sharing. Could you tell me more about what has been going on?"
	}
}

func (e *Engine) hasPersistence(g *graph.Graph) bool {
	return g.Has(fact.Fact{
		Subject:   subjectFor(g.SessionID()),
		Predicate: vocabulary.RiskFactor,
		Object:    vocabulary.RepeatedStressExposure,
	})
}

func (e *Engine) writeAudit(ctx context.Context, rec audit.Record, logger *slog.Logger) {
	if err := e.sink.Append(ctx, rec); err != nil {
		// A lost audit record must not fail a completed turn.
		e.metrics.RecordError("AuditSink", "transient")
		logger.Warn("audit append failed", "error", err)
	}
}

func subjectFor(sessionID string) string { return "student." + sessionID }

func markerConcept(cat escalation.Category) string {
	if cat == escalation.CategorySuicidalIdeation {
		return vocabulary.SuicidalIdeationIndicator
	}
	return vocabulary.SelfHarmIndicator
}

func stateIDs(states []ranking.RankedState) []string {
	out := make([]string, len(states))
	for i, s := range states {
		out[i] = s.State
	}
	return out
}

func factKeys(facts []fact.Fact) []string {
	keys := make([]string, len(facts))
	for i, f := range facts {
		keys[i] = f.Key()
	}
	return keys
}
