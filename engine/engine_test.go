package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wellgraph/wellgraph/audit"
	"github.com/wellgraph/wellgraph/catalog"
	"github.com/wellgraph/wellgraph/errors"
	"github.com/wellgraph/wellgraph/escalation"
	"github.com/wellgraph/wellgraph/evidence"
	"github.com/wellgraph/wellgraph/fact"
	"github.com/wellgraph/wellgraph/graph"
	"github.com/wellgraph/wellgraph/vocabulary"
)

// captureSink records every appended audit record for assertions.
type captureSink struct {
	records []audit.Record
}

func (s *captureSink) Append(_ context.Context, rec audit.Record) error {
	s.records = append(s.records, rec)
	return nil
}

func (s *captureSink) Close() error { return nil }

func newTestEngine(t *testing.T, sink audit.Sink) *Engine {
	t.Helper()
	cat, err := catalog.Load(catalog.Builtin(), vocabulary.Standard())
	require.NoError(t, err)
	eng, err := New(Params{
		Catalog:    cat,
		Vocabulary: vocabulary.Standard(),
		Sink:       sink,
	})
	require.NoError(t, err)
	return eng
}

func newSession(id string) *graph.Graph {
	return graph.New(id, vocabulary.Standard(), nil)
}

func TestProcessTurnDerivesAnxietyRisk(t *testing.T) {
	sink := &captureSink{}
	eng := newTestEngine(t, sink)
	g := newSession("sess-1")

	resp, err := eng.ProcessTurn(context.Background(), g, evidence.Evidence{
		Emotions: []string{vocabulary.Anxiety},
		Symptoms: []string{vocabulary.Insomnia},
		Triggers: []string{vocabulary.ExamPressure},
	})
	require.NoError(t, err)

	assert.Equal(t, "sess-1", resp.SessionID)
	assert.Equal(t, 1, resp.Turn)
	assert.False(t, resp.Escalation.Triggered)
	assert.Nil(t, resp.Crisis)
	assert.False(t, resp.NeedsClarification)
	assert.Equal(t, escalation.Disclaimer, resp.Disclaimer)

	require.Len(t, resp.States, 2)
	assert.Equal(t, vocabulary.AnxietyRisk, resp.PrimaryState)
	assert.Equal(t, vocabulary.AnxietyRisk, resp.States[0].State)
	assert.Equal(t, vocabulary.SleepDisturbance, resp.States[1].State)

	require.Len(t, resp.Explanations, 2)
	steps := resp.Explanations[0].Steps
	assert.Contains(t, steps, "Detected Anxiety in turn 1")
	assert.Contains(t, steps, "Detected Insomnia in turn 1")
	assert.Contains(t, steps, "Detected ExamPressure in turn 1")

	// 3 evidence facts + 2 derived states.
	assert.Equal(t, 5, g.Len())
	assert.True(t, g.Has(fact.Fact{
		Subject:   "student.sess-1",
		Predicate: vocabulary.StateRisk,
		Object:    vocabulary.AnxietyRisk,
	}))

	require.Len(t, sink.records, 1)
	rec := sink.records[0]
	assert.False(t, rec.Escalated)
	assert.Contains(t, rec.RulesFired, "R_ANX_01")
	assert.Contains(t, rec.DerivedStates, vocabulary.AnxietyRisk)
	assert.Equal(t, resp.AuditRef, rec.Ref)
	assert.NotEmpty(t, rec.ID)
}

func TestProcessTurnIdempotentEvidence(t *testing.T) {
	eng := newTestEngine(t, nil)
	g := newSession("sess-1")

	// The same concept twice in one turn must land as one fact and must
	// not count as recurrence.
	resp, err := eng.ProcessTurn(context.Background(), g, evidence.Evidence{
		Symptoms: []string{vocabulary.Insomnia, vocabulary.Insomnia},
	})
	require.NoError(t, err)

	assert.Len(t, g.Query(fact.Pattern{
		Subject:   "student.sess-1",
		Predicate: vocabulary.EvidenceSymptom,
		Object:    vocabulary.Insomnia,
	}), 1)
	assert.False(t, g.Has(fact.Fact{
		Subject:   "student.sess-1",
		Predicate: vocabulary.RiskFactor,
		Object:    vocabulary.RepeatedStressExposure,
	}))
	assert.Equal(t, vocabulary.SleepDisturbance, resp.PrimaryState)
}

func TestProcessTurnEscalationShortCircuits(t *testing.T) {
	sink := &captureSink{}
	eng := newTestEngine(t, sink)
	g := newSession("sess-1")

	resp, err := eng.ProcessTurn(context.Background(), g, evidence.Evidence{
		Emotions: []string{vocabulary.Anxiety},
		Text:     "Sometimes I think about how I might hurt myself.",
	})
	require.NoError(t, err)

	assert.True(t, resp.Escalation.Triggered)
	assert.Equal(t, escalation.CategorySelfHarm, resp.Escalation.Category)
	require.NotNil(t, resp.Crisis)
	assert.Equal(t, escalation.Crisis(), *resp.Crisis)
	assert.Equal(t, escalation.LevelCritical, resp.Advisory.Level)

	// Reasoning is skipped entirely.
	assert.Empty(t, resp.States)
	assert.Empty(t, resp.Explanations)
	assert.Empty(t, g.Query(fact.Pattern{
		Subject:   "?s",
		Predicate: vocabulary.StateRisk,
		Object:    "?o",
	}))

	// Evidence and the escalation marker stay for traceability.
	assert.True(t, g.Has(fact.Fact{
		Subject:   "student.sess-1",
		Predicate: vocabulary.EvidenceEmotion,
		Object:    vocabulary.Anxiety,
	}))
	assert.True(t, g.Has(fact.Fact{
		Subject:   "session.sess-1",
		Predicate: vocabulary.SessionEscalated,
		Object:    vocabulary.SelfHarmIndicator,
	}))

	require.Len(t, sink.records, 1)
	rec := sink.records[0]
	assert.True(t, rec.Escalated)
	assert.Equal(t, string(escalation.CategorySelfHarm), rec.EscalationCategory)
	assert.Equal(t, resp.AuditRef, rec.Ref)
}

func TestProcessTurnRecurrenceAddsRepeatedStressExposure(t *testing.T) {
	eng := newTestEngine(t, nil)
	g := newSession("sess-1")
	ev := evidence.Evidence{Emotions: []string{vocabulary.Anxiety}}

	_, err := eng.ProcessTurn(context.Background(), g, ev)
	require.NoError(t, err)
	assert.False(t, g.Has(fact.Fact{
		Subject:   "student.sess-1",
		Predicate: vocabulary.RiskFactor,
		Object:    vocabulary.RepeatedStressExposure,
	}))

	// The same concept on a later turn is recurrence.
	resp, err := eng.ProcessTurn(context.Background(), g, ev)
	require.NoError(t, err)
	assert.True(t, g.Has(fact.Fact{
		Subject:   "student.sess-1",
		Predicate: vocabulary.RiskFactor,
		Object:    vocabulary.RepeatedStressExposure,
	}))

	// Anxiety plus repeated exposure fires R_ANX_02, and the derived
	// AnxietyRisk chains into ModerateRisk through R_RISK_01a. The
	// higher-priority chained state wins the ranking.
	require.Len(t, resp.States, 2)
	assert.Equal(t, vocabulary.ModerateRisk, resp.PrimaryState)
	assert.Equal(t, "R_RISK_01a", resp.States[0].RuleID)
	assert.Equal(t, vocabulary.AnxietyRisk, resp.States[1].State)
	assert.Equal(t, "R_ANX_02", resp.States[1].RuleID)
	assert.Equal(t, 2, resp.States[1].PersistenceFactor)
}

func TestProcessTurnSkipsUnknownConcepts(t *testing.T) {
	eng := newTestEngine(t, nil)
	g := newSession("sess-1")

	resp, err := eng.ProcessTurn(context.Background(), g, evidence.Evidence{
		Emotions: []string{"Despondency", vocabulary.Anxiety},
		Symptoms: []string{vocabulary.Insomnia},
		Triggers: []string{vocabulary.ExamPressure},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Despondency"}, resp.SkippedConcepts)
	// The valid evidence is still processed.
	assert.Equal(t, vocabulary.AnxietyRisk, resp.PrimaryState)
}

func TestProcessTurnClarification(t *testing.T) {
	eng := newTestEngine(t, nil)

	t.Run("no evidence", func(t *testing.T) {
		g := newSession("sess-1")
		resp, err := eng.ProcessTurn(context.Background(), g, evidence.Evidence{})
		require.NoError(t, err)
		assert.True(t, resp.NeedsClarification)
		assert.Empty(t, resp.PrimaryState)
		assert.NotEmpty(t, resp.Clarification)
	})

	t.Run("evidence but no derivable state", func(t *testing.T) {
		g := newSession("sess-2")
		resp, err := eng.ProcessTurn(context.Background(), g, evidence.Evidence{
			Emotions: []string{vocabulary.Anxiety},
		})
		require.NoError(t, err)
		assert.True(t, resp.NeedsClarification)
		assert.Equal(t, vocabulary.NeedsMoreContext, resp.PrimaryState)
		assert.Empty(t, resp.States)
	})
}

func TestProcessTurnRollbackOnEvaluatorFailure(t *testing.T) {
	vocab := vocabulary.NewBuilder().
		Concept("n1", vocabulary.CategoryTrigger).
		Concept("n2", vocabulary.CategoryTrigger).
		Concept("n3", vocabulary.CategoryTrigger).
		Concept("n4", vocabulary.CategoryTrigger).
		Concept("n5", vocabulary.CategoryTrigger).
		Concept("n6", vocabulary.CategoryTrigger).
		Predicate("chain.link.next").
		Build()
	transitive := catalog.Rule{
		ID:          "R_TRANS",
		Description: "Transitive closure over links",
		Antecedent: []fact.Pattern{
			{Subject: "?a", Predicate: "chain.link.next", Object: "?b"},
			{Subject: "?b", Predicate: "chain.link.next", Object: "?c"},
		},
		Consequent: fact.Pattern{Subject: "?a", Predicate: "chain.link.next", Object: "?c"},
		Priority:   1,
	}
	cat, err := catalog.Load([]catalog.Rule{transitive}, vocab)
	require.NoError(t, err)
	eng, err := New(Params{Catalog: cat, Vocabulary: vocab})
	require.NoError(t, err)

	g := graph.New("sess-1", vocab, nil)
	links := []string{"n1", "n2", "n3", "n4", "n5", "n6"}
	for i := 0; i+1 < len(links); i++ {
		_, err := g.Add(fact.Fact{Subject: links[i], Predicate: "chain.link.next", Object: links[i+1], Source: fact.FromTurn(0)})
		require.NoError(t, err)
	}
	before := g.Export()

	_, err = eng.ProcessTurn(context.Background(), g, evidence.Evidence{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrTurnAborted))
	assert.True(t, errors.IsFatal(err))

	after := g.Export()
	assert.Equal(t, before.Turn, after.Turn)
	assert.Equal(t, before.Facts, after.Facts)
}

func TestProcessTurnMonotonicAcrossTurns(t *testing.T) {
	eng := newTestEngine(t, nil)
	g := newSession("sess-1")

	_, err := eng.ProcessTurn(context.Background(), g, evidence.Evidence{
		Emotions: []string{vocabulary.Anxiety},
		Symptoms: []string{vocabulary.Insomnia},
		Triggers: []string{vocabulary.ExamPressure},
	})
	require.NoError(t, err)
	lenAfterFirst := g.Len()

	resp, err := eng.ProcessTurn(context.Background(), g, evidence.Evidence{
		Symptoms: []string{vocabulary.RapidHeartRate},
	})
	require.NoError(t, err)

	// Earlier derivations stay; the second turn only grows the graph.
	assert.Greater(t, g.Len(), lenAfterFirst)
	assert.True(t, g.Has(fact.Fact{
		Subject:   "student.sess-1",
		Predicate: vocabulary.StateRisk,
		Object:    vocabulary.AnxietyRisk,
	}))
	assert.True(t, g.Has(fact.Fact{
		Subject:   "student.sess-1",
		Predicate: vocabulary.StateRisk,
		Object:    vocabulary.PanicRisk,
	}))
	assert.Equal(t, 2, resp.Turn)
}

func TestProcessTurnAuditRefStable(t *testing.T) {
	run := func() string {
		eng := newTestEngine(t, nil)
		g := newSession("sess-1")
		resp, err := eng.ProcessTurn(context.Background(), g, evidence.Evidence{
			Emotions: []string{vocabulary.Anxiety},
			Symptoms: []string{vocabulary.Insomnia},
			Triggers: []string{vocabulary.ExamPressure},
		})
		require.NoError(t, err)
		return resp.AuditRef
	}

	first := run()
	assert.Len(t, first, 64)
	for i := 0; i < 4; i++ {
		assert.Equal(t, first, run())
	}
}
