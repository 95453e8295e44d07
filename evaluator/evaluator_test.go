package evaluator

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wellgraph/wellgraph/catalog"
	"github.com/wellgraph/wellgraph/errors"
	"github.com/wellgraph/wellgraph/fact"
	"github.com/wellgraph/wellgraph/graph"
	"github.com/wellgraph/wellgraph/vocabulary"
)

func builtinEvaluator(t *testing.T) *Evaluator {
	t.Helper()
	cat, err := catalog.Load(catalog.Builtin(), vocabulary.Standard())
	require.NoError(t, err)
	return New(cat, nil)
}

func seedGraph(t *testing.T, facts ...fact.Fact) *graph.Graph {
	t.Helper()
	g := graph.New("sess-1", vocabulary.Standard(), nil)
	for _, f := range facts {
		_, err := g.Add(f)
		require.NoError(t, err)
	}
	return g
}

func evidence(predicate, concept string, turn int) fact.Fact {
	return fact.Fact{
		Subject:   "student.sess-1",
		Predicate: predicate,
		Object:    concept,
		Source:    fact.FromTurn(turn),
	}
}

func TestAnxietyRuleDerivesSingleState(t *testing.T) {
	g := seedGraph(t,
		evidence(vocabulary.EvidenceEmotion, vocabulary.Anxiety, 1),
		evidence(vocabulary.EvidenceSymptom, vocabulary.Insomnia, 1),
		evidence(vocabulary.EvidenceTrigger, vocabulary.ExamPressure, 1),
	)

	res, err := builtinEvaluator(t).Evaluate(g)
	require.NoError(t, err)

	// R_ANX_01 and R_SLEEP_01 both match this evidence.
	require.Len(t, res.Derived, 2)
	byKey := map[string]string{}
	for _, f := range res.Derived {
		byKey[f.Object] = res.Derivations[f.Key()].RuleID
	}
	assert.Equal(t, "R_ANX_01", byKey[vocabulary.AnxietyRisk])
	assert.Equal(t, "R_SLEEP_01", byKey[vocabulary.SleepDisturbance])

	d, ok := res.Derivation(fact.Fact{
		Subject:   "student.sess-1",
		Predicate: vocabulary.StateRisk,
		Object:    vocabulary.AnxietyRisk,
	})
	require.True(t, ok)
	assert.Equal(t, fact.Bindings{"?s": "student.sess-1"}, d.Bindings)
	require.Len(t, d.Supporting, 3)
	assert.Equal(t, vocabulary.Anxiety, d.Supporting[0].Object)
	assert.Equal(t, vocabulary.Insomnia, d.Supporting[1].Object)
	assert.Equal(t, vocabulary.ExamPressure, d.Supporting[2].Object)

	// Derived fact carries rule provenance.
	assert.Equal(t, fact.FromRule("R_ANX_01"), res.Derived[0].Source)
}

func TestEvaluateDoesNotMutateGraph(t *testing.T) {
	g := seedGraph(t,
		evidence(vocabulary.EvidenceEmotion, vocabulary.Anxiety, 1),
		evidence(vocabulary.EvidenceSymptom, vocabulary.Insomnia, 1),
		evidence(vocabulary.EvidenceTrigger, vocabulary.ExamPressure, 1),
	)
	before := g.All()

	_, err := builtinEvaluator(t).Evaluate(g)
	require.NoError(t, err)
	assert.Equal(t, before, g.All())
}

func TestChainedDerivationReachesFixpoint(t *testing.T) {
	// SocialWithdrawal unlocks R_ISO_01; the derived SocialIsolation
	// state then satisfies R_DEP_01 together with the overwhelm
	// evidence. Needs a second pass.
	g := seedGraph(t,
		evidence(vocabulary.EvidenceSymptom, vocabulary.SocialWithdrawal, 1),
		evidence(vocabulary.EvidenceEmotion, vocabulary.Overwhelm, 1),
	)

	res, err := builtinEvaluator(t).Evaluate(g)
	require.NoError(t, err)

	objects := make([]string, len(res.Derived))
	for i, f := range res.Derived {
		objects[i] = f.Object
	}
	assert.Equal(t, []string{vocabulary.SocialIsolation, vocabulary.DepressiveSpectrum}, objects)
	assert.Equal(t, 3, res.Iterations)

	// The depressive derivation cites the derived isolation fact.
	dep := res.Derivations["student.sess-1|"+vocabulary.StateRisk+"|"+vocabulary.DepressiveSpectrum]
	require.Len(t, dep.Supporting, 2)
	assert.Equal(t, vocabulary.SocialIsolation, dep.Supporting[0].Object)
	assert.True(t, dep.Supporting[0].Source.IsDerived())
}

func TestFirstMatchWinsDerivationCredit(t *testing.T) {
	// Both R_ANX_01 (priority 3) and R_ANX_02 (priority 3) can derive
	// AnxietyRisk here; R_ANX_01 is lexically first and gets credit.
	g := seedGraph(t,
		evidence(vocabulary.EvidenceEmotion, vocabulary.Anxiety, 1),
		evidence(vocabulary.EvidenceSymptom, vocabulary.Insomnia, 1),
		evidence(vocabulary.EvidenceTrigger, vocabulary.ExamPressure, 1),
		fact.Fact{Subject: "student.sess-1", Predicate: vocabulary.RiskFactor, Object: vocabulary.RepeatedStressExposure, Source: fact.FromTurn(1)},
	)

	res, err := builtinEvaluator(t).Evaluate(g)
	require.NoError(t, err)

	anx := res.Derivations["student.sess-1|"+vocabulary.StateRisk+"|"+vocabulary.AnxietyRisk]
	assert.Equal(t, "R_ANX_01", anx.RuleID)
}

func TestPanicChainToHighRisk(t *testing.T) {
	g := seedGraph(t,
		evidence(vocabulary.EvidenceEmotion, vocabulary.Anxiety, 1),
		evidence(vocabulary.EvidenceSymptom, vocabulary.RapidHeartRate, 1),
		fact.Fact{Subject: "student.sess-1", Predicate: vocabulary.RiskFactor, Object: vocabulary.RepeatedStressExposure, Source: fact.FromTurn(2)},
	)

	res, err := builtinEvaluator(t).Evaluate(g)
	require.NoError(t, err)

	var objects []string
	for _, f := range res.Derived {
		objects = append(objects, f.Object)
	}
	assert.Contains(t, objects, vocabulary.PanicRisk)
	assert.Contains(t, objects, vocabulary.HighRisk)
	assert.Contains(t, objects, vocabulary.AnxietyRisk)

	high := res.Derivations["student.sess-1|"+vocabulary.StateRisk+"|"+vocabulary.HighRisk]
	assert.Equal(t, "R_RISK_02", high.RuleID)
}

func TestAlreadyDerivedFactsAreNotRederived(t *testing.T) {
	g := seedGraph(t,
		evidence(vocabulary.EvidenceEmotion, vocabulary.Anxiety, 1),
		evidence(vocabulary.EvidenceSymptom, vocabulary.Insomnia, 1),
		evidence(vocabulary.EvidenceTrigger, vocabulary.ExamPressure, 1),
		fact.Fact{Subject: "student.sess-1", Predicate: vocabulary.StateRisk, Object: vocabulary.AnxietyRisk, Source: fact.FromRule("R_ANX_01")},
		fact.Fact{Subject: "student.sess-1", Predicate: vocabulary.StateRisk, Object: vocabulary.SleepDisturbance, Source: fact.FromRule("R_SLEEP_01")},
	)

	res, err := builtinEvaluator(t).Evaluate(g)
	require.NoError(t, err)
	assert.Empty(t, res.Derived)
	assert.Equal(t, 1, res.Iterations)
}

func TestEvaluateDeterminism(t *testing.T) {
	run := func() *Result {
		g := seedGraph(t,
			evidence(vocabulary.EvidenceEmotion, vocabulary.Anxiety, 1),
			evidence(vocabulary.EvidenceSymptom, vocabulary.RapidHeartRate, 1),
			evidence(vocabulary.EvidenceSymptom, vocabulary.SocialWithdrawal, 1),
			evidence(vocabulary.EvidenceEmotion, vocabulary.Overwhelm, 2),
			fact.Fact{Subject: "student.sess-1", Predicate: vocabulary.RiskFactor, Object: vocabulary.RepeatedStressExposure, Source: fact.FromTurn(2)},
		)
		res, err := builtinEvaluator(t).Evaluate(g)
		require.NoError(t, err)
		return res
	}

	first := run()
	for i := 0; i < 5; i++ {
		again := run()
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("evaluation not deterministic (-first +again):\n%s", diff)
		}
	}
}

func TestNonTerminatingRuleSet(t *testing.T) {
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

	// Closing a 6-node chain takes more passes than the 2-iteration
	// bound a single-rule catalog allows.
	g := graph.New("sess-1", vocab, nil)
	links := []string{"n1", "n2", "n3", "n4", "n5", "n6"}
	for i := 0; i+1 < len(links); i++ {
		_, err := g.Add(fact.Fact{Subject: links[i], Predicate: "chain.link.next", Object: links[i+1], Source: fact.FromTurn(1)})
		require.NoError(t, err)
	}

	_, err = New(cat, nil).Evaluate(g)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNonTerminatingRuleSet))
	assert.True(t, errors.IsFatal(err))
	assert.Equal(t, 5, g.Len(), "graph must be untouched after a failed evaluation")
}

func TestEmptyGraphDerivesNothing(t *testing.T) {
	g := graph.New("sess-1", vocabulary.Standard(), nil)
	res, err := builtinEvaluator(t).Evaluate(g)
	require.NoError(t, err)
	assert.Empty(t, res.Derived)
	assert.Empty(t, res.RulesFired)
}
