package vocabulary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardConcepts(t *testing.T) {
	table := Standard()

	tests := []struct {
		name     string
		concept  string
		category Category
	}{
		{"Anxiety is an emotion", Anxiety, CategoryEmotion},
		{"Insomnia is a symptom", Insomnia, CategorySymptom},
		{"ExamPressure is a trigger", ExamPressure, CategoryTrigger},
		{"RepeatedStressExposure is a risk factor", RepeatedStressExposure, CategoryRiskFactor},
		{"AnxietyRisk is a risk state", AnxietyRisk, CategoryRiskState},
		{"HighRisk is a risk state", HighRisk, CategoryRiskState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, ok := table.Concept(tt.concept)
			require.True(t, ok, "concept %q not registered", tt.concept)
			assert.Equal(t, tt.category, meta.Category)
		})
	}
}

func TestStandardPredicates(t *testing.T) {
	table := Standard()

	tests := []struct {
		predicate        string
		expectedDomain   string
		expectedCategory string
	}{
		{EvidenceEmotion, "wellness", "evidence"},
		{EvidenceSymptom, "wellness", "evidence"},
		{EvidenceTrigger, "wellness", "evidence"},
		{StateRisk, "wellness", "state"},
		{RiskFactor, "wellness", "risk"},
		{SessionEscalated, "wellness", "session"},
	}

	for _, tt := range tests {
		t.Run(tt.predicate, func(t *testing.T) {
			meta, ok := table.Predicate(tt.predicate)
			require.True(t, ok)
			assert.Equal(t, tt.expectedDomain, meta.Domain)
			assert.Equal(t, tt.expectedCategory, meta.Category)
		})
	}
}

func TestUnknownLookups(t *testing.T) {
	table := Standard()

	assert.False(t, table.HasConcept("Levitation"))
	assert.False(t, table.HasPredicate("wellness.unknown.thing"))
	assert.Equal(t, Category(""), table.ConceptCategory("Levitation"))
}

func TestDisplayLabel(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"RapidHeartRate", "Rapid Heart Rate"},
		{"Anxiety", "Anxiety"},
		{"Loss_Of_Interest", "Loss Of Interest"},
		{"ExamPressure", "Exam Pressure"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, displayLabel(tt.in))
	}
}

func TestLabelOverride(t *testing.T) {
	table := Standard()
	assert.Equal(t, "Elevated Concern Level", table.Label(HighRisk))
	assert.Equal(t, "Emotional Overwhelm", table.Label(Overwhelm))
	// Unregistered names still get a readable fallback.
	assert.Equal(t, "Some Unknown Thing", table.Label("SomeUnknownThing"))
}

func TestBuilderImmutability(t *testing.T) {
	b := NewBuilder()
	b.Concept("Alpha", CategoryEmotion)
	table := b.Build()

	b.Concept("Beta", CategoryEmotion)

	assert.True(t, table.HasConcept("Alpha"))
	assert.False(t, table.HasConcept("Beta"), "builder mutation leaked into built table")
}

func TestConceptsByCategoryOrdering(t *testing.T) {
	table := Standard()
	states := table.ConceptsByCategory(CategoryRiskState)
	require.NotEmpty(t, states)
	for i := 1; i < len(states); i++ {
		assert.Less(t, states[i-1], states[i], "categories must be lexically ordered")
	}
}
