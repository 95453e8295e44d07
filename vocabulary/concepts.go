package vocabulary

// Concept class identifiers for the student wellness ontology.
//
// These are the recognized subject/object values for evidence and derived
// facts. Unknown concepts never enter a session graph (fail-closed).

// Emotion concepts
const (
	Stress       = "Stress"
	Anxiety      = "Anxiety"
	Panic        = "Panic"
	Sadness      = "Sadness"
	Depression   = "Depression"
	Irritability = "Irritability"
	Overwhelm    = "EmotionalOverwhelm"
)

// Symptom concepts
const (
	Insomnia            = "Insomnia"
	Fatigue             = "Fatigue"
	Restlessness        = "Restlessness"
	RapidHeartRate      = "RapidHeartRate"
	BreathingDifficulty = "BreathingDifficulty"
	AppetiteChange      = "AppetiteChange"
	SocialWithdrawal    = "SocialWithdrawal"
	LossOfInterest      = "LossOfInterest"
	PoorConcentration   = "DifficultyConcentrating"
)

// Trigger concepts
const (
	ExamPressure     = "ExamPressure"
	AcademicWorkload = "AcademicWorkload"
	FinancialConcern = "FinancialConcern"
	FamilyPressure   = "FamilyPressure"
	SocialPressure   = "SocialPressure"
)

// Risk factor concepts
const (
	RepeatedStressExposure = "RepeatedStressExposure"
)

// Derivable risk state concepts
const (
	AcademicStress     = "AcademicStress"
	AnxietyRisk        = "AnxietyRisk"
	BurnoutRisk        = "BurnoutRisk"
	PanicRisk          = "PanicRisk"
	DepressiveSpectrum = "DepressiveSpectrum"
	SleepDisturbance   = "SleepDisturbance"
	SocialIsolation    = "SocialIsolation"
	ModerateRisk       = "ModerateRisk"
	HighRisk           = "HighRisk"
	NeedsMoreContext   = "NeedsMoreContext"
)

// Escalation category concepts (objects of SessionEscalated facts)
const (
	SelfHarmIndicator         = "SelfHarmIndicator"
	SuicidalIdeationIndicator = "SuicidalIdeationIndicator"
)

// Standard returns the built-in student wellness vocabulary.
//
// The table is immutable; callers needing additional concepts compose their
// own builder and register the standard sets alongside their extensions.
func Standard() *Table {
	b := NewBuilder()

	b.Concept(Stress, CategoryEmotion)
	b.Concept(Anxiety, CategoryEmotion)
	b.Concept(Panic, CategoryEmotion)
	b.Concept(Sadness, CategoryEmotion)
	b.Concept(Depression, CategoryEmotion)
	b.Concept(Irritability, CategoryEmotion)
	b.Concept(Overwhelm, CategoryEmotion, WithLabel("Emotional Overwhelm"))

	b.Concept(Insomnia, CategorySymptom)
	b.Concept(Fatigue, CategorySymptom)
	b.Concept(Restlessness, CategorySymptom)
	b.Concept(RapidHeartRate, CategorySymptom)
	b.Concept(BreathingDifficulty, CategorySymptom)
	b.Concept(AppetiteChange, CategorySymptom)
	b.Concept(SocialWithdrawal, CategorySymptom)
	b.Concept(LossOfInterest, CategorySymptom)
	b.Concept(PoorConcentration, CategorySymptom)

	b.Concept(ExamPressure, CategoryTrigger)
	b.Concept(AcademicWorkload, CategoryTrigger)
	b.Concept(FinancialConcern, CategoryTrigger)
	b.Concept(FamilyPressure, CategoryTrigger)
	b.Concept(SocialPressure, CategoryTrigger)

	b.Concept(RepeatedStressExposure, CategoryRiskFactor,
		WithConceptDescription("Same concept observed across multiple turns"))

	b.Concept(AcademicStress, CategoryRiskState)
	b.Concept(AnxietyRisk, CategoryRiskState)
	b.Concept(BurnoutRisk, CategoryRiskState)
	b.Concept(PanicRisk, CategoryRiskState)
	b.Concept(DepressiveSpectrum, CategoryRiskState)
	b.Concept(SleepDisturbance, CategoryRiskState)
	b.Concept(SocialIsolation, CategoryRiskState)
	b.Concept(ModerateRisk, CategoryRiskState)
	b.Concept(HighRisk, CategoryRiskState, WithLabel("Elevated Concern Level"))
	b.Concept(NeedsMoreContext, CategoryRiskState)

	b.Concept(SelfHarmIndicator, CategorySession)
	b.Concept(SuicidalIdeationIndicator, CategorySession)

	registerPredicates(b)

	return b.Build()
}
