package catalog

import (
	"github.com/wellgraph/wellgraph/fact"
	"github.com/wellgraph/wellgraph/vocabulary"
)

func emotion(c string) fact.Pattern {
	return fact.Pattern{Subject: "?s", Predicate: vocabulary.EvidenceEmotion, Object: c}
}

func symptom(c string) fact.Pattern {
	return fact.Pattern{Subject: "?s", Predicate: vocabulary.EvidenceSymptom, Object: c}
}

func trigger(c string) fact.Pattern {
	return fact.Pattern{Subject: "?s", Predicate: vocabulary.EvidenceTrigger, Object: c}
}

func riskFactor(c string) fact.Pattern {
	return fact.Pattern{Subject: "?s", Predicate: vocabulary.RiskFactor, Object: c}
}

func riskState(c string) fact.Pattern {
	return fact.Pattern{Subject: "?s", Predicate: vocabulary.StateRisk, Object: c}
}

// Builtin returns the standard student-wellness rule set. Priorities
// track escalation sensitivity of the consequent state: composite risk
// levels outrank the states that feed them, panic outranks depressive
// spectrum, which outranks anxiety, and so on down to sleep and
// isolation observations.
func Builtin() []Rule {
	return []Rule{
		{
			ID:          "R_RISK_02",
			Description: "High risk from panic with repeated stress",
			Antecedent:  []fact.Pattern{riskState(vocabulary.PanicRisk), riskFactor(vocabulary.RepeatedStressExposure)},
			Consequent:  riskState(vocabulary.HighRisk),
			Priority:    6,
		},
		{
			ID:          "R_PAN_01",
			Description: "Panic risk from anxiety with physiological symptoms",
			Antecedent:  []fact.Pattern{emotion(vocabulary.Anxiety), symptom(vocabulary.RapidHeartRate)},
			Consequent:  riskState(vocabulary.PanicRisk),
			Priority:    5,
		},
		{
			ID:          "R_DEP_01",
			Description: "Depressive spectrum from isolation and emotional overwhelm",
			Antecedent:  []fact.Pattern{riskState(vocabulary.SocialIsolation), emotion(vocabulary.Overwhelm)},
			Consequent:  riskState(vocabulary.DepressiveSpectrum),
			Priority:    4,
		},
		{
			ID:          "R_DEP_02",
			Description: "Depressive spectrum from fatigue, insomnia, and isolation",
			Antecedent:  []fact.Pattern{symptom(vocabulary.Fatigue), symptom(vocabulary.Insomnia), riskState(vocabulary.SocialIsolation)},
			Consequent:  riskState(vocabulary.DepressiveSpectrum),
			Priority:    4,
		},
		{
			ID:          "R_RISK_01a",
			Description: "Moderate risk from anxiety with repeated stress",
			Antecedent:  []fact.Pattern{riskState(vocabulary.AnxietyRisk), riskFactor(vocabulary.RepeatedStressExposure)},
			Consequent:  riskState(vocabulary.ModerateRisk),
			Priority:    4,
		},
		{
			ID:          "R_RISK_01b",
			Description: "Moderate risk from burnout with repeated stress",
			Antecedent:  []fact.Pattern{riskState(vocabulary.BurnoutRisk), riskFactor(vocabulary.RepeatedStressExposure)},
			Consequent:  riskState(vocabulary.ModerateRisk),
			Priority:    4,
		},
		{
			ID:          "R_ANX_01",
			Description: "Anxiety risk from anxiety, insomnia, and exam pressure",
			Antecedent:  []fact.Pattern{emotion(vocabulary.Anxiety), symptom(vocabulary.Insomnia), trigger(vocabulary.ExamPressure)},
			Consequent:  riskState(vocabulary.AnxietyRisk),
			Priority:    3,
		},
		{
			ID:          "R_ANX_02",
			Description: "Anxiety risk from repeated stress exposure",
			Antecedent:  []fact.Pattern{emotion(vocabulary.Anxiety), riskFactor(vocabulary.RepeatedStressExposure)},
			Consequent:  riskState(vocabulary.AnxietyRisk),
			Priority:    3,
		},
		{
			ID:          "R_BRN_01",
			Description: "Burnout risk from emotional overwhelm and workload",
			Antecedent:  []fact.Pattern{emotion(vocabulary.Overwhelm), trigger(vocabulary.AcademicWorkload)},
			Consequent:  riskState(vocabulary.BurnoutRisk),
			Priority:    3,
		},
		{
			ID:          "R_BRN_02",
			Description: "Burnout risk from stress, fatigue, and repeated exposure",
			Antecedent:  []fact.Pattern{emotion(vocabulary.Stress), symptom(vocabulary.Fatigue), riskFactor(vocabulary.RepeatedStressExposure)},
			Consequent:  riskState(vocabulary.BurnoutRisk),
			Priority:    3,
		},
		{
			ID:          "R_ACS_01a",
			Description: "Academic stress from exam pressure",
			Antecedent:  []fact.Pattern{emotion(vocabulary.Stress), trigger(vocabulary.ExamPressure)},
			Consequent:  riskState(vocabulary.AcademicStress),
			Priority:    2,
		},
		{
			ID:          "R_ACS_01b",
			Description: "Academic stress from workload",
			Antecedent:  []fact.Pattern{emotion(vocabulary.Stress), trigger(vocabulary.AcademicWorkload)},
			Consequent:  riskState(vocabulary.AcademicStress),
			Priority:    2,
		},
		{
			ID:          "R_SLEEP_01",
			Description: "Sleep disturbance from insomnia",
			Antecedent:  []fact.Pattern{symptom(vocabulary.Insomnia)},
			Consequent:  riskState(vocabulary.SleepDisturbance),
			Priority:    1,
		},
		{
			ID:          "R_ISO_01",
			Description: "Social isolation from withdrawal",
			Antecedent:  []fact.Pattern{symptom(vocabulary.SocialWithdrawal)},
			Consequent:  riskState(vocabulary.SocialIsolation),
			Priority:    1,
		},
	}
}
