package escalation

import "github.com/wellgraph/wellgraph/vocabulary"

// Level is the advisory escalation level computed after reasoning.
// Advisory only: it shapes support messaging and never feeds back into
// the gate or the rule engine.
type Level string

const (
	LevelNone     Level = "NONE"
	LevelModerate Level = "MODERATE"
	LevelHigh     Level = "HIGH"
	LevelCritical Level = "CRITICAL"
)

// Disclaimer accompanies every engine response.
const Disclaimer = "This system does not provide medical diagnosis or treatment."

var supportRecommendations = map[Level]string{
	LevelCritical: "Immediate support may be beneficial. Please consider reaching out to a counselor, " +
		"mental health professional, or trusted support person. Help is available.",
	LevelHigh: "Speaking with a counselor or mental health professional may be helpful. " +
		"Support resources are available if you need them.",
	LevelModerate: "Self-care and access to support resources may be beneficial. " +
		"Consider speaking with someone you trust if concerns persist.",
	LevelNone: "No immediate escalation indicated. Continue healthy coping practices.",
}

// Advisory is the post-reasoning escalation advice for one turn.
type Advisory struct {
	Level          Level    `json:"level"`
	Reasons        []string `json:"reasons"`
	Recommendation string   `json:"recommendation"`
	Disclaimer     string   `json:"disclaimer"`
}

// Advise maps derived risk states to an advisory level:
//
//	HighRisk present                     CRITICAL
//	PanicRisk with repeated exposure     HIGH
//	DepressiveSpectrum present           HIGH
//	multiple risk states                 MODERATE
//	ModerateRisk present                 MODERATE
//	otherwise                            NONE
//
// states are the derived risk-state concept ids for the session;
// persistence reports whether RepeatedStressExposure is on the graph.
func Advise(states []string, persistence bool) Advisory {
	present := make(map[string]bool, len(states))
	count := 0
	for _, s := range states {
		if !present[s] {
			present[s] = true
			count++
		}
	}

	var reasons []string
	level := LevelNone
	switch {
	case present[vocabulary.HighRisk]:
		level = LevelCritical
		reasons = append(reasons, "HighRisk classification present")
	case present[vocabulary.PanicRisk] && persistence:
		level = LevelHigh
		reasons = append(reasons, "PanicRisk with repeated stress exposure")
	case present[vocabulary.DepressiveSpectrum]:
		level = LevelHigh
		reasons = append(reasons, "DepressiveSpectrum indicators present")
	case count > 1:
		level = LevelModerate
		reasons = append(reasons, "Multiple risk states detected")
	case present[vocabulary.ModerateRisk]:
		level = LevelModerate
		reasons = append(reasons, "ModerateRisk classification present")
	default:
		reasons = append(reasons, "No escalation triggers detected")
	}

	return Advisory{
		Level:          level,
		Reasons:        reasons,
		Recommendation: supportRecommendations[level],
		Disclaimer:     Disclaimer,
	}
}
