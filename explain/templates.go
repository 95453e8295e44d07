package explain

import "github.com/wellgraph/wellgraph/vocabulary"

// Per-state notes rendered alongside the causal trace. Observational
// language only; nothing here is a clinical claim.
var stateTemplates = map[string]string{
	vocabulary.AcademicStress: "This observation reflects situational factors and does not constitute " +
		"a clinical assessment.",
	vocabulary.AnxietyRisk: "This is an observational pattern, not a diagnosis. Speaking with a " +
		"counselor may be helpful if experiences persist.",
	vocabulary.BurnoutRisk: "Burnout patterns are observational. Rest and workload management " +
		"may support recovery.",
	vocabulary.PanicRisk: "If physical symptoms are severe, seeking professional evaluation " +
		"is recommended.",
	vocabulary.DepressiveSpectrum: "This is non-diagnostic. Connecting with support services is encouraged " +
		"if feelings persist.",
	vocabulary.SleepDisturbance: "Sleep patterns are observational. Persistent disruption is worth " +
		"mentioning to a professional.",
	vocabulary.SocialIsolation: "Reduced social contact is an observation, not a judgment. Reconnecting " +
		"gradually may help.",
	vocabulary.ModerateRisk: "Self-awareness and access to support resources may be beneficial.",
	vocabulary.HighRisk: "If distress is ongoing, seeking professional or institutional support " +
		"may be beneficial. You are not alone.",
}

const defaultNotes = "This is an observational assessment."

func stateNotes(state string) string {
	if n, ok := stateTemplates[state]; ok {
		return n
	}
	return defaultNotes
}
