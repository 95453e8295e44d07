// Package evidence defines the per-turn input handed to the engine by
// upstream extraction. Concept ids must resolve against the vocabulary;
// the engine skips unresolvable ones with a warning rather than
// aborting the turn.
package evidence

// Evidence is one conversation turn's extracted signals. Text is the
// optional raw utterance, inspected only by the safety gate.
type Evidence struct {
	Emotions  []string `json:"emotions"`
	Symptoms  []string `json:"symptoms"`
	Triggers  []string `json:"triggers"`
	TurnIndex int      `json:"turn_index,omitempty"`
	Text      string   `json:"text,omitempty"`
}

// Concepts returns all concept ids in declaration order: emotions,
// then symptoms, then triggers.
func (e Evidence) Concepts() []string {
	out := make([]string, 0, len(e.Emotions)+len(e.Symptoms)+len(e.Triggers))
	out = append(out, e.Emotions...)
	out = append(out, e.Symptoms...)
	out = append(out, e.Triggers...)
	return out
}

// IsEmpty reports whether the turn carries no extracted concepts.
func (e Evidence) IsEmpty() bool {
	return len(e.Emotions) == 0 && len(e.Symptoms) == 0 && len(e.Triggers) == 0
}
