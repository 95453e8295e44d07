// Package escalation implements the safety gate that runs before rule
// evaluation on every turn, plus the advisory level computed after
// reasoning. The gate is a fixed term match over the turn's evidence,
// independent of the rule engine: a session already classified HighRisk
// does not lower the bar, and escalation never requires a prior risk
// classification.
package escalation

import (
	"log/slog"
	"strings"

	"github.com/wellgraph/wellgraph/evidence"
	"github.com/wellgraph/wellgraph/vocabulary"
)

// Category classifies a triggered escalation.
type Category string

const (
	CategoryNone             Category = "none"
	CategorySelfHarm         Category = "self-harm"
	CategorySuicidalIdeation Category = "suicidal-ideation"
)

// Verdict is the gate's decision for one turn. Computed fresh each
// turn, never derived via rules.
type Verdict struct {
	Triggered bool     `json:"triggered"`
	Category  Category `json:"category"`
	Matched   string   `json:"matched,omitempty"`
}

// Term is one crisis phrase with its category.
type Term struct {
	Phrase   string   `yaml:"phrase" json:"phrase"`
	Category Category `yaml:"category" json:"category"`
}

// DefaultTerms is the built-in crisis term list, matched
// case-insensitively against the turn's raw text. Order matters: the
// first match decides the category.
func DefaultTerms() []Term {
	return []Term{
		{Phrase: "suicide", Category: CategorySuicidalIdeation},
		{Phrase: "suicidal", Category: CategorySuicidalIdeation},
		{Phrase: "kill myself", Category: CategorySuicidalIdeation},
		{Phrase: "end my life", Category: CategorySuicidalIdeation},
		{Phrase: "better off dead", Category: CategorySuicidalIdeation},
		{Phrase: "self-harm", Category: CategorySelfHarm},
		{Phrase: "self harm", Category: CategorySelfHarm},
		{Phrase: "hurt myself", Category: CategorySelfHarm},
		{Phrase: "harm myself", Category: CategorySelfHarm},
		{Phrase: "cut myself", Category: CategorySelfHarm},
	}
}

// conceptCategories maps escalation indicator concepts, when upstream
// extraction already classified the utterance.
var conceptCategories = map[string]Category{
	vocabulary.SelfHarmIndicator:         CategorySelfHarm,
	vocabulary.SuicidalIdeationIndicator: CategorySuicidalIdeation,
}

// Gate checks turn evidence against a fixed crisis-term list. Check is
// a total function: it always returns a verdict and never fails.
type Gate struct {
	terms  []Term
	logger *slog.Logger
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithTerms replaces the default crisis-term list.
func WithTerms(terms []Term) GateOption {
	return func(g *Gate) {
		if len(terms) > 0 {
			g.terms = terms
		}
	}
}

// NewGate creates a Gate with the default term list.
func NewGate(logger *slog.Logger, opts ...GateOption) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	g := &Gate{
		terms:  DefaultTerms(),
		logger: logger.With("component", "EscalationGate"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Check matches the turn's concept ids and raw text against the crisis
// terms. Indicator concepts win over text matches; within each, the
// first match in declaration order decides.
func (g *Gate) Check(ev evidence.Evidence) Verdict {
	for _, concept := range ev.Concepts() {
		if cat, ok := conceptCategories[concept]; ok {
			g.logger.Warn("escalation triggered", "category", string(cat), "concept", concept)
			return Verdict{Triggered: true, Category: cat, Matched: concept}
		}
	}

	text := strings.ToLower(ev.Text)
	if text != "" {
		for _, t := range g.terms {
			if strings.Contains(text, t.Phrase) {
				g.logger.Warn("escalation triggered", "category", string(t.Category), "term", t.Phrase)
				return Verdict{Triggered: true, Category: t.Category, Matched: t.Phrase}
			}
		}
	}
	return Verdict{Category: CategoryNone}
}

// CrisisPayload is the fixed response returned on a triggered turn, in
// place of reasoning output.
type CrisisPayload struct {
	Message    string `json:"message"`
	Helpline   string `json:"helpline"`
	Disclaimer string `json:"disclaimer"`
}

// Crisis returns the fixed crisis payload. Identical every time; the
// message never varies with the evidence that triggered it.
func Crisis() CrisisPayload {
	return CrisisPayload{
		Message: "It sounds like you are going through something very difficult right now. " +
			"You deserve immediate support from a real person. Please reach out to a " +
			"counselor, a trusted adult, or a crisis service right away.",
		Helpline:   "If you are in immediate danger, contact your local emergency number or a crisis helpline now.",
		Disclaimer: Disclaimer,
	}
}
