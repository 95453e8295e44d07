// Package catalog holds the immutable rule catalog. Rules are loaded and
// validated once at startup and shared read-only by every session.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wellgraph/wellgraph/errors"
	"github.com/wellgraph/wellgraph/fact"
	"github.com/wellgraph/wellgraph/vocabulary"
)

// Rule is one inference rule: a conjunctive antecedent of triple
// patterns sharing variables, a consequent pattern, and a priority used
// for evaluation order and ranking.
type Rule struct {
	ID          string         `yaml:"id" json:"id"`
	Description string         `yaml:"description" json:"description"`
	Antecedent  []fact.Pattern `yaml:"antecedent" json:"antecedent"`
	Consequent  fact.Pattern   `yaml:"consequent" json:"consequent"`
	Priority    int            `yaml:"priority" json:"priority"`
}

// Summary renders the rule as "A ∧ B → C" using the pattern objects,
// the form explanations cite.
func (r Rule) Summary() string {
	parts := make([]string, len(r.Antecedent))
	for i, p := range r.Antecedent {
		parts[i] = p.Object
	}
	return strings.Join(parts, " ∧ ") + " → " + r.Consequent.Object
}

// Issue is one validation failure found while loading a rule.
type Issue struct {
	RuleID string
	Detail string
}

// VocabularyError reports every rule that referenced vocabulary unknown
// to the table, or was structurally malformed. Load collects all issues
// before failing so catalog authors see the full list at once.
type VocabularyError struct {
	Issues []Issue
}

func (e *VocabularyError) Error() string {
	ids := e.RuleIDs()
	lines := make([]string, len(e.Issues))
	for i, is := range e.Issues {
		lines[i] = fmt.Sprintf("%s: %s", is.RuleID, is.Detail)
	}
	return fmt.Sprintf("catalog rejected %d rule(s) [%s]: %s",
		len(ids), strings.Join(ids, ", "), strings.Join(lines, "; "))
}

func (e *VocabularyError) Unwrap() error { return errors.ErrUnknownVocabulary }

// RuleIDs returns the distinct offending rule ids in first-seen order.
func (e *VocabularyError) RuleIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, is := range e.Issues {
		if !seen[is.RuleID] {
			seen[is.RuleID] = true
			ids = append(ids, is.RuleID)
		}
	}
	return ids
}

// Catalog is an immutable, ordered rule set. Safe for unlimited
// concurrent readers once loaded.
type Catalog struct {
	rules []Rule
	byID  map[string]Rule
}

// Load validates defs against vocab and returns the catalog. Validation
// covers every rule before failing: a *VocabularyError groups all
// offending rule ids. The returned catalog orders rules by priority
// descending, ties broken by rule id lexical order.
func Load(defs []Rule, vocab *vocabulary.Table) (*Catalog, error) {
	var verr VocabularyError
	byID := make(map[string]Rule, len(defs))

	for _, r := range defs {
		issues := validateRule(r, vocab)
		if _, dup := byID[r.ID]; dup {
			issues = append(issues, Issue{RuleID: r.ID, Detail: "duplicate rule id"})
		}
		if len(issues) > 0 {
			verr.Issues = append(verr.Issues, issues...)
			continue
		}
		byID[r.ID] = r
	}
	if len(verr.Issues) > 0 {
		return nil, errors.WrapFatal(&verr, "Catalog", "Load", "validate rules")
	}

	rules := make([]Rule, len(defs))
	copy(rules, defs)
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Priority != rules[j].Priority {
			return rules[i].Priority > rules[j].Priority
		}
		return rules[i].ID < rules[j].ID
	})
	return &Catalog{rules: rules, byID: byID}, nil
}

func validateRule(r Rule, vocab *vocabulary.Table) []Issue {
	var issues []Issue
	add := func(format string, args ...any) {
		issues = append(issues, Issue{RuleID: r.ID, Detail: fmt.Sprintf(format, args...)})
	}

	if r.ID == "" {
		return []Issue{{RuleID: "(missing id)", Detail: "rule has no id"}}
	}
	if len(r.Antecedent) == 0 {
		add("empty antecedent")
	}
	if r.Priority <= 0 {
		add("priority must be positive, got %d", r.Priority)
	}

	bound := make(map[string]bool)
	for i, p := range r.Antecedent {
		issues = append(issues, validatePattern(r.ID, fmt.Sprintf("antecedent[%d]", i), p, vocab)...)
		for _, v := range p.Variables() {
			bound[v] = true
		}
	}
	issues = append(issues, validatePattern(r.ID, "consequent", r.Consequent, vocab)...)
	for _, v := range r.Consequent.Variables() {
		if !bound[v] {
			add("consequent variable %s is not bound by the antecedent", v)
		}
	}
	return issues
}

func validatePattern(ruleID, where string, p fact.Pattern, vocab *vocabulary.Table) []Issue {
	var issues []Issue
	add := func(format string, args ...any) {
		issues = append(issues, Issue{RuleID: ruleID, Detail: where + ": " + fmt.Sprintf(format, args...)})
	}

	if p.Subject == "" || p.Predicate == "" || p.Object == "" {
		add("pattern has empty component")
		return issues
	}
	if fact.IsVariable(p.Predicate) {
		add("variable predicates are not supported")
	} else if !vocab.HasPredicate(p.Predicate) {
		add("unknown predicate %q", p.Predicate)
	}
	if !fact.IsVariable(p.Object) && !vocab.HasConcept(p.Object) {
		add("unknown concept %q", p.Object)
	}
	return issues
}

// Rules returns the rules in evaluation order: priority descending,
// ties by rule id. The returned slice is shared; callers must not
// modify it.
func (c *Catalog) Rules() []Rule { return c.rules }

// Rule returns the rule with the given id.
func (c *Catalog) Rule(id string) (Rule, bool) {
	r, ok := c.byID[id]
	return r, ok
}

// Len returns the number of rules in the catalog.
func (c *Catalog) Len() int { return len(c.rules) }

// MaxIterations is the evaluator safety bound for this catalog. Facts
// are never retracted, so a fixpoint is reached within one pass per
// rule; the extra pass detects quiescence.
func (c *Catalog) MaxIterations() int { return len(c.rules) + 1 }
