package fact

import (
	"fmt"
	"sort"
	"strings"
)

// Variable prefix for pattern terms. "?s" in a pattern position matches any
// value and binds it for the remainder of the antecedent join.
const variablePrefix = "?"

// IsVariable reports whether a pattern term is a free variable.
func IsVariable(term string) bool {
	return strings.HasPrefix(term, variablePrefix)
}

// Pattern is a Fact template where subject, predicate and object may each be
// a bound value or a free variable ("?name"). Patterns are used by graph
// queries and by rule antecedents/consequents.
type Pattern struct {
	Subject   string `json:"subject" yaml:"subject"`
	Predicate string `json:"predicate" yaml:"predicate"`
	Object    string `json:"object" yaml:"object"`
}

// String renders the pattern for logs and rule summaries.
func (p Pattern) String() string {
	return fmt.Sprintf("(%s %s %s)", p.Subject, p.Predicate, p.Object)
}

// Variables returns the free variable names in the pattern, in
// subject-predicate-object position order.
func (p Pattern) Variables() []string {
	var vars []string
	for _, term := range []string{p.Subject, p.Predicate, p.Object} {
		if IsVariable(term) {
			vars = append(vars, term)
		}
	}
	return vars
}

// IsGround reports whether the pattern contains no variables.
func (p Pattern) IsGround() bool {
	return !IsVariable(p.Subject) && !IsVariable(p.Predicate) && !IsVariable(p.Object)
}

// Bindings maps variable names (including the "?" prefix) to bound values.
type Bindings map[string]string

// Clone returns an independent copy of the bindings.
func (b Bindings) Clone() Bindings {
	out := make(Bindings, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// String renders bindings deterministically (sorted by variable name) for
// explanation output.
func (b Bindings) String() string {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+b[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Match attempts to unify the pattern against a fact, extending the given
// bindings. On success it returns the extended bindings (a new map; the input
// is never mutated) and true. A variable already bound to a different value
// fails the match — this is what makes multi-pattern antecedents a join
// rather than independent matches.
func (p Pattern) Match(f Fact, bound Bindings) (Bindings, bool) {
	next := bound.Clone()

	for _, pair := range [3][2]string{
		{p.Subject, f.Subject},
		{p.Predicate, f.Predicate},
		{p.Object, f.Object},
	} {
		term, value := pair[0], pair[1]
		if !IsVariable(term) {
			if term != value {
				return nil, false
			}
			continue
		}
		if existing, ok := next[term]; ok {
			if existing != value {
				return nil, false
			}
			continue
		}
		next[term] = value
	}

	return next, true
}

// Instantiate substitutes bound variables into the pattern, producing a
// ground fact with the given provenance. Returns an error if any variable
// remains unbound — a rule authoring mistake the catalog loader should have
// caught.
func (p Pattern) Instantiate(b Bindings, src Source) (Fact, error) {
	resolve := func(term string) (string, error) {
		if !IsVariable(term) {
			return term, nil
		}
		value, ok := b[term]
		if !ok {
			return "", fmt.Errorf("unbound variable %s in pattern %s", term, p)
		}
		return value, nil
	}

	subject, err := resolve(p.Subject)
	if err != nil {
		return Fact{}, err
	}
	predicate, err := resolve(p.Predicate)
	if err != nil {
		return Fact{}, err
	}
	object, err := resolve(p.Object)
	if err != nil {
		return Fact{}, err
	}

	return Fact{Subject: subject, Predicate: predicate, Object: object, Source: src}, nil
}
