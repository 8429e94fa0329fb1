// Package solver holds a small 0/1 linear constraint model and the engines
// that solve it.
package solver

import (
	"fmt"
	"math"
)

// Bound sentinels for Linear.Lo and Linear.Hi.
const (
	NoLower = math.MinInt32
	NoUpper = math.MaxInt32
)

// Var is a boolean decision variable.
type Var int

// Term is Coef * Var.
type Term struct {
	Var  Var
	Coef int
}

// Linear requires Lo <= sum(Terms) <= Hi.
type Linear struct {
	Name  string
	Terms []Term
	Lo    int
	Hi    int
}

// Holds reports whether sum lies inside the bounds.
func (l Linear) Holds(sum int) bool {
	return sum >= l.Lo && sum <= l.Hi
}

// Violation is the distance of sum from the bounds.
func (l Linear) Violation(sum int) int {
	switch {
	case sum < l.Lo:
		return l.Lo - sum
	case sum > l.Hi:
		return sum - l.Hi
	}
	return 0
}

// Reified ties Indicator to its condition in both directions:
// Indicator is true if and only if the condition holds.
type Reified struct {
	Indicator Var
	Condition Linear
}

// Model is a constraint satisfaction problem over boolean variables with an
// optional linear objective to maximize.
type Model struct {
	names     []string
	linears   []Linear
	reified   []Reified
	objective []Term
	derived   []bool
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{}
}

// NewBoolVar adds a variable.
func (m *Model) NewBoolVar(name string) Var {
	m.names = append(m.names, name)
	m.derived = append(m.derived, false)
	return Var(len(m.names) - 1)
}

// NumVars returns the number of variables.
func (m *Model) NumVars() int { return len(m.names) }

// Name returns the name a variable was created with.
func (m *Model) Name(v Var) string { return m.names[v] }

// Linears returns the hard constraints in insertion order.
func (m *Model) Linears() []Linear { return m.linears }

// Reified returns the indicator definitions.
func (m *Model) Reified() []Reified { return m.reified }

// Objective returns the terms to maximize.
func (m *Model) Objective() []Term { return m.objective }

// HasObjective reports whether any objective term was added.
func (m *Model) HasObjective() bool { return len(m.objective) > 0 }

// Sum builds unit-coefficient terms.
func Sum(vars ...Var) []Term {
	terms := make([]Term, len(vars))
	for i, v := range vars {
		terms[i] = Term{Var: v, Coef: 1}
	}
	return terms
}

// AddLinear adds lo <= sum(terms) <= hi.
func (m *Model) AddLinear(name string, terms []Term, lo, hi int) {
	m.linears = append(m.linears, Linear{Name: name, Terms: terms, Lo: lo, Hi: hi})
}

// AddEquality adds sum(terms) == rhs.
func (m *Model) AddEquality(name string, terms []Term, rhs int) {
	m.AddLinear(name, terms, rhs, rhs)
}

// AddExactlyOne requires exactly one of vars to be true.
func (m *Model) AddExactlyOne(name string, vars ...Var) {
	m.AddLinear(name, Sum(vars...), 1, 1)
}

// AddAtMostOne requires at most one of vars to be true.
func (m *Model) AddAtMostOne(name string, vars ...Var) {
	m.AddLinear(name, Sum(vars...), NoLower, 1)
}

// AddAtLeastOne requires at least one of vars to be true.
func (m *Model) AddAtLeastOne(name string, vars ...Var) {
	m.AddLinear(name, Sum(vars...), 1, NoUpper)
}

// Fix forces v to value.
func (m *Model) Fix(name string, v Var, value bool) {
	rhs := 0
	if value {
		rhs = 1
	}
	m.AddEquality(name, Sum(v), rhs)
}

// NewIndicator adds a variable that is true exactly when
// lo <= sum(terms) <= hi. Indicators are measurements: they may appear in
// the objective but not in constraints.
func (m *Model) NewIndicator(name string, terms []Term, lo, hi int) Var {
	v := m.NewBoolVar(name)
	m.derived[v] = true
	m.reified = append(m.reified, Reified{
		Indicator: v,
		Condition: Linear{Name: name, Terms: terms, Lo: lo, Hi: hi},
	})
	return v
}

// IsIndicator reports whether v was created by NewIndicator.
func (m *Model) IsIndicator(v Var) bool { return m.derived[v] }

// Maximize appends terms to the objective.
func (m *Model) Maximize(terms ...Term) {
	m.objective = append(m.objective, terms...)
}

// Validate checks that indicators are only used as measurements.
func (m *Model) Validate() error {
	for _, l := range m.linears {
		for _, t := range l.Terms {
			if m.derived[t.Var] {
				return fmt.Errorf("constraint %q uses indicator %q", l.Name, m.names[t.Var])
			}
		}
	}
	for _, r := range m.reified {
		for _, t := range r.Condition.Terms {
			if m.derived[t.Var] {
				return fmt.Errorf("indicator %q depends on indicator %q", r.Condition.Name, m.names[t.Var])
			}
		}
	}
	return nil
}

// Check evaluates an assignment and returns the names of violated
// constraints and indicator definitions.
func (m *Model) Check(values []bool) []string {
	var violated []string
	for _, l := range m.linears {
		if !l.Holds(evalTerms(l.Terms, values)) {
			violated = append(violated, l.Name)
		}
	}
	for _, r := range m.reified {
		if r.Condition.Holds(evalTerms(r.Condition.Terms, values)) != values[r.Indicator] {
			violated = append(violated, r.Condition.Name)
		}
	}
	return violated
}

// Score returns the objective value of an assignment.
func (m *Model) Score(values []bool) int {
	return evalTerms(m.objective, values)
}

func evalTerms(terms []Term, values []bool) int {
	sum := 0
	for _, t := range terms {
		if values[t.Var] {
			sum += t.Coef
		}
	}
	return sum
}
