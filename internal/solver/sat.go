package solver

import (
	"context"
	"fmt"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
)

// pollInterval is how often a running SAT call looks at ctx.
const pollInterval = 5 * time.Millisecond

// SAT encodes a Model as CNF, with sorting networks for every linear sum,
// and solves it with the gini CDCL solver. Unlike LocalSearch it proves
// infeasibility. The objective is raised by binary search over its bound.
type SAT struct {
	opts Options
}

// NewSAT returns a SAT engine. Only ImproveTime is read from opts.
func NewSAT(opts Options) *SAT {
	if opts.ImproveTime < 0 {
		opts.ImproveTime = 0
	}
	return &SAT{opts: opts}
}

// Options returns the effective settings.
func (e *SAT) Options() Options { return e.opts }

// Solve implements Engine.
func (e *SAT) Solve(ctx context.Context, m *Model) Result {
	start := time.Now()
	if err := m.Validate(); err != nil {
		return Result{Status: StatusUnknown, Err: err, Elapsed: time.Since(start)}
	}

	fixed, conflict := propagate(m.NumVars(), m.linears)
	if conflict >= 0 {
		return Result{
			Status:   StatusInfeasible,
			Conflict: m.linears[conflict].Name,
			Elapsed:  time.Since(start),
		}
	}

	enc := encode(m, fixed)
	g := gini.NewV(enc.c.Len())
	enc.c.ToCnf(g)
	for _, u := range enc.units {
		g.Add(u)
		g.Add(z.LitNull)
	}

	res := Result{Status: StatusUnknown}
	res.Iterations++
	switch wait(ctx, g) {
	case -1:
		res.Status = StatusInfeasible
		res.Elapsed = time.Since(start)
		return res
	case 0:
		res.Elapsed = time.Since(start)
		return res
	}
	res.Values = enc.values(g)
	res.Objective = m.Score(res.Values)
	res.Status = StatusOptimal

	if e.opts.ImproveTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.ImproveTime)
		defer cancel()
	}
	lo, hi := res.Objective, enc.upper
	for lo < hi {
		mid := lo + (hi-lo+1)/2
		g.Assume(enc.obj.Geq(mid + enc.objOffset))
		res.Iterations++
		switch wait(ctx, g) {
		case 1:
			res.Values = enc.values(g)
			res.Objective = m.Score(res.Values)
			lo = res.Objective
		case -1:
			hi = mid - 1
		default:
			res.Status = StatusFeasible
			lo = hi
		}
	}
	res.Elapsed = time.Since(start)
	return res
}

// wait runs one gini solve in the background until it answers or ctx is
// done. It returns 1 for SAT, -1 for UNSAT and 0 when stopped.
func wait(ctx context.Context, g *gini.Gini) int {
	if ctx.Err() != nil {
		return 0
	}
	s := g.GoSolve()
	tick := time.NewTicker(pollInterval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return s.Stop()
		case <-tick.C:
			if r, ok := s.Test(); ok {
				return r
			}
		}
	}
}

// encoding maps a Model onto a gini circuit.
type encoding struct {
	c     *logic.C
	lits  []z.Lit
	units []z.Lit
	sorts map[string]*logic.CardSort

	obj       *logic.CardSort
	objOffset int
	upper     int
}

func encode(m *Model, fixed []int8) *encoding {
	enc := &encoding{
		c:     logic.NewCCap(4 * m.NumVars()),
		lits:  make([]z.Lit, m.NumVars()),
		sorts: map[string]*logic.CardSort{},
	}
	for v := range enc.lits {
		if !m.derived[v] {
			enc.lits[v] = enc.c.Lit()
		}
	}
	for v, f := range fixed {
		switch f {
		case fixedT:
			enc.units = append(enc.units, enc.lits[v])
		case fixedF:
			enc.units = append(enc.units, enc.lits[v].Not())
		}
	}
	for _, r := range m.reified {
		enc.lits[r.Indicator] = enc.within(r.Condition)
	}
	for _, l := range m.linears {
		if len(l.Terms) == 1 && fixed[l.Terms[0].Var] != unfixed {
			continue
		}
		enc.units = append(enc.units, enc.within(l))
	}

	if !m.HasObjective() {
		return enc
	}
	enc.obj, enc.objOffset = enc.counter(m.objective)
	for _, t := range m.objective {
		if t.Coef > 0 {
			enc.upper += t.Coef
		}
	}
	return enc
}

// counter returns a sorting network over terms and the offset to add to a
// bound on sum(terms) to get a bound on the network's count. A term with
// coefficient k contributes its literal k times, and a negative term
// contributes the negated literal.
func (enc *encoding) counter(terms []Term) (*logic.CardSort, int) {
	key := fmt.Sprint(terms)
	offset := 0
	for _, t := range terms {
		if t.Coef < 0 {
			offset -= t.Coef
		}
	}
	if cs, ok := enc.sorts[key]; ok {
		return cs, offset
	}
	var ms []z.Lit
	for _, t := range terms {
		lit, k := enc.lits[t.Var], t.Coef
		if k < 0 {
			lit, k = lit.Not(), -k
		}
		for i := 0; i < k; i++ {
			ms = append(ms, lit)
		}
	}
	cs := enc.c.CardSort(ms)
	enc.sorts[key] = cs
	return cs, offset
}

// within returns a literal that holds exactly when l does.
func (enc *encoding) within(l Linear) z.Lit {
	cs, offset := enc.counter(l.Terms)
	lit := enc.c.T
	if l.Lo != NoLower {
		lit = enc.c.And(lit, cs.Geq(l.Lo+offset))
	}
	if l.Hi != NoUpper {
		lit = enc.c.And(lit, cs.Leq(l.Hi+offset))
	}
	return lit
}

func (enc *encoding) values(g *gini.Gini) []bool {
	vals := make([]bool, len(enc.lits))
	for v, lit := range enc.lits {
		vals[v] = g.Value(lit)
	}
	return vals
}
