package solver

import (
	"context"
	"math/rand"
	"time"
)

// Options tunes the engines.
type Options struct {
	// MaxIterations caps the number of moves of one search. A search that
	// hits the cap without a feasible assignment is restarted with the next
	// seed.
	MaxIterations int
	// MaxRestarts caps the number of restarts. Zero restarts until ctx is
	// done, or never restarts when ctx cannot be done.
	MaxRestarts int
	// ImproveIterations is how many moves the objective phase may go without
	// improving the best feasible assignment before it stops.
	ImproveIterations int
	// Seed makes runs reproducible. Restart r uses Seed+r.
	Seed int64
	// TabuTenure is the minimum number of moves a changed group stays frozen.
	TabuTenure int
	// Noise is the probability of taking a random allowed move.
	Noise float64
	// ImproveTime bounds how long the SAT engine keeps raising the objective
	// after its first feasible assignment. Zero raises it until ctx is done.
	ImproveTime time.Duration
}

// DefaultOptions returns the settings used by the scheduler.
func DefaultOptions() Options {
	return Options{
		MaxIterations:     400000,
		ImproveIterations: 20000,
		Seed:              1,
		TabuTenure:        7,
		Noise:             0.02,
		ImproveTime:       3 * time.Second,
	}
}

// LocalSearch is a min-conflicts tabu search over exactly-one groups with
// constraint weighting. It proves infeasibility only through root
// propagation; otherwise it reports UNKNOWN once ctx is done or the restarts
// run out.
type LocalSearch struct {
	opts Options
}

// NewLocalSearch returns an engine, filling zero options with defaults.
func NewLocalSearch(opts Options) *LocalSearch {
	def := DefaultOptions()
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = def.MaxIterations
	}
	if opts.ImproveIterations <= 0 {
		opts.ImproveIterations = def.ImproveIterations
	}
	if opts.TabuTenure <= 0 {
		opts.TabuTenure = def.TabuTenure
	}
	if opts.Noise < 0 || opts.Noise >= 1 {
		opts.Noise = def.Noise
	}
	return &LocalSearch{opts: opts}
}

// Options returns the effective settings.
func (e *LocalSearch) Options() Options { return e.opts }

// Solve implements Engine.
func (e *LocalSearch) Solve(ctx context.Context, m *Model) Result {
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

	var res Result
	for r := 0; ; r++ {
		opts := e.opts
		opts.Seed += int64(r)
		s, ok := newSearch(m, fixed, opts)
		if !ok {
			return Result{Status: StatusInfeasible, Conflict: s.conflict, Elapsed: time.Since(start)}
		}
		iterations := res.Iterations
		res = s.run(ctx)
		res.Iterations += iterations
		res.Restarts = r
		if res.Status != StatusUnknown || !e.restart(ctx, r) {
			break
		}
	}
	res.Elapsed = time.Since(start)
	return res
}

// restart reports whether another search may follow search r.
func (e *LocalSearch) restart(ctx context.Context, r int) bool {
	if ctx.Err() != nil {
		return false
	}
	if e.opts.MaxRestarts > 0 {
		return r < e.opts.MaxRestarts
	}
	return ctx.Done() != nil
}

type option struct {
	pos int
	v   Var // -1 when the option sets no variable
}

type incidence struct {
	idx  int
	coef int
}

type move struct {
	groups  [2]int
	options [2]int
	n       int
}

type search struct {
	m        *Model
	opts     Options
	rng      *rand.Rand
	conflict string

	linears []Linear
	groups  [][]option
	groupOf []int
	inc     [][]incidence
	rinc    [][]incidence
	objw    []int
	upper   int

	cur     []int
	val     []bool
	sums    []int
	rsums   []int
	weights []int
	tabu    []int
	viol    int
	obj     int

	violated []int
	violPos  []int

	// scratch for delta evaluation
	buf     []change
	gs      []int
	cands   []candidate
	allowed []candidate
	ties    []int
	dl      []int
	dr      []int
	touchL  []int
	touchR  []int
	stamp   []int
	stampID int
}

func newSearch(m *Model, fixed []int8, opts Options) (*search, bool) {
	n := m.NumVars()
	s := &search{
		m:       m,
		opts:    opts,
		rng:     rand.New(rand.NewSource(opts.Seed)),
		groupOf: make([]int, n),
		objw:    make([]int, n),
	}
	for i := range s.groupOf {
		s.groupOf[i] = -1
	}

	for _, l := range m.linears {
		if !isExactlyOne(l) || !s.free(l) {
			s.linears = append(s.linears, l)
			continue
		}
		var opts []option
		var forced []option
		for pos, t := range l.Terms {
			switch fixed[t.Var] {
			case fixedT:
				forced = append(forced, option{pos: pos, v: t.Var})
			case unfixed:
				opts = append(opts, option{pos: pos, v: t.Var})
			}
		}
		if len(forced) > 1 || (len(forced) == 0 && len(opts) == 0) {
			s.conflict = l.Name
			return s, false
		}
		if len(forced) == 1 {
			opts = forced
		}
		g := len(s.groups)
		s.groups = append(s.groups, opts)
		for _, t := range l.Terms {
			s.groupOf[t.Var] = g
		}
	}

	for v := 0; v < n; v++ {
		if s.groupOf[v] >= 0 || m.derived[v] {
			continue
		}
		var opts []option
		switch fixed[v] {
		case fixedT:
			opts = []option{{pos: 1, v: Var(v)}}
		case fixedF:
			opts = []option{{pos: 0, v: -1}}
		default:
			opts = []option{{pos: 0, v: -1}, {pos: 1, v: Var(v)}}
		}
		s.groupOf[v] = len(s.groups)
		s.groups = append(s.groups, opts)
	}

	s.inc = make([][]incidence, n)
	for i, l := range s.linears {
		for _, t := range l.Terms {
			s.inc[t.Var] = append(s.inc[t.Var], incidence{idx: i, coef: t.Coef})
		}
	}
	s.rinc = make([][]incidence, n)
	for i, r := range m.reified {
		for _, t := range r.Condition.Terms {
			s.rinc[t.Var] = append(s.rinc[t.Var], incidence{idx: i, coef: t.Coef})
		}
	}
	for _, t := range m.objective {
		s.objw[t.Var] += t.Coef
	}
	for _, w := range s.objw {
		if w > 0 {
			s.upper += w
		}
	}

	s.cur = make([]int, len(s.groups))
	s.val = make([]bool, n)
	s.sums = make([]int, len(s.linears))
	s.rsums = make([]int, len(m.reified))
	s.weights = make([]int, len(s.linears))
	for i := range s.weights {
		s.weights[i] = 1
	}
	s.tabu = make([]int, len(s.groups))
	s.violPos = make([]int, len(s.linears))
	for i := range s.violPos {
		s.violPos[i] = -1
	}
	s.dl = make([]int, len(s.linears))
	s.dr = make([]int, len(m.reified))
	s.stamp = make([]int, len(s.groups))
	return s, true
}

func isExactlyOne(l Linear) bool {
	if l.Lo != 1 || l.Hi != 1 || len(l.Terms) < 2 {
		return false
	}
	for _, t := range l.Terms {
		if t.Coef != 1 {
			return false
		}
	}
	return true
}

// free reports whether none of the constraint's variables already belongs to
// a group, and none repeats.
func (s *search) free(l Linear) bool {
	seen := make(map[Var]bool, len(l.Terms))
	for _, t := range l.Terms {
		if s.groupOf[t.Var] >= 0 || s.m.derived[t.Var] || seen[t.Var] {
			return false
		}
		seen[t.Var] = true
	}
	return true
}

func (s *search) run(ctx context.Context) Result {
	s.initialize()

	var best []bool
	bestObj := 0
	sinceBest := 0
	it := 0
	for it < s.opts.MaxIterations {
		if it&127 == 0 {
			select {
			case <-ctx.Done():
				return s.result(best, bestObj, it, false)
			default:
			}
		}
		if s.viol == 0 && (best == nil || s.obj > bestObj) {
			best = s.snapshot(best)
			bestObj = s.obj
			sinceBest = 0
			if !s.m.HasObjective() || bestObj >= s.upper {
				return s.result(best, bestObj, it, true)
			}
		}
		if best != nil {
			sinceBest++
			if sinceBest > s.opts.ImproveIterations {
				break
			}
		}
		it++
		s.step(it)
	}
	return s.result(best, bestObj, it, false)
}

func (s *search) result(best []bool, obj, it int, optimal bool) Result {
	if best == nil {
		return Result{Status: StatusUnknown, Iterations: it}
	}
	status := StatusFeasible
	if optimal {
		status = StatusOptimal
	}
	return Result{Status: status, Values: best, Objective: obj, Iterations: it}
}

func (s *search) snapshot(dst []bool) []bool {
	if dst == nil {
		dst = make([]bool, len(s.val))
	}
	copy(dst, s.val)
	for i, r := range s.m.reified {
		dst[r.Indicator] = r.Condition.Holds(s.rsums[i])
	}
	return dst
}

// initialize picks, group by group, the option that adds the least
// violation given the choices made so far.
func (s *search) initialize() {
	var single [1]change
	for g, opts := range s.groups {
		bestO, bestDV, bestDO := 0, 0, 0
		for o, op := range opts {
			chs := single[:0]
			if op.v >= 0 {
				chs = append(chs, change{v: op.v, d: 1})
			}
			dv, _, do := s.delta(chs)
			if o == 0 || dv < bestDV || (dv == bestDV && do > bestDO) {
				bestO, bestDV, bestDO = o, dv, do
			}
		}
		s.cur[g] = bestO
		if v := opts[bestO].v; v >= 0 {
			s.apply([]change{{v: v, d: 1}})
		}
	}
	s.viol = 0
	s.obj = 0
	for i, l := range s.linears {
		s.viol += l.Violation(s.sums[i])
		s.track(i)
	}
	for v, on := range s.val {
		if on && !s.m.derived[v] {
			s.obj += s.objw[v]
		}
	}
	for i, r := range s.m.reified {
		if r.Condition.Holds(s.rsums[i]) {
			s.obj += s.objw[r.Indicator]
		}
	}
}

type change struct {
	v Var
	d int
}

type candidate struct {
	mv move
	dv int
	dw int
	do int
}

func better(a, b candidate) bool {
	if a.dw != b.dw {
		return a.dw < b.dw
	}
	return a.do > b.do
}

// step performs one move focused on a violated constraint, or on a random
// constraint once the assignment is feasible.
func (s *search) step(it int) {
	if len(s.linears) == 0 {
		return
	}
	var ci int
	if len(s.violated) > 0 {
		ci = s.violated[s.rng.Intn(len(s.violated))]
	} else {
		ci = s.rng.Intn(len(s.linears))
	}

	s.stampID++
	gs := s.gs[:0]
	for _, t := range s.linears[ci].Terms {
		g := s.groupOf[t.Var]
		if g < 0 || len(s.groups[g]) < 2 || s.stamp[g] == s.stampID {
			continue
		}
		s.stamp[g] = s.stampID
		gs = append(gs, g)
	}
	s.gs = gs
	if len(gs) == 0 {
		return
	}

	cands := s.cands[:0]
	for _, g := range gs {
		for o := range s.groups[g] {
			if o == s.cur[g] {
				continue
			}
			mv := move{groups: [2]int{g}, options: [2]int{o}, n: 1}
			cands = append(cands, s.evaluate(mv))
		}
	}
	for i := 0; i < len(gs); i++ {
		for j := i + 1; j < len(gs); j++ {
			g1, g2 := gs[i], gs[j]
			p1 := s.groups[g1][s.cur[g1]].pos
			p2 := s.groups[g2][s.cur[g2]].pos
			if p1 == p2 {
				continue
			}
			o1 := optionAt(s.groups[g1], p2)
			o2 := optionAt(s.groups[g2], p1)
			if o1 < 0 || o2 < 0 {
				continue
			}
			mv := move{groups: [2]int{g1, g2}, options: [2]int{o1, o2}, n: 2}
			cands = append(cands, s.evaluate(mv))
		}
	}
	s.cands = cands
	if len(cands) == 0 {
		return
	}

	allowed := s.allowed[:0]
	for _, c := range cands {
		if !s.isTabu(c.mv, it) || s.viol+c.dv == 0 {
			allowed = append(allowed, c)
		}
	}
	s.allowed = allowed
	if len(allowed) == 0 {
		allowed = cands
	}

	var pick candidate
	if s.rng.Float64() < s.opts.Noise {
		pick = allowed[s.rng.Intn(len(allowed))]
	} else {
		bestIdx := append(s.ties[:0], 0)
		for i := 1; i < len(allowed); i++ {
			switch {
			case better(allowed[i], allowed[bestIdx[0]]):
				bestIdx = append(bestIdx[:0], i)
			case !better(allowed[bestIdx[0]], allowed[i]):
				bestIdx = append(bestIdx, i)
			}
		}
		s.ties = bestIdx
		pick = allowed[bestIdx[s.rng.Intn(len(bestIdx))]]
		if pick.dw >= 0 && s.viol > 0 {
			for _, vi := range s.violated {
				s.weights[vi]++
			}
		}
	}

	s.buf = s.changes(pick.mv, s.buf[:0])
	s.apply(s.buf)
	s.viol += pick.dv
	s.obj += pick.do
	for k := 0; k < pick.mv.n; k++ {
		g := pick.mv.groups[k]
		s.cur[g] = pick.mv.options[k]
		s.tabu[g] = it + s.opts.TabuTenure + s.rng.Intn(4)
	}
}

func optionAt(opts []option, pos int) int {
	for i, o := range opts {
		if o.pos == pos {
			return i
		}
	}
	return -1
}

func (s *search) isTabu(mv move, it int) bool {
	for k := 0; k < mv.n; k++ {
		if s.tabu[mv.groups[k]] > it {
			return true
		}
	}
	return false
}

func (s *search) evaluate(mv move) candidate {
	s.buf = s.changes(mv, s.buf[:0])
	dv, dw, do := s.delta(s.buf)
	return candidate{mv: mv, dv: dv, dw: dw, do: do}
}

// changes lists the variable flips a move performs.
func (s *search) changes(mv move, chs []change) []change {
	for k := 0; k < mv.n; k++ {
		g, o := mv.groups[k], mv.options[k]
		if v := s.groups[g][s.cur[g]].v; v >= 0 {
			chs = append(chs, change{v: v, d: -1})
		}
		if v := s.groups[g][o].v; v >= 0 {
			chs = append(chs, change{v: v, d: 1})
		}
	}
	return chs
}

// delta returns the change in total violation, weighted violation and
// objective if chs were applied.
func (s *search) delta(chs []change) (dv, dw, do int) {
	for _, ch := range chs {
		do += s.objw[ch.v] * ch.d
		for _, in := range s.inc[ch.v] {
			if s.dl[in.idx] == 0 {
				s.touchL = append(s.touchL, in.idx)
			}
			s.dl[in.idx] += in.coef * ch.d
		}
		for _, in := range s.rinc[ch.v] {
			if s.dr[in.idx] == 0 {
				s.touchR = append(s.touchR, in.idx)
			}
			s.dr[in.idx] += in.coef * ch.d
		}
	}
	for _, i := range s.touchL {
		if x := s.dl[i]; x != 0 {
			l := s.linears[i]
			d := l.Violation(s.sums[i]+x) - l.Violation(s.sums[i])
			dv += d
			dw += d * s.weights[i]
		}
		s.dl[i] = 0
	}
	for _, i := range s.touchR {
		if x := s.dr[i]; x != 0 {
			r := s.m.reified[i]
			if w := s.objw[r.Indicator]; w != 0 {
				before := r.Condition.Holds(s.rsums[i])
				after := r.Condition.Holds(s.rsums[i] + x)
				if before != after {
					if after {
						do += w
					} else {
						do -= w
					}
				}
			}
		}
		s.dr[i] = 0
	}
	s.touchL = s.touchL[:0]
	s.touchR = s.touchR[:0]
	return dv, dw, do
}

func (s *search) apply(chs []change) {
	for _, ch := range chs {
		s.val[ch.v] = ch.d > 0
		for _, in := range s.inc[ch.v] {
			s.sums[in.idx] += in.coef * ch.d
			s.track(in.idx)
		}
		for _, in := range s.rinc[ch.v] {
			s.rsums[in.idx] += in.coef * ch.d
		}
	}
}

// track keeps the violated list in sync with sums[i].
func (s *search) track(i int) {
	bad := s.linears[i].Violation(s.sums[i]) > 0
	pos := s.violPos[i]
	switch {
	case bad && pos < 0:
		s.violPos[i] = len(s.violated)
		s.violated = append(s.violated, i)
	case !bad && pos >= 0:
		last := s.violated[len(s.violated)-1]
		s.violated[pos] = last
		s.violPos[last] = pos
		s.violated = s.violated[:len(s.violated)-1]
		s.violPos[i] = -1
	}
}
