package solver

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testEngine() *LocalSearch {
	return NewLocalSearch(Options{MaxIterations: 20000, ImproveIterations: 500, Seed: 7})
}

// latin builds an n x n grid where every row and every column holds exactly
// one true cell.
func latin(n int) (*Model, [][]Var) {
	m := NewModel()
	cells := make([][]Var, n)
	for r := 0; r < n; r++ {
		cells[r] = make([]Var, n)
		for c := 0; c < n; c++ {
			cells[r][c] = m.NewBoolVar(fmt.Sprintf("cell_%d_%d", r, c))
		}
		m.AddExactlyOne(fmt.Sprintf("row_%d", r), cells[r]...)
	}
	for c := 0; c < n; c++ {
		col := make([]Var, n)
		for r := 0; r < n; r++ {
			col[r] = cells[r][c]
		}
		m.AddExactlyOne(fmt.Sprintf("col_%d", c), col...)
	}
	return m, cells
}

func TestPropagationProvesInfeasible(t *testing.T) {
	m := NewModel()
	a := m.NewBoolVar("a")
	b := m.NewBoolVar("b")
	m.AddExactlyOne("one_of", a, b)
	m.Fix("want_a", a, true)
	m.Fix("want_b", b, true)

	res := testEngine().Solve(context.Background(), m)
	assert.Equal(t, StatusInfeasible, res.Status)
	assert.NotEmpty(t, res.Conflict)
	assert.Nil(t, res.Values)
}

func TestPropagationCountsShortfall(t *testing.T) {
	m := NewModel()
	var early []Var
	for s := 0; s < 2; s++ {
		e := m.NewBoolVar(fmt.Sprintf("early_%d", s))
		l := m.NewBoolVar(fmt.Sprintf("late_%d", s))
		m.AddExactlyOne(fmt.Sprintf("one_%d", s), e, l)
		early = append(early, e)
	}
	m.AddEquality("early_count", Sum(early...), 3)

	res := testEngine().Solve(context.Background(), m)
	assert.Equal(t, StatusInfeasible, res.Status)
	assert.Equal(t, "early_count", res.Conflict)
}

func TestSolveLatinSquare(t *testing.T) {
	m, _ := latin(6)
	res := testEngine().Solve(context.Background(), m)
	require.True(t, res.Status.Solved(), "status %s", res.Status)
	assert.Equal(t, StatusOptimal, res.Status, "no objective means any feasible answer is optimal")
	assert.Empty(t, m.Check(res.Values))
}

func TestSolveHonorsFixedCells(t *testing.T) {
	m, cells := latin(5)
	m.Fix("pin_0_3", cells[0][3], true)
	m.Fix("pin_4_0", cells[4][0], true)
	m.Fix("ban_2_2", cells[2][2], false)

	res := testEngine().Solve(context.Background(), m)
	require.True(t, res.Status.Solved())
	assert.True(t, res.Values[cells[0][3]])
	assert.True(t, res.Values[cells[4][0]])
	assert.False(t, res.Values[cells[2][2]])
	assert.Empty(t, m.Check(res.Values))
}

func TestObjectivePicksWeightedOption(t *testing.T) {
	m := NewModel()
	a := m.NewBoolVar("a")
	b := m.NewBoolVar("b")
	m.AddExactlyOne("pick", a, b)
	m.Maximize(Term{Var: b, Coef: 10})

	res := testEngine().Solve(context.Background(), m)
	require.Equal(t, StatusOptimal, res.Status)
	assert.True(t, res.Values[b])
	assert.Equal(t, 10, res.Objective)
}

func TestIndicatorsTrackCountBothWays(t *testing.T) {
	m := NewModel()
	var late []Var
	for s := 0; s < 5; s++ {
		l := m.NewBoolVar(fmt.Sprintf("late_%d", s))
		o := m.NewBoolVar(fmt.Sprintf("off_%d", s))
		m.AddExactlyOne(fmt.Sprintf("one_%d", s), l, o)
		late = append(late, l)
	}
	m.AddLinear("late_range", Sum(late...), 2, NoUpper)
	three := m.NewIndicator("late_is_three", Sum(late...), 3, 3)
	two := m.NewIndicator("late_is_two", Sum(late...), 2, 2)
	four := m.NewIndicator("late_four_plus", Sum(late...), 4, NoUpper)
	m.Maximize(Term{Var: three, Coef: 5}, Term{Var: two, Coef: -3}, Term{Var: four, Coef: -3})

	res := testEngine().Solve(context.Background(), m)
	require.True(t, res.Status.Solved())
	assert.Empty(t, m.Check(res.Values))
	assert.True(t, res.Values[three])
	assert.False(t, res.Values[two])
	assert.False(t, res.Values[four])
	assert.Equal(t, 5, res.Objective)
	assert.Equal(t, 5, m.Score(res.Values))
}

func TestSolveIsDeterministic(t *testing.T) {
	build := func() *Model {
		m, cells := latin(7)
		m.Maximize(Term{Var: cells[3][3], Coef: 4}, Term{Var: cells[1][5], Coef: 2})
		return m
	}
	first := testEngine().Solve(context.Background(), build())
	second := testEngine().Solve(context.Background(), build())
	require.True(t, first.Status.Solved())
	assert.Equal(t, first.Values, second.Values)
	assert.Equal(t, first.Iterations, second.Iterations)
}

func TestPigeonholeEndsUnknown(t *testing.T) {
	m := NewModel()
	holes := [2][]Var{}
	for p := 0; p < 3; p++ {
		h0 := m.NewBoolVar(fmt.Sprintf("p%d_h0", p))
		h1 := m.NewBoolVar(fmt.Sprintf("p%d_h1", p))
		m.AddExactlyOne(fmt.Sprintf("pigeon_%d", p), h0, h1)
		holes[0] = append(holes[0], h0)
		holes[1] = append(holes[1], h1)
	}
	m.AddAtMostOne("hole_0", holes[0]...)
	m.AddAtMostOne("hole_1", holes[1]...)

	engine := NewLocalSearch(Options{MaxIterations: 3000, Seed: 1})
	res := engine.Solve(context.Background(), m)
	assert.Equal(t, StatusUnknown, res.Status)
	assert.Equal(t, 3000, res.Iterations)
}

func TestCanceledContextStopsSearch(t *testing.T) {
	m, _ := latin(8)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := testEngine().Solve(ctx, m)
	assert.Equal(t, StatusUnknown, res.Status)
	assert.Zero(t, res.Iterations)
}

func TestValidateRejectsIndicatorInConstraint(t *testing.T) {
	m := NewModel()
	a := m.NewBoolVar("a")
	ind := m.NewIndicator("a_on", Sum(a), 1, 1)
	m.AddAtMostOne("bad", a, ind)

	require.Error(t, m.Validate())
	res := testEngine().Solve(context.Background(), m)
	assert.Equal(t, StatusUnknown, res.Status)
	assert.Error(t, res.Err)
}

func TestNewLocalSearchFillsDefaults(t *testing.T) {
	e := NewLocalSearch(Options{})
	def := DefaultOptions()
	assert.Equal(t, def.MaxIterations, e.Options().MaxIterations)
	assert.Equal(t, def.ImproveIterations, e.Options().ImproveIterations)
	assert.Equal(t, def.TabuTenure, e.Options().TabuTenure)
}

func TestStatusStrings(t *testing.T) {
	assert.Equal(t, "OPTIMAL", StatusOptimal.String())
	assert.Equal(t, "FEASIBLE", StatusFeasible.String())
	assert.Equal(t, "INFEASIBLE", StatusInfeasible.String())
	assert.Equal(t, "UNKNOWN", StatusUnknown.String())
	assert.False(t, StatusUnknown.Solved())
}
