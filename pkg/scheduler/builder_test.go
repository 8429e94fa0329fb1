package scheduler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnavshah/shift-roster-go/internal/solver"
	"github.com/arnavshah/shift-roster-go/pkg/roster"
)

func linearsWithPrefix(m *solver.Model, prefix string) []solver.Linear {
	var out []solver.Linear
	for _, l := range m.Linears() {
		if strings.HasPrefix(l.Name, prefix) {
			out = append(out, l)
		}
	}
	return out
}

func findLinear(t *testing.T, m *solver.Model, name string) solver.Linear {
	t.Helper()
	for _, l := range m.Linears() {
		if l.Name == name {
			return l
		}
	}
	t.Fatalf("constraint %q not found", name)
	return solver.Linear{}
}

func TestBuildVariables(t *testing.T) {
	req := sevenStaffApril()
	prob := Build(req, Strictest())

	require.Len(t, prob.Shifts, 7)
	require.Len(t, prob.Shifts[0], 30)
	assert.Len(t, prob.LateThree, 30)
	assert.Len(t, prob.LateTwo, 30)
	assert.Len(t, prob.LateFourPlus, 30)
	// 7 staff x 30 days x 4 shifts + 3 indicators per day
	assert.Equal(t, 7*30*4+3*30, prob.Model.NumVars())
	assert.Len(t, linearsWithPrefix(prob.Model, "one_shift_"), 7*30)
	assert.NoError(t, prob.Model.Validate())
}

func TestBuildHeadcounts(t *testing.T) {
	req := sevenStaffApril()
	prob := Build(req, Strictest())

	early := findLinear(t, prob.Model, "early_count_d1")
	assert.Equal(t, 2, early.Lo)
	assert.Equal(t, 2, early.Hi)
	middle := findLinear(t, prob.Model, "middle_count_d30")
	assert.Equal(t, 1, middle.Lo)
	assert.Equal(t, 1, middle.Hi)
	late := findLinear(t, prob.Model, "late_count_d15")
	assert.Equal(t, 2, late.Lo)
	assert.Equal(t, 3, late.Hi)
}

func TestBuildUnboundedLate(t *testing.T) {
	req := sevenStaffApril()
	req.Staffing.LateMax = 0
	prob := Build(req, Strictest())

	late := findLinear(t, prob.Model, "late_count_d1")
	assert.Equal(t, 2, late.Lo)
	assert.Equal(t, solver.NoUpper, late.Hi, "late max 0 means no upper bound")
}

func TestBuildOffTargetByParity(t *testing.T) {
	april := Build(sevenStaffApril(), Strictest())
	off := findLinear(t, april.Model, "off_target_s0")
	assert.Equal(t, 8, off.Lo)
	assert.Equal(t, 8, off.Hi)
	assert.Len(t, off.Terms, 30)

	may := newRequest(7, 2025, 5, roster.Staffing{Early: 2, Middle: 1, LateMin: 2, LateMax: 3})
	off = findLinear(t, Build(may, Strictest()).Model, "off_target_s6")
	assert.Equal(t, 9, off.Lo)
	assert.Len(t, off.Terms, 31)
}

func TestBuildConsecutiveWindows(t *testing.T) {
	req := sevenStaffApril()
	strict := Build(req, Strictest())
	// windows of 4 days starting on days 1..27
	assert.Len(t, linearsWithPrefix(strict.Model, "consecutive_s0_"), 27)
	w := findLinear(t, strict.Model, "consecutive_s0_d27")
	assert.Len(t, w.Terms, 4)
	assert.Equal(t, 1, w.Lo)

	extended := Build(req, Profile{ExtendConsecutive: true})
	assert.Len(t, linearsWithPrefix(extended.Model, "consecutive_s0_"), 26)
}

func TestBuildLateThenEarly(t *testing.T) {
	req := sevenStaffApril()
	strict := Build(req, Strictest())
	assert.Len(t, linearsWithPrefix(strict.Model, "late_then_early_"), 7*29)

	l := findLinear(t, strict.Model, "late_then_early_s3_d10")
	require.Len(t, l.Terms, 2)
	assert.Equal(t, strict.Shifts[3][9][roster.Late], l.Terms[0].Var)
	assert.Equal(t, strict.Shifts[3][10][roster.Early], l.Terms[1].Var)

	relaxed := Build(req, Profile{AllowLateThenEarly: true})
	assert.Empty(t, linearsWithPrefix(relaxed.Model, "late_then_early_"))
}

func TestBuildNakabanOnly(t *testing.T) {
	req := sevenStaffApril()
	req.Staff[6].NakabanOnly = true
	prob := Build(req, Strictest())

	assert.Len(t, linearsWithPrefix(prob.Model, "nakaban_only_s6_"), 2*30)
	assert.Empty(t, linearsWithPrefix(prob.Model, "nakaban_only_s0_"))
	assert.Empty(t, linearsWithPrefix(prob.Model, "balance_s6"))
	assert.Len(t, linearsWithPrefix(prob.Model, "balance_s"), 6)
}

func TestBuildNewbiesNeedTwo(t *testing.T) {
	req := sevenStaffApril()
	req.Staff[0].IsNewbie = true
	assert.Empty(t, linearsWithPrefix(Build(req, Strictest()).Model, "newbies_"))

	req.Staff[4].IsNewbie = true
	newbies := linearsWithPrefix(Build(req, Strictest()).Model, "newbies_")
	assert.Len(t, newbies, 30*3)
	assert.Len(t, newbies[0].Terms, 2)
	assert.Equal(t, 1, newbies[0].Hi)
}

func TestBuildBalanceUsesSlack(t *testing.T) {
	req := sevenStaffApril()
	bal := findLinear(t, Build(req, Profile{BalanceSlack: 3}).Model, "balance_s2")
	assert.Equal(t, -5, bal.Lo)
	assert.Equal(t, 5, bal.Hi)
	assert.Len(t, bal.Terms, 60)
}

func TestBuildRequestsAndPreferences(t *testing.T) {
	req := sevenStaffApril()
	req.RequestedOff[1] = []int{3, 10}
	req.Holidays[1] = []int{10, 20}
	req.Preferences[2] = map[int]roster.ShiftType{5: roster.Early}

	hard := Build(req, Strictest())
	assert.Len(t, linearsWithPrefix(hard.Model, "off_request_s1_"), 3, "duplicate days are merged")
	pref := findLinear(t, hard.Model, "preference_s2_d5_early")
	assert.Equal(t, hard.Shifts[2][4][roster.Early], pref.Terms[0].Var)
	assert.Equal(t, 1, pref.Lo)

	soft := Build(req, Profile{SoftenPreferences: true})
	assert.Empty(t, linearsWithPrefix(soft.Model, "preference_"))
	assert.Len(t, linearsWithPrefix(soft.Model, "off_request_s1_"), 3, "days off stay hard")
	assert.Contains(t, soft.Model.Objective(), solver.Term{Var: soft.Shifts[2][4][roster.Early], Coef: PreferenceWeight})
}

func TestBuildObjectiveTiers(t *testing.T) {
	prob := Build(sevenStaffApril(), Strictest())
	obj := prob.Model.Objective()
	require.Len(t, obj, 3*30)
	assert.Contains(t, obj, solver.Term{Var: prob.LateThree[0], Coef: 5})
	assert.Contains(t, obj, solver.Term{Var: prob.LateTwo[0], Coef: -3})
	assert.Contains(t, obj, solver.Term{Var: prob.LateFourPlus[0], Coef: -3})

	for _, r := range prob.Model.Reified() {
		if r.Indicator == prob.LateFourPlus[0] {
			assert.Equal(t, 4, r.Condition.Lo)
			assert.Equal(t, solver.NoUpper, r.Condition.Hi)
		}
		if r.Indicator == prob.LateTwo[0] {
			assert.Equal(t, 2, r.Condition.Lo)
			assert.Equal(t, 2, r.Condition.Hi)
		}
	}
}

func TestBuildIsFresh(t *testing.T) {
	req := sevenStaffApril()
	a := Build(req, Strictest())
	b := Build(req, Strictest())
	assert.NotSame(t, a.Model, b.Model)
	assert.Equal(t, len(a.Model.Linears()), len(b.Model.Linears()))

	c := Build(req, Ladder()[15])
	assert.Len(t, linearsWithPrefix(a.Model, "late_then_early_"), 7*29, "later profiles do not leak into earlier ones")
	assert.Empty(t, linearsWithPrefix(c.Model, "late_then_early_"))
}

func TestDecode(t *testing.T) {
	req := newRequest(1, 2025, 2, roster.Staffing{})
	prob := Build(req, Strictest())
	values := make([]bool, prob.Model.NumVars())
	for d := range prob.Shifts[0] {
		values[prob.Shifts[0][d][roster.ShiftType(d%4)]] = true
	}
	a, err := prob.Decode(values)
	require.NoError(t, err)
	assert.Equal(t, roster.Early, a[0][0])
	assert.Equal(t, roster.Off, a[0][3])

	values[prob.Shifts[0][0][roster.Late]] = true
	_, err = prob.Decode(values)
	assert.Error(t, err)
}
