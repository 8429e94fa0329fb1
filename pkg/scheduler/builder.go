package scheduler

import (
	"fmt"

	"github.com/arnavshah/shift-roster-go/internal/solver"
	"github.com/arnavshah/shift-roster-go/pkg/roster"
)

// Objective weights.
const (
	PreferenceWeight = 10
	LateThreeWeight  = 5
	LateTwoWeight    = -3
	LateFourWeight   = -3
)

// Problem is the constraint model for one request under one profile.
type Problem struct {
	Model   *solver.Model
	Profile Profile
	// Shifts is indexed [staff][day-1][shift].
	Shifts [][][roster.NumShiftTypes]solver.Var
	// Per-day Late headcount indicators, indexed [day-1].
	LateThree    []solver.Var
	LateTwo      []solver.Var
	LateFourPlus []solver.Var
}

// Build constructs a fresh model. It never mutates req and shares nothing
// with earlier problems.
func Build(req *roster.Request, p Profile) *Problem {
	m := solver.NewModel()
	numStaff := len(req.Staff)
	numDays := req.NumDays()

	prob := &Problem{
		Model:   m,
		Profile: p,
		Shifts:  make([][][roster.NumShiftTypes]solver.Var, numStaff),
	}

	// 1. one shift per staff per day
	for s := 0; s < numStaff; s++ {
		prob.Shifts[s] = make([][roster.NumShiftTypes]solver.Var, numDays)
		for d := 0; d < numDays; d++ {
			vars := &prob.Shifts[s][d]
			for t := 0; t < roster.NumShiftTypes; t++ {
				vars[t] = m.NewBoolVar(fmt.Sprintf("shift_s%d_d%d_%s", s, d+1, roster.ShiftType(t)))
			}
			m.AddExactlyOne(fmt.Sprintf("one_shift_s%d_d%d", s, d+1), vars[:]...)
		}
	}

	// 2. daily headcounts and the Late tier indicators
	for d := 0; d < numDays; d++ {
		day := d + 1
		m.AddEquality(fmt.Sprintf("early_count_d%d", day), prob.column(d, roster.Early), req.Staffing.Early)
		m.AddEquality(fmt.Sprintf("middle_count_d%d", day), prob.column(d, roster.Middle), req.Staffing.Middle)

		late := prob.column(d, roster.Late)
		hi := solver.NoUpper
		if req.Staffing.LateBounded() {
			hi = req.Staffing.LateMax
		}
		m.AddLinear(fmt.Sprintf("late_count_d%d", day), late, req.Staffing.LateMin, hi)

		prob.LateThree = append(prob.LateThree, m.NewIndicator(fmt.Sprintf("late_is_three_d%d", day), late, 3, 3))
		prob.LateTwo = append(prob.LateTwo, m.NewIndicator(fmt.Sprintf("late_is_two_d%d", day), late, 2, 2))
		prob.LateFourPlus = append(prob.LateFourPlus, m.NewIndicator(fmt.Sprintf("late_is_four_plus_d%d", day), late, 4, solver.NoUpper))
	}

	// 3. nakaban-only staff work Middle or rest
	for _, st := range req.Staff {
		if !st.NakabanOnly {
			continue
		}
		for d := 0; d < numDays; d++ {
			m.Fix(fmt.Sprintf("nakaban_only_s%d_d%d_early", st.ID, d+1), prob.Shifts[st.ID][d][roster.Early], false)
			m.Fix(fmt.Sprintf("nakaban_only_s%d_d%d_late", st.ID, d+1), prob.Shifts[st.ID][d][roster.Late], false)
		}
	}

	// 4. at least one Off in every window of maxConsecutive+1 days
	maxC := p.MaxConsecutive()
	for s := 0; s < numStaff; s++ {
		for d := 0; d+maxC < numDays; d++ {
			window := make([]solver.Var, 0, maxC+1)
			for i := 0; i <= maxC; i++ {
				window = append(window, prob.Shifts[s][d+i][roster.Off])
			}
			m.AddAtLeastOne(fmt.Sprintf("consecutive_s%d_d%d", s, d+1), window...)
		}
	}

	// 5. no Late followed by Early
	if !p.AllowLateThenEarly {
		for s := 0; s < numStaff; s++ {
			for d := 0; d+1 < numDays; d++ {
				m.AddAtMostOne(fmt.Sprintf("late_then_early_s%d_d%d", s, d+1),
					prob.Shifts[s][d][roster.Late], prob.Shifts[s][d+1][roster.Early])
			}
		}
	}

	// 6. newbies never share a working shift
	if newbies := req.Newbies(); len(newbies) >= 2 {
		for d := 0; d < numDays; d++ {
			for _, t := range roster.WorkingShifts {
				vars := make([]solver.Var, 0, len(newbies))
				for _, s := range newbies {
					vars = append(vars, prob.Shifts[s][d][t])
				}
				m.AddAtMostOne(fmt.Sprintf("newbies_d%d_%s", d+1, t), vars...)
			}
		}
	}

	// 7 and 8. requested days off and holidays are hard; preferences are hard
	// unless softened, in which case they move to the objective
	var objective []solver.Term
	for s := 0; s < numStaff; s++ {
		for _, day := range req.OffDays(s) {
			if day < 1 || day > numDays {
				continue
			}
			m.Fix(fmt.Sprintf("off_request_s%d_d%d", s, day), prob.Shifts[s][day-1][roster.Off], true)
		}
		for _, day := range req.PreferenceDays(s) {
			t := req.Preferences[s][day]
			if day < 1 || day > numDays || !t.Working() {
				continue
			}
			v := prob.Shifts[s][day-1][t]
			if p.SoftenPreferences {
				objective = append(objective, solver.Term{Var: v, Coef: PreferenceWeight})
			} else {
				m.Fix(fmt.Sprintf("preference_s%d_d%d_%s", s, day, t), v, true)
			}
		}
	}

	// 9. exact Off target per staff
	target := req.Calendar.TargetOffDays()
	for s := 0; s < numStaff; s++ {
		m.AddEquality(fmt.Sprintf("off_target_s%d", s), prob.row(s, roster.Off), target)
	}

	// 10. Early/Late balance for everyone who can work both
	tol := req.Balance.Tolerance + p.BalanceSlack
	for _, st := range req.Staff {
		if st.NakabanOnly {
			continue
		}
		terms := prob.row(st.ID, roster.Early)
		for _, t := range prob.row(st.ID, roster.Late) {
			terms = append(terms, solver.Term{Var: t.Var, Coef: -1})
		}
		m.AddLinear(fmt.Sprintf("balance_s%d", st.ID), terms, -tol, tol)
	}

	for d := 0; d < numDays; d++ {
		objective = append(objective,
			solver.Term{Var: prob.LateThree[d], Coef: LateThreeWeight},
			solver.Term{Var: prob.LateTwo[d], Coef: LateTwoWeight},
			solver.Term{Var: prob.LateFourPlus[d], Coef: LateFourWeight},
		)
	}
	if len(objective) > 0 {
		m.Maximize(objective...)
	}
	return prob
}

// column is the headcount of shift t on day index d.
func (p *Problem) column(d int, t roster.ShiftType) []solver.Term {
	vars := make([]solver.Var, len(p.Shifts))
	for s := range p.Shifts {
		vars[s] = p.Shifts[s][d][t]
	}
	return solver.Sum(vars...)
}

// row is the monthly count of shift t for staff s.
func (p *Problem) row(s int, t roster.ShiftType) []solver.Term {
	vars := make([]solver.Var, len(p.Shifts[s]))
	for d := range p.Shifts[s] {
		vars[d] = p.Shifts[s][d][t]
	}
	return solver.Sum(vars...)
}

// Decode reads the chosen shift of every (staff, day) from a solved
// assignment.
func (p *Problem) Decode(values []bool) (Assignment, error) {
	out := make(Assignment, len(p.Shifts))
	for s, days := range p.Shifts {
		out[s] = make([]roster.ShiftType, len(days))
		for d, vars := range days {
			chosen := -1
			for t, v := range vars {
				if int(v) >= len(values) {
					return nil, fmt.Errorf("assignment has %d values, need variable %d", len(values), v)
				}
				if values[v] {
					if chosen >= 0 {
						return nil, fmt.Errorf("staff %d day %d holds two shifts", s, d+1)
					}
					chosen = t
				}
			}
			if chosen < 0 {
				return nil, fmt.Errorf("staff %d day %d holds no shift", s, d+1)
			}
			out[s][d] = roster.ShiftType(chosen)
		}
	}
	return out, nil
}
