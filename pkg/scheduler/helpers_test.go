package scheduler

import (
	"fmt"
	"time"

	"github.com/arnavshah/shift-roster-go/internal/solver"
	"github.com/arnavshah/shift-roster-go/pkg/logger"
	"github.com/arnavshah/shift-roster-go/pkg/roster"
)

// newRequest builds a request of n plain staff.
func newRequest(n, year, month int, st roster.Staffing) *roster.Request {
	req := &roster.Request{
		Calendar:     roster.Calendar{Year: year, Month: month},
		RequestedOff: map[int][]int{},
		Holidays:     map[int][]int{},
		Preferences:  map[int]map[int]roster.ShiftType{},
		Staffing:     st,
		Balance:      roster.BalancePolicy{Tolerance: roster.DefaultBalanceTolerance},
	}
	for i := 0; i < n; i++ {
		req.Staff = append(req.Staff, roster.Staff{ID: i, Name: fmt.Sprintf("staff%d", i+1)})
	}
	return req
}

// sevenStaffApril is the smallest default-staffing team that solves at the
// strictest profile.
func sevenStaffApril() *roster.Request {
	return newRequest(7, 2025, 4, roster.Staffing{Early: 2, Middle: 1, LateMin: 2, LateMax: 3})
}

// decemberEight has two newbies, four days off and three preferences. Its
// first satisfiable profile only widens the balance by two.
func decemberEight() *roster.Request {
	req := newRequest(8, 2025, 12, roster.Staffing{Early: 2, Middle: 1, LateMin: 2, LateMax: 3})
	req.Staff[0].IsNewbie = true
	req.Staff[1].IsNewbie = true
	req.RequestedOff = map[int][]int{1: {13}, 3: {6}, 5: {12}, 6: {2}}
	req.Preferences = map[int]map[int]roster.ShiftType{
		5: {15: roster.Early},
		6: {16: roster.Middle},
		7: {20: roster.Early},
	}
	return req
}

func realEngine() solver.Engine {
	return solver.NewLocalSearch(solver.Options{MaxIterations: 300000, ImproveIterations: 2000, MaxRestarts: 1, Seed: 1})
}

func satEngine() solver.Engine {
	return solver.NewSAT(solver.Options{ImproveTime: time.Second})
}

func newTestScheduler(engine solver.Engine) *Scheduler {
	return New(engine, 0, logger.Discard())
}
