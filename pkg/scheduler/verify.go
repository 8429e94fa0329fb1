package scheduler

import (
	"errors"
	"fmt"

	"github.com/arnavshah/shift-roster-go/pkg/roster"
)

// Verify re-checks every hard rule of profile p against a decoded
// assignment and joins one error per violation.
func Verify(req *roster.Request, p Profile, a Assignment) error {
	numDays := req.NumDays()
	if len(a) != len(req.Staff) {
		return fmt.Errorf("assignment covers %d staff, request has %d", len(a), len(req.Staff))
	}
	var errs []error
	for s := range a {
		if len(a[s]) != numDays {
			errs = append(errs, fmt.Errorf("staff %d has %d days, month has %d", s, len(a[s]), numDays))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	st := req.Staffing
	for d := 0; d < numDays; d++ {
		if got := a.Headcount(d, roster.Early); got != st.Early {
			errs = append(errs, fmt.Errorf("day %d: %d early, want %d", d+1, got, st.Early))
		}
		if got := a.Headcount(d, roster.Middle); got != st.Middle {
			errs = append(errs, fmt.Errorf("day %d: %d middle, want %d", d+1, got, st.Middle))
		}
		late := a.Headcount(d, roster.Late)
		if late < st.LateMin || (st.LateBounded() && late > st.LateMax) {
			errs = append(errs, fmt.Errorf("day %d: %d late, want %d..%d", d+1, late, st.LateMin, st.LateMax))
		}
	}

	target := req.Calendar.TargetOffDays()
	maxC := p.MaxConsecutive()
	tol := req.Balance.Tolerance + p.BalanceSlack
	for _, staff := range req.Staff {
		s := staff.ID
		if got := a.Count(s, roster.Off); got != target {
			errs = append(errs, fmt.Errorf("staff %d: %d days off, want %d", s, got, target))
		}
		run := 0
		for d, t := range a[s] {
			if t == roster.Off {
				run = 0
			} else if run++; run > maxC {
				errs = append(errs, fmt.Errorf("staff %d: works more than %d days in a row ending day %d", s, maxC, d+1))
			}
			if staff.NakabanOnly && (t == roster.Early || t == roster.Late) {
				errs = append(errs, fmt.Errorf("staff %d: nakaban-only on %s day %d", s, t, d+1))
			}
			if !p.AllowLateThenEarly && d > 0 && a[s][d-1] == roster.Late && t == roster.Early {
				errs = append(errs, fmt.Errorf("staff %d: late on day %d then early", s, d))
			}
		}
		for _, day := range req.OffDays(s) {
			if day >= 1 && day <= numDays && a[s][day-1] != roster.Off {
				errs = append(errs, fmt.Errorf("staff %d: day %d requested off, got %s", s, day, a[s][day-1]))
			}
		}
		if !p.SoftenPreferences {
			for _, day := range req.PreferenceDays(s) {
				if day < 1 || day > numDays {
					continue
				}
				if want := req.Preferences[s][day]; a[s][day-1] != want {
					errs = append(errs, fmt.Errorf("staff %d: day %d wants %s, got %s", s, day, want, a[s][day-1]))
				}
			}
		}
		if !staff.NakabanOnly {
			diff := a.Count(s, roster.Early) - a.Count(s, roster.Late)
			if diff > tol || -diff > tol {
				errs = append(errs, fmt.Errorf("staff %d: early-late difference %d exceeds %d", s, diff, tol))
			}
		}
	}

	if newbies := req.Newbies(); len(newbies) >= 2 {
		for d := 0; d < numDays; d++ {
			for _, t := range roster.WorkingShifts {
				n := 0
				for _, s := range newbies {
					if a[s][d] == t {
						n++
					}
				}
				if n > 1 {
					errs = append(errs, fmt.Errorf("day %d: %d newbies on %s", d+1, n, t))
				}
			}
		}
	}
	return errors.Join(errs...)
}
