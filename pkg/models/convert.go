package models

import (
	"fmt"

	"github.com/arnavshah/shift-roster-go/pkg/roster"
)

// ToRequest parses the staff strings, applies defaults and validates the
// result. Errors are *roster.ValidationError.
func (in *ScheduleInput) ToRequest() (*roster.Request, error) {
	if in.NumStaff != nil && in.NumStaff.Int() != len(in.StaffList) {
		return nil, &roster.ValidationError{
			Field:   "num_staff",
			Message: fmt.Sprintf("is %d but staff_list has %d entries", in.NumStaff.Int(), len(in.StaffList)),
		}
	}

	req := &roster.Request{
		Calendar:     roster.Calendar{Year: in.Year.Int(), Month: in.Month.Int()},
		RequestedOff: make(map[int][]int),
		Holidays:     make(map[int][]int),
		Preferences:  make(map[int]map[int]roster.ShiftType),
		Staffing: roster.Staffing{
			Early:   IntOr(in.EarlyCount, DefaultEarlyCount),
			Middle:  IntOr(in.MiddleCount, DefaultMiddleCount),
			LateMin: IntOr(in.LateCountMin, DefaultLateCountMin),
			LateMax: IntOr(in.LateCountMax, DefaultLateCountMax),
		},
		Balance: roster.BalancePolicy{Tolerance: IntOr(in.BalanceTolerance, roster.DefaultBalanceTolerance)},
	}

	for i, s := range in.StaffList {
		req.Staff = append(req.Staff, roster.Staff{
			ID:          i,
			Name:        s.Name,
			IsNewbie:    s.IsNewbie,
			NakabanOnly: s.NakabanOnly,
		})
		field := func(name string) string { return fmt.Sprintf("staff_list[%d].%s", i, name) }

		off, err := roster.ParseDays(field("requests_off"), s.RequestsOff)
		if err != nil {
			return nil, err
		}
		if len(off) > 0 {
			req.RequestedOff[i] = off
		}
		holidays, err := roster.ParseDays(field("holidays"), s.Holidays)
		if err != nil {
			return nil, err
		}
		if len(holidays) > 0 {
			req.Holidays[i] = holidays
		}
		prefs, err := roster.ParsePreferences(field("preferred_shifts"), s.PreferredShifts)
		if err != nil {
			return nil, err
		}
		if len(prefs) > 0 {
			req.Preferences[i] = prefs
		}
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}
