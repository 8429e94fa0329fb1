// Package roster holds the validated, in-memory form of one monthly
// scheduling request.
package roster

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ShiftType is one of the four things a staff member can do on a day.
type ShiftType int

const (
	Early ShiftType = iota
	Middle
	Late
	Off
)

// NumShiftTypes is the number of ShiftType values.
const NumShiftTypes = 4

// WorkingShifts lists the shift types that carry a time range.
var WorkingShifts = []ShiftType{Early, Middle, Late}

var shiftLabels = [NumShiftTypes]string{"早番", "中番", "遅番", "OFF"}

var shiftTimes = [NumShiftTypes]string{"6:25～15:25", "8:00～17:00", "14:00～23:00", ""}

var shiftNames = [NumShiftTypes]string{"early", "middle", "late", "off"}

// Label is the display label. Off days are numbered by the projector, so Off
// returns the bare prefix.
func (t ShiftType) Label() string { return shiftLabels[t] }

// TimeRange is the fixed working time, empty for Off.
func (t ShiftType) TimeRange() string { return shiftTimes[t] }

func (t ShiftType) String() string {
	if t < 0 || int(t) >= NumShiftTypes {
		return fmt.Sprintf("shift(%d)", int(t))
	}
	return shiftNames[t]
}

// Working reports whether t is Early, Middle or Late.
func (t ShiftType) Working() bool { return t >= Early && t < Off }

// ParseWorkingShift accepts a display label (早番, 中番, 遅番) or the English
// name, case-insensitively. Off is not a valid preference.
func ParseWorkingShift(name string) (ShiftType, error) {
	name = strings.TrimSpace(name)
	for _, t := range WorkingShifts {
		if name == t.Label() || strings.EqualFold(name, t.String()) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown shift %q", name)
}

// Staff is one member of the team. ID is the position in the request.
type Staff struct {
	ID          int
	Name        string
	IsNewbie    bool
	NakabanOnly bool
}

// Calendar is the month being planned.
type Calendar struct {
	Year  int
	Month int
}

// NumDays returns the number of days in the month.
func (c Calendar) NumDays() int {
	return time.Date(c.Year, time.Month(c.Month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// TargetOffDays is the fixed number of Off days every staff member gets:
// 8 in even months and 9 in odd months, whatever the month's length.
func (c Calendar) TargetOffDays() int {
	if c.Month%2 == 0 {
		return 8
	}
	return 9
}

// WorkingDays is NumDays minus TargetOffDays.
func (c Calendar) WorkingDays() int {
	return c.NumDays() - c.TargetOffDays()
}

// Date returns the given day of the month.
func (c Calendar) Date(day int) time.Time {
	return time.Date(c.Year, time.Month(c.Month), day, 0, 0, 0, 0, time.UTC)
}

// Staffing is the daily headcount requirement. LateMax == 0 means the Late
// headcount has no upper bound.
type Staffing struct {
	Early   int
	Middle  int
	LateMin int
	LateMax int
}

// LateBounded reports whether LateMax caps the Late headcount.
func (s Staffing) LateBounded() bool { return s.LateMax > 0 }

// MinDaily is the smallest number of people working on any day.
func (s Staffing) MinDaily() int { return s.Early + s.Middle + s.LateMin }

// MaxDaily is Early + Middle + LateMax. It is only meaningful when
// LateBounded.
func (s Staffing) MaxDaily() int { return s.Early + s.Middle + s.LateMax }

// DefaultBalanceTolerance is used when a request omits the tolerance.
const DefaultBalanceTolerance = 2

// MaxRequestsPerStaff is how many combined off and shift requests a staff
// member may make before the diagnoser flags it.
const MaxRequestsPerStaff = 2

// BalancePolicy bounds |Early - Late| per staff member over the month.
type BalancePolicy struct {
	Tolerance int
}

// Request is one validated scheduling request.
type Request struct {
	Calendar Calendar
	Staff    []Staff
	// RequestedOff and Holidays are both forced to Off; they are kept apart
	// only to remember where they came from.
	RequestedOff map[int][]int
	Holidays     map[int][]int
	Preferences  map[int]map[int]ShiftType
	Staffing     Staffing
	Balance      BalancePolicy
}

// NumDays is a shortcut for r.Calendar.NumDays().
func (r *Request) NumDays() int { return r.Calendar.NumDays() }

// OffDays returns the sorted, de-duplicated days staff id must be Off.
func (r *Request) OffDays(id int) []int {
	seen := make(map[int]bool)
	var days []int
	for _, src := range [][]int{r.RequestedOff[id], r.Holidays[id]} {
		for _, d := range src {
			if !seen[d] {
				seen[d] = true
				days = append(days, d)
			}
		}
	}
	sort.Ints(days)
	return days
}

// PreferenceDays returns the days staff id asked for a specific shift, in
// ascending order.
func (r *Request) PreferenceDays(id int) []int {
	days := make([]int, 0, len(r.Preferences[id]))
	for d := range r.Preferences[id] {
		days = append(days, d)
	}
	sort.Ints(days)
	return days
}

// RequestCount is the number of off requests, paid holidays and shift
// preferences staff id submitted.
func (r *Request) RequestCount(id int) int {
	return len(r.RequestedOff[id]) + len(r.Holidays[id]) + len(r.Preferences[id])
}

// TotalRequests sums RequestCount over all staff.
func (r *Request) TotalRequests() int {
	total := 0
	for _, s := range r.Staff {
		total += r.RequestCount(s.ID)
	}
	return total
}

// Newbies returns the ids of newbie staff.
func (r *Request) Newbies() []int {
	var ids []int
	for _, s := range r.Staff {
		if s.IsNewbie {
			ids = append(ids, s.ID)
		}
	}
	return ids
}

// NakabanOnlyCount counts staff restricted to Middle or Off.
func (r *Request) NakabanOnlyCount() int {
	n := 0
	for _, s := range r.Staff {
		if s.NakabanOnly {
			n++
		}
	}
	return n
}
