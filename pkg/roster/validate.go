package roster

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// ValidationError reports malformed input. It is never used for an
// infeasible roster.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// IsValidationError reports whether err wraps a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ParseDays parses a comma separated day list such as "3, 10,". Empty
// entries are skipped.
func ParseDays(field, s string) ([]int, error) {
	var days []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := strconv.Atoi(part)
		if err != nil {
			return nil, invalid(field, "%q is not a day number", part)
		}
		days = append(days, d)
	}
	return days, nil
}

// ParsePreferences parses "day:shift" pairs such as "5:早番, 12:late".
// Empty entries are skipped.
func ParsePreferences(field, s string) (map[int]ShiftType, error) {
	prefs := make(map[int]ShiftType)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		pieces := strings.Split(part, ":")
		if len(pieces) != 2 {
			return nil, invalid(field, "%q is not a day:shift pair", part)
		}
		d, err := strconv.Atoi(strings.TrimSpace(pieces[0]))
		if err != nil {
			return nil, invalid(field, "%q is not a day number", pieces[0])
		}
		t, err := ParseWorkingShift(pieces[1])
		if err != nil {
			return nil, invalid(field, "%v", err)
		}
		prefs[d] = t
	}
	return prefs, nil
}

// Validate checks ranges and cross-field rules.
func (r *Request) Validate() error {
	if r.Calendar.Month < 1 || r.Calendar.Month > 12 {
		return invalid("month", "must be between 1 and 12, got %d", r.Calendar.Month)
	}
	if r.Calendar.Year < 1 {
		return invalid("year", "must be positive, got %d", r.Calendar.Year)
	}
	if len(r.Staff) == 0 {
		return invalid("staff_list", "at least one staff member is required")
	}
	st := r.Staffing
	for _, c := range []struct {
		name  string
		value int
	}{
		{"early_count", st.Early},
		{"middle_count", st.Middle},
		{"late_count_min", st.LateMin},
		{"late_count_max", st.LateMax},
	} {
		if c.value < 0 {
			return invalid(c.name, "must not be negative, got %d", c.value)
		}
	}
	if st.LateBounded() && st.LateMax < st.LateMin {
		return invalid("late_count_max", "must be 0 (no limit) or at least late_count_min (%d), got %d", st.LateMin, st.LateMax)
	}
	if r.Balance.Tolerance < 0 {
		return invalid("balance_tolerance", "must not be negative, got %d", r.Balance.Tolerance)
	}

	numDays := r.NumDays()
	for i, s := range r.Staff {
		if s.ID != i {
			return invalid("staff_list", "staff %q has id %d at position %d", s.Name, s.ID, i)
		}
		if strings.TrimSpace(s.Name) == "" {
			return invalid(fmt.Sprintf("staff_list[%d].name", i), "is required")
		}
		for _, list := range []struct {
			field string
			days  []int
		}{
			{"requests_off", r.RequestedOff[i]},
			{"holidays", r.Holidays[i]},
		} {
			for _, d := range list.days {
				if d < 1 || d > numDays {
					return invalid(fmt.Sprintf("staff_list[%d].%s", i, list.field), "day %d is outside 1..%d", d, numDays)
				}
			}
		}
		for _, d := range slices.Sorted(maps.Keys(r.Preferences[i])) {
			if d < 1 || d > numDays {
				return invalid(fmt.Sprintf("staff_list[%d].preferred_shifts", i), "day %d is outside 1..%d", d, numDays)
			}
			if t := r.Preferences[i][d]; !t.Working() {
				return invalid(fmt.Sprintf("staff_list[%d].preferred_shifts", i), "day %d asks for %s", d, t)
			}
		}
	}
	for _, ids := range []struct {
		field string
		ids   []int
	}{
		{"requests_off", slices.Sorted(maps.Keys(r.RequestedOff))},
		{"holidays", slices.Sorted(maps.Keys(r.Holidays))},
		{"preferred_shifts", slices.Sorted(maps.Keys(r.Preferences))},
	} {
		for _, id := range ids.ids {
			if id < 0 || id >= len(r.Staff) {
				return invalid(ids.field, "unknown staff id %d", id)
			}
		}
	}
	return nil
}
