package scheduler

import (
	"strconv"

	"github.com/arnavshah/shift-roster-go/pkg/roster"
)

// Assignment is the solved shift of every staff member on every day,
// indexed [staff][day-1].
type Assignment [][]roster.ShiftType

// Count returns how many times staff s holds shift t.
func (a Assignment) Count(s int, t roster.ShiftType) int {
	n := 0
	for _, got := range a[s] {
		if got == t {
			n++
		}
	}
	return n
}

// Headcount returns how many staff hold shift t on day index d.
func (a Assignment) Headcount(d int, t roster.ShiftType) int {
	n := 0
	for s := range a {
		if a[s][d] == t {
			n++
		}
	}
	return n
}

// Row is one staff member's line of the projected roster.
type Row struct {
	Name   string   `json:"name"`
	Shifts []string `json:"shifts"`
}

// OffLabel is the display label of the n-th rest day.
func OffLabel(n int) string {
	return roster.Off.Label() + strconv.Itoa(n)
}

// Project turns an assignment into display labels. Rest days are numbered
// OFF1, OFF2, ... per staff member.
func Project(staff []roster.Staff, a Assignment) []Row {
	rows := make([]Row, len(staff))
	for i, st := range staff {
		labels := make([]string, len(a[st.ID]))
		off := 0
		for d, t := range a[st.ID] {
			if t == roster.Off {
				off++
				labels[d] = OffLabel(off)
				continue
			}
			labels[d] = t.Label()
		}
		rows[i] = Row{Name: st.Name, Shifts: labels}
	}
	return rows
}
