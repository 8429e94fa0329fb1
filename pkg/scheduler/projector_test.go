package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnavshah/shift-roster-go/pkg/roster"
)

const (
	E = roster.Early
	M = roster.Middle
	L = roster.Late
	O = roster.Off
)

func TestProjectNumbersOffDaysPerStaff(t *testing.T) {
	staff := []roster.Staff{{ID: 0, Name: "Sato"}, {ID: 1, Name: "Suzuki"}}
	a := Assignment{
		{O, E, O, M, L, O},
		{L, L, M, O, E, E},
	}

	rows := Project(staff, a)
	require.Len(t, rows, 2)
	assert.Equal(t, "Sato", rows[0].Name)
	assert.Equal(t, []string{"OFF1", "早番", "OFF2", "中番", "遅番", "OFF3"}, rows[0].Shifts)
	assert.Equal(t, []string{"遅番", "遅番", "中番", "OFF1", "早番", "早番"}, rows[1].Shifts)
}

func TestAssignmentCounts(t *testing.T) {
	a := Assignment{
		{O, E, L},
		{E, E, O},
	}
	assert.Equal(t, 1, a.Count(0, E))
	assert.Equal(t, 2, a.Count(1, E))
	assert.Equal(t, 2, a.Headcount(1, E))
	assert.Equal(t, 0, a.Headcount(2, M))
}

func TestOffLabel(t *testing.T) {
	assert.Equal(t, "OFF12", OffLabel(12))
}

func TestFairnessEvenRoster(t *testing.T) {
	staff := []roster.Staff{{ID: 0}, {ID: 1}}
	a := Assignment{
		{E, L, O, E},
		{L, E, O, M},
	}
	f := CalculateFairness(staff, a)
	assert.InDelta(t, 100.0, f.Score, 1e-9)
	assert.InDelta(t, 3.0, f.MeanWorkingDays, 1e-9)
	assert.Equal(t, 1, f.MaxBalanceGap)
	assert.InDelta(t, 0.5, f.MeanBalanceGap, 1e-9)
}

func TestFairnessUnevenRoster(t *testing.T) {
	staff := []roster.Staff{{ID: 0}, {ID: 1, NakabanOnly: true}}
	a := Assignment{
		{E, E, E, E},
		{M, O, O, O},
	}
	f := CalculateFairness(staff, a)
	// working days 4 and 1: mean 2.5, population sd 1.5
	assert.InDelta(t, 2.5, f.MeanWorkingDays, 1e-9)
	assert.InDelta(t, 1.5, f.StdDevWorkingDays, 1e-9)
	assert.InDelta(t, 40.0, f.Score, 1e-9)
	assert.Equal(t, 4, f.MaxBalanceGap, "nakaban-only staff are not counted")
}

func TestFairnessEmpty(t *testing.T) {
	assert.Equal(t, 100.0, CalculateFairness(nil, nil).Score)
}
