package scheduler

import (
	"gonum.org/v1/gonum/stat"

	"github.com/arnavshah/shift-roster-go/pkg/roster"
)

// Fairness summarizes how evenly a roster spreads work.
type Fairness struct {
	// Score is 0-100; 100 means every staff member works the same number of
	// days.
	Score             float64 `json:"score"`
	MeanWorkingDays   float64 `json:"mean_working_days"`
	StdDevWorkingDays float64 `json:"stddev_working_days"`
	// MaxBalanceGap is the largest |early - late| among staff who can work
	// both.
	MaxBalanceGap  int     `json:"max_balance_gap"`
	MeanBalanceGap float64 `json:"mean_balance_gap"`
}

// CalculateFairness scores an assignment. The score is the working-day
// standard deviation relative to the mean, inverted into a percentage.
func CalculateFairness(staff []roster.Staff, a Assignment) Fairness {
	if len(staff) == 0 {
		return Fairness{Score: 100}
	}

	worked := make([]float64, 0, len(staff))
	var gaps []float64
	maxGap := 0
	for _, st := range staff {
		worked = append(worked, float64(len(a[st.ID])-a.Count(st.ID, roster.Off)))
		if st.NakabanOnly {
			continue
		}
		gap := a.Count(st.ID, roster.Early) - a.Count(st.ID, roster.Late)
		if gap < 0 {
			gap = -gap
		}
		if gap > maxGap {
			maxGap = gap
		}
		gaps = append(gaps, float64(gap))
	}

	mean, std := stat.PopMeanStdDev(worked, nil)
	f := Fairness{
		MeanWorkingDays:   mean,
		StdDevWorkingDays: std,
		MaxBalanceGap:     maxGap,
		Score:             100,
	}
	if len(gaps) > 0 {
		f.MeanBalanceGap = stat.Mean(gaps, nil)
	}
	if mean == 0 {
		return f
	}
	f.Score = (1.0 - std/mean) * 100.0
	if f.Score < 0 {
		f.Score = 0
	}
	return f
}
