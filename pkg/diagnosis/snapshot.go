package diagnosis

import "github.com/arnavshah/shift-roster-go/pkg/roster"

// Snapshot is the headline arithmetic of a request, reported with every
// failed run.
type Snapshot struct {
	TotalStaff       int     `json:"total_staff" yaml:"total_staff"`
	RequiredDaily    int     `json:"required_daily" yaml:"required_daily"`
	RequiredDailyMax int     `json:"required_daily_max,omitempty" yaml:"required_daily_max,omitempty"`
	TargetOffDays    int     `json:"target_off_days" yaml:"target_off_days"`
	WorkingDays      int     `json:"working_days" yaml:"working_days"`
	Newbies          int     `json:"newbies" yaml:"newbies"`
	NakabanOnly      int     `json:"nakaban_only" yaml:"nakaban_only"`
	TotalRequests    int     `json:"total_requests" yaml:"total_requests"`
	Utilization      float64 `json:"utilization" yaml:"utilization"`
}

// Summarize computes the snapshot of req. RequiredDailyMax is left zero when
// the Late headcount is unbounded.
func Summarize(req *roster.Request) Snapshot {
	st := req.Staffing
	pct, _, _ := Utilization(req)
	s := Snapshot{
		TotalStaff:    len(req.Staff),
		RequiredDaily: st.MinDaily(),
		TargetOffDays: req.Calendar.TargetOffDays(),
		WorkingDays:   req.Calendar.WorkingDays(),
		Newbies:       len(req.Newbies()),
		NakabanOnly:   req.NakabanOnlyCount(),
		TotalRequests: req.TotalRequests(),
		Utilization:   pct,
	}
	if st.LateBounded() {
		s.RequiredDailyMax = st.MaxDaily()
	}
	return s
}
