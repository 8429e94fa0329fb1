package models

import (
	"github.com/arnavshah/shift-roster-go/pkg/diagnosis"
	"github.com/arnavshah/shift-roster-go/pkg/scheduler"
)

// Request defaults for omitted staffing numbers.
const (
	DefaultEarlyCount   = 2
	DefaultMiddleCount  = 1
	DefaultLateCountMin = 2
	DefaultLateCountMax = 3
)

// StaffInput is one staff member as submitted. Day lists are comma
// separated, preferences are "day:shift" pairs.
type StaffInput struct {
	Name            string `json:"name" yaml:"name" binding:"required"`
	IsNewbie        bool   `json:"is_newbie" yaml:"is_newbie"`
	NakabanOnly     bool   `json:"nakaban_only" yaml:"nakaban_only"`
	RequestsOff     string `json:"requests_off" yaml:"requests_off" binding:"daylist"`
	PreferredShifts string `json:"preferred_shifts" yaml:"preferred_shifts" binding:"shiftprefs"`
	Holidays        string `json:"holidays" yaml:"holidays" binding:"daylist"`
}

// ScheduleInput is the body of the roster generation endpoint
type ScheduleInput struct {
	Month            FlexInt      `json:"month" yaml:"month" binding:"required,min=1,max=12"`
	Year             FlexInt      `json:"year" yaml:"year" binding:"required,min=1"`
	NumStaff         *FlexInt     `json:"num_staff,omitempty" yaml:"num_staff,omitempty"`
	StaffList        []StaffInput `json:"staff_list" yaml:"staff_list" binding:"required,min=1,dive"`
	EarlyCount       *FlexInt     `json:"early_count,omitempty" yaml:"early_count,omitempty"`
	MiddleCount      *FlexInt     `json:"middle_count,omitempty" yaml:"middle_count,omitempty"`
	LateCountMin     *FlexInt     `json:"late_count_min,omitempty" yaml:"late_count_min,omitempty"`
	LateCountMax     *FlexInt     `json:"late_count_max,omitempty" yaml:"late_count_max,omitempty"`
	BalanceTolerance *FlexInt     `json:"balance_tolerance,omitempty" yaml:"balance_tolerance,omitempty"`
}

// ScheduleResponse is the data structure for the roster result
type ScheduleResponse struct {
	Success        bool                  `json:"success"`
	Schedule       []scheduler.Row       `json:"schedule,omitempty"`
	NumDays        int                   `json:"num_days,omitempty"`
	RelaxationInfo *scheduler.Relaxation `json:"relaxation_info,omitempty"`
	Fairness       *scheduler.Fairness   `json:"fairness,omitempty"`
	Message        string                `json:"message,omitempty"`
	Reasons        []diagnosis.Finding   `json:"reasons,omitempty"`
	Diagnostics    *diagnosis.Snapshot   `json:"diagnostics,omitempty"`
	Attempts       int                   `json:"attempts"`
	RunID          string                `json:"run_id,omitempty"`
}

// FailureMessage is the headline of an infeasible run.
const FailureMessage = "シフトを作成できませんでした。"

// NewScheduleResponse converts a run outcome.
func NewScheduleResponse(out *scheduler.Outcome, runID string) ScheduleResponse {
	resp := ScheduleResponse{
		Success:  out.Success,
		Attempts: len(out.Attempts),
		RunID:    runID,
	}
	if out.Success {
		resp.Schedule = out.Rows
		resp.NumDays = out.NumDays
		resp.RelaxationInfo = out.Relaxation
		resp.Fairness = out.Fairness
		return resp
	}
	snap := out.Snapshot
	resp.Message = FailureMessage
	resp.Reasons = out.Findings
	resp.Diagnostics = &snap
	return resp
}

// ExportInput is the body of the xlsx export endpoint
type ExportInput struct {
	Schedule []scheduler.Row `json:"schedule" binding:"required,min=1"`
	NumDays  FlexInt         `json:"num_days" binding:"required,min=1,max=31"`
	Month    FlexInt         `json:"month" binding:"required,min=1,max=12"`
	Year     FlexInt         `json:"year" binding:"required,min=1"`
}

// ValidateResponse summarizes a request that passed validation
type ValidateResponse struct {
	Valid         bool   `json:"valid"`
	NumStaff      int    `json:"num_staff"`
	NumDays       int    `json:"num_days"`
	TargetOffDays int    `json:"target_off_days"`
	TotalRequests int    `json:"total_requests"`
	Error         string `json:"error,omitempty"`
}

// ErrorResponse is the failure body of the roster routes
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
