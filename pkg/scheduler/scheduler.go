// Package scheduler builds the roster constraint model, walks the
// relaxation ladder and projects the solved roster.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/arnavshah/shift-roster-go/internal/solver"
	"github.com/arnavshah/shift-roster-go/pkg/diagnosis"
	"github.com/arnavshah/shift-roster-go/pkg/logger"
	"github.com/arnavshah/shift-roster-go/pkg/roster"
)

// DefaultTimeLimit bounds each engine call.
const DefaultTimeLimit = 30 * time.Second

// Recorder receives attempt and run measurements.
type Recorder interface {
	ObserveAttempt(index int, status string, elapsed time.Duration)
	ObserveRun(success bool, profileIndex int, elapsed time.Duration)
}

// Attempt records one rung of the ladder.
type Attempt struct {
	Index      int           `json:"index"`
	Profile    Profile       `json:"profile"`
	Status     string        `json:"status"`
	Elapsed    time.Duration `json:"elapsed"`
	Iterations int           `json:"iterations"`
	// Conflict names the constraint that proved the attempt infeasible.
	Conflict string `json:"conflict,omitempty"`
	// Rejected is set when the engine answer broke a hard rule.
	Rejected string `json:"rejected,omitempty"`
}

// Relaxation describes the loosened profile a run needed.
type Relaxation struct {
	Applied                  bool   `json:"applied"`
	Description              string `json:"description"`
	RelaxBalance             int    `json:"relax_balance"`
	RelaxPreferences         bool   `json:"relax_preferences"`
	RelaxConsecutive         bool   `json:"relax_consecutive"`
	RelaxLateEarly           bool   `json:"relax_late_early"`
	AdjustedBalanceTolerance int    `json:"adjusted_balance_tolerance"`
}

// Outcome is the result of one run. Exactly one of Rows and Findings is set.
type Outcome struct {
	Success      bool
	ProfileIndex int
	Profile      Profile
	NumDays      int
	Assignment   Assignment
	Rows         []Row
	Relaxation   *Relaxation
	Fairness     *Fairness
	Findings     []diagnosis.Finding
	Snapshot     diagnosis.Snapshot
	Attempts     []Attempt
	Elapsed      time.Duration
}

// Scheduler walks the relaxation ladder for a request.
type Scheduler struct {
	Engine    solver.Engine
	TimeLimit time.Duration
	Logger    *logger.Logger
	Recorder  Recorder
}

// New creates a scheduler. A zero timeLimit uses DefaultTimeLimit.
func New(engine solver.Engine, timeLimit time.Duration, log *logger.Logger) *Scheduler {
	if timeLimit <= 0 {
		timeLimit = DefaultTimeLimit
	}
	if log == nil {
		log = logger.New()
	}
	return &Scheduler{Engine: engine, TimeLimit: timeLimit, Logger: log}
}

// Run validates req and tries each profile in ladder order until one solves.
// Infeasibility is reported through Outcome.Findings, not as an error. An
// error means invalid input or a cancelled ctx.
func (s *Scheduler) Run(ctx context.Context, req *roster.Request) (*Outcome, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	log := s.Logger
	if log == nil {
		log = logger.New()
	}

	out := &Outcome{
		NumDays:  req.NumDays(),
		Snapshot: diagnosis.Summarize(req),
	}
	log.WithFields(map[string]interface{}{
		"staff":          out.Snapshot.TotalStaff,
		"num_days":       out.NumDays,
		"required_daily": out.Snapshot.RequiredDaily,
		"target_off":     out.Snapshot.TargetOffDays,
	}).Info("Starting roster run")

	for i, p := range ladder {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("roster run stopped before attempt %d: %w", i+1, err)
		}
		att, a := s.attempt(ctx, req, i, p)
		out.Attempts = append(out.Attempts, att)
		if s.Recorder != nil {
			s.Recorder.ObserveAttempt(i, att.Status, att.Elapsed)
		}
		if a == nil {
			continue
		}

		out.Success = true
		out.ProfileIndex = i
		out.Profile = p
		out.Assignment = a
		out.Rows = Project(req.Staff, a)
		f := CalculateFairness(req.Staff, a)
		out.Fairness = &f
		if p.Relaxed() {
			out.Relaxation = &Relaxation{
				Applied:                  true,
				Description:              p.Description,
				RelaxBalance:             p.BalanceSlack,
				RelaxPreferences:         p.SoftenPreferences,
				RelaxConsecutive:         p.ExtendConsecutive,
				RelaxLateEarly:           p.AllowLateThenEarly,
				AdjustedBalanceTolerance: req.Balance.Tolerance + p.BalanceSlack,
			}
		}
		break
	}

	if !out.Success {
		out.Findings = diagnosis.Diagnose(req)
		log.WithField("findings", len(out.Findings)).Warn("Relaxation ladder exhausted")
	} else {
		log.WithFields(map[string]interface{}{
			"profile":     out.ProfileIndex + 1,
			"description": out.Profile.Description,
			"fairness":    out.Fairness.Score,
		}).Info("Roster created")
	}
	out.Elapsed = time.Since(start)
	if s.Recorder != nil {
		s.Recorder.ObserveRun(out.Success, out.ProfileIndex, out.Elapsed)
	}
	return out, nil
}

// attempt builds a fresh problem for p and solves it within the time limit.
// The assignment is nil unless the attempt succeeded.
func (s *Scheduler) attempt(ctx context.Context, req *roster.Request, i int, p Profile) (Attempt, Assignment) {
	log := s.Logger
	if log == nil {
		log = logger.New()
	}
	log = log.WithFields(map[string]interface{}{
		"attempt": i + 1,
		"profile": p.String(),
	})

	prob := Build(req, p)
	actx, cancel := context.WithTimeout(ctx, s.TimeLimit)
	res := s.Engine.Solve(actx, prob.Model)
	cancel()

	att := Attempt{
		Index:      i,
		Profile:    p,
		Status:     res.Status.String(),
		Elapsed:    res.Elapsed,
		Iterations: res.Iterations,
		Conflict:   res.Conflict,
	}
	log.WithFields(map[string]interface{}{
		"status":     att.Status,
		"elapsed":    att.Elapsed.String(),
		"iterations": att.Iterations,
		"variables":  prob.Model.NumVars(),
		"conflict":   att.Conflict,
	}).Debug("Engine returned")

	if res.Err != nil {
		log.WithError(res.Err).Warn("Engine failed")
		return att, nil
	}
	if !res.Status.Solved() {
		log.WithField("status", att.Status).Info("Attempt failed")
		return att, nil
	}

	a, err := prob.Decode(res.Values)
	if err == nil {
		err = Verify(req, p, a)
	}
	if err != nil {
		att.Rejected = err.Error()
		log.WithError(err).Warn("Engine answer broke a hard rule")
		return att, nil
	}
	log.WithField("objective", res.Objective).Info("Attempt solved")
	return att, a
}
