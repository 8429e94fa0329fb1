// Package metrics exposes roster runs as Prometheus metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PromRecorder records ladder attempts and run outcomes. It satisfies
// scheduler.Recorder.
type PromRecorder struct {
	attempts   *prometheus.CounterVec
	attemptDur *prometheus.HistogramVec
	runs       *prometheus.CounterVec
	runDur     prometheus.Histogram
	profile    *prometheus.CounterVec
}

// NewPromRecorder registers roster metrics on reg. If reg is nil, the
// default registerer is used. Collectors that are already registered are
// reused.
func NewPromRecorder(reg prometheus.Registerer) (*PromRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	r := &PromRecorder{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_attempts_total",
			Help: "Total number of relaxation ladder attempts by engine status",
		}, []string{"status"}),
		attemptDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "roster_attempt_seconds",
			Help:    "Engine time per ladder attempt",
			Buckets: prometheus.DefBuckets,
		}, []string{"status"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_runs_total",
			Help: "Total number of roster runs by outcome",
		}, []string{"success"}),
		runDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "roster_run_seconds",
			Help:    "Wall time of a full roster run",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		profile: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_profile_solved_total",
			Help: "Successful runs by the 1-based ladder profile that solved them",
		}, []string{"profile"}),
	}

	var err error
	if r.attempts, err = register(reg, r.attempts); err != nil {
		return nil, err
	}
	if r.attemptDur, err = register(reg, r.attemptDur); err != nil {
		return nil, err
	}
	if r.runs, err = register(reg, r.runs); err != nil {
		return nil, err
	}
	if r.runDur, err = register(reg, r.runDur); err != nil {
		return nil, err
	}
	if r.profile, err = register(reg, r.profile); err != nil {
		return nil, err
	}
	return r, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// ObserveAttempt counts one ladder attempt.
func (r *PromRecorder) ObserveAttempt(_ int, status string, elapsed time.Duration) {
	r.attempts.WithLabelValues(status).Inc()
	r.attemptDur.WithLabelValues(status).Observe(elapsed.Seconds())
}

// ObserveRun counts a finished run.
func (r *PromRecorder) ObserveRun(success bool, profileIndex int, elapsed time.Duration) {
	r.runs.WithLabelValues(strconv.FormatBool(success)).Inc()
	r.runDur.Observe(elapsed.Seconds())
	if success {
		r.profile.WithLabelValues(strconv.Itoa(profileIndex + 1)).Inc()
	}
}

// Handler serves the metrics gathered by g. A nil g serves the default
// gatherer.
func Handler(g prometheus.Gatherer) gin.HandlerFunc {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	h := promhttp.HandlerFor(g, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}
