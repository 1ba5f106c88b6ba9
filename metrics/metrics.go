// Package metrics exposes the engine's local instrumentation:
// iteration throughput, bugs found by class, schedule points explored,
// and strategy decision latency. This is local process instrumentation
// only (a /metrics endpoint a host can scrape) — it is not the
// Non-goals' "telemetry upload" to an external analytics service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// IterationsRun counts iterations completed, labeled by outcome
	// (clean, bug).
	IterationsRun = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arbiter_iterations_total",
		Help: "Total number of test iterations run",
	}, []string{"outcome"})

	// BugsFound counts bugs found, labeled by error class (spec.md §7's
	// taxonomy).
	BugsFound = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arbiter_bugs_found_total",
		Help: "Total number of bugs found, by class",
	}, []string{"class"})

	// SchedulePointsPerIteration tracks how many scheduling decisions an
	// iteration took before ending.
	SchedulePointsPerIteration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "arbiter_schedule_points_per_iteration",
		Help:    "Number of scheduling points taken per iteration",
		Buckets: prometheus.ExponentialBuckets(4, 2, 12),
	})

	// StrategyDecisionSeconds tracks the wall-clock cost of each
	// ChooseNext/ChooseBool/ChooseInt call, by strategy name.
	StrategyDecisionSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "arbiter_strategy_decision_seconds",
		Help:    "Strategy decision latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"strategy"})

	// DeadlocksDetected counts deadlock reports, separate from the
	// general bug counter so operators can watch it independently.
	DeadlocksDetected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arbiter_deadlocks_total",
		Help: "Total number of deadlocks detected across iterations",
	})

	// LivenessViolations counts liveness-bug reports.
	LivenessViolations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arbiter_liveness_violations_total",
		Help: "Total number of liveness violations detected across iterations",
	})
)
