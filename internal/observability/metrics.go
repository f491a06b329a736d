// Package observability exposes Prometheus collectors for the training core.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	readinessComputations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pulsely",
		Subsystem: "readiness",
		Name:      "computations_total",
		Help:      "Readiness computations grouped by outcome (computed, skipped).",
	}, []string{"outcome"})

	readinessScores = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "pulsely",
		Subsystem: "readiness",
		Name:      "overall_score",
		Help:      "Distribution of computed overall readiness scores.",
		Buckets:   prometheus.LinearBuckets(10, 10, 10),
	})

	readinessPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "pulsely",
		Subsystem: "readiness",
		Name:      "last_score_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent readiness score upsert.",
	})

	plansCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pulsely",
		Subsystem: "planner",
		Name:      "plans_created_total",
		Help:      "Workout plans stored, labeled by origin (generated, custom).",
	}, []string{"origin"})

	planExercises = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "pulsely",
		Subsystem: "planner",
		Name:      "plan_exercises",
		Help:      "Number of prescriptions in generated plans.",
		Buckets:   []float64{0, 5, 10, 15, 20, 30, 50},
	})

	workoutsIngested = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "pulsely",
		Subsystem: "history",
		Name:      "workouts_ingested_total",
		Help:      "Workouts written into the history store from upstream events.",
	})
)

func init() {
	prometheus.MustRegister(readinessComputations, readinessScores, readinessPersistGauge, plansCreated, planExercises, workoutsIngested)
}

// RecordReadinessComputed tracks a persisted score.
func RecordReadinessComputed(score int, ts time.Time) {
	readinessComputations.WithLabelValues("computed").Inc()
	readinessScores.Observe(float64(score))
	if !ts.IsZero() {
		readinessPersistGauge.Set(float64(ts.Unix()))
	}
}

// RecordReadinessSkipped tracks a computation with no recovery entry to score.
func RecordReadinessSkipped() {
	readinessComputations.WithLabelValues("skipped").Inc()
}

// RecordPlanCreated tracks a stored plan.
func RecordPlanCreated(generated bool, exercises int) {
	if generated {
		plansCreated.WithLabelValues("generated").Inc()
		planExercises.Observe(float64(exercises))
		return
	}
	plansCreated.WithLabelValues("custom").Inc()
}

// RecordWorkoutIngested tracks a workout saved from the event stream.
func RecordWorkoutIngested() {
	workoutsIngested.Inc()
}
