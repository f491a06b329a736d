package domain

import (
	"context"
	"time"
)

// RecoveryRepository stores subjective recovery entries keyed by (user, day).
type RecoveryRepository interface {
	// UpsertRecovery inserts the entry or replaces the one already stored for the
	// same user and day, returning the stored row.
	UpsertRecovery(ctx context.Context, entry RecoveryEntry) (RecoveryEntry, error)
	// GetRecovery returns nil, nil when no entry exists.
	GetRecovery(ctx context.Context, userID string, day time.Time) (*RecoveryEntry, error)
	// ListRecovery returns entries newest first; nil bounds are open.
	ListRecovery(ctx context.Context, userID string, from, to *time.Time) ([]RecoveryEntry, error)
}

// ReadinessRepository stores one readiness score per (user, day).
type ReadinessRepository interface {
	UpsertReadiness(ctx context.Context, score ReadinessScore) (ReadinessScore, error)
	// ListReadiness returns scores with Date >= from, newest first.
	ListReadiness(ctx context.Context, userID string, from time.Time) ([]ReadinessScore, error)
}

// WorkoutHistoryRepository exposes logged workouts with their exercises and sets.
type WorkoutHistoryRepository interface {
	// ListWorkoutsBetween returns workouts with from <= StartedAt < to, oldest first.
	ListWorkoutsBetween(ctx context.Context, userID string, from, to time.Time) ([]Workout, error)
	// ListRecentWorkouts returns at most limit workouts with StartedAt >= since, newest first.
	ListRecentWorkouts(ctx context.Context, userID string, since time.Time, limit int) ([]Workout, error)
	// SaveWorkout inserts or replaces a workout and its sets.
	SaveWorkout(ctx context.Context, workout Workout) error
}

// ExerciseCatalog lists catalog exercises in catalog order.
type ExerciseCatalog interface {
	// ListExercises filters by category when non-empty.
	ListExercises(ctx context.Context, category string, limit int) ([]Exercise, error)
}

// PlanRepository is the append-only plan store.
type PlanRepository interface {
	CreatePlan(ctx context.Context, plan PlanRecord) error
	// ListPlans returns plans newest first. A limit <= 0 returns every plan.
	ListPlans(ctx context.Context, userID string, cursor *Cursor, limit int) ([]PlanRecord, *Cursor, error)
}

// Cursor models the pagination token for newest-first listings.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}
