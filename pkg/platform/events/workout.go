package events

import "time"

// WorkoutCompleted is published by the workout-logging service once a session is
// finished. It carries the full set log so downstream consumers can rebuild history.
type WorkoutCompleted struct {
	WorkoutID   string              `json:"workout_id"`
	UserID      string              `json:"user_id"`
	Name        string              `json:"name,omitempty"`
	StartedAt   time.Time           `json:"started_at"`
	CompletedAt *time.Time          `json:"completed_at,omitempty"`
	Exercises   []WorkoutExerciseV1 `json:"exercises"`
}

// WorkoutExerciseV1 is one exercise performed within a workout.
type WorkoutExerciseV1 struct {
	ID           string         `json:"id"`
	ExerciseID   string         `json:"exercise_id"`
	ExerciseName string         `json:"exercise_name"`
	Position     int            `json:"position"`
	Sets         []WorkoutSetV1 `json:"sets"`
}

// WorkoutSetV1 is one performed set.
type WorkoutSetV1 struct {
	ID          string    `json:"id"`
	Weight      *float64  `json:"weight,omitempty"`
	Reps        *int      `json:"reps,omitempty"`
	CompletedAt time.Time `json:"completed_at"`
}
