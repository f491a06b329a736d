// Package domain holds the training entities, repository contracts and the
// aggregation helpers shared by the readiness engine and the plan generator.
package domain

import "time"

// RecoveryEntry is a user's subjective recovery log for one calendar day.
type RecoveryEntry struct {
	ID           string
	UserID       string
	Date         time.Time
	SleepHours   *float64
	SleepQuality *int
	FatigueLevel *int
	StressLevel  *int
	Soreness     *int
	Notes        *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ReadinessFactors snapshots the raw inputs a score was derived from.
type ReadinessFactors struct {
	SleepHours        *float64 `json:"sleepHours"`
	SleepQuality      *int     `json:"sleepQuality"`
	FatigueLevel      *int     `json:"fatigueLevel"`
	PreviousDayVolume float64  `json:"previousDayVolume"`
}

// ReadinessScore is the derived readiness projection for one user and day.
type ReadinessScore struct {
	ID           string
	UserID       string
	Date         time.Time
	Score        int
	SleepScore   float64
	FatigueScore float64
	StrainScore  float64
	Factors      ReadinessFactors
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Exercise is a catalog entry.
type Exercise struct {
	ID            string
	Name          string
	Category      string
	MuscleGroups  []string
	Description   string
	PoseTrackable bool
	CreatedAt     time.Time
}

// Workout is one logged training session.
type Workout struct {
	ID          string
	UserID      string
	Name        string
	StartedAt   time.Time
	CompletedAt *time.Time
	Exercises   []WorkoutExercise
}

// WorkoutExercise is an exercise occurrence within a workout.
type WorkoutExercise struct {
	ID           string
	ExerciseID   string
	ExerciseName string
	MuscleGroups []string
	Position     int
	Sets         []WorkoutSet
}

// WorkoutSet is one performed set. Weight and reps are optional.
type WorkoutSet struct {
	ID          string
	Weight      *float64
	Reps        *int
	CompletedAt time.Time
}

// WorkoutPlan is the serialized plan body (planData).
type WorkoutPlan struct {
	Goal        string    `json:"goal"`
	DaysPerWeek int       `json:"daysPerWeek"`
	Days        []DayPlan `json:"workouts"`
}

// DayPlan is the ordered prescription list for one training day.
type DayPlan struct {
	Day       int            `json:"day"`
	Exercises []Prescription `json:"exercises"`
}

// Prescription is a single prescribed exercise.
type Prescription struct {
	ExerciseID   string  `json:"exerciseId"`
	ExerciseName string  `json:"exerciseName"`
	Sets         int     `json:"sets"`
	Reps         int     `json:"reps"`
	Weight       float64 `json:"weight"`
	RestSeconds  int     `json:"restSeconds"`
}

// PlanRecord is a stored plan. Records are immutable once created.
type PlanRecord struct {
	ID        string
	UserID    string
	Name      string
	Goal      string
	Generated bool
	Plan      WorkoutPlan
	CreatedAt time.Time
}

// ExerciseCount returns the number of prescriptions across all days.
func (p WorkoutPlan) ExerciseCount() int {
	total := 0
	for _, day := range p.Days {
		total += len(day.Exercises)
	}
	return total
}
