package api

import (
	"time"

	"github.com/divyanshukashyap0/Pulsely-AI/internal/analytics"
	"github.com/divyanshukashyap0/Pulsely-AI/internal/domain"
	"github.com/divyanshukashyap0/Pulsely-AI/internal/readiness"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Type   string              `json:"type"`
	Detail string              `json:"detail"`
	Fields []domain.FieldError `json:"fields,omitempty"`
}

// RecoveryRequest is the payload for POST /v1/recovery. Date defaults to today.
type RecoveryRequest struct {
	Date         string   `json:"date"`
	SleepHours   *float64 `json:"sleepHours"`
	SleepQuality *int     `json:"sleepQuality"`
	FatigueLevel *int     `json:"fatigueLevel"`
	StressLevel  *int     `json:"stressLevel"`
	Soreness     *int     `json:"soreness"`
	Notes        *string  `json:"notes"`
}

func (r RecoveryRequest) toInput() readiness.RecoveryInput {
	return readiness.RecoveryInput{
		Date:         r.Date,
		SleepHours:   r.SleepHours,
		SleepQuality: r.SleepQuality,
		FatigueLevel: r.FatigueLevel,
		StressLevel:  r.StressLevel,
		Soreness:     r.Soreness,
		Notes:        r.Notes,
	}
}

// RecoveryView exposes a stored recovery entry.
type RecoveryView struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Date         string    `json:"date"`
	SleepHours   *float64  `json:"sleepHours"`
	SleepQuality *int      `json:"sleepQuality"`
	FatigueLevel *int      `json:"fatigueLevel"`
	StressLevel  *int      `json:"stressLevel"`
	Soreness     *int      `json:"soreness"`
	Notes        *string   `json:"notes"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ListRecoveryResponse packages recovery entries, newest first.
type ListRecoveryResponse struct {
	Items []RecoveryView `json:"items"`
}

// ReadinessView exposes a stored readiness score.
type ReadinessView struct {
	ID           string                  `json:"id"`
	UserID       string                  `json:"userId"`
	Date         string                  `json:"date"`
	Score        int                     `json:"score"`
	SleepScore   float64                 `json:"sleepScore"`
	FatigueScore float64                 `json:"fatigueScore"`
	StrainScore  float64                 `json:"strainScore"`
	Factors      domain.ReadinessFactors `json:"factors"`
	CreatedAt    time.Time               `json:"createdAt"`
	UpdatedAt    time.Time               `json:"updatedAt"`
}

// ListReadinessResponse packages readiness scores, newest first.
type ListReadinessResponse struct {
	Items []ReadinessView `json:"items"`
}

// CreatePlanRequest is the payload for POST /v1/plans.
type CreatePlanRequest struct {
	Name     string             `json:"name"`
	Goal     string             `json:"goal"`
	PlanData domain.WorkoutPlan `json:"planData"`
}

// PlanView exposes a stored plan.
type PlanView struct {
	ID        string             `json:"id"`
	UserID    string             `json:"userId"`
	Name      string             `json:"name"`
	Goal      string             `json:"goal"`
	Generated bool               `json:"generated"`
	PlanData  domain.WorkoutPlan `json:"planData"`
	CreatedAt time.Time          `json:"createdAt"`
}

// ListPlansResponse packages plans, newest first.
type ListPlansResponse struct {
	Items      []PlanView `json:"items"`
	NextCursor string     `json:"nextCursor,omitempty"`
}

// ProgressResponse wraps per-day progress for one exercise.
type ProgressResponse struct {
	ExerciseID string                  `json:"exerciseId,omitempty"`
	Days       int                     `json:"days"`
	Items      []analytics.DayProgress `json:"items"`
}

func toRecoveryView(entry domain.RecoveryEntry) RecoveryView {
	return RecoveryView{
		ID:           entry.ID,
		UserID:       entry.UserID,
		Date:         domain.DayKey(entry.Date),
		SleepHours:   entry.SleepHours,
		SleepQuality: entry.SleepQuality,
		FatigueLevel: entry.FatigueLevel,
		StressLevel:  entry.StressLevel,
		Soreness:     entry.Soreness,
		Notes:        entry.Notes,
		CreatedAt:    entry.CreatedAt,
		UpdatedAt:    entry.UpdatedAt,
	}
}

func toReadinessView(score domain.ReadinessScore) ReadinessView {
	return ReadinessView{
		ID:           score.ID,
		UserID:       score.UserID,
		Date:         domain.DayKey(score.Date),
		Score:        score.Score,
		SleepScore:   score.SleepScore,
		FatigueScore: score.FatigueScore,
		StrainScore:  score.StrainScore,
		Factors:      score.Factors,
		CreatedAt:    score.CreatedAt,
		UpdatedAt:    score.UpdatedAt,
	}
}

func toPlanView(record domain.PlanRecord) PlanView {
	return PlanView{
		ID:        record.ID,
		UserID:    record.UserID,
		Name:      record.Name,
		Goal:      record.Goal,
		Generated: record.Generated,
		PlanData:  record.Plan,
		CreatedAt: record.CreatedAt,
	}
}
