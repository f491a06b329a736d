package events

import "time"

// PlanGenerated is emitted when a workout plan is stored, generated or user-authored.
type PlanGenerated struct {
	PlanID      string    `json:"plan_id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Goal        string    `json:"goal"`
	DaysPerWeek int       `json:"days_per_week"`
	Exercises   int       `json:"exercises"`
	Generated   bool      `json:"generated"`
	CreatedAt   time.Time `json:"created_at"`
}
