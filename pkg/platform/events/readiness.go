// Package events defines shared cross-service event payloads.
package events

import "time"

// ReadinessComputed is emitted whenever a readiness score is created or replaced.
type ReadinessComputed struct {
	ScoreID           string    `json:"score_id"`
	UserID            string    `json:"user_id"`
	Date              string    `json:"date"`
	Score             int       `json:"score"`
	SleepScore        float64   `json:"sleep_score"`
	FatigueScore      float64   `json:"fatigue_score"`
	StrainScore       float64   `json:"strain_score"`
	PreviousDayVolume float64   `json:"previous_day_volume"`
	ComputedAt        time.Time `json:"computed_at"`
}
