// Package readiness derives daily readiness scores from recovery logs and the
// previous day's training load.
package readiness

import (
	"math"

	"github.com/divyanshukashyap0/Pulsely-AI/internal/domain"
)

const (
	baseSleepScore   = 50.0
	baseFatigueScore = 50.0

	sleepWeight   = 0.4
	fatigueWeight = 0.3
	strainWeight  = 0.3

	highStrainVolume     = 10000.0
	moderateStrainVolume = 5000.0
)

// SleepScore scores sleep duration and blends in self-reported quality.
// The [7,9] band is checked before [6,10]; the order decides the boundaries.
func SleepScore(hours *float64, quality *int) float64 {
	score := baseSleepScore
	if hours != nil {
		h := *hours
		if h >= 7 && h <= 9 {
			score = 80
		} else if h >= 6 && h <= 10 {
			score = 60
		} else {
			score = 40
		}
	}
	if quality != nil {
		score = (score + float64(*quality)*10) / 2
	}
	return score
}

// FatigueScore maps level 1 to 100 and level 10 to 10.
func FatigueScore(level *int) float64 {
	if level == nil {
		return baseFatigueScore
	}
	return 100 - float64(*level-1)*10
}

// StrainScore steps down as the previous day's volume grows.
func StrainScore(previousDayVolume float64) float64 {
	switch {
	case previousDayVolume > highStrainVolume:
		return 60
	case previousDayVolume > moderateStrainVolume:
		return 80
	default:
		return 100
	}
}

// Overall combines the sub-scores into the rounded 0-100 readiness score.
func Overall(sleep, fatigue, strain float64) int {
	return int(math.Round(sleep*sleepWeight + fatigue*fatigueWeight + strain*strainWeight))
}

// Score derives the readiness projection for entry. It is pure: identical inputs
// always produce identical scores. Identity and timestamps are left to the caller.
func Score(entry domain.RecoveryEntry, previousDayVolume float64) domain.ReadinessScore {
	sleep := SleepScore(entry.SleepHours, entry.SleepQuality)
	fatigue := FatigueScore(entry.FatigueLevel)
	strain := StrainScore(previousDayVolume)

	return domain.ReadinessScore{
		UserID:       entry.UserID,
		Date:         entry.Date,
		Score:        Overall(sleep, fatigue, strain),
		SleepScore:   sleep,
		FatigueScore: fatigue,
		StrainScore:  strain,
		Factors: domain.ReadinessFactors{
			SleepHours:        entry.SleepHours,
			SleepQuality:      entry.SleepQuality,
			FatigueLevel:      entry.FatigueLevel,
			PreviousDayVolume: previousDayVolume,
		},
	}
}
