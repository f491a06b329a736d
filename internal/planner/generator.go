// Package planner generates progressive-overload workout plans from recent
// training history.
package planner

import (
	"math"
	"slices"

	"github.com/divyanshukashyap0/Pulsely-AI/internal/domain"
)

const (
	// DefaultGoal labels plans requested without a goal.
	DefaultGoal = "general_fitness"
	// DefaultDaysPerWeek is used by callers when the request omits it.
	DefaultDaysPerWeek = 3

	exercisesPerDay = 5
	prescribedSets  = 3
	restSeconds     = 60

	baselineReps   = 8
	repCeiling     = 12
	starterWeight  = 20.0
	overloadFactor = 1.025
)

// BuildPlan lays the catalog out over daysPerWeek days. Exercises with the least
// history come first; ties keep catalog order. Day d takes the d-th run of five,
// so a short catalog leaves trailing days short or empty.
func BuildPlan(catalog []domain.Exercise, stats domain.HistoryStats, daysPerWeek int, goal string) domain.WorkoutPlan {
	sorted := slices.Clone(catalog)
	slices.SortStableFunc(sorted, func(a, b domain.Exercise) int {
		return stats.Frequency(a.Name) - stats.Frequency(b.Name)
	})

	plan := domain.WorkoutPlan{
		Goal:        goal,
		DaysPerWeek: daysPerWeek,
		Days:        make([]domain.DayPlan, 0, daysPerWeek),
	}
	for day := 1; day <= daysPerWeek; day++ {
		start := min((day-1)*exercisesPerDay, len(sorted))
		end := min(day*exercisesPerDay, len(sorted))

		prescriptions := make([]domain.Prescription, 0, end-start)
		for _, ex := range sorted[start:end] {
			prescriptions = append(prescriptions, Prescribe(ex, stats))
		}
		plan.Days = append(plan.Days, domain.DayPlan{Day: day, Exercises: prescriptions})
	}
	return plan
}

// Prescribe applies one step of progressive overload: +2.5% on the best logged
// weight (20 when none) and one rep over the rounded average (8 when none),
// never above 12 reps.
func Prescribe(ex domain.Exercise, stats domain.HistoryStats) domain.Prescription {
	currentMax := stats.MaxWeight(ex.Name)
	currentReps, ok := stats.AverageReps(ex.Name)
	if !ok {
		currentReps = baselineReps
	}

	weight := starterWeight
	if currentMax > 0 {
		weight = currentMax * overloadFactor
	}

	return domain.Prescription{
		ExerciseID:   ex.ID,
		ExerciseName: ex.Name,
		Sets:         prescribedSets,
		Reps:         min(currentReps+1, repCeiling),
		Weight:       roundToHalf(weight),
		RestSeconds:  restSeconds,
	}
}

func roundToHalf(v float64) float64 {
	return math.Round(v*2) / 2
}
