package domain

// SetVolume is weight x reps, with missing values counting as zero.
func SetVolume(set WorkoutSet) float64 {
	if set.Weight == nil || set.Reps == nil {
		return 0
	}
	return *set.Weight * float64(*set.Reps)
}

// WorkoutVolume sums set volume over every exercise of the workout.
func WorkoutVolume(w Workout) float64 {
	var total float64
	for _, ex := range w.Exercises {
		for _, set := range ex.Sets {
			total += SetVolume(set)
		}
	}
	return total
}

// TotalVolume sums WorkoutVolume over workouts.
func TotalVolume(workouts []Workout) float64 {
	var total float64
	for _, w := range workouts {
		total += WorkoutVolume(w)
	}
	return total
}

// ExerciseStats accumulates history for one exercise name.
type ExerciseStats struct {
	Frequency int
	MaxWeight float64
	repSum    int
	repCount  int
}

// AverageReps divides the accumulated rep total once and rounds half up.
// ok is false when no set reported reps.
func (s ExerciseStats) AverageReps() (avg int, ok bool) {
	if s.repCount == 0 {
		return 0, false
	}
	// (2*sum + count) / (2*count) is round-half-up on non-negative integers.
	return (2*s.repSum + s.repCount) / (2 * s.repCount), true
}

// HistoryStats maps exercise name to its accumulated stats.
type HistoryStats map[string]*ExerciseStats

// SummarizeHistory builds per-exercise frequency, max weight and rep totals.
// Frequency counts workout-exercise occurrences; sets with no weight or a zero
// weight never move the maximum; sets with no reps or zero reps are not averaged.
func SummarizeHistory(workouts []Workout) HistoryStats {
	stats := make(HistoryStats)
	for _, w := range workouts {
		for _, ex := range w.Exercises {
			s, ok := stats[ex.ExerciseName]
			if !ok {
				s = &ExerciseStats{}
				stats[ex.ExerciseName] = s
			}
			s.Frequency++
			for _, set := range ex.Sets {
				if set.Weight != nil && *set.Weight > s.MaxWeight {
					s.MaxWeight = *set.Weight
				}
				if set.Reps != nil && *set.Reps > 0 {
					s.repSum += *set.Reps
					s.repCount++
				}
			}
		}
	}
	return stats
}

// Frequency returns how often name appeared in the summarized history.
func (h HistoryStats) Frequency(name string) int {
	if s, ok := h[name]; ok {
		return s.Frequency
	}
	return 0
}

// MaxWeight returns the heaviest logged weight for name, or 0.
func (h HistoryStats) MaxWeight(name string) float64 {
	if s, ok := h[name]; ok {
		return s.MaxWeight
	}
	return 0
}

// AverageReps returns the rounded rep average for name.
func (h HistoryStats) AverageReps(name string) (int, bool) {
	if s, ok := h[name]; ok {
		return s.AverageReps()
	}
	return 0, false
}
