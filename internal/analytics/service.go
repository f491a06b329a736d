// Package analytics summarises a user's training history for dashboards.
package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/divyanshukashyap0/Pulsely-AI/internal/domain"
)

const (
	// DefaultWindowDays bounds stats and progress queries without explicit dates.
	DefaultWindowDays = 30
)

// DayCount is the number of workouts started on one calendar day.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Stats summarises training over a date range.
type Stats struct {
	From             string         `json:"from"`
	To               string         `json:"to"`
	TotalWorkouts    int            `json:"totalWorkouts"`
	TotalVolume      float64        `json:"totalVolume"`
	WorkoutFrequency []DayCount     `json:"workoutFrequency"`
	MuscleGroups     map[string]int `json:"muscleGroups"`
}

// DayProgress aggregates the sets completed on one calendar day.
type DayProgress struct {
	Date      string  `json:"date"`
	Volume    float64 `json:"volume"`
	MaxWeight float64 `json:"maxWeight"`
	TotalReps int     `json:"totalReps"`
}

// Service answers analytics queries from workout history.
type Service struct {
	history domain.WorkoutHistoryRepository
	loc     *time.Location
	now     func() time.Time
}

// Option configures optional behaviour for the Service.
type Option func(*Service)

// WithLocation sets the time zone used to bucket days.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService constructs a Service.
func NewService(history domain.WorkoutHistoryRepository, opts ...Option) *Service {
	s := &Service{history: history, loc: time.Local, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Stats reports workout count, volume, per-day frequency and muscle-group
// distribution for workouts started within [from, to], both days inclusive.
// Nil bounds default to the trailing 30 days ending today. Only completed
// workouts are counted toward TotalWorkouts.
func (s *Service) Stats(ctx context.Context, userID string, from, to *time.Time) (Stats, error) {
	today := domain.StartOfDay(s.now(), s.loc)
	end := today
	if to != nil {
		end = domain.StartOfDay(*to, s.loc)
	}
	start := end.AddDate(0, 0, -(DefaultWindowDays - 1))
	if from != nil {
		start = domain.StartOfDay(*from, s.loc)
	}
	if start.After(end) {
		verr := &domain.ValidationError{}
		verr.Add("startDate", "must not be after endDate")
		return Stats{}, verr
	}

	workouts, err := s.history.ListWorkoutsBetween(ctx, userID, start, end.AddDate(0, 0, 1))
	if err != nil {
		return Stats{}, fmt.Errorf("load workouts: %w", err)
	}

	out := Stats{
		From:             domain.DayKey(start),
		To:               domain.DayKey(end),
		TotalVolume:      domain.TotalVolume(workouts),
		WorkoutFrequency: make([]DayCount, 0),
		MuscleGroups:     make(map[string]int),
	}

	perDay := make(map[string]int)
	for _, w := range workouts {
		if w.CompletedAt != nil {
			out.TotalWorkouts++
		}
		perDay[domain.DayKey(w.StartedAt.In(s.loc))]++
		for _, ex := range w.Exercises {
			for _, group := range ex.MuscleGroups {
				out.MuscleGroups[group]++
			}
		}
	}
	for day, count := range perDay {
		out.WorkoutFrequency = append(out.WorkoutFrequency, DayCount{Date: day, Count: count})
	}
	sort.Slice(out.WorkoutFrequency, func(i, j int) bool {
		return out.WorkoutFrequency[i].Date < out.WorkoutFrequency[j].Date
	})
	return out, nil
}

// Progress reports per-day volume, heaviest set and total reps over the trailing
// days, oldest first. An empty exerciseID covers every exercise. Sets are bucketed
// by completion time, falling back to the workout start when unset.
func (s *Service) Progress(ctx context.Context, userID, exerciseID string, days int) ([]DayProgress, error) {
	if days <= 0 {
		days = DefaultWindowDays
	}
	now := s.now()
	workouts, err := s.history.ListWorkoutsBetween(ctx, userID, now.AddDate(0, 0, -days), now.Add(time.Nanosecond))
	if err != nil {
		return nil, fmt.Errorf("load workouts: %w", err)
	}

	byDay := make(map[string]*DayProgress)
	for _, w := range workouts {
		for _, ex := range w.Exercises {
			if exerciseID != "" && ex.ExerciseID != exerciseID {
				continue
			}
			for _, set := range ex.Sets {
				at := set.CompletedAt
				if at.IsZero() {
					at = w.StartedAt
				}
				key := domain.DayKey(at.In(s.loc))
				day, ok := byDay[key]
				if !ok {
					day = &DayProgress{Date: key}
					byDay[key] = day
				}
				day.Volume += domain.SetVolume(set)
				if set.Weight != nil && *set.Weight > day.MaxWeight {
					day.MaxWeight = *set.Weight
				}
				if set.Reps != nil {
					day.TotalReps += *set.Reps
				}
			}
		}
	}

	out := make([]DayProgress, 0, len(byDay))
	for _, day := range byDay {
		out = append(out, *day)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}
