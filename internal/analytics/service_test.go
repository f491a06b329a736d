package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/divyanshukashyap0/Pulsely-AI/internal/domain"
	"github.com/divyanshukashyap0/Pulsely-AI/internal/persistence/memory"
)

func f64(v float64) *float64 { return &v }
func intp(v int) *int        { return &v }

var now = time.Date(2026, time.October, 15, 18, 0, 0, 0, time.UTC)

func seedHistory(t *testing.T) (*memory.Store, domain.Exercise, domain.Exercise) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	squat := store.AddExercise(domain.Exercise{Name: "Squat", Category: "strength", MuscleGroups: []string{"legs", "glutes"}})
	bench := store.AddExercise(domain.Exercise{Name: "Bench Press", Category: "strength", MuscleGroups: []string{"chest"}})

	done := now.Add(-time.Hour)
	workouts := []domain.Workout{
		{
			ID: "w1", UserID: "user-1", StartedAt: time.Date(2026, time.October, 14, 9, 0, 0, 0, time.UTC), CompletedAt: &done,
			Exercises: []domain.WorkoutExercise{
				{ExerciseID: squat.ID, ExerciseName: "Squat", Sets: []domain.WorkoutSet{
					{Weight: f64(100), Reps: intp(5), CompletedAt: time.Date(2026, time.October, 14, 9, 10, 0, 0, time.UTC)},
					{Weight: f64(110), Reps: intp(3), CompletedAt: time.Date(2026, time.October, 14, 9, 20, 0, 0, time.UTC)},
				}},
				{ExerciseID: bench.ID, ExerciseName: "Bench Press", Sets: []domain.WorkoutSet{
					{Weight: f64(60), Reps: intp(10), CompletedAt: time.Date(2026, time.October, 14, 9, 40, 0, 0, time.UTC)},
				}},
			},
		},
		{
			ID: "w2", UserID: "user-1", StartedAt: time.Date(2026, time.October, 14, 19, 0, 0, 0, time.UTC),
			Exercises: []domain.WorkoutExercise{
				{ExerciseID: squat.ID, ExerciseName: "Squat", Sets: []domain.WorkoutSet{
					{Weight: f64(80), Reps: intp(8)},
					{Reps: intp(12)},
				}},
			},
		},
		{
			ID: "w3", UserID: "user-1", StartedAt: time.Date(2026, time.September, 1, 9, 0, 0, 0, time.UTC), CompletedAt: &done,
			Exercises: []domain.WorkoutExercise{
				{ExerciseID: squat.ID, ExerciseName: "Squat", Sets: []domain.WorkoutSet{{Weight: f64(500), Reps: intp(1)}}},
			},
		},
		{
			ID: "other", UserID: "user-2", StartedAt: time.Date(2026, time.October, 14, 9, 0, 0, 0, time.UTC), CompletedAt: &done,
			Exercises: []domain.WorkoutExercise{
				{ExerciseID: squat.ID, ExerciseName: "Squat", Sets: []domain.WorkoutSet{{Weight: f64(999), Reps: intp(9)}}},
			},
		},
	}
	for _, w := range workouts {
		require.NoError(t, store.SaveWorkout(ctx, w))
	}
	return store, squat, bench
}

func newTestService(history domain.WorkoutHistoryRepository) *Service {
	return NewService(history, WithLocation(time.UTC), WithClock(func() time.Time { return now }))
}

func TestStatsDefaultWindow(t *testing.T) {
	store, _, _ := seedHistory(t)

	stats, err := newTestService(store).Stats(context.Background(), "user-1", nil, nil)
	require.NoError(t, err)

	require.Equal(t, "2026-09-16", stats.From)
	require.Equal(t, "2026-10-15", stats.To)
	require.Equal(t, 1, stats.TotalWorkouts)
	require.Equal(t, 500.0+330+600+640, stats.TotalVolume)
	require.Equal(t, []DayCount{{Date: "2026-10-14", Count: 2}}, stats.WorkoutFrequency)
	require.Equal(t, map[string]int{"legs": 2, "glutes": 2, "chest": 1}, stats.MuscleGroups)
}

func TestStatsExplicitRange(t *testing.T) {
	store, _, _ := seedHistory(t)
	from := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)

	stats, err := newTestService(store).Stats(context.Background(), "user-1", &from, &to)
	require.NoError(t, err)
	require.Equal(t, 1, stats.TotalWorkouts)
	require.Equal(t, 500.0, stats.TotalVolume)
	require.Equal(t, []DayCount{{Date: "2026-09-01", Count: 1}}, stats.WorkoutFrequency)
}

func TestStatsRejectsInvertedRange(t *testing.T) {
	from := now
	to := now.AddDate(0, 0, -1)
	_, err := newTestService(memory.NewStore()).Stats(context.Background(), "user-1", &from, &to)
	_, ok := domain.AsValidationError(err)
	require.True(t, ok)
}

func TestProgressGroupsSetsByDay(t *testing.T) {
	store, squat, _ := seedHistory(t)

	progress, err := newTestService(store).Progress(context.Background(), "user-1", squat.ID, 0)
	require.NoError(t, err)
	require.Equal(t, []DayProgress{
		{Date: "2026-10-14", Volume: 500 + 330 + 640, MaxWeight: 110, TotalReps: 5 + 3 + 8 + 12},
	}, progress)

	progress, err = newTestService(store).Progress(context.Background(), "user-1", "", 60)
	require.NoError(t, err)
	require.Len(t, progress, 2)
	require.Equal(t, "2026-09-01", progress[0].Date)
	require.Equal(t, 500.0, progress[0].MaxWeight)
	require.Equal(t, 500.0+330+600+640, progress[1].Volume)
}

func TestAnalyticsPropagatesErrors(t *testing.T) {
	boom := errors.New("connection reset")
	svc := newTestService(failingHistory{err: boom})

	_, err := svc.Stats(context.Background(), "user-1", nil, nil)
	require.ErrorIs(t, err, boom)
	_, err = svc.Progress(context.Background(), "user-1", "", 7)
	require.ErrorIs(t, err, boom)
}

type failingHistory struct {
	err error
}

func (f failingHistory) ListWorkoutsBetween(context.Context, string, time.Time, time.Time) ([]domain.Workout, error) {
	return nil, f.err
}

func (f failingHistory) ListRecentWorkouts(context.Context, string, time.Time, int) ([]domain.Workout, error) {
	return nil, f.err
}

func (f failingHistory) SaveWorkout(context.Context, domain.Workout) error { return f.err }
