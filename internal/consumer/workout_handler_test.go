package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/divyanshukashyap0/Pulsely-AI/internal/domain"
	"github.com/divyanshukashyap0/Pulsely-AI/internal/persistence/memory"
	"github.com/divyanshukashyap0/Pulsely-AI/internal/readiness"
	platformevents "github.com/divyanshukashyap0/Pulsely-AI/pkg/platform/events"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func workoutMessage(t *testing.T, event platformevents.WorkoutCompleted) Message {
	t.Helper()
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	return Message{
		Topic:     platformevents.TopicWorkoutCompleted,
		EventType: platformevents.TypeWorkoutCompleted,
		UserID:    event.UserID,
		Payload:   payload,
	}
}

func f64(v float64) *float64 { return &v }
func intp(v int) *int        { return &v }

func TestWorkoutHandlerStoresWorkoutAndRefreshesNextDay(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSeededStore()
	svc := readiness.NewService(store, store, store, readiness.WithLocation(time.UTC), readiness.WithLogger(quietLogger()))
	handler := NewWorkoutHandler(store, svc, quietLogger())

	nextDay := time.Date(2026, time.October, 15, 0, 0, 0, 0, time.UTC)
	_, err := svc.SubmitRecovery(ctx, "user-1", readiness.RecoveryInput{
		Date:         "2026-10-15",
		SleepHours:   f64(8),
		SleepQuality: intp(9),
		FatigueLevel: intp(2),
	})
	require.NoError(t, err)

	scores, err := store.ListReadiness(ctx, "user-1", nextDay)
	require.NoError(t, err)
	require.Equal(t, 91, scores[0].Score)

	started := time.Date(2026, time.October, 14, 18, 0, 0, 0, time.UTC)
	err = handler.Handle(ctx, workoutMessage(t, platformevents.WorkoutCompleted{
		WorkoutID: "w-1",
		UserID:    "user-1",
		StartedAt: started,
		Exercises: []platformevents.WorkoutExerciseV1{{
			ID:           "we-1",
			ExerciseName: "Deadlift",
			Sets: []platformevents.WorkoutSetV1{
				{ID: "s-1", Weight: f64(200), Reps: intp(10), CompletedAt: started},
				{ID: "s-2", Weight: f64(200), Reps: intp(10), CompletedAt: started},
				{ID: "s-3", Weight: f64(200), Reps: intp(8), CompletedAt: started},
			},
		}},
	}))
	require.NoError(t, err)

	workouts, err := store.ListWorkoutsBetween(ctx, "user-1", started.Add(-time.Hour), started.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, workouts, 1)
	require.Equal(t, 5600.0, domain.TotalVolume(workouts))

	scores, err = store.ListReadiness(ctx, "user-1", nextDay)
	require.NoError(t, err)
	require.Len(t, scores, 1)
	// Strain drops from 100 to 80: round(34 + 27 + 24) = 85.
	require.Equal(t, 85, scores[0].Score)
	require.Equal(t, 5600.0, scores[0].Factors.PreviousDayVolume)
}

func TestWorkoutHandlerWithoutRecoveryEntryOnlyStoresWorkout(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := readiness.NewService(store, store, store, readiness.WithLocation(time.UTC), readiness.WithLogger(quietLogger()))

	err := NewWorkoutHandler(store, svc, quietLogger()).Handle(ctx, workoutMessage(t, platformevents.WorkoutCompleted{
		WorkoutID: "w-1",
		UserID:    "user-1",
		StartedAt: time.Date(2026, time.October, 14, 18, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, err)

	scores, err := store.ListReadiness(ctx, "user-1", time.Time{})
	require.NoError(t, err)
	require.Empty(t, scores)
}

func TestWorkoutHandlerRejectsInvalidEvents(t *testing.T) {
	store := memory.NewStore()
	svc := readiness.NewService(store, store, store, readiness.WithLogger(quietLogger()))
	handler := NewWorkoutHandler(store, svc, quietLogger())
	ctx := context.Background()

	err := handler.Handle(ctx, Message{EventType: platformevents.TypeWorkoutCompleted, Payload: []byte(`{not json`)})
	require.ErrorIs(t, err, ErrInvalidWorkout)

	err = handler.Handle(ctx, workoutMessage(t, platformevents.WorkoutCompleted{WorkoutID: "w", UserID: "u"}))
	require.ErrorIs(t, err, ErrInvalidWorkout)

	msg := workoutMessage(t, platformevents.WorkoutCompleted{WorkoutID: "w", UserID: "u", StartedAt: time.Now()})
	msg.UserID = "someone-else"
	require.ErrorIs(t, handler.Handle(ctx, msg), ErrInvalidWorkout)

	require.NoError(t, handler.Handle(ctx, Message{EventType: "workout.deleted", Payload: []byte(`{}`)}))
}

func TestWorkoutHandlerPropagatesStoreErrors(t *testing.T) {
	boom := errors.New("db down")
	store := memory.NewStore()
	svc := readiness.NewService(store, store, store, readiness.WithLogger(quietLogger()))

	err := NewWorkoutHandler(failingHistory{err: boom}, svc, quietLogger()).Handle(context.Background(),
		workoutMessage(t, platformevents.WorkoutCompleted{WorkoutID: "w", UserID: "u", StartedAt: time.Now()}))
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
