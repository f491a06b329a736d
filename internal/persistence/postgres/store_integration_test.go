//go:build integration

package postgres_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/divyanshukashyap0/Pulsely-AI/internal/domain"
	"github.com/divyanshukashyap0/Pulsely-AI/internal/persistence/postgres"
	"github.com/divyanshukashyap0/Pulsely-AI/internal/testsupport"
	platformevents "github.com/divyanshukashyap0/Pulsely-AI/pkg/platform/events"
)

var loc = time.FixedZone("UTC-5", -5*60*60)

func f64(v float64) *float64 { return &v }
func intp(v int) *int        { return &v }

func TestStoreRoundTrips(t *testing.T) {
	ctx := context.Background()
	pool := testsupport.StartPostgres(t, ctx)
	store := postgres.NewStore(pool, loc)
	userID := uuid.NewString()
	day := time.Date(2026, time.October, 15, 0, 0, 0, 0, loc)

	t.Run("migrations are idempotent", func(t *testing.T) {
		require.NoError(t, postgres.Migrate(ctx, pool))
	})

	t.Run("recovery upsert replaces the day's entry", func(t *testing.T) {
		now := time.Now().UTC().Truncate(time.Microsecond)
		first, err := store.UpsertRecovery(ctx, domain.RecoveryEntry{
			ID: uuid.NewString(), UserID: userID, Date: day,
			SleepHours: f64(8), SleepQuality: intp(9), Notes: ptr("slept well"),
			CreatedAt: now, UpdatedAt: now,
		})
		require.NoError(t, err)

		second, err := store.UpsertRecovery(ctx, domain.RecoveryEntry{
			ID: uuid.NewString(), UserID: userID, Date: day,
			FatigueLevel: intp(4),
			CreatedAt:    now.Add(time.Minute), UpdatedAt: now.Add(time.Minute),
		})
		require.NoError(t, err)
		require.Equal(t, first.ID, second.ID)

		got, err := store.GetRecovery(ctx, userID, day)
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Nil(t, got.SleepHours)
		require.Nil(t, got.Notes)
		require.Equal(t, 4, *got.FatigueLevel)
		require.True(t, got.Date.Equal(day))

		missing, err := store.GetRecovery(ctx, userID, day.AddDate(0, 0, 1))
		require.NoError(t, err)
		require.Nil(t, missing)

		from := day.AddDate(0, 0, -1)
		listed, err := store.ListRecovery(ctx, userID, &from, nil)
		require.NoError(t, err)
		require.Len(t, listed, 1)
	})

	t.Run("readiness upsert writes outbox events", func(t *testing.T) {
		now := time.Now().UTC().Truncate(time.Microsecond)
		score := domain.ReadinessScore{
			ID: uuid.NewString(), UserID: userID, Date: day,
			Score: 91, SleepScore: 85, FatigueScore: 90, StrainScore: 100,
			Factors:   domain.ReadinessFactors{SleepHours: f64(8), SleepQuality: intp(9), FatigueLevel: intp(2)},
			CreatedAt: now, UpdatedAt: now,
		}
		stored, err := store.UpsertReadiness(ctx, score)
		require.NoError(t, err)

		score.ID = uuid.NewString()
		score.Score = 61
		score.UpdatedAt = now.Add(time.Second)
		again, err := store.UpsertReadiness(ctx, score)
		require.NoError(t, err)
		require.Equal(t, stored.ID, again.ID)

		scores, err := store.ListReadiness(ctx, userID, day)
		require.NoError(t, err)
		require.Len(t, scores, 1)
		require.Equal(t, 61, scores[0].Score)
		require.Equal(t, 9, *scores[0].Factors.SleepQuality)
		require.True(t, scores[0].Date.Equal(day))

		var count int
		require.NoError(t, pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM outbox WHERE user_id = $1 AND event_type = $2`,
			userID, platformevents.TypeReadinessComputed,
		).Scan(&count))
		require.Equal(t, 2, count)

		var payload []byte
		require.NoError(t, pool.QueryRow(ctx,
			`SELECT payload FROM outbox WHERE user_id = $1 AND event_type = $2 ORDER BY event_id DESC LIMIT 1`,
			userID, platformevents.TypeReadinessComputed,
		).Scan(&payload))

		var event platformevents.ReadinessComputed
		require.NoError(t, json.Unmarshal(payload, &event))
		require.Equal(t, "2026-10-15", event.Date)
		require.Equal(t, 61, event.Score)
	})

	t.Run("workout history round trip", func(t *testing.T) {
		catalog, err := store.ListExercises(ctx, "", 0)
		require.NoError(t, err)
		require.Len(t, catalog, 8)
		require.Equal(t, "Squat", catalog[0].Name)

		cardio, err := store.ListExercises(ctx, "cardio", 50)
		require.NoError(t, err)
		require.Len(t, cardio, 1)

		started := day.Add(-14 * time.Hour)
		workout := domain.Workout{
			ID: uuid.NewString(), UserID: userID, Name: "Leg day", StartedAt: started,
			Exercises: []domain.WorkoutExercise{
				{ExerciseID: catalog[0].ID, ExerciseName: "Squat", Position: 0, Sets: []domain.WorkoutSet{
					{Weight: f64(100), Reps: intp(5), CompletedAt: started.Add(time.Minute)},
					{Weight: f64(100), Reps: intp(5), CompletedAt: started.Add(2 * time.Minute)},
				}},
				{ExerciseName: "Bench Press", Position: 1, Sets: []domain.WorkoutSet{
					{Reps: intp(10), CompletedAt: started.Add(3 * time.Minute)},
				}},
			},
		}
		require.NoError(t, store.SaveWorkout(ctx, workout))
		// Saving again replaces rather than duplicates children.
		require.NoError(t, store.SaveWorkout(ctx, workout))

		prevStart := day.AddDate(0, 0, -1)
		got, err := store.ListWorkoutsBetween(ctx, userID, prevStart, day)
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Len(t, got[0].Exercises, 2)
		require.Len(t, got[0].Exercises[0].Sets, 2)
		require.Equal(t, 1000.0, domain.TotalVolume(got))
		require.Equal(t, []string{"Legs", "Quads", "Glutes"}, got[0].Exercises[0].MuscleGroups)
		require.Equal(t, []string{"Chest", "Shoulders", "Triceps"}, got[0].Exercises[1].MuscleGroups)

		recent, err := store.ListRecentWorkouts(ctx, userID, started.Add(-time.Hour), 10)
		require.NoError(t, err)
		require.Len(t, recent, 1)

		other, err := store.ListWorkoutsBetween(ctx, uuid.NewString(), prevStart, day)
		require.NoError(t, err)
		require.Empty(t, other)
	})

	t.Run("catalog filters by category", func(t *testing.T) {
		seeded, err := store.ListExercises(ctx, "", 0)
		require.NoError(t, err)
		require.Len(t, seeded, 8)

		added, err := store.AddExercise(ctx, domain.Exercise{
			ID: uuid.NewString(), Name: "Rowing", Category: "cardio", MuscleGroups: []string{"Back", "Legs"},
		})
		require.NoError(t, err)
		require.False(t, added.CreatedAt.IsZero())

		cardio, err := store.ListExercises(ctx, "cardio", 50)
		require.NoError(t, err)
		require.Len(t, cardio, 2)
		require.Equal(t, "Rowing", cardio[1].Name)
		require.Equal(t, []string{"Back", "Legs"}, cardio[1].MuscleGroups)

		limited, err := store.ListExercises(ctx, "strength", 3)
		require.NoError(t, err)
		require.Len(t, limited, 3)
	})

	t.Run("plans page newest first", func(t *testing.T) {
		base := time.Now().UTC().Truncate(time.Microsecond)
		for i := 0; i < 3; i++ {
			require.NoError(t, store.CreatePlan(ctx, domain.PlanRecord{
				ID: uuid.NewString(), UserID: userID, Name: "Plan", Goal: "strength", Generated: true,
				Plan:      domain.WorkoutPlan{Goal: "strength", DaysPerWeek: 1, Days: []domain.DayPlan{{Day: 1, Exercises: []domain.Prescription{}}}},
				CreatedAt: base.Add(time.Duration(i) * time.Second),
			}))
		}

		page, next, err := store.ListPlans(ctx, userID, nil, 2)
		require.NoError(t, err)
		require.Len(t, page, 2)
		require.NotNil(t, next)
		require.True(t, page[0].CreatedAt.After(page[1].CreatedAt))

		rest, next, err := store.ListPlans(ctx, userID, next, 2)
		require.NoError(t, err)
		require.Len(t, rest, 1)
		require.Nil(t, next)
		require.Equal(t, 1, rest[0].Plan.DaysPerWeek)

		var count int
		require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM outbox WHERE user_id = $1 AND event_type = $2`, userID, platformevents.TypePlanGenerated).Scan(&count))
		require.Equal(t, 3, count)
	})
}

func ptr(s string) *string { return &s }
