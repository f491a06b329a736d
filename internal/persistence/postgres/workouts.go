package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/divyanshukashyap0/Pulsely-AI/internal/domain"
)

// SaveWorkout inserts or replaces a workout together with its exercises and sets.
func (s *Store) SaveWorkout(ctx context.Context, workout domain.Workout) error {
	if workout.ID == "" {
		workout.ID = uuid.NewString()
	}

	return s.inUserTx(ctx, workout.UserID, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `INSERT INTO workouts (workout_id, user_id, name, started_at, completed_at)
            VALUES ($1,$2,$3,$4,$5)
            ON CONFLICT (workout_id) DO UPDATE SET
                name = EXCLUDED.name,
                started_at = EXCLUDED.started_at,
                completed_at = EXCLUDED.completed_at
            WHERE workouts.user_id = EXCLUDED.user_id`,
			workout.ID, workout.UserID, workout.Name, workout.StartedAt, workout.CompletedAt,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("workout %s belongs to another user", workout.ID)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM workout_exercises WHERE workout_id = $1`, workout.ID); err != nil {
			return err
		}

		batch := &pgx.Batch{}
		for i, ex := range workout.Exercises {
			exerciseRowID := ex.ID
			if exerciseRowID == "" {
				exerciseRowID = uuid.NewString()
			}
			position := ex.Position
			if position == 0 {
				position = i
			}
			batch.Queue(`INSERT INTO workout_exercises (workout_exercise_id, workout_id, user_id, exercise_id, exercise_name, position)
                VALUES ($1,$2,$3,$4,$5,$6)`,
				exerciseRowID, workout.ID, workout.UserID, nullIfEmpty(ex.ExerciseID), ex.ExerciseName, position,
			)
			for _, set := range ex.Sets {
				setID := set.ID
				if setID == "" {
					setID = uuid.NewString()
				}
				completedAt := set.CompletedAt
				if completedAt.IsZero() {
					completedAt = workout.StartedAt
				}
				batch.Queue(`INSERT INTO workout_sets (set_id, workout_exercise_id, user_id, weight, reps, completed_at)
                    VALUES ($1,$2,$3,$4,$5,$6)`,
					setID, exerciseRowID, workout.UserID, set.Weight, set.Reps, completedAt,
				)
			}
		}
		if batch.Len() == 0 {
			return nil
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

const workoutTreeQuery = `SELECT w.workout_id, w.name, w.started_at, w.completed_at,
       we.workout_exercise_id, we.exercise_id, we.exercise_name, we.position, e.muscle_groups,
       ws.set_id, ws.weight, ws.reps, ws.completed_at
  FROM selected w
  LEFT JOIN workout_exercises we ON we.workout_id = w.workout_id
  LEFT JOIN exercises e ON e.exercise_id = we.exercise_id
       OR (we.exercise_id IS NULL AND e.name = we.exercise_name)
  LEFT JOIN workout_sets ws ON ws.workout_exercise_id = we.workout_exercise_id`

// ListWorkoutsBetween returns workouts with from <= started_at < to, oldest first.
func (s *Store) ListWorkoutsBetween(ctx context.Context, userID string, from, to time.Time) ([]domain.Workout, error) {
	query := `WITH selected AS (
        SELECT workout_id, name, started_at, completed_at FROM workouts
         WHERE user_id = $1 AND started_at >= $2 AND started_at < $3
    )
    ` + workoutTreeQuery + `
    ORDER BY w.started_at ASC, w.workout_id, we.position, we.workout_exercise_id, ws.completed_at, ws.set_id`

	return s.queryWorkouts(ctx, userID, query, userID, from, to)
}

// ListRecentWorkouts returns at most limit workouts started at or after since,
// newest first. A non-positive limit returns all of them.
func (s *Store) ListRecentWorkouts(ctx context.Context, userID string, since time.Time, limit int) ([]domain.Workout, error) {
	var limitArg any
	if limit > 0 {
		limitArg = limit
	}
	query := `WITH selected AS (
        SELECT workout_id, name, started_at, completed_at FROM workouts
         WHERE user_id = $1 AND started_at >= $2
         ORDER BY started_at DESC, workout_id DESC
         LIMIT $3
    )
    ` + workoutTreeQuery + `
    ORDER BY w.started_at DESC, w.workout_id DESC, we.position, we.workout_exercise_id, ws.completed_at, ws.set_id`

	return s.queryWorkouts(ctx, userID, query, userID, since, limitArg)
}

// queryWorkouts folds the flattened workout/exercise/set rows back into trees.
// Rows must arrive grouped by workout, then by exercise.
func (s *Store) queryWorkouts(ctx context.Context, userID, query string, args ...any) ([]domain.Workout, error) {
	results := make([]domain.Workout, 0)
	err := s.inUserTx(ctx, userID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		var (
			current  *domain.Workout
			exercise *domain.WorkoutExercise
		)
		for rows.Next() {
			var (
				workoutID, name   string
				startedAt         time.Time
				completedAt       *time.Time
				workoutExerciseID *string
				exerciseID        *string
				exerciseName      *string
				position          *int
				muscleGroups      []string
				setID             *string
				weight            *float64
				reps              *int
				setCompletedAt    *time.Time
			)
			if err := rows.Scan(&workoutID, &name, &startedAt, &completedAt,
				&workoutExerciseID, &exerciseID, &exerciseName, &position, &muscleGroups,
				&setID, &weight, &reps, &setCompletedAt); err != nil {
				return err
			}

			if current == nil || current.ID != workoutID {
				results = append(results, domain.Workout{
					ID:          workoutID,
					UserID:      userID,
					Name:        name,
					StartedAt:   startedAt,
					CompletedAt: completedAt,
					Exercises:   make([]domain.WorkoutExercise, 0),
				})
				current = &results[len(results)-1]
				exercise = nil
			}
			if workoutExerciseID == nil {
				continue
			}

			if exercise == nil || exercise.ID != *workoutExerciseID {
				ex := domain.WorkoutExercise{
					ID:           *workoutExerciseID,
					ExerciseName: deref(exerciseName),
					ExerciseID:   deref(exerciseID),
					MuscleGroups: muscleGroups,
					Sets:         make([]domain.WorkoutSet, 0),
				}
				if position != nil {
					ex.Position = *position
				}
				current.Exercises = append(current.Exercises, ex)
				exercise = &current.Exercises[len(current.Exercises)-1]
			}
			if setID == nil {
				continue
			}

			set := domain.WorkoutSet{ID: *setID, Weight: weight, Reps: reps}
			if setCompletedAt != nil {
				set.CompletedAt = *setCompletedAt
			}
			exercise.Sets = append(exercise.Sets, set)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
