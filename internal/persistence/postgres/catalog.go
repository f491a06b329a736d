package postgres

import (
	"context"

	"github.com/divyanshukashyap0/Pulsely-AI/internal/domain"
)

// ListExercises returns catalog entries in insertion order, optionally filtered by
// category. A non-positive limit returns the whole catalog.
func (s *Store) ListExercises(ctx context.Context, category string, limit int) ([]domain.Exercise, error) {
	var limitArg any
	if limit > 0 {
		limitArg = limit
	}

	rows, err := s.pool.Query(ctx, `SELECT exercise_id, name, category, muscle_groups, description, pose_trackable, created_at
        FROM exercises
        WHERE $1::text = '' OR category = $1::text
        ORDER BY created_at, exercise_id
        LIMIT $2`, category, limitArg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]domain.Exercise, 0)
	for rows.Next() {
		var ex domain.Exercise
		if err := rows.Scan(&ex.ID, &ex.Name, &ex.Category, &ex.MuscleGroups, &ex.Description, &ex.PoseTrackable, &ex.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// AddExercise inserts a catalog entry, or refreshes the one with the same name.
func (s *Store) AddExercise(ctx context.Context, ex domain.Exercise) (domain.Exercise, error) {
	if ex.MuscleGroups == nil {
		ex.MuscleGroups = []string{}
	}
	err := s.pool.QueryRow(ctx, `INSERT INTO exercises (exercise_id, name, category, muscle_groups, description, pose_trackable)
        VALUES ($1,$2,$3,$4,$5,$6)
        ON CONFLICT (name) DO UPDATE SET
            category = EXCLUDED.category,
            muscle_groups = EXCLUDED.muscle_groups,
            description = EXCLUDED.description,
            pose_trackable = EXCLUDED.pose_trackable
        RETURNING exercise_id, created_at`,
		ex.ID, ex.Name, ex.Category, ex.MuscleGroups, ex.Description, ex.PoseTrackable,
	).Scan(&ex.ID, &ex.CreatedAt)
	if err != nil {
		return domain.Exercise{}, err
	}
	return ex, nil
}
