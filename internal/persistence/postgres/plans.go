package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/divyanshukashyap0/Pulsely-AI/internal/domain"
	platformevents "github.com/divyanshukashyap0/Pulsely-AI/pkg/platform/events"
)

// CreatePlan inserts the plan and enqueues a plan.generated event in one transaction.
func (s *Store) CreatePlan(ctx context.Context, plan domain.PlanRecord) error {
	body, err := json.Marshal(plan.Plan)
	if err != nil {
		return err
	}

	return s.inUserTx(ctx, plan.UserID, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `INSERT INTO workout_plans (plan_id, user_id, name, goal, generated, plan_data, created_at)
            VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			plan.ID, plan.UserID, plan.Name, plan.Goal, plan.Generated, body, plan.CreatedAt,
		); err != nil {
			return err
		}

		return insertOutbox(ctx, tx, outboxEvent{
			UserID:      plan.UserID,
			AggregateID: plan.ID,
			EventType:   platformevents.TypePlanGenerated,
			DedupeKey:   fmt.Sprintf("%s:%s", plan.ID, platformevents.TypePlanGenerated),
			Payload: platformevents.PlanGenerated{
				PlanID:      plan.ID,
				UserID:      plan.UserID,
				Name:        plan.Name,
				Goal:        plan.Goal,
				DaysPerWeek: plan.Plan.DaysPerWeek,
				Exercises:   plan.Plan.ExerciseCount(),
				Generated:   plan.Generated,
				CreatedAt:   plan.CreatedAt,
			},
		})
	})
}

// ListPlans returns the user's plans newest first. A non-positive limit returns
// all plans; otherwise the returned cursor is non-nil while more plans remain.
func (s *Store) ListPlans(ctx context.Context, userID string, cursor *domain.Cursor, limit int) ([]domain.PlanRecord, *domain.Cursor, error) {
	args := []any{userID}
	query := `SELECT plan_id, user_id, name, goal, generated, plan_data, created_at
        FROM workout_plans WHERE user_id = $1`
	if cursor != nil {
		args = append(args, cursor.CreatedAt, cursor.ID)
		query += ` AND (created_at, plan_id) < ($2, $3)`
	}
	query += ` ORDER BY created_at DESC, plan_id DESC`
	if limit > 0 {
		// One extra row tells whether another page exists.
		args = append(args, limit+1)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	results := make([]domain.PlanRecord, 0)
	err := s.inUserTx(ctx, userID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var (
				plan domain.PlanRecord
				body []byte
			)
			if err := rows.Scan(&plan.ID, &plan.UserID, &plan.Name, &plan.Goal, &plan.Generated, &body, &plan.CreatedAt); err != nil {
				return err
			}
			if err := json.Unmarshal(body, &plan.Plan); err != nil {
				return fmt.Errorf("decode plan %s: %w", plan.ID, err)
			}
			results = append(results, plan)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, nil, err
	}

	if limit <= 0 || len(results) <= limit {
		return results, nil, nil
	}
	results = results[:limit]
	last := results[len(results)-1]
	return results, &domain.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
}
