package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/divyanshukashyap0/Pulsely-AI/internal/domain"
	platformevents "github.com/divyanshukashyap0/Pulsely-AI/pkg/platform/events"
)

const readinessColumns = `score_id, user_id, day, score, sleep_score, fatigue_score, strain_score, factors, created_at, updated_at`

// UpsertReadiness stores the score for (user, day), overwriting every derived
// field, and enqueues a readiness.computed event in the same transaction.
func (s *Store) UpsertReadiness(ctx context.Context, score domain.ReadinessScore) (domain.ReadinessScore, error) {
	factors, err := json.Marshal(score.Factors)
	if err != nil {
		return domain.ReadinessScore{}, err
	}

	const stmt = `INSERT INTO readiness_scores (` + readinessColumns + `)
        VALUES ($1,$2,$3::date,$4,$5,$6,$7,$8,$9,$10)
        ON CONFLICT (user_id, day) DO UPDATE SET
            score = EXCLUDED.score,
            sleep_score = EXCLUDED.sleep_score,
            fatigue_score = EXCLUDED.fatigue_score,
            strain_score = EXCLUDED.strain_score,
            factors = EXCLUDED.factors,
            updated_at = EXCLUDED.updated_at
        RETURNING score_id, created_at`

	err = s.inUserTx(ctx, score.UserID, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, stmt,
			score.ID,
			score.UserID,
			domain.DayKey(score.Date),
			score.Score,
			score.SleepScore,
			score.FatigueScore,
			score.StrainScore,
			factors,
			score.CreatedAt,
			score.UpdatedAt,
		).Scan(&score.ID, &score.CreatedAt); err != nil {
			return err
		}

		return insertOutbox(ctx, tx, outboxEvent{
			UserID:      score.UserID,
			AggregateID: score.ID,
			EventType:   platformevents.TypeReadinessComputed,
			DedupeKey:   fmt.Sprintf("%s:%s:%d", score.ID, platformevents.TypeReadinessComputed, score.UpdatedAt.UnixNano()),
			Payload: platformevents.ReadinessComputed{
				ScoreID:           score.ID,
				UserID:            score.UserID,
				Date:              domain.DayKey(score.Date),
				Score:             score.Score,
				SleepScore:        score.SleepScore,
				FatigueScore:      score.FatigueScore,
				StrainScore:       score.StrainScore,
				PreviousDayVolume: score.Factors.PreviousDayVolume,
				ComputedAt:        score.UpdatedAt,
			},
		})
	})
	if err != nil {
		return domain.ReadinessScore{}, err
	}
	return score, nil
}

// ListReadiness returns scores dated on or after from, newest first.
func (s *Store) ListReadiness(ctx context.Context, userID string, from time.Time) ([]domain.ReadinessScore, error) {
	const query = `SELECT ` + readinessColumns + ` FROM readiness_scores
        WHERE user_id = $1 AND day >= $2::date
        ORDER BY day DESC`

	results := make([]domain.ReadinessScore, 0)
	err := s.inUserTx(ctx, userID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, userID, domain.DayKey(from))
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var (
				score   domain.ReadinessScore
				factors []byte
			)
			if err := rows.Scan(&score.ID, &score.UserID, &score.Date, &score.Score, &score.SleepScore, &score.FatigueScore, &score.StrainScore, &factors, &score.CreatedAt, &score.UpdatedAt); err != nil {
				return err
			}
			if err := json.Unmarshal(factors, &score.Factors); err != nil {
				return fmt.Errorf("decode factors for score %s: %w", score.ID, err)
			}
			score.Date = s.localDay(score.Date)
			results = append(results, score)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}
