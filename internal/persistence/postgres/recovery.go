package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/divyanshukashyap0/Pulsely-AI/internal/domain"
)

const recoveryColumns = `entry_id, user_id, day, sleep_hours, sleep_quality, fatigue_level, stress_level, soreness, notes, created_at, updated_at`

// UpsertRecovery stores the entry for (user, day), replacing every field of an
// existing entry except its ID and creation time.
func (s *Store) UpsertRecovery(ctx context.Context, entry domain.RecoveryEntry) (domain.RecoveryEntry, error) {
	const stmt = `INSERT INTO recovery_entries (` + recoveryColumns + `)
        VALUES ($1,$2,$3::date,$4,$5,$6,$7,$8,$9,$10,$11)
        ON CONFLICT (user_id, day) DO UPDATE SET
            sleep_hours = EXCLUDED.sleep_hours,
            sleep_quality = EXCLUDED.sleep_quality,
            fatigue_level = EXCLUDED.fatigue_level,
            stress_level = EXCLUDED.stress_level,
            soreness = EXCLUDED.soreness,
            notes = EXCLUDED.notes,
            updated_at = EXCLUDED.updated_at
        RETURNING entry_id, created_at`

	err := s.inUserTx(ctx, entry.UserID, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, stmt,
			entry.ID,
			entry.UserID,
			domain.DayKey(entry.Date),
			entry.SleepHours,
			entry.SleepQuality,
			entry.FatigueLevel,
			entry.StressLevel,
			entry.Soreness,
			entry.Notes,
			entry.CreatedAt,
			entry.UpdatedAt,
		).Scan(&entry.ID, &entry.CreatedAt)
	})
	if err != nil {
		return domain.RecoveryEntry{}, err
	}
	return entry, nil
}

// GetRecovery returns the entry for the user's day, or nil when none exists.
func (s *Store) GetRecovery(ctx context.Context, userID string, day time.Time) (*domain.RecoveryEntry, error) {
	const query = `SELECT ` + recoveryColumns + ` FROM recovery_entries WHERE user_id = $1 AND day = $2::date`

	var found *domain.RecoveryEntry
	err := s.inUserTx(ctx, userID, func(tx pgx.Tx) error {
		entry, err := s.scanRecovery(tx.QueryRow(ctx, query, userID, domain.DayKey(day)))
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		found = &entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// ListRecovery returns entries within the optional inclusive day bounds, newest first.
func (s *Store) ListRecovery(ctx context.Context, userID string, from, to *time.Time) ([]domain.RecoveryEntry, error) {
	args := []any{userID}
	query := `SELECT ` + recoveryColumns + ` FROM recovery_entries WHERE user_id = $1`
	if from != nil {
		args = append(args, domain.DayKey(*from))
		query += fmt.Sprintf(` AND day >= $%d::date`, len(args))
	}
	if to != nil {
		args = append(args, domain.DayKey(*to))
		query += fmt.Sprintf(` AND day <= $%d::date`, len(args))
	}
	query += ` ORDER BY day DESC`

	results := make([]domain.RecoveryEntry, 0)
	err := s.inUserTx(ctx, userID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			entry, err := s.scanRecovery(rows)
			if err != nil {
				return err
			}
			results = append(results, entry)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Store) scanRecovery(row scanner) (domain.RecoveryEntry, error) {
	var entry domain.RecoveryEntry
	if err := row.Scan(
		&entry.ID,
		&entry.UserID,
		&entry.Date,
		&entry.SleepHours,
		&entry.SleepQuality,
		&entry.FatigueLevel,
		&entry.StressLevel,
		&entry.Soreness,
		&entry.Notes,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	); err != nil {
		return domain.RecoveryEntry{}, err
	}
	entry.Date = s.localDay(entry.Date)
	return entry, nil
}
