package readiness

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/divyanshukashyap0/Pulsely-AI/internal/domain"
	"github.com/divyanshukashyap0/Pulsely-AI/internal/observability"
)

// DefaultListDays is the trailing window used when listing scores.
const DefaultListDays = 30

// Service orchestrates recovery submissions and readiness derivation.
type Service struct {
	recovery domain.RecoveryRepository
	scores   domain.ReadinessRepository
	history  domain.WorkoutHistoryRepository
	loc      *time.Location
	now      func() time.Time
	logger   logrus.FieldLogger
}

// Option configures optional behaviour for the Service.
type Option func(*Service)

// WithLocation sets the time zone whose midnight starts a calendar day.
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

// WithLogger overrides the logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService constructs a Service.
func NewService(recovery domain.RecoveryRepository, scores domain.ReadinessRepository, history domain.WorkoutHistoryRepository, opts ...Option) *Service {
	s := &Service{
		recovery: recovery,
		scores:   scores,
		history:  history,
		loc:      time.Local,
		now:      time.Now,
		logger:   logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Location returns the calendar time zone.
func (s *Service) Location() *time.Location {
	return s.loc
}

// RecoveryInput is a recovery submission. Date is optional (YYYY-MM-DD or RFC 3339)
// and defaults to today.
type RecoveryInput struct {
	Date         string
	SleepHours   *float64
	SleepQuality *int
	FatigueLevel *int
	StressLevel  *int
	Soreness     *int
	Notes        *string
}

// Validate reports every out-of-range field.
func (in RecoveryInput) Validate() error {
	verr := &domain.ValidationError{}
	if in.SleepHours != nil && (*in.SleepHours < 0 || *in.SleepHours > 24) {
		verr.Add("sleepHours", "must be between 0 and 24")
	}
	checkScale(verr, "sleepQuality", in.SleepQuality)
	checkScale(verr, "fatigueLevel", in.FatigueLevel)
	checkScale(verr, "stressLevel", in.StressLevel)
	checkScale(verr, "soreness", in.Soreness)
	if strings.TrimSpace(in.Date) != "" {
		if _, err := domain.ParseDay(in.Date, time.UTC); err != nil {
			verr.Add("date", "must be YYYY-MM-DD or RFC 3339")
		}
	}
	return verr.OrNil()
}

func checkScale(verr *domain.ValidationError, field string, value *int) {
	if value != nil && (*value < 1 || *value > 10) {
		verr.Add(field, "must be an integer between 1 and 10")
	}
}

// SubmitRecovery stores the day's recovery entry, replacing any earlier submission
// for the same day, and then recomputes that day's readiness score.
func (s *Service) SubmitRecovery(ctx context.Context, userID string, in RecoveryInput) (domain.RecoveryEntry, error) {
	if err := in.Validate(); err != nil {
		return domain.RecoveryEntry{}, err
	}

	day := domain.StartOfDay(s.now(), s.loc)
	if strings.TrimSpace(in.Date) != "" {
		parsed, err := domain.ParseDay(in.Date, s.loc)
		if err != nil {
			return domain.RecoveryEntry{}, err
		}
		day = parsed
	}

	now := s.now().UTC()
	stored, err := s.recovery.UpsertRecovery(ctx, domain.RecoveryEntry{
		ID:           uuid.NewString(),
		UserID:       userID,
		Date:         day,
		SleepHours:   in.SleepHours,
		SleepQuality: in.SleepQuality,
		FatigueLevel: in.FatigueLevel,
		StressLevel:  in.StressLevel,
		Soreness:     in.Soreness,
		Notes:        in.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return domain.RecoveryEntry{}, fmt.Errorf("upsert recovery entry: %w", err)
	}

	if _, err := s.ComputeReadiness(ctx, userID, day); err != nil {
		return domain.RecoveryEntry{}, err
	}
	return stored, nil
}

// ComputeReadiness derives and upserts the readiness score for the user's day.
// It returns nil, nil when no recovery entry exists for that day.
func (s *Service) ComputeReadiness(ctx context.Context, userID string, date time.Time) (*domain.ReadinessScore, error) {
	day := domain.StartOfDay(date, s.loc)

	entry, err := s.recovery.GetRecovery(ctx, userID, day)
	if err != nil {
		return nil, fmt.Errorf("load recovery entry: %w", err)
	}
	if entry == nil {
		observability.RecordReadinessSkipped()
		s.logger.WithFields(logrus.Fields{"user_id": userID, "date": domain.DayKey(day)}).Debug("no recovery entry, readiness not computed")
		return nil, nil
	}

	from, to := domain.PreviousDay(day)
	workouts, err := s.history.ListWorkoutsBetween(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("load previous day workouts: %w", err)
	}

	entry.Date = day
	score := Score(*entry, domain.TotalVolume(workouts))
	now := s.now().UTC()
	score.ID = uuid.NewString()
	score.CreatedAt = now
	score.UpdatedAt = now

	stored, err := s.scores.UpsertReadiness(ctx, score)
	if err != nil {
		return nil, fmt.Errorf("upsert readiness score: %w", err)
	}

	observability.RecordReadinessComputed(stored.Score, now)
	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"date":    domain.DayKey(day),
		"score":   stored.Score,
	}).Info("readiness score computed")
	return &stored, nil
}

// ListScores returns stored scores for the trailing days (today included), newest first.
func (s *Service) ListScores(ctx context.Context, userID string, days int) ([]domain.ReadinessScore, error) {
	if days <= 0 {
		days = DefaultListDays
	}
	today := domain.StartOfDay(s.now(), s.loc)
	return s.scores.ListReadiness(ctx, userID, today.AddDate(0, 0, -(days-1)))
}

// ListRecovery returns recovery entries newest first within optional bounds.
func (s *Service) ListRecovery(ctx context.Context, userID string, from, to *time.Time) ([]domain.RecoveryEntry, error) {
	if from != nil {
		day := domain.StartOfDay(*from, s.loc)
		from = &day
	}
	if to != nil {
		day := domain.StartOfDay(*to, s.loc)
		to = &day
	}
	return s.recovery.ListRecovery(ctx, userID, from, to)
}
