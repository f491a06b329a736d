package planner

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

const (
	historyWindow = 30 * 24 * time.Hour
	historyLimit  = 10
	catalogLimit  = 50
)

// Service generates and stores workout plans.
type Service struct {
	history domain.WorkoutHistoryRepository
	catalog domain.ExerciseCatalog
	plans   domain.PlanRepository
	loc     *time.Location
	now     func() time.Time
	logger  logrus.FieldLogger
}

// Option configures optional behaviour for the Service.
type Option func(*Service)

// WithLocation sets the time zone used for plan names.
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
func NewService(history domain.WorkoutHistoryRepository, catalog domain.ExerciseCatalog, plans domain.PlanRepository, opts ...Option) *Service {
	s := &Service{
		history: history,
		catalog: catalog,
		plans:   plans,
		loc:     time.Local,
		now:     time.Now,
		logger:  logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateInput carries the plan request.
type GenerateInput struct {
	Goal        string
	DaysPerWeek int
	Focus       string
}

// Validate rejects non-positive day counts.
func (in GenerateInput) Validate() error {
	verr := &domain.ValidationError{}
	if in.DaysPerWeek <= 0 {
		verr.Add("daysPerWeek", "must be a positive integer")
	}
	return verr.OrNil()
}

// GeneratePlan derives progression targets from the last 30 days of training and
// stores the resulting plan. An empty catalog yields daysPerWeek empty days.
func (s *Service) GeneratePlan(ctx context.Context, userID string, in GenerateInput) (domain.PlanRecord, error) {
	if err := in.Validate(); err != nil {
		return domain.PlanRecord{}, err
	}
	goal := strings.TrimSpace(in.Goal)
	if goal == "" {
		goal = DefaultGoal
	}
	focus := strings.TrimSpace(in.Focus)

	now := s.now()
	workouts, err := s.history.ListRecentWorkouts(ctx, userID, now.Add(-historyWindow), historyLimit)
	if err != nil {
		return domain.PlanRecord{}, fmt.Errorf("load workout history: %w", err)
	}

	catalog, err := s.catalog.ListExercises(ctx, focus, catalogLimit)
	if err != nil {
		return domain.PlanRecord{}, fmt.Errorf("load exercise catalog: %w", err)
	}

	plan := BuildPlan(catalog, domain.SummarizeHistory(workouts), in.DaysPerWeek, goal)
	record := domain.PlanRecord{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      fmt.Sprintf("Generated %s plan - %s", goal, now.In(s.loc).Format("Jan 2, 2006")),
		Goal:      goal,
		Generated: true,
		Plan:      plan,
		CreatedAt: now.UTC(),
	}
	if err := s.plans.CreatePlan(ctx, record); err != nil {
		return domain.PlanRecord{}, fmt.Errorf("store plan: %w", err)
	}

	observability.RecordPlanCreated(true, plan.ExerciseCount())
	s.logger.WithFields(logrus.Fields{
		"user_id":       userID,
		"plan_id":       record.ID,
		"goal":          goal,
		"focus":         focus,
		"days_per_week": in.DaysPerWeek,
		"history":       len(workouts),
		"catalog":       len(catalog),
	}).Info("workout plan generated")
	return record, nil
}

// CustomPlanInput is a user-authored plan.
type CustomPlanInput struct {
	Name string
	Goal string
	Plan domain.WorkoutPlan
}

// Validate checks the plan body is usable.
func (in CustomPlanInput) Validate() error {
	verr := &domain.ValidationError{}
	if strings.TrimSpace(in.Name) == "" {
		verr.Add("name", "is required")
	}
	if in.Plan.DaysPerWeek <= 0 {
		verr.Add("planData.daysPerWeek", "must be a positive integer")
	}
	for i, day := range in.Plan.Days {
		for j, ex := range day.Exercises {
			field := fmt.Sprintf("planData.workouts[%d].exercises[%d]", i, j)
			if strings.TrimSpace(ex.ExerciseName) == "" && strings.TrimSpace(ex.ExerciseID) == "" {
				verr.Add(field, "exerciseId or exerciseName is required")
			}
			if ex.Sets < 0 || ex.Reps < 0 || ex.Weight < 0 || ex.RestSeconds < 0 {
				verr.Add(field, "sets, reps, weight and restSeconds cannot be negative")
			}
		}
	}
	return verr.OrNil()
}

// CreatePlan stores a user-authored plan as-is.
func (s *Service) CreatePlan(ctx context.Context, userID string, in CustomPlanInput) (domain.PlanRecord, error) {
	if err := in.Validate(); err != nil {
		return domain.PlanRecord{}, err
	}
	goal := strings.TrimSpace(in.Goal)
	plan := in.Plan
	if plan.Goal == "" {
		plan.Goal = goal
	}

	record := domain.PlanRecord{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      strings.TrimSpace(in.Name),
		Goal:      goal,
		Plan:      plan,
		CreatedAt: s.now().UTC(),
	}
	if err := s.plans.CreatePlan(ctx, record); err != nil {
		return domain.PlanRecord{}, fmt.Errorf("store plan: %w", err)
	}
	observability.RecordPlanCreated(false, plan.ExerciseCount())
	return record, nil
}

// ListPlans returns the user's plans newest first.
func (s *Service) ListPlans(ctx context.Context, userID string, cursor *domain.Cursor, limit int) ([]domain.PlanRecord, *domain.Cursor, error) {
	return s.plans.ListPlans(ctx, userID, cursor, limit)
}
