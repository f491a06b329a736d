package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/divyanshukashyap0/Pulsely-AI/internal/domain"
	"github.com/divyanshukashyap0/Pulsely-AI/internal/observability"
	platformevents "github.com/divyanshukashyap0/Pulsely-AI/pkg/platform/events"
)

// ErrInvalidWorkout marks a workout.completed payload that can never be applied.
var ErrInvalidWorkout = errors.New("invalid workout event")

// ReadinessRecomputer recomputes a stored readiness score.
type ReadinessRecomputer interface {
	ComputeReadiness(ctx context.Context, userID string, date time.Time) (*domain.ReadinessScore, error)
	Location() *time.Location
}

// WorkoutHandler ingests completed workouts into the history store and refreshes
// the readiness score of the following day, whose strain depends on them.
type WorkoutHandler struct {
	history   domain.WorkoutHistoryRepository
	readiness ReadinessRecomputer
	logger    logrus.FieldLogger
}

// NewWorkoutHandler constructs a WorkoutHandler.
func NewWorkoutHandler(history domain.WorkoutHistoryRepository, readiness ReadinessRecomputer, logger logrus.FieldLogger) *WorkoutHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &WorkoutHandler{history: history, readiness: readiness, logger: logger}
}

// Handle applies workout.completed events and ignores every other type.
func (h *WorkoutHandler) Handle(ctx context.Context, msg Message) error {
	if msg.EventType != platformevents.TypeWorkoutCompleted {
		h.logger.WithFields(logrus.Fields{"event_type": msg.EventType, "topic": msg.Topic}).Debug("ignoring event")
		return nil
	}

	var event platformevents.WorkoutCompleted
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidWorkout, err)
	}
	workout, err := toWorkout(event)
	if err != nil {
		return err
	}
	if msg.UserID != "" && msg.UserID != workout.UserID {
		return fmt.Errorf("%w: header user %s does not own workout %s", ErrInvalidWorkout, msg.UserID, workout.ID)
	}

	if err := h.history.SaveWorkout(ctx, workout); err != nil {
		return fmt.Errorf("save workout %s: %w", workout.ID, err)
	}
	observability.RecordWorkoutIngested()

	nextDay := domain.StartOfDay(workout.StartedAt, h.readiness.Location()).AddDate(0, 0, 1)
	score, err := h.readiness.ComputeReadiness(ctx, workout.UserID, nextDay)
	if err != nil {
		return fmt.Errorf("recompute readiness for %s: %w", domain.DayKey(nextDay), err)
	}

	fields := logrus.Fields{
		"user_id":    workout.UserID,
		"workout_id": workout.ID,
		"volume":     domain.WorkoutVolume(workout),
	}
	if score != nil {
		fields["readiness_date"] = domain.DayKey(nextDay)
		fields["readiness_score"] = score.Score
	}
	h.logger.WithFields(fields).Info("workout ingested")
	return nil
}

func toWorkout(event platformevents.WorkoutCompleted) (domain.Workout, error) {
	if event.WorkoutID == "" || event.UserID == "" || event.StartedAt.IsZero() {
		return domain.Workout{}, fmt.Errorf("%w: workout_id, user_id and started_at are required", ErrInvalidWorkout)
	}

	workout := domain.Workout{
		ID:          event.WorkoutID,
		UserID:      event.UserID,
		Name:        event.Name,
		StartedAt:   event.StartedAt,
		CompletedAt: event.CompletedAt,
		Exercises:   make([]domain.WorkoutExercise, 0, len(event.Exercises)),
	}
	for _, ex := range event.Exercises {
		if ex.ExerciseName == "" {
			return domain.Workout{}, fmt.Errorf("%w: exercise %s has no name", ErrInvalidWorkout, ex.ID)
		}
		sets := make([]domain.WorkoutSet, 0, len(ex.Sets))
		for _, set := range ex.Sets {
			sets = append(sets, domain.WorkoutSet{
				ID:          set.ID,
				Weight:      set.Weight,
				Reps:        set.Reps,
				CompletedAt: set.CompletedAt,
			})
		}
		workout.Exercises = append(workout.Exercises, domain.WorkoutExercise{
			ID:           ex.ID,
			ExerciseID:   ex.ExerciseID,
			ExerciseName: ex.ExerciseName,
			Position:     ex.Position,
			Sets:         sets,
		})
	}
	return workout, nil
}
