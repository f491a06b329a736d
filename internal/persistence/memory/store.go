// Package memory provides an in-process implementation of every training
// repository for local development and tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/divyanshukashyap0/Pulsely-AI/internal/domain"
)

// Store keeps all records in maps guarded by a single RWMutex.
type Store struct {
	mu        sync.RWMutex
	recovery  map[string]map[string]domain.RecoveryEntry
	scores    map[string]map[string]domain.ReadinessScore
	workouts  map[string]domain.Workout
	exercises []domain.Exercise
	plans     []domain.PlanRecord
}

// NewStore constructs an empty Store.
func NewStore() *Store {
	return &Store{
		recovery: make(map[string]map[string]domain.RecoveryEntry),
		scores:   make(map[string]map[string]domain.ReadinessScore),
		workouts: make(map[string]domain.Workout),
	}
}

// NewSeededStore constructs a Store populated with the starter exercise catalog.
func NewSeededStore() *Store {
	s := NewStore()
	for _, ex := range SeedCatalog() {
		s.AddExercise(ex)
	}
	return s
}

// AddExercise appends an exercise to the catalog, preserving insertion order.
func (s *Store) AddExercise(ex domain.Exercise) domain.Exercise {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(ex.ID) == "" {
		ex.ID = uuid.NewString()
	}
	if ex.CreatedAt.IsZero() {
		ex.CreatedAt = time.Now().UTC()
	}
	s.exercises = append(s.exercises, ex)
	return ex
}

// UpsertRecovery implements domain.RecoveryRepository.
func (s *Store) UpsertRecovery(ctx context.Context, entry domain.RecoveryEntry) (domain.RecoveryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byDay, ok := s.recovery[entry.UserID]
	if !ok {
		byDay = make(map[string]domain.RecoveryEntry)
		s.recovery[entry.UserID] = byDay
	}
	key := domain.DayKey(entry.Date)
	if existing, ok := byDay[key]; ok {
		entry.ID = existing.ID
		entry.CreatedAt = existing.CreatedAt
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	byDay[key] = entry
	return entry, nil
}

// GetRecovery implements domain.RecoveryRepository.
func (s *Store) GetRecovery(ctx context.Context, userID string, day time.Time) (*domain.RecoveryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.recovery[userID][domain.DayKey(day)]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

// ListRecovery implements domain.RecoveryRepository.
func (s *Store) ListRecovery(ctx context.Context, userID string, from, to *time.Time) ([]domain.RecoveryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.RecoveryEntry, 0, len(s.recovery[userID]))
	for key, entry := range s.recovery[userID] {
		if from != nil && key < domain.DayKey(*from) {
			continue
		}
		if to != nil && key > domain.DayKey(*to) {
			continue
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return domain.DayKey(out[i].Date) > domain.DayKey(out[j].Date) })
	return out, nil
}

// UpsertReadiness implements domain.ReadinessRepository.
func (s *Store) UpsertReadiness(ctx context.Context, score domain.ReadinessScore) (domain.ReadinessScore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byDay, ok := s.scores[score.UserID]
	if !ok {
		byDay = make(map[string]domain.ReadinessScore)
		s.scores[score.UserID] = byDay
	}
	key := domain.DayKey(score.Date)
	if existing, ok := byDay[key]; ok {
		score.ID = existing.ID
		score.CreatedAt = existing.CreatedAt
	}
	if score.ID == "" {
		score.ID = uuid.NewString()
	}
	byDay[key] = score
	return score, nil
}

// ListReadiness implements domain.ReadinessRepository.
func (s *Store) ListReadiness(ctx context.Context, userID string, from time.Time) ([]domain.ReadinessScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fromKey := domain.DayKey(from)
	out := make([]domain.ReadinessScore, 0, len(s.scores[userID]))
	for key, score := range s.scores[userID] {
		if key >= fromKey {
			out = append(out, score)
		}
	}
	sort.Slice(out, func(i, j int) bool { return domain.DayKey(out[i].Date) > domain.DayKey(out[j].Date) })
	return out, nil
}

// SaveWorkout implements domain.WorkoutHistoryRepository.
func (s *Store) SaveWorkout(ctx context.Context, workout domain.Workout) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if workout.ID == "" {
		workout.ID = uuid.NewString()
	}
	s.workouts[workout.ID] = workout
	return nil
}

// ListWorkoutsBetween implements domain.WorkoutHistoryRepository.
func (s *Store) ListWorkoutsBetween(ctx context.Context, userID string, from, to time.Time) ([]domain.Workout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Workout, 0)
	for _, w := range s.workouts {
		if w.UserID != userID || w.StartedAt.Before(from) || !w.StartedAt.Before(to) {
			continue
		}
		out = append(out, s.withMuscleGroups(w))
	}
	sort.Slice(out, func(i, j int) bool { return startedBefore(out[i], out[j]) })
	return out, nil
}

// ListRecentWorkouts implements domain.WorkoutHistoryRepository.
func (s *Store) ListRecentWorkouts(ctx context.Context, userID string, since time.Time, limit int) ([]domain.Workout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Workout, 0)
	for _, w := range s.workouts {
		if w.UserID == userID && !w.StartedAt.Before(since) {
			out = append(out, s.withMuscleGroups(w))
		}
	}
	sort.Slice(out, func(i, j int) bool { return startedBefore(out[j], out[i]) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// startedBefore orders by start time, then ID, like the SQL ORDER BY clauses.
func startedBefore(a, b domain.Workout) bool {
	if a.StartedAt.Equal(b.StartedAt) {
		return a.ID < b.ID
	}
	return a.StartedAt.Before(b.StartedAt)
}

// withMuscleGroups fills catalog muscle groups the way the SQL join does.
func (s *Store) withMuscleGroups(w domain.Workout) domain.Workout {
	exercises := make([]domain.WorkoutExercise, len(w.Exercises))
	copy(exercises, w.Exercises)
	for i, ex := range exercises {
		if len(ex.MuscleGroups) > 0 {
			continue
		}
		for _, cat := range s.exercises {
			if cat.ID == ex.ExerciseID {
				exercises[i].MuscleGroups = cat.MuscleGroups
				break
			}
		}
	}
	w.Exercises = exercises
	return w
}

// ListExercises implements domain.ExerciseCatalog.
func (s *Store) ListExercises(ctx context.Context, category string, limit int) ([]domain.Exercise, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Exercise, 0)
	for _, ex := range s.exercises {
		if category != "" && ex.Category != category {
			continue
		}
		out = append(out, ex)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// CreatePlan implements domain.PlanRepository.
func (s *Store) CreatePlan(ctx context.Context, plan domain.PlanRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.plans = append(s.plans, plan)
	return nil
}

// ListPlans implements domain.PlanRepository.
func (s *Store) ListPlans(ctx context.Context, userID string, cursor *domain.Cursor, limit int) ([]domain.PlanRecord, *domain.Cursor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.PlanRecord, 0)
	for _, p := range s.plans {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return newer(out[i], out[j]) })

	if cursor != nil {
		start := len(out)
		for i, p := range out {
			if p.CreatedAt.Before(cursor.CreatedAt) || (p.CreatedAt.Equal(cursor.CreatedAt) && p.ID < cursor.ID) {
				start = i
				break
			}
		}
		out = out[start:]
	}

	if limit <= 0 || len(out) <= limit {
		return out, nil, nil
	}
	out = out[:limit]
	last := out[len(out)-1]
	return out, &domain.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
}

func newer(a, b domain.PlanRecord) bool {
	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.ID > b.ID
	}
	return a.CreatedAt.After(b.CreatedAt)
}
