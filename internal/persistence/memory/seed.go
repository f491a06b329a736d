package memory

import "github.com/divyanshukashyap0/Pulsely-AI/internal/domain"

// SeedCatalog returns the starter exercise catalog.
func SeedCatalog() []domain.Exercise {
	return []domain.Exercise{
		{Name: "Squat", Category: "strength", MuscleGroups: []string{"Legs", "Quads", "Glutes"}, Description: "Lower body compound exercise", PoseTrackable: true},
		{Name: "Push-up", Category: "strength", MuscleGroups: []string{"Chest", "Shoulders", "Triceps"}, Description: "Upper body bodyweight exercise", PoseTrackable: true},
		{Name: "Bicep Curl", Category: "strength", MuscleGroups: []string{"Biceps"}, Description: "Isolation exercise for biceps", PoseTrackable: true},
		{Name: "Bench Press", Category: "strength", MuscleGroups: []string{"Chest", "Shoulders", "Triceps"}, Description: "Upper body compound exercise"},
		{Name: "Deadlift", Category: "strength", MuscleGroups: []string{"Back", "Legs", "Glutes", "Hamstrings"}, Description: "Full body compound exercise"},
		{Name: "Pull-up", Category: "strength", MuscleGroups: []string{"Back", "Biceps"}, Description: "Upper body pulling exercise"},
		{Name: "Running", Category: "cardio", MuscleGroups: []string{"Legs", "Calves", "Core"}, Description: "Cardiovascular exercise"},
		{Name: "Plank", Category: "strength", MuscleGroups: []string{"Core", "Abs"}, Description: "Core stability exercise"},
	}
}
