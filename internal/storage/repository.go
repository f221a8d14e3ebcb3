package storage

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/lowaak/mapty/internal/workout"
)

// WorkoutsKey is the fixed key the workout list is stored under
const WorkoutsKey = "workout"

// WorkoutRepository serializes the whole ordered workout list as one JSON value
type WorkoutRepository struct {
	kv     KeyValueStore
	logger *log.Logger
}

func NewWorkoutRepository(kv KeyValueStore, logger *log.Logger) *WorkoutRepository {
	if kv == nil {
		panic("WorkoutRepository: kv cannot be nil")
	}
	if logger == nil {
		panic("WorkoutRepository: logger cannot be nil")
	}
	return &WorkoutRepository{kv: kv, logger: logger}
}

// Save overwrites the stored list with workouts
func (r *WorkoutRepository) Save(workouts []workout.Workout) error {
	if workouts == nil {
		workouts = []workout.Workout{}
	}
	raw, err := json.Marshal(workouts)
	if err != nil {
		return fmt.Errorf("marshal workouts: %w", err)
	}
	if err := r.kv.Set(WorkoutsKey, raw); err != nil {
		return fmt.Errorf("store workouts: %w", err)
	}
	r.logger.Printf("WorkoutRepository: saved %d workouts", len(workouts))
	return nil
}

// Load returns the stored list. Absent, unreadable or malformed data all load as empty.
func (r *WorkoutRepository) Load() []workout.Workout {
	raw, ok, err := r.kv.Get(WorkoutsKey)
	if err != nil {
		r.logger.Printf("WorkoutRepository: load failed: %v", err)
		return nil
	}
	if !ok {
		r.logger.Printf("WorkoutRepository: load (no stored workouts)")
		return nil
	}
	var workouts []workout.Workout
	if err := json.Unmarshal(raw, &workouts); err != nil {
		r.logger.Printf("WorkoutRepository: load failed to parse: %v", err)
		return nil
	}
	r.logger.Printf("WorkoutRepository: loaded %d workouts", len(workouts))
	return workouts
}

// Clear removes the stored list entirely
func (r *WorkoutRepository) Clear() error {
	if err := r.kv.Remove(WorkoutsKey); err != nil {
		return fmt.Errorf("clear workouts: %w", err)
	}
	r.logger.Printf("WorkoutRepository: cleared")
	return nil
}
