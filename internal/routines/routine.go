package routines

import (
	"time"
)

// Routine is a user-authored workout template: an ordered list of
// exercise references, each with an ordered list of planned sets.
// UpdatedAt is a write high-water-mark across the whole owned subtree:
// any mutation of the routine, its exercises or its sets refreshes it.
type Routine struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
	Exercises []RoutineExercise `json:"exercises"`
}

// Summary is the list-view shape of a routine. It deliberately carries
// only an exercise count instead of the expanded set detail returned by
// a single-routine fetch; callers must not assume list items have sets.
type Summary struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	ExerciseCount int       `json:"exerciseCount"`
}

// RoutineExercise links a routine to a catalog exercise. OrderIndex is
// an advisory sort key (max+1 on insert, gaps allowed); ties are broken
// by identity.
type RoutineExercise struct {
	ID         string       `json:"id"`
	ExerciseID string       `json:"exerciseId"`
	Name       string       `json:"name"`
	BodyPart   string       `json:"bodyPart,omitempty"`
	Image      string       `json:"image,omitempty"`
	OrderIndex int          `json:"orderIndex"`
	Sets       []RoutineSet `json:"sets"`
}

// RoutineSet is one planned set. Reps and weight start out null and are
// edited in place; editing never creates a new identity. The weight
// field is "peso" on the wire, a contract inherited from the original
// client.
type RoutineSet struct {
	ID     string   `json:"id"`
	Reps   *int     `json:"reps"`
	Weight *float64 `json:"peso"`
}

// SetUpdate carries new values for one existing set, addressed by
// identity. Unknown identities are silently skipped.
type SetUpdate struct {
	SetID  string
	Reps   *int
	Weight *float64
}
