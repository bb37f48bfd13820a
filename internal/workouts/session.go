package workouts

import (
	"time"
)

// WorkoutSession is an immutable historical record of one executed
// routine. Everything under it is a value copy taken at finish time:
// item names, body parts and images are duplicated from the catalog so
// later edits to the source exercise or routine never rewrite history.
// Sessions are write-once, nothing updates or deletes them.
type WorkoutSession struct {
	ID              string        `json:"id"`
	RoutineID       string        `json:"routineId,omitempty"`
	StartedAt       time.Time     `json:"startedAt"`
	FinishedAt      time.Time     `json:"finishedAt"`
	DurationSeconds int           `json:"durationSeconds"`
	Items           []WorkoutItem `json:"items"`
}

type WorkoutItem struct {
	ID         string       `json:"id"`
	ExerciseID string       `json:"exerciseId"`
	Name       string       `json:"name"`
	BodyPart   string       `json:"bodyPart,omitempty"`
	Image      string       `json:"image,omitempty"`
	OrderIndex int          `json:"orderIndex"`
	Sets       []WorkoutSet `json:"sets"`
}

// WorkoutSet is one performed set. Null reps or weight mean the value
// was never filled in; Done records whether the set was checked off.
type WorkoutSet struct {
	ID     string   `json:"id"`
	Reps   *int     `json:"reps"`
	Weight *float64 `json:"peso"`
	Done   bool     `json:"done"`
}

// PersonalRecord is the best set ever logged for one exercise: highest
// weight, ties broken by highest reps. The display fields come from the
// snapshot row that owns the winning set. Weight can be null when an
// exercise was only ever logged without one.
type PersonalRecord struct {
	ExerciseID string   `json:"exerciseId"`
	Name       string   `json:"name"`
	BodyPart   string   `json:"bodyPart,omitempty"`
	Image      string   `json:"image,omitempty"`
	PRWeight   *float64 `json:"prWeight"`
	RepsAtPR   *int     `json:"repsAtPr"`
}
