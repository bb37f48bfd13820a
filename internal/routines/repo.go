package routines

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/liftlogapp/liftlog/internal/store"
	"github.com/liftlogapp/liftlog/internal/telemetry/tracing"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

var ErrRoutineNotFound = errors.New("routine not found")

// DefaultRoutineName is used when a routine is created with a blank name.
const DefaultRoutineName = "My Routine"

type Repo struct {
	db *store.DB
}

func NewRepo(db *store.DB) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Create(ctx context.Context, name string) (_ *Routine, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.routines.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if name == "" {
		name = DefaultRoutineName
	}

	now := time.Now()
	routine := &Routine{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
		Exercises: make([]RoutineExercise, 0),
	}

	_, err = r.db.ExecContext(
		ctx,
		`INSERT INTO routine (id, name, created_at, updated_at) VALUES (?, ?, ?, ?);`,
		routine.ID, routine.Name, store.FormatTime(now), store.FormatTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("insert routine: %w", err)
	}

	span.SetAttributes(attribute.String("routine.id", routine.ID))
	return routine, nil
}

// Get returns the full routine: exercises joined to catalog fields,
// ordered by order_index then identity, each with its sets in insertion
// order.
func (r *Repo) Get(ctx context.Context, id string) (_ *Routine, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.routines.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("routine.id", id))

	routine := &Routine{ID: id, Exercises: make([]RoutineExercise, 0)}

	var createdAt, updatedAt string
	err = r.db.QueryRowContext(
		ctx,
		`SELECT name, created_at, updated_at FROM routine WHERE id = ?;`,
		id,
	).Scan(&routine.Name, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRoutineNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query routine: %w", err)
	}
	if routine.CreatedAt, err = store.ParseTime(createdAt); err != nil {
		return nil, err
	}
	if routine.UpdatedAt, err = store.ParseTime(updatedAt); err != nil {
		return nil, err
	}

	exRows, err := r.db.QueryContext(
		ctx,
		`SELECT re.id, re.exercise_id, e.name, e.body_part, e.image, re.order_index
			FROM routine_exercise re
			JOIN exercise e ON re.exercise_id = e.id
			WHERE re.routine_id = ?
			ORDER BY re.order_index ASC, re.id ASC;`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("query routine exercises: %w", err)
	}
	defer exRows.Close()

	rex2index := make(map[string]int)
	for exRows.Next() {
		var re RoutineExercise
		if err := exRows.Scan(&re.ID, &re.ExerciseID, &re.Name, &re.BodyPart, &re.Image, &re.OrderIndex); err != nil {
			return nil, fmt.Errorf("scan routine exercise: %w", err)
		}
		re.Sets = make([]RoutineSet, 0)
		rex2index[re.ID] = len(routine.Exercises)
		routine.Exercises = append(routine.Exercises, re)
	}
	if err := exRows.Err(); err != nil {
		return nil, fmt.Errorf("routine exercise rows: %w", err)
	}

	setRows, err := r.db.QueryContext(
		ctx,
		`SELECT rs.id, rs.routine_exercise_id, rs.reps, rs.weight
			FROM routine_set rs
			JOIN routine_exercise re ON rs.routine_exercise_id = re.id
			WHERE re.routine_id = ?
			ORDER BY rs.rowid ASC;`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("query routine sets: %w", err)
	}
	defer setRows.Close()

	for setRows.Next() {
		var set RoutineSet
		var rexID string
		var reps sql.NullInt64
		var weight sql.NullFloat64
		if err := setRows.Scan(&set.ID, &rexID, &reps, &weight); err != nil {
			return nil, fmt.Errorf("scan routine set: %w", err)
		}
		if reps.Valid {
			repsVal := int(reps.Int64)
			set.Reps = &repsVal
		}
		if weight.Valid {
			weightVal := weight.Float64
			set.Weight = &weightVal
		}
		if i, ok := rex2index[rexID]; ok {
			routine.Exercises[i].Sets = append(routine.Exercises[i].Sets, set)
		}
	}
	if err := setRows.Err(); err != nil {
		return nil, fmt.Errorf("routine set rows: %w", err)
	}

	return routine, nil
}

// List returns routine summaries ordered by last update, newest first.
func (r *Repo) List(ctx context.Context) (_ []Summary, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.routines.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.QueryContext(
		ctx,
		`SELECT r.id, r.name, r.created_at, r.updated_at, COUNT(re.id)
			FROM routine r
			LEFT JOIN routine_exercise re ON re.routine_id = r.id
			GROUP BY r.id
			ORDER BY r.updated_at DESC;`,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	summaries := make([]Summary, 0)
	for rows.Next() {
		var s Summary
		var createdAt, updatedAt string
		if err := rows.Scan(&s.ID, &s.Name, &createdAt, &updatedAt, &s.ExerciseCount); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		if s.CreatedAt, err = store.ParseTime(createdAt); err != nil {
			return nil, err
		}
		if s.UpdatedAt, err = store.ParseTime(updatedAt); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return summaries, nil
}

// Update applies a rename (skipped when name is blank) and any number
// of set value updates in one transaction, touching updated_at exactly
// once regardless of how many sets actually changed - even zero.
// Unknown set identities affect zero rows and are not an error.
func (r *Repo) Update(ctx context.Context, id, name string, setUpdates []SetUpdate) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.routines.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("routine.id", id))
	span.SetAttributes(attribute.Int("set_updates", len(setUpdates)))

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if name != "" {
			if _, err := tx.ExecContext(
				ctx,
				`UPDATE routine SET name = ? WHERE id = ?;`,
				name, id,
			); err != nil {
				return fmt.Errorf("rename routine: %w", err)
			}
		}
		for _, su := range setUpdates {
			if _, err := tx.ExecContext(
				ctx,
				`UPDATE routine_set SET reps = ?, weight = ? WHERE id = ?;`,
				nullableInt(su.Reps), nullableFloat(su.Weight), su.SetID,
			); err != nil {
				return fmt.Errorf("update set %s: %w", su.SetID, err)
			}
		}
		return touchRoutine(ctx, tx, id)
	})
}

// AddExercise appends a catalog exercise to the routine. The order
// position is max(existing)+1, computed inside the same transaction as
// the insert, so no gap-filling and no race window.
func (r *Repo) AddExercise(ctx context.Context, routineID, exerciseID string) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.routines.addexercise")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("routine.id", routineID))
	span.SetAttributes(attribute.String("exercise.id", exerciseID))

	rexID := uuid.NewString()
	err = r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var nextOrder int
		if err := tx.QueryRowContext(
			ctx,
			`SELECT COALESCE(MAX(order_index), 0) + 1 FROM routine_exercise WHERE routine_id = ?;`,
			routineID,
		).Scan(&nextOrder); err != nil {
			return fmt.Errorf("next order index: %w", err)
		}

		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO routine_exercise (id, routine_id, exercise_id, order_index) VALUES (?, ?, ?, ?);`,
			rexID, routineID, exerciseID, nextOrder,
		); err != nil {
			return fmt.Errorf("insert routine exercise: %w", err)
		}
		return touchRoutine(ctx, tx, routineID)
	})
	if err != nil {
		return "", err
	}
	return rexID, nil
}

// RemoveExercise deletes the owned sets first, then the link itself.
// Removing a non-existent link still touches updated_at.
func (r *Repo) RemoveExercise(ctx context.Context, routineID, routineExerciseID string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.routines.removeexercise")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("routine.id", routineID))
	span.SetAttributes(attribute.String("routine_exercise.id", routineExerciseID))

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(
			ctx,
			`DELETE FROM routine_set WHERE routine_exercise_id = ?;`,
			routineExerciseID,
		); err != nil {
			return fmt.Errorf("delete routine sets: %w", err)
		}
		if _, err := tx.ExecContext(
			ctx,
			`DELETE FROM routine_exercise WHERE id = ? AND routine_id = ?;`,
			routineExerciseID, routineID,
		); err != nil {
			return fmt.Errorf("delete routine exercise: %w", err)
		}
		return touchRoutine(ctx, tx, routineID)
	})
}

// AddSet creates one planned set with the given (possibly null) values
// and returns its identity.
func (r *Repo) AddSet(ctx context.Context, routineID, routineExerciseID string, reps *int, weight *float64) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.routines.addset")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("routine.id", routineID))

	setID := uuid.NewString()
	err = r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO routine_set (id, routine_exercise_id, reps, weight) VALUES (?, ?, ?, ?);`,
			setID, routineExerciseID, nullableInt(reps), nullableFloat(weight),
		); err != nil {
			return fmt.Errorf("insert routine set: %w", err)
		}
		return touchRoutine(ctx, tx, routineID)
	})
	if err != nil {
		return "", err
	}
	return setID, nil
}

// RemoveSet deletes one set addressed by the (set, routine exercise)
// identity pair; updated_at is touched unconditionally.
func (r *Repo) RemoveSet(ctx context.Context, routineID, routineExerciseID, setID string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.routines.removeset")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("routine.id", routineID))
	span.SetAttributes(attribute.String("set.id", setID))

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(
			ctx,
			`DELETE FROM routine_set WHERE id = ? AND routine_exercise_id = ?;`,
			setID, routineExerciseID,
		); err != nil {
			return fmt.Errorf("delete routine set: %w", err)
		}
		return touchRoutine(ctx, tx, routineID)
	})
}

func touchRoutine(ctx context.Context, tx *sql.Tx, routineID string) error {
	if _, err := tx.ExecContext(
		ctx,
		`UPDATE routine SET updated_at = ? WHERE id = ?;`,
		store.FormatTime(time.Now()), routineID,
	); err != nil {
		return fmt.Errorf("touch routine: %w", err)
	}
	return nil
}

func nullableInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullableFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
