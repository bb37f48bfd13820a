package workouts

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/liftlogapp/liftlog/internal/store"
	"github.com/liftlogapp/liftlog/internal/telemetry/tracing"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

type Repo struct {
	db *store.DB
}

func NewRepo(db *store.DB) *Repo {
	return &Repo{
		db: db,
	}
}

// Record persists a finished session subtree in one transaction: the
// session row, its items in payload order and every set. Identities in
// the payload are ignored and reassigned. The routine reference is kept
// as an unchecked fact; it may point at a routine that no longer
// exists.
func (r *Repo) Record(ctx context.Context, session WorkoutSession) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.record")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("items", len(session.Items)))

	sessionID := uuid.NewString()
	err = r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var routineID sql.NullString
		if session.RoutineID != "" {
			routineID = sql.NullString{String: session.RoutineID, Valid: true}
		}

		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO workout_session (id, routine_id, started_at, finished_at, duration_seconds)
				VALUES (?, ?, ?, ?, ?);`,
			sessionID, routineID,
			store.FormatTime(session.StartedAt), store.FormatTime(session.FinishedAt),
			session.DurationSeconds,
		); err != nil {
			return fmt.Errorf("insert session: %w", err)
		}

		for i, item := range session.Items {
			itemID := uuid.NewString()
			if _, err := tx.ExecContext(
				ctx,
				`INSERT INTO workout_item (id, session_id, exercise_id, name, body_part, image, order_index)
					VALUES (?, ?, ?, ?, ?, ?, ?);`,
				itemID, sessionID, item.ExerciseID, item.Name, item.BodyPart, item.Image, i+1,
			); err != nil {
				return fmt.Errorf("insert item %d: %w", i, err)
			}

			for j, set := range item.Sets {
				if _, err := tx.ExecContext(
					ctx,
					`INSERT INTO workout_set (id, item_id, reps, weight, done) VALUES (?, ?, ?, ?, ?);`,
					uuid.NewString(), itemID, nullableInt(set.Reps), nullableFloat(set.Weight), set.Done,
				); err != nil {
					return fmt.Errorf("insert set %d of item %d: %w", j, i, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	span.SetAttributes(attribute.String("session.id", sessionID))
	return sessionID, nil
}

// Get reads one recorded session back, items in order with their sets.
func (r *Repo) Get(ctx context.Context, id string) (_ *WorkoutSession, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("session.id", id))

	session := &WorkoutSession{ID: id, Items: make([]WorkoutItem, 0)}

	var routineID sql.NullString
	var startedAt, finishedAt string
	err = r.db.QueryRowContext(
		ctx,
		`SELECT routine_id, started_at, finished_at, duration_seconds FROM workout_session WHERE id = ?;`,
		id,
	).Scan(&routineID, &startedAt, &finishedAt, &session.DurationSeconds)
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	session.RoutineID = routineID.String
	if session.StartedAt, err = store.ParseTime(startedAt); err != nil {
		return nil, err
	}
	if session.FinishedAt, err = store.ParseTime(finishedAt); err != nil {
		return nil, err
	}

	itemRows, err := r.db.QueryContext(
		ctx,
		`SELECT id, exercise_id, name, body_part, image, order_index
			FROM workout_item WHERE session_id = ?
			ORDER BY order_index ASC, id ASC;`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer itemRows.Close()

	item2index := make(map[string]int)
	for itemRows.Next() {
		var item WorkoutItem
		if err := itemRows.Scan(&item.ID, &item.ExerciseID, &item.Name, &item.BodyPart, &item.Image, &item.OrderIndex); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		item.Sets = make([]WorkoutSet, 0)
		item2index[item.ID] = len(session.Items)
		session.Items = append(session.Items, item)
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("item rows: %w", err)
	}

	setRows, err := r.db.QueryContext(
		ctx,
		`SELECT ws.id, ws.item_id, ws.reps, ws.weight, ws.done
			FROM workout_set ws
			JOIN workout_item wi ON ws.item_id = wi.id
			WHERE wi.session_id = ?
			ORDER BY ws.rowid ASC;`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("query sets: %w", err)
	}
	defer setRows.Close()

	for setRows.Next() {
		var set WorkoutSet
		var itemID string
		var reps sql.NullInt64
		var weight sql.NullFloat64
		if err := setRows.Scan(&set.ID, &itemID, &reps, &weight, &set.Done); err != nil {
			return nil, fmt.Errorf("scan set: %w", err)
		}
		if reps.Valid {
			repsVal := int(reps.Int64)
			set.Reps = &repsVal
		}
		if weight.Valid {
			weightVal := weight.Float64
			set.Weight = &weightVal
		}
		if i, ok := item2index[itemID]; ok {
			session.Items[i].Sets = append(session.Items[i].Sets, set)
		}
	}
	if err := setRows.Err(); err != nil {
		return nil, fmt.Errorf("set rows: %w", err)
	}

	return session, nil
}

// PersonalRecords ranks every exercise's sets across all sessions by
// weight descending then reps descending, nulls last on both, and
// keeps the top row per exercise. An exercise logged only with null
// weights still gets a row: nulls sort last, but the top rank can be a
// null row when nothing better exists. Output is sorted by exercise
// name.
func (r *Repo) PersonalRecords(ctx context.Context) (_ []PersonalRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.personalrecords")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.QueryContext(
		ctx,
		`SELECT exercise_id, name, body_part, image, weight, reps FROM (
			SELECT wi.exercise_id, wi.name, wi.body_part, wi.image, ws.weight, ws.reps,
				ROW_NUMBER() OVER (
					PARTITION BY wi.exercise_id
					ORDER BY ws.weight DESC NULLS LAST, ws.reps DESC NULLS LAST, ws.id ASC
				) AS rn
			FROM workout_set ws
			JOIN workout_item wi ON ws.item_id = wi.id
		) WHERE rn = 1
		ORDER BY name ASC;`,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	records := make([]PersonalRecord, 0)
	for rows.Next() {
		var pr PersonalRecord
		var weight sql.NullFloat64
		var reps sql.NullInt64
		if err := rows.Scan(&pr.ExerciseID, &pr.Name, &pr.BodyPart, &pr.Image, &weight, &reps); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		if weight.Valid {
			weightVal := weight.Float64
			pr.PRWeight = &weightVal
		}
		if reps.Valid {
			repsVal := int(reps.Int64)
			pr.RepsAtPR = &repsVal
		}
		records = append(records, pr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	span.SetAttributes(attribute.Int("records", len(records)))
	return records, nil
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
