package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/liftlogapp/liftlog/internal/store"
	"github.com/liftlogapp/liftlog/internal/telemetry/tracing"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// SearchLimit caps the number of rows a catalog search returns. It is a
// bound on the result size, not an error condition: callers must not
// assume completeness for large libraries.
const SearchLimit = 300

type Repo struct {
	db *store.DB
}

func NewRepo(db *store.DB) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, exercise Exercise) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	exercise.ID = uuid.NewString()
	exercise.Custom = true

	_, err = r.db.ExecContext(
		ctx,
		`INSERT INTO exercise
			(id, name, image, body_part, primary_muscles, secondary_muscles, equipment, custom)
			VALUES (?, ?, ?, ?, ?, ?, ?, 1);`,
		exercise.ID, exercise.Name, exercise.Image, exercise.BodyPart,
		exercise.PrimaryMuscles, exercise.SecondaryMuscles, exercise.Equipment,
	)
	if err != nil {
		return nil, fmt.Errorf("insert exercise: %w", err)
	}

	span.SetAttributes(attribute.String("exercise.id", exercise.ID))
	return &exercise, nil
}

// Search filters the catalog by case-insensitive name substring and body
// part group, sorted by name, capped at SearchLimit rows.
func (r *Repo) Search(ctx context.Context, params SearchParams) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.search")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("query", params.Query))
	span.SetAttributes(attribute.String("group", params.Group))

	group := params.Group
	if group == "*" {
		group = ""
	}

	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, name, image, body_part, primary_muscles, secondary_muscles, equipment, custom
			FROM exercise
			WHERE (?1 = '' OR instr(lower(name), lower(?1)) > 0)
			AND (?2 = '' OR body_part = ?2)
			ORDER BY name ASC
			LIMIT ?3;`,
		params.Query, group, SearchLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	exercises, err := rows2exercises(rows)
	if err != nil {
		return nil, fmt.Errorf("rows2exercises: %w", err)
	}
	return exercises, nil
}

// ListGroups returns the distinct non-empty body part tags, sorted.
func (r *Repo) ListGroups(ctx context.Context) (_ []string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.listgroups")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.QueryContext(
		ctx,
		`SELECT DISTINCT body_part FROM exercise WHERE body_part != '' ORDER BY body_part ASC;`,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	groups := make([]string, 0)
	for rows.Next() {
		var group string
		if err := rows.Scan(&group); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return groups, nil
}

func (r *Repo) Count(ctx context.Context) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.count")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM exercise;`).Scan(&count); err != nil {
		return -1, fmt.Errorf("count exercises: %w", err)
	}
	return count, nil
}

func rows2exercises(rows *sql.Rows) ([]Exercise, error) {
	exercises := make([]Exercise, 0)
	for rows.Next() {
		var e Exercise
		if err := rows.Scan(
			&e.ID, &e.Name, &e.Image, &e.BodyPart,
			&e.PrimaryMuscles, &e.SecondaryMuscles, &e.Equipment, &e.Custom,
		); err != nil {
			return nil, err
		}
		exercises = append(exercises, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return exercises, nil
}
