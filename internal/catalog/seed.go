package catalog

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/liftlogapp/liftlog/internal/store"
	"github.com/liftlogapp/liftlog/internal/telemetry/tracing"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:embed seed_exercises.json
var seedExercisesJSON []byte

// Seed bulk loads the bundled exercise dataset in one transaction.
// It only runs when the catalog is empty, so restarts never duplicate
// catalog rows.
func Seed(ctx context.Context, db *store.DB) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "catalog.seed")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	repo := NewRepo(db)
	count, err := repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("count exercises: %w", err)
	}
	if count > 0 {
		log.Debugf("exercise catalog already seeded (%d exercises), skipping", count)
		return nil
	}

	var seedExercises []Exercise
	if err := json.Unmarshal(seedExercisesJSON, &seedExercises); err != nil {
		return fmt.Errorf("unmarshal seed dataset: %w", err)
	}

	err = db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, e := range seedExercises {
			if _, err := tx.ExecContext(
				ctx,
				`INSERT INTO exercise
					(id, name, image, body_part, primary_muscles, secondary_muscles, equipment, custom)
					VALUES (?, ?, ?, ?, ?, ?, ?, 0);`,
				uuid.NewString(), e.Name, e.Image, e.BodyPart,
				e.PrimaryMuscles, e.SecondaryMuscles, e.Equipment,
			); err != nil {
				return fmt.Errorf("insert seed exercise [%s]: %w", e.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}

	span.SetAttributes(attribute.Int("seeded", len(seedExercises)))
	log.Infof("exercise catalog seeded with %d exercises", len(seedExercises))
	return nil
}
