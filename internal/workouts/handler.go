package workouts

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/liftlogapp/liftlog/internal/telemetry/metrics"
	"github.com/liftlogapp/liftlog/internal/telemetry/tracing"
	"github.com/liftlogapp/liftlog/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=workouts_mocks_test.go -package=workouts_test

type workoutsRepo interface {
	Record(ctx context.Context, session WorkoutSession) (string, error)
	PersonalRecords(ctx context.Context) ([]PersonalRecord, error)
}

type RecordWorkoutResponse struct {
	ID string `json:"id"`
}

type Handler struct {
	repo    workoutsRepo
	metrics *metrics.Manager
}

func NewHandler(repo workoutsRepo, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:    repo,
		metrics: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/workouts", handler.HandleRecord).Methods("POST", "OPTIONS").Name("record-workout")
	router.HandleFunc("/marks", handler.HandleRecords).Methods("GET", "OPTIONS").Name("personal-records")
}

// HandleRecord persists a finished session. The payload is taken as a
// freeform fact about what happened: the routine reference and set
// values are not checked against any current routine state.
func (handler *Handler) HandleRecord(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.record")
	defer span.End()

	var session WorkoutSession
	if err := json.NewDecoder(r.Body).Decode(&session); err != nil {
		log.Tracef("record workout, unmarshal json params: %s", err)
		http.Error(w, "record workout failed", http.StatusBadRequest)
		return
	}

	sessionID, err := handler.repo.Record(ctx, session)
	if err != nil {
		log.Errorf("failed to record workout: %s", err)
		http.Error(w, "error, failed to record workout", http.StatusInternalServerError)
		return
	}

	log.Debugf("workout recorded: %s, %d items", sessionID, len(session.Items))
	handler.metrics.CounterWorkoutsRecorded.Inc()

	respJson, err := json.Marshal(RecordWorkoutResponse{ID: sessionID})
	if err != nil {
		log.Errorf("failed to marshal record workout response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusCreated)
}

func (handler *Handler) HandleRecords(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.records")
	defer span.End()

	records, err := handler.repo.PersonalRecords(ctx)
	if err != nil {
		log.Errorf("get personal records error: %s", err)
		http.Error(w, "failed to get personal records", http.StatusInternalServerError)
		return
	}

	recordsJson, err := json.Marshal(records)
	if err != nil {
		log.Errorf("marshal personal records error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, recordsJson, http.StatusOK)
}
