package routines

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/liftlogapp/liftlog/internal/telemetry/metrics"
	"github.com/liftlogapp/liftlog/internal/telemetry/tracing"
	"github.com/liftlogapp/liftlog/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=routines_mocks_test.go -package=routines_test

type routinesRepo interface {
	Create(ctx context.Context, name string) (*Routine, error)
	Get(ctx context.Context, id string) (*Routine, error)
	List(ctx context.Context) ([]Summary, error)
	Update(ctx context.Context, id, name string, setUpdates []SetUpdate) error
	AddExercise(ctx context.Context, routineID, exerciseID string) (string, error)
	RemoveExercise(ctx context.Context, routineID, routineExerciseID string) error
	AddSet(ctx context.Context, routineID, routineExerciseID string, reps *int, weight *float64) (string, error)
	RemoveSet(ctx context.Context, routineID, routineExerciseID, setID string) error
}

type CreateRoutineRequest struct {
	Name string `json:"name"`
}

// UpdateRoutineRequest carries an optional rename plus set value edits,
// grouped per routine exercise the way the client holds them.
type UpdateRoutineRequest struct {
	Name      string                  `json:"name"`
	Exercises []UpdateExercisePayload `json:"exercises"`
}

type UpdateExercisePayload struct {
	ID   string             `json:"id"`
	Sets []UpdateSetPayload `json:"sets"`
}

type UpdateSetPayload struct {
	ID     string   `json:"id"`
	Reps   *int     `json:"reps"`
	Weight *float64 `json:"peso"`
}

type AddExerciseToRoutineRequest struct {
	ExerciseID string `json:"exerciseId"`
}

type AddSetRequest struct {
	Reps   *int     `json:"reps"`
	Weight *float64 `json:"peso"`
}

type AddSetResponse struct {
	ID string `json:"id"`
}

type OkResponse struct {
	Ok bool `json:"ok"`
}

type Handler struct {
	repo    routinesRepo
	metrics *metrics.Manager
}

func NewHandler(repo routinesRepo, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:    repo,
		metrics: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/routines", handler.HandleList).Methods("GET", "OPTIONS").Name("list-routines")
	router.HandleFunc("/routines", handler.HandleCreate).Methods("POST", "OPTIONS").Name("new-routine")
	router.HandleFunc("/routines/{id}", handler.HandleGet).Methods("GET", "OPTIONS").Name("get-routine")
	router.HandleFunc("/routines/{id}", handler.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-routine")
	router.HandleFunc("/routines/{id}/exercises", handler.HandleAddExercise).Methods("POST", "OPTIONS").Name("add-routine-exercise")
	router.HandleFunc("/routines/{id}/exercises/{rexId}", handler.HandleRemoveExercise).Methods("DELETE", "OPTIONS").Name("remove-routine-exercise")
	router.HandleFunc("/routines/{id}/exercises/{rexId}/sets", handler.HandleAddSet).Methods("POST", "OPTIONS").Name("add-routine-set")
	router.HandleFunc("/routines/{id}/exercises/{rexId}/sets/{setId}", handler.HandleRemoveSet).Methods("DELETE", "OPTIONS").Name("remove-routine-set")
}

func (handler *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.create")
	defer span.End()

	// body is optional: no payload means default name
	var req CreateRoutineRequest
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Tracef("new routine, unmarshal json params: %s", err)
		}
	}

	routine, err := handler.repo.Create(ctx, strings.TrimSpace(req.Name))
	if err != nil {
		log.Errorf("failed to create routine: %s", err)
		http.Error(w, "error, failed to create routine", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterRoutineMutations.Inc()
	handler.writeRoutine(w, routine, http.StatusCreated)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.list")
	defer span.End()

	summaries, err := handler.repo.List(ctx)
	if err != nil {
		log.Errorf("list routines error: %s", err)
		http.Error(w, "failed to get routines", http.StatusInternalServerError)
		return
	}

	summariesJson, err := json.Marshal(summaries)
	if err != nil {
		log.Errorf("marshal routines error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, summariesJson, http.StatusOK)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.get")
	defer span.End()

	id := mux.Vars(r)["id"]
	if id == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	routine, err := handler.repo.Get(ctx, id)
	if errors.Is(err, ErrRoutineNotFound) {
		http.Error(w, "routine not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("failed to get routine %s: %s", id, err)
		http.Error(w, "failed to get routine", http.StatusInternalServerError)
		return
	}

	handler.writeRoutine(w, routine, http.StatusOK)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.update")
	defer span.End()

	id := mux.Vars(r)["id"]
	if id == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	var req UpdateRoutineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("update routine, unmarshal json params: %s", err)
		http.Error(w, "update routine failed", http.StatusBadRequest)
		return
	}

	var setUpdates []SetUpdate
	for _, ex := range req.Exercises {
		for _, set := range ex.Sets {
			setUpdates = append(setUpdates, SetUpdate{
				SetID:  set.ID,
				Reps:   set.Reps,
				Weight: set.Weight,
			})
		}
	}

	if err := handler.repo.Update(ctx, id, strings.TrimSpace(req.Name), setUpdates); err != nil {
		log.Errorf("failed to update routine %s: %s", id, err)
		http.Error(w, "error, failed to update routine", http.StatusInternalServerError)
		return
	}

	routine, err := handler.repo.Get(ctx, id)
	if errors.Is(err, ErrRoutineNotFound) {
		http.Error(w, "routine not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("failed to get routine %s after update: %s", id, err)
		http.Error(w, "failed to get routine", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterRoutineMutations.Inc()
	handler.writeRoutine(w, routine, http.StatusOK)
}

func (handler *Handler) HandleAddExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.addexercise")
	defer span.End()

	id := mux.Vars(r)["id"]
	if id == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	var req AddExerciseToRoutineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("add exercise to routine, unmarshal json params: %s", err)
		http.Error(w, "add exercise failed", http.StatusBadRequest)
		return
	}

	if req.ExerciseID == "" {
		http.Error(w, "error, exercise id empty", http.StatusBadRequest)
		return
	}

	if _, err := handler.repo.AddExercise(ctx, id, req.ExerciseID); err != nil {
		log.Errorf("failed to add exercise %s to routine %s: %s", req.ExerciseID, id, err)
		http.Error(w, "error, failed to add exercise", http.StatusInternalServerError)
		return
	}

	routine, err := handler.repo.Get(ctx, id)
	if errors.Is(err, ErrRoutineNotFound) {
		http.Error(w, "routine not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("failed to get routine %s after adding exercise: %s", id, err)
		http.Error(w, "failed to get routine", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterRoutineMutations.Inc()
	handler.writeRoutine(w, routine, http.StatusOK)
}

func (handler *Handler) HandleRemoveExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.removeexercise")
	defer span.End()

	vars := mux.Vars(r)
	id, rexID := vars["id"], vars["rexId"]
	if id == "" || rexID == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	if err := handler.repo.RemoveExercise(ctx, id, rexID); err != nil {
		log.Errorf("failed to remove exercise %s from routine %s: %s", rexID, id, err)
		http.Error(w, "error, failed to remove exercise", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterRoutineMutations.Inc()
	handler.writeOk(w)
}

func (handler *Handler) HandleAddSet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.addset")
	defer span.End()

	vars := mux.Vars(r)
	id, rexID := vars["id"], vars["rexId"]
	if id == "" || rexID == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	// both reps and weight are optional: a set starts out empty
	var req AddSetRequest
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Tracef("add set, unmarshal json params: %s", err)
		}
	}

	setID, err := handler.repo.AddSet(ctx, id, rexID, req.Reps, req.Weight)
	if err != nil {
		log.Errorf("failed to add set to routine %s: %s", id, err)
		http.Error(w, "error, failed to add set", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(AddSetResponse{ID: setID})
	if err != nil {
		log.Errorf("failed to marshal add set response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterRoutineMutations.Inc()
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusCreated)
}

func (handler *Handler) HandleRemoveSet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.removeset")
	defer span.End()

	vars := mux.Vars(r)
	id, rexID, setID := vars["id"], vars["rexId"], vars["setId"]
	if id == "" || rexID == "" || setID == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	if err := handler.repo.RemoveSet(ctx, id, rexID, setID); err != nil {
		log.Errorf("failed to remove set %s from routine %s: %s", setID, id, err)
		http.Error(w, "error, failed to remove set", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterRoutineMutations.Inc()
	handler.writeOk(w)
}

func (handler *Handler) writeRoutine(w http.ResponseWriter, routine *Routine, statusCode int) {
	routineJson, err := json.Marshal(routine)
	if err != nil {
		log.Errorf("failed to marshal routine: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, routineJson, statusCode)
}

func (handler *Handler) writeOk(w http.ResponseWriter) {
	okJson, err := json.Marshal(OkResponse{Ok: true})
	if err != nil {
		log.Errorf("failed to marshal ok response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteJSONResponseOK(w, string(okJson))
}
