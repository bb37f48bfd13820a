package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/liftlogapp/liftlog/internal/telemetry/tracing"
	"github.com/liftlogapp/liftlog/pkg"

	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=catalog_mocks_test.go -package=catalog_test

type catalogRepo interface {
	Add(ctx context.Context, exercise Exercise) (*Exercise, error)
	Search(ctx context.Context, params SearchParams) ([]Exercise, error)
	ListGroups(ctx context.Context) ([]string, error)
}

// AddExerciseRequest is the payload for creating a custom exercise.
// Every field except Name defaults to empty.
type AddExerciseRequest struct {
	Name             string `json:"name"`
	Image            string `json:"image"`
	BodyPart         string `json:"bodyPart"`
	PrimaryMuscles   string `json:"primaryMuscles"`
	SecondaryMuscles string `json:"secondaryMuscles"`
	Equipment        string `json:"equipment"`
}

type Handler struct {
	repo catalogRepo
}

func NewHandler(repo catalogRepo) *Handler {
	return &Handler{
		repo: repo,
	}
}

func (handler *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.catalog.search")
	defer span.End()

	params := SearchParams{
		Query: r.URL.Query().Get("q"),
		Group: r.URL.Query().Get("group"),
	}

	exercises, err := handler.repo.Search(ctx, params)
	if err != nil {
		log.Errorf("failed to search exercises [q: %s] [group: %s]: %s", params.Query, params.Group, err)
		http.Error(w, "failed to search exercises", http.StatusInternalServerError)
		return
	}

	exercisesJson, err := json.Marshal(exercises)
	if err != nil {
		log.Errorf("failed to marshal exercises: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, exercisesJson, http.StatusOK)
}

func (handler *Handler) HandleGroups(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.catalog.groups")
	defer span.End()

	groups, err := handler.repo.ListGroups(ctx)
	if err != nil {
		log.Errorf("failed to list exercise groups: %s", err)
		http.Error(w, "failed to list exercise groups", http.StatusInternalServerError)
		return
	}

	groupsJson, err := json.Marshal(groups)
	if err != nil {
		log.Errorf("failed to marshal exercise groups: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, groupsJson, http.StatusOK)
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.catalog.add")
	defer span.End()

	var req AddExerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("new exercise, unmarshal json params: %s", err)
		http.Error(w, "add exercise failed", http.StatusBadRequest)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		http.Error(w, "error, exercise name empty", http.StatusBadRequest)
		return
	}

	addedExercise, err := handler.repo.Add(ctx, Exercise{
		Name:             req.Name,
		Image:            req.Image,
		BodyPart:         req.BodyPart,
		PrimaryMuscles:   req.PrimaryMuscles,
		SecondaryMuscles: req.SecondaryMuscles,
		Equipment:        req.Equipment,
	})
	if err != nil {
		log.Errorf("failed to add new exercise [%s]: %s", req.Name, err)
		http.Error(w, "error, failed to add new exercise", http.StatusInternalServerError)
		return
	}

	addedExJson, err := json.Marshal(addedExercise)
	if err != nil {
		log.Errorf("failed to marshal new exercise: %s", err)
		http.Error(w, "error, failed to add new exercise", http.StatusInternalServerError)
		return
	}

	log.Debugf("new custom exercise added: %s", addedExJson)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, addedExJson, http.StatusCreated)
}
