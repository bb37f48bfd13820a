package workouts_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/liftlogapp/liftlog/internal/telemetry/metrics"
	"github.com/liftlogapp/liftlog/internal/workouts"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func testHandlerSetup(t *testing.T) (*MockworkoutsRepo, *mux.Router) {
	t.Helper()

	ctrl := gomock.NewController(t)
	repoMock := NewMockworkoutsRepo(ctrl)
	router := mux.NewRouter()
	workouts.NewHandler(repoMock, metrics.NewTestManager()).SetupRoutes(router)

	return repoMock, router
}

func TestHandler_HandleRecord(t *testing.T) {
	repoMock, router := testHandlerSetup(t)

	reqBody := []byte(`{
		"routineId": "r1",
		"startedAt": "2026-03-14T18:00:00Z",
		"finishedAt": "2026-03-14T18:42:00Z",
		"durationSeconds": 2520,
		"items": [
			{
				"exerciseId": "ex1",
				"name": "Bench Press",
				"bodyPart": "chest",
				"sets": [{"reps": 5, "peso": 80, "done": true}]
			}
		]
	}`)
	req, err := http.NewRequest("POST", "/workouts", bytes.NewReader(reqBody))
	require.NoError(t, err)

	repoMock.EXPECT().
		Record(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, session workouts.WorkoutSession) (string, error) {
			assert.Equal(t, "r1", session.RoutineID)
			assert.Equal(t, 2520, session.DurationSeconds)
			require.Len(t, session.Items, 1)
			require.Len(t, session.Items[0].Sets, 1)
			set := session.Items[0].Sets[0]
			require.NotNil(t, set.Weight)
			assert.Equal(t, 80.0, *set.Weight)
			assert.True(t, set.Done)
			return "sess-1", nil
		}).Times(1)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp workouts.RecordWorkoutResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "sess-1", resp.ID)
}

func TestHandler_HandleRecord_BadPayload(t *testing.T) {
	_, router := testHandlerSetup(t)

	rec := httptest.NewRecorder()
	req, err := http.NewRequest("POST", "/workouts", bytes.NewReader([]byte(`{not json`)))
	require.NoError(t, err)
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_HandleRecords(t *testing.T) {
	repoMock, router := testHandlerSetup(t)

	weight := 120.0
	reps := 5
	repoMock.EXPECT().
		PersonalRecords(gomock.Any()).
		Return([]workouts.PersonalRecord{
			{ExerciseID: "ex1", Name: "Deadlift", BodyPart: "back", PRWeight: &weight, RepsAtPR: &reps},
			{ExerciseID: "ex2", Name: "Plank", BodyPart: "core"},
		}, nil).Times(1)

	rec := httptest.NewRecorder()
	req, err := http.NewRequest("GET", "/marks", nil)
	require.NoError(t, err)
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var records []workouts.PersonalRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "Deadlift", records[0].Name)
	require.NotNil(t, records[0].PRWeight)
	assert.Equal(t, 120.0, *records[0].PRWeight)
	assert.Nil(t, records[1].PRWeight)
}
