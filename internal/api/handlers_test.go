package api

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/workouttracker/internal/auth"
	"example.com/workouttracker/internal/domain"
	"example.com/workouttracker/internal/persistence/memory"
	"example.com/workouttracker/internal/platform/logger"
	"example.com/workouttracker/internal/stream"
)

type testServer struct {
	mux       *http.ServeMux
	notifier  *stream.Notifier
	exercises *domain.ExerciseService
	templates *domain.TemplateService
	sessions  *domain.SessionService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	notifier := stream.NewNotifier()
	store := memory.NewStore(notifier, logger.Nop())
	s := &testServer{
		mux:       http.NewServeMux(),
		notifier:  notifier,
		exercises: domain.NewExerciseService(memory.NewExerciseRepository(store)),
		templates: domain.NewTemplateService(memory.NewTemplateRepository(store)),
		sessions:  domain.NewSessionService(memory.NewSessionRepository(store)),
	}
	NewHandler(s.exercises, s.templates, s.sessions, logger.Nop()).RegisterRoutes(s.mux)
	return s
}

func withScopes(req *http.Request, scopes ...string) *http.Request {
	claims := &auth.Claims{Subject: "tester", Scopes: map[string]struct{}{}, ExpiresAt: time.Now().Add(time.Hour)}
	for _, scope := range scopes {
		claims.Scopes[scope] = struct{}{}
	}
	return req.WithContext(auth.WithClaims(req.Context(), claims))
}

func (s *testServer) do(t *testing.T, method, target, body string, scopes ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if len(scopes) == 0 {
		scopes = []string{auth.ScopeWorkoutsWrite}
	}
	rr := httptest.NewRecorder()
	s.mux.ServeHTTP(rr, withScopes(req, scopes...))
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func TestCreateAndGetExercise(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, http.MethodPost, "/v1/exercises",
		`{"name":"Bench Press","primary_muscles":["CHEST"],"equipment":["BARBELL","BENCH"],"is_custom":true}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[domain.Exercise](t, rr)
	require.Positive(t, created.ID)
	require.Equal(t, "tester", created.CreatedBy)

	rr = s.do(t, http.MethodGet, "/v1/exercises/"+itoa(created.ID), "", auth.ScopeWorkoutsRead)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, created, decode[domain.Exercise](t, rr))

	rr = s.do(t, http.MethodGet, "/v1/exercises/999", "", auth.ScopeWorkoutsRead)
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = s.do(t, http.MethodGet, "/v1/exercises/abc", "", auth.ScopeWorkoutsRead)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateExerciseValidationFailure(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, http.MethodPost, "/v1/exercises", `{"name":"  ","primary_muscles":["CHEST"]}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	body := decode[map[string]string](t, rr)
	require.Equal(t, "validation_failed", body["type"])
	require.Contains(t, body["detail"], "name")

	rr = s.do(t, http.MethodPost, "/v1/exercises", `{not json`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "invalid_request", decode[map[string]string](t, rr)["type"])
}

func TestCreateExerciseRejectsUnknownMuscle(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, http.MethodPost, "/v1/exercises", `{"name":"Neck curl","primary_muscles":["NECK"]}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	body := decode[map[string]string](t, rr)
	require.Equal(t, "validation_failed", body["type"])
	require.Contains(t, body["detail"], "primary_muscles[0]")
}

func TestExerciseEmptyListsRenderAsArrays(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, http.MethodPost, "/v1/exercises",
		`{"name":"Plank","primary_muscles":["CORE"],"secondary_muscles":[],"instructions":[],"equipment":[]}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[map[string]any](t, rr)

	rr = s.do(t, http.MethodGet, "/v1/exercises/"+strconv.FormatFloat(created["id"].(float64), 'f', 0, 64), "", auth.ScopeWorkoutsRead)
	require.Equal(t, http.StatusOK, rr.Code)
	stored := decode[map[string]any](t, rr)
	for _, field := range []string{"secondary_muscles", "instructions", "equipment"} {
		require.Equal(t, []any{}, stored[field], field)
	}
}

func TestExerciseScopes(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, http.MethodPost, "/v1/exercises", `{"name":"Row","primary_muscles":["BACK"]}`, auth.ScopeWorkoutsRead)
	require.Equal(t, http.StatusForbidden, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/exercises", nil)
	rr = httptest.NewRecorder()
	s.mux.ServeHTTP(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = s.do(t, http.MethodGet, "/v1/exercises", "", "other:scope")
	require.Equal(t, http.StatusForbidden, rr.Code)
}

func TestListExercisesFiltersAndSearches(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	for _, ex := range []domain.Exercise{
		{ID: 1, Name: "Bench Press", PrimaryMuscles: []domain.MuscleGroup{domain.MuscleChest}, Equipment: []domain.Equipment{domain.EquipmentBarbell}},
		{ID: 2, Name: "Squat", PrimaryMuscles: []domain.MuscleGroup{domain.MuscleLegs}, Equipment: []domain.Equipment{domain.EquipmentBarbell}},
		{ID: 3, Name: "Push Up", PrimaryMuscles: []domain.MuscleGroup{domain.MuscleChest}, IsHidden: true},
	} {
		_, err := s.exercises.CreateExercise(ctx, ex)
		require.NoError(t, err)
	}

	cases := []struct {
		target string
		want   []int64
	}{
		{target: "/v1/exercises", want: []int64{1, 2}},
		{target: "/v1/exercises?include_hidden=true", want: []int64{1, 3, 2}},
		{target: "/v1/exercises?query=squat", want: []int64{2}},
		{target: "/v1/exercises?muscle=legs", want: []int64{2}},
		{target: "/v1/exercises?equipment=BARBELL&query=bench", want: []int64{1}},
		{target: "/v1/exercises?muscle=CHEST,LEGS", want: []int64{}},
	}
	for _, tc := range cases {
		t.Run(tc.target, func(t *testing.T) {
			rr := s.do(t, http.MethodGet, tc.target, "", auth.ScopeWorkoutsRead)
			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
			resp := decode[ExerciseListResponse](t, rr)
			ids := make([]int64, 0, len(resp.Items))
			for _, ex := range resp.Items {
				ids = append(ids, ex.ID)
			}
			require.Equal(t, tc.want, ids)
		})
	}

	rr := s.do(t, http.MethodGet, "/v1/exercises?muscle=WINGS", "", auth.ScopeWorkoutsRead)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUpdateAndDeleteExercise(t *testing.T) {
	s := newTestServer(t)
	created, err := s.exercises.CreateExercise(context.Background(), domain.Exercise{Name: "Curl", PrimaryMuscles: []domain.MuscleGroup{domain.MuscleBiceps}})
	require.NoError(t, err)

	rr := s.do(t, http.MethodPut, "/v1/exercises/"+itoa(created.ID), `{"name":"Hammer Curl","primary_muscles":["BICEPS","FOREARMS"]}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Equal(t, "Hammer Curl", decode[domain.Exercise](t, rr).Name)

	rr = s.do(t, http.MethodPut, "/v1/exercises/424242", `{"name":"Ghost","primary_muscles":["BACK"]}`)
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = s.do(t, http.MethodDelete, "/v1/exercises/"+itoa(created.ID), "")
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = s.do(t, http.MethodGet, "/v1/exercises/"+itoa(created.ID), "")
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestTemplateLifecycle(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, http.MethodPost, "/v1/templates",
		`{"title":"Push Day","exercises":[{"exercise_id":2,"sets":3,"reps":10,"order_index":1},{"exercise_id":1,"sets":5,"reps":5,"order_index":0,"rest_seconds":120}]}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[domain.WorkoutTemplate](t, rr)
	require.NotEmpty(t, created.ID)

	rr = s.do(t, http.MethodGet, "/v1/templates/"+created.ID, "")
	require.Equal(t, http.StatusOK, rr.Code)
	stored := decode[domain.WorkoutTemplate](t, rr)
	require.Equal(t, int64(1), stored.Exercises[0].ExerciseID)
	require.Equal(t, 120, *stored.Exercises[0].RestSeconds)

	rr = s.do(t, http.MethodGet, "/v1/templates?query=push", "")
	require.Len(t, decode[TemplateListResponse](t, rr).Items, 1)

	rr = s.do(t, http.MethodPost, "/v1/templates/"+created.ID+"/hide", "")
	require.Equal(t, http.StatusNoContent, rr.Code)
	require.Empty(t, decode[TemplateListResponse](t, s.do(t, http.MethodGet, "/v1/templates", "")).Items)
	require.Len(t, decode[TemplateListResponse](t, s.do(t, http.MethodGet, "/v1/templates/hidden", "")).Items, 1)

	rr = s.do(t, http.MethodPost, "/v1/templates/"+created.ID+"/unhide", "")
	require.Equal(t, http.StatusNoContent, rr.Code)
	require.Len(t, decode[TemplateListResponse](t, s.do(t, http.MethodGet, "/v1/templates", "")).Items, 1)

	rr = s.do(t, http.MethodPost, "/v1/templates/missing/hide", "")
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = s.do(t, http.MethodDelete, "/v1/templates/"+created.ID, "")
	require.Equal(t, http.StatusNoContent, rr.Code)
	require.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/v1/templates/"+created.ID, "").Code)
}

func TestCreateTemplateRequiresExercises(t *testing.T) {
	s := newTestServer(t)
	rr := s.do(t, http.MethodPost, "/v1/templates", `{"title":"Empty","exercises":[]}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, decode[map[string]string](t, rr)["detail"], "exercises")
}

func TestSessionUnitsAndVolume(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, http.MethodPost, "/v1/sessions",
		`{"date":1700000000000,"duration_seconds":3600,"exercises":[{"exercise_id":1,"weight":50,"reps":10,"sets":3}]}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[SessionView](t, rr)
	require.Equal(t, domain.Kilograms, created.Unit)
	require.Equal(t, 1500.0, created.TotalVolume)

	rr = s.do(t, http.MethodGet, "/v1/sessions/"+created.ID+"?unit=lb", "")
	require.Equal(t, http.StatusOK, rr.Code)
	inPounds := decode[SessionView](t, rr)
	require.Equal(t, domain.Pounds, inPounds.Unit)
	require.Equal(t, 110.23, inPounds.Exercises[0].Weight)

	rr = s.do(t, http.MethodPost, "/v1/sessions?unit=lb",
		`{"date":1700000100000,"exercises":[{"exercise_id":1,"weight":220.5,"reps":5,"sets":1}]}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	stored, err := s.sessions.GetSession(context.Background(), decode[SessionView](t, rr).ID)
	require.NoError(t, err)
	require.InDelta(t, 100.0176, stored.Exercises[0].Weight, 0.0001)

	rr = s.do(t, http.MethodGet, "/v1/sessions", "")
	list := decode[SessionListResponse](t, rr)
	require.Len(t, list.Items, 2)
	require.Equal(t, int64(1700000100000), list.Items[0].Date)

	rr = s.do(t, http.MethodGet, "/v1/sessions?unit=stone", "")
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSessionWeightsInPoundsSurviveRoundTrips(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, http.MethodPost, "/v1/sessions?unit=lb",
		`{"date":1700000000000,"exercises":[{"exercise_id":1,"weight":225,"reps":5,"sets":3},{"exercise_id":2,"weight":135,"reps":8,"sets":3},{"exercise_id":3,"weight":2.5,"reps":12,"sets":2}]}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[SessionView](t, rr)

	path := "/v1/sessions/" + created.ID + "?unit=lb"
	for round := 0; round < 3; round++ {
		rr = s.do(t, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, rr.Code)
		view := decode[SessionView](t, rr)
		require.Equal(t, []float64{225, 135, 2.5}, []float64{view.Exercises[0].Weight, view.Exercises[1].Weight, view.Exercises[2].Weight})

		body, err := json.Marshal(view)
		require.NoError(t, err)
		rr = s.do(t, http.MethodPut, path, string(body))
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	}
}

func TestSessionValidationAndDelete(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, http.MethodPost, "/v1/sessions", `{"date":0}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, decode[map[string]string](t, rr)["detail"], "date")

	created, err := s.sessions.CreateSession(context.Background(), domain.WorkoutSession{Date: 1})
	require.NoError(t, err)

	rr = s.do(t, http.MethodPut, "/v1/sessions/"+created.ID, `{"date":2,"notes":"moved"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Equal(t, "moved", decode[SessionView](t, rr).Notes)

	require.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/v1/sessions/"+created.ID, "").Code)
	require.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/v1/sessions/"+created.ID, "").Code)
	require.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/v1/sessions/"+created.ID, "").Code)
}

// openStream connects to an SSE endpoint and returns the first snapshot. The connection stays open
// until the test ends.
func openStream[T any](t *testing.T, s *testServer, path string) T {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mux.ServeHTTP(w, withScopes(r, auth.ScopeWorkoutsRead))
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+path, nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	var data string
	for data == "" {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "data: ") {
			data = strings.TrimSpace(strings.TrimPrefix(line, "data: "))
		}
	}
	var snapshot T
	require.NoError(t, json.Unmarshal([]byte(data), &snapshot))
	return snapshot
}

func TestStreamSendsInitialSnapshot(t *testing.T) {
	s := newTestServer(t)
	_, err := s.exercises.CreateExercise(context.Background(), domain.Exercise{Name: "Deadlift", PrimaryMuscles: []domain.MuscleGroup{domain.MuscleBack}})
	require.NoError(t, err)

	snapshot := openStream[ExerciseListResponse](t, s, "/v1/exercises/stream")
	require.Len(t, snapshot.Items, 1)
	require.Equal(t, "Deadlift", snapshot.Items[0].Name)
	require.Equal(t, 1, s.notifier.Subscribers(stream.TopicExercises))
}

func TestSearchStreamHoldsOneSubscription(t *testing.T) {
	s := newTestServer(t)
	for _, name := range []string{"Deadlift", "Bench Press"} {
		_, err := s.exercises.CreateExercise(context.Background(), domain.Exercise{Name: name, PrimaryMuscles: []domain.MuscleGroup{domain.MuscleBack}})
		require.NoError(t, err)
	}

	snapshot := openStream[ExerciseListResponse](t, s, "/v1/exercises/stream?query=dead")
	require.Len(t, snapshot.Items, 1)
	require.Equal(t, "Deadlift", snapshot.Items[0].Name)
	require.Equal(t, 1, s.notifier.Subscribers(stream.TopicExercises))
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rr := httptest.NewRecorder()
	s.mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rr.Code)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
