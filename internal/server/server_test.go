package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"tutorfeed/internal/feedback"
	"tutorfeed/internal/llm"
	"tutorfeed/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, mock *llm.MockProvider) (*Server, *store.Store) {
	t.Helper()
	st, err := store.Open("file:" + t.TempDir() + "/test.db")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	var provider llm.Provider = mock
	if mock == nil {
		provider = llm.NewMockProvider()
	}
	svc := feedback.NewService(provider, feedback.DefaultConfig())
	return New(st, svc), st
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var decoded map[string]any
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("%s %s: invalid JSON response %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w, decoded
}

func createStudent(t *testing.T, router *gin.Engine, name, grade string) string {
	t.Helper()
	w, body := doJSON(t, router, http.MethodPost, "/api/students",
		fmt.Sprintf(`{"name": %q, "grade": %q}`, name, grade))
	if w.Code != http.StatusCreated {
		t.Fatalf("create student: status %d: %s", w.Code, w.Body.String())
	}
	id, _ := body["id"].(string)
	if id == "" {
		t.Fatal("create student: missing id")
	}
	return id
}

func recordSession(t *testing.T, router *gin.Engine, studentID, date string, attitude, understanding, homework, qa int) {
	t.Helper()
	payload := fmt.Sprintf(
		`{"date": %q, "attitude": %d, "understanding": %d, "homework": %d, "qa": %d, "progress": "Equations"}`,
		date, attitude, understanding, homework, qa)
	w, _ := doJSON(t, router, http.MethodPost, "/api/students/"+studentID+"/sessions", payload)
	if w.Code != http.StatusCreated {
		t.Fatalf("record session: status %d: %s", w.Code, w.Body.String())
	}
}

func TestCreateAndListStudents(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	router := srv.Router()

	id := createStudent(t, router, "Jimin Park", "Middle 2")

	w, body := doJSON(t, router, http.MethodGet, "/api/students", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list: status %d", w.Code)
	}
	students, _ := body["students"].([]any)
	if len(students) != 1 {
		t.Fatalf("expected 1 student, got %d", len(students))
	}
	first, _ := students[0].(map[string]any)
	if first["id"] != id || first["name"] != "Jimin Park" {
		t.Errorf("unexpected student row: %v", first)
	}
}

func TestCreateStudentValidation(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	router := srv.Router()

	w, _ := doJSON(t, router, http.MethodPost, "/api/students", `{"name": "No Grade"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing grade, got %d", w.Code)
	}
}

func TestRecordSessionValidation(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	router := srv.Router()
	id := createStudent(t, router, "Jimin Park", "Middle 2")

	cases := []struct {
		name string
		body string
	}{
		{"bad date", `{"date": "03/02/2026", "attitude": 4, "understanding": 3, "homework": 4, "qa": 3}`},
		{"attitude out of range", `{"date": "2026-03-02", "attitude": 6, "understanding": 3, "homework": 4, "qa": 3}`},
		{"homework not sentinel", `{"date": "2026-03-02", "attitude": 4, "understanding": 3, "homework": 42, "qa": 3}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, _ := doJSON(t, router, http.MethodPost, "/api/students/"+id+"/sessions", tc.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}

	// The no-assignment sentinel is accepted.
	recordSession(t, router, id, "2026-03-02", 4, 3, feedback.ScoreNotApplicable, 3)
}

func TestStudentNotFound(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	router := srv.Router()

	for _, path := range []string{
		"/api/students/missing",
		"/api/students/missing/trend",
		"/api/students/missing/feedbacks",
	} {
		w, _ := doJSON(t, router, http.MethodGet, path, "")
		if w.Code != http.StatusNotFound {
			t.Errorf("GET %s: expected 404, got %d", path, w.Code)
		}
	}
}

func TestTrend(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	router := srv.Router()
	id := createStudent(t, router, "Jimin Park", "Middle 2")

	// One session is not enough for a comparison.
	recordSession(t, router, id, "2026-03-02", 3, 3, 3, 3)
	w, _ := doJSON(t, router, http.MethodGet, "/api/students/"+id+"/trend", "")
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 with one session, got %d", w.Code)
	}

	recordSession(t, router, id, "2026-03-09", 5, 2, feedback.ScoreNotApplicable, 3)
	w, body := doJSON(t, router, http.MethodGet, "/api/students/"+id+"/trend", "")
	if w.Code != http.StatusOK {
		t.Fatalf("trend: status %d: %s", w.Code, w.Body.String())
	}

	metrics, _ := body["metrics"].(map[string]any)
	attitude, _ := metrics["attitude"].(map[string]any)
	if attitude["direction"] != "▲" || attitude["change"] != float64(2) {
		t.Errorf("attitude trend = %v", attitude)
	}
	understanding, _ := metrics["understanding"].(map[string]any)
	if understanding["direction"] != "▼" {
		t.Errorf("understanding trend = %v", understanding)
	}
	homework, _ := metrics["homework"].(map[string]any)
	if _, ok := homework["error"]; !ok {
		t.Errorf("expected homework to carry an error for the sentinel, got %v", homework)
	}
	qa, _ := metrics["qa"].(map[string]any)
	if qa["direction"] != "●" {
		t.Errorf("qa trend = %v", qa)
	}
}

func TestGenerateFeedback(t *testing.T) {
	report := "Word problems still need work." +
		feedback.SectionDelimiter +
		"Jimin stayed focused and engaged." +
		feedback.SectionDelimiter +
		"A strong week overall with clear progress."
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(report)})

	srv, st := newTestServer(t, mock)
	router := srv.Router()
	id := createStudent(t, router, "Jimin Park", "Middle 2")
	recordSession(t, router, id, "2026-03-02", 3, 3, 3, 3)
	recordSession(t, router, id, "2026-03-09", 4, 4, 4, 4)

	w, body := doJSON(t, router, http.MethodPost, "/api/students/"+id+"/feedback", "")
	if w.Code != http.StatusOK {
		t.Fatalf("generate: status %d: %s", w.Code, w.Body.String())
	}
	if body["improvement"] != "Word problems still need work." {
		t.Errorf("improvement = %q", body["improvement"])
	}
	if body["degraded"] != false {
		t.Errorf("degraded = %v", body["degraded"])
	}
	if len(mock.Calls) != 1 {
		t.Fatalf("expected 1 backend call, got %d", len(mock.Calls))
	}

	// The saved report is visible afterwards.
	w, body = doJSON(t, router, http.MethodGet, "/api/students/"+id+"/feedbacks", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list feedbacks: status %d", w.Code)
	}
	feedbacks, _ := body["feedbacks"].([]any)
	if len(feedbacks) != 1 {
		t.Fatalf("expected 1 stored feedback, got %d", len(feedbacks))
	}

	// Double-check through the store directly.
	list, err := st.Feedbacks().ListByStudent(t.Context(), id)
	if err != nil {
		t.Fatalf("store list: %v", err)
	}
	if len(list) != 1 || list[0].Overall != "A strong week overall with clear progress." {
		t.Errorf("stored feedback = %+v", list)
	}
}

func TestGenerateFeedbackWithoutSessions(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	router := srv.Router()
	id := createStudent(t, router, "Jimin Park", "Middle 2")

	w, _ := doJSON(t, router, http.MethodPost, "/api/students/"+id+"/feedback", "")
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 without sessions, got %d", w.Code)
	}
}

func TestGenerateFeedbackBackendFailure(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{}})
	srv, _ := newTestServer(t, mock)
	router := srv.Router()
	id := createStudent(t, router, "Jimin Park", "Middle 2")
	recordSession(t, router, id, "2026-03-02", 3, 3, 3, 3)

	w, body := doJSON(t, router, http.MethodPost, "/api/students/"+id+"/feedback", "")
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
	msg, _ := body["error"].(string)
	if !strings.Contains(msg, "feedback generation failed") {
		t.Errorf("error message = %q", msg)
	}
}

func TestGenerateFeedbackDegraded(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage("no sections here at all")})
	srv, _ := newTestServer(t, mock)
	router := srv.Router()
	id := createStudent(t, router, "Jimin Park", "Middle 2")
	recordSession(t, router, id, "2026-03-02", 3, 3, 3, 3)

	w, body := doJSON(t, router, http.MethodPost, "/api/students/"+id+"/feedback", "")
	if w.Code != http.StatusOK {
		t.Fatalf("generate: status %d: %s", w.Code, w.Body.String())
	}
	if body["degraded"] != true {
		t.Errorf("expected degraded response, got %v", body)
	}
	if body["overall"] != "no sections here at all" {
		t.Errorf("degraded overall should carry the raw text, got %q", body["overall"])
	}
}
