package api

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/lesson-condenser/internal/lessons"
	"github.com/eugenenazirov/lesson-condenser/internal/planner"
	"github.com/eugenenazirov/lesson-condenser/internal/storage"
)

type controllableClock struct {
	mu  sync.RWMutex
	now time.Time
}

func newControllableClock(initial time.Time) *controllableClock {
	return &controllableClock{now: initial}
}

func (c *controllableClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

func (c *controllableClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// seedCatalog holds seven finished lessons followed by 3, 3, 1, 2, 3 and 4 minutes of work.
func seedCatalog() []lessons.Lesson {
	out := []lessons.Lesson{}
	for i := 1; i <= 7; i++ {
		out = append(out, lessons.Lesson{ID: "done", Title: "Finished", Minutes: 30})
	}
	for i, m := range []int{3, 3, 1, 2, 3, 4} {
		out = append(out, lessons.Lesson{ID: string(rune('a' + i)), Title: "Pending", Minutes: m})
	}
	return out
}

func setupTestRouter(t *testing.T) (http.Handler, *controllableClock) {
	t.Helper()

	store := storage.NewMemoryStorage()
	if err := store.SetLessons(seedCatalog()); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}
	clock := newControllableClock(time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC))

	handler := NewHandler(planner.New(), store, WithClock(clock.Now))
	logger := zaptest.NewLogger(t)
	router := NewRouter(handler, logger, WithLogging(false))

	return router, clock
}

func doJSON(t *testing.T, router http.Handler, method, target string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body []byte
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = data
	}

	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

type scheduleBody struct {
	AlreadyComplete int `json:"alreadyComplete"`
	TotalDays       int `json:"totalDays"`
	Remaining       int `json:"remaining"`
	TotalMinutes    int `json:"totalMinutes"`
	Average         int `json:"average"`
	Days            []struct {
		Day      int      `json:"day"`
		Minutes  int      `json:"minutes"`
		Duration string   `json:"duration"`
		Lessons  []string `json:"lessons"`
	} `json:"days"`
}

func TestRequestIDHelpers(t *testing.T) {
	ctx := contextWithRequestID(context.Background(), "abc")
	if got := requestIDFromContext(ctx); got != "abc" {
		t.Fatalf("expected abc, got %s", got)
	}
	resp := httptest.NewRecorder()
	writeInternalError(resp, assertError("boom"))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 status, got %d", resp.Code)
	}
}

type assertError string

func (a assertError) Error() string { return string(a) }

func TestHealthEndpoint(t *testing.T) {
	router, clock := setupTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body struct {
		Status    string    `json:"status"`
		Timestamp time.Time `json:"timestamp"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if body.Status != "ok" {
		t.Fatalf("expected status ok, got %s", body.Status)
	}
	if !body.Timestamp.Equal(clock.Now()) {
		t.Fatalf("expected timestamp %s, got %s", clock.Now(), body.Timestamp)
	}
}

func TestGetLessonsReturnsCatalog(t *testing.T) {
	router, clock := setupTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/lessons", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body struct {
		Lessons      []lessons.Lesson `json:"lessons"`
		TotalMinutes int              `json:"totalMinutes"`
		UpdatedAt    time.Time        `json:"updatedAt"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if !slices.Equal(body.Lessons, seedCatalog()) {
		t.Fatalf("unexpected catalog: %v", body.Lessons)
	}
	if body.TotalMinutes != 7*30+16 {
		t.Fatalf("expected total minutes %d, got %d", 7*30+16, body.TotalMinutes)
	}
	if !body.UpdatedAt.Equal(clock.Now()) {
		t.Fatalf("expected updatedAt %s, got %s", clock.Now(), body.UpdatedAt)
	}
}

func TestPutLessonsReplacesCatalog(t *testing.T) {
	router, clock := setupTestRouter(t)

	clock.Advance(time.Hour)

	payload := map[string]any{
		"lessons": []map[string]any{
			{"lesson": 1, "title": "Intro", "duration": "0:45"},
			{"lesson": "2", "title": "Deep dive", "duration": "1:30"},
		},
	}
	rec := doJSON(t, router, http.MethodPut, "/api/lessons", payload)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Lessons      []lessons.Lesson `json:"lessons"`
		TotalMinutes int              `json:"totalMinutes"`
		UpdatedAt    time.Time        `json:"updatedAt"`
		Message      string           `json:"message"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if body.Message == "" {
		t.Fatalf("expected success message, got empty string")
	}
	want := []lessons.Lesson{
		{ID: "1", Title: "Intro", Minutes: 45},
		{ID: "2", Title: "Deep dive", Minutes: 90},
	}
	if !slices.Equal(body.Lessons, want) {
		t.Fatalf("expected %v, got %v", want, body.Lessons)
	}
	if body.TotalMinutes != 135 {
		t.Fatalf("expected 135 minutes, got %d", body.TotalMinutes)
	}
	if !body.UpdatedAt.Equal(clock.Now()) {
		t.Fatalf("expected updatedAt %s, got %s", clock.Now(), body.UpdatedAt)
	}
}

func TestPutLessonsValidatesInput(t *testing.T) {
	router, _ := setupTestRouter(t)

	payload := map[string]any{
		"lessons": []map[string]any{
			{"lesson": "1", "title": "Intro", "duration": "45 minutes"},
		},
	}
	rec := doJSON(t, router, http.MethodPut, "/api/lessons", payload)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPut, "/api/lessons", bytes.NewReader([]byte("{")))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for malformed JSON, got %d", rec.Code)
	}
}

func TestScheduleEndpointBalancesRemainingLessons(t *testing.T) {
	router, _ := setupTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/schedule", map[string]any{"totalDays": 5})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body scheduleBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if body.AlreadyComplete != planner.DefaultAlreadyComplete {
		t.Fatalf("expected default already complete, got %d", body.AlreadyComplete)
	}
	if body.TotalDays != 5 || body.Remaining != 6 || body.TotalMinutes != 16 || body.Average != 3 {
		t.Fatalf("unexpected schedule header: %+v", body)
	}

	want := [][]string{{"a"}, {"b"}, {"c", "d"}, {"e"}, {"f"}}
	if len(body.Days) != len(want) {
		t.Fatalf("expected %d days, got %d", len(want), len(body.Days))
	}
	for i, day := range body.Days {
		if day.Day != i+1 {
			t.Fatalf("expected day number %d, got %d", i+1, day.Day)
		}
		if !slices.Equal(day.Lessons, want[i]) {
			t.Fatalf("day %d: expected %v, got %v", i+1, want[i], day.Lessons)
		}
	}
	if body.Days[4].Duration != "0h 4m" {
		t.Fatalf("unexpected duration label %q", body.Days[4].Duration)
	}
}

func TestScheduleEndpointUsesDefaultsForEmptyBody(t *testing.T) {
	store := storage.NewMemoryStorage()
	if err := store.SetLessons(seedCatalog()); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}
	handler := NewHandler(planner.New(), store, WithDefaults(planner.Request{AlreadyComplete: 0, TotalDays: 1}))
	router := NewRouter(handler, zaptest.NewLogger(t), WithLogging(false))

	rec := doJSON(t, router, http.MethodPost, "/api/schedule", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body scheduleBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(body.Days) != 1 || len(body.Days[0].Lessons) != 13 {
		t.Fatalf("expected a single day holding the whole catalog, got %+v", body.Days)
	}
}

func TestScheduleEndpointRejectsInvalidRequests(t *testing.T) {
	router, _ := setupTestRouter(t)

	cases := []map[string]any{
		{"totalDays": 0},
		{"totalDays": -3},
		{"alreadyComplete": -1},
	}
	for _, payload := range cases {
		rec := doJSON(t, router, http.MethodPost, "/api/schedule", payload)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400 for %v, got %d", payload, rec.Code)
		}
	}
}

func TestBalanceEndpoint(t *testing.T) {
	router, _ := setupTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/balance", map[string]any{
		"weights":     []int{0, 0, 0},
		"targetCount": 2,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body struct {
		Average int     `json:"average"`
		Groups  [][]int `json:"groups"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Average != 0 {
		t.Fatalf("expected average 0, got %d", body.Average)
	}
	if len(body.Groups) != 3 {
		t.Fatalf("expected one group per item, got %v", body.Groups)
	}
}

func TestBalanceEndpointRejectsInvalidInput(t *testing.T) {
	router, _ := setupTestRouter(t)

	cases := []map[string]any{
		{"weights": []int{1, 2}, "targetCount": 0},
		{"weights": []int{1, -2}, "targetCount": 2},
	}
	for _, payload := range cases {
		rec := doJSON(t, router, http.MethodPost, "/api/balance", payload)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400 for %v, got %d", payload, rec.Code)
		}
	}
}

func TestBalanceEndpointRejectsOverflowingWeights(t *testing.T) {
	router, _ := setupTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/balance", map[string]any{
		"weights":     []int{math.MaxInt, math.MaxInt, 5},
		"targetCount": 1,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rec.Code, rec.Body.String())
	}

	var body errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Details == "" {
		t.Fatalf("expected overflow details in response")
	}
}

func TestCorsPreflight(t *testing.T) {
	router, _ := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/schedule", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Fatalf("expected Access-Control-Allow-Origin header to be set")
	}
}

func TestRequestIDPropagation(t *testing.T) {
	router, _ := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "test-request-id")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "test-request-id" {
		t.Fatalf("expected X-Request-ID header to be echoed, got %s", got)
	}
}
