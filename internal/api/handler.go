package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/eugenenazirov/lesson-condenser/internal/balancer"
	"github.com/eugenenazirov/lesson-condenser/internal/lessons"
	"github.com/eugenenazirov/lesson-condenser/internal/planner"
	"github.com/eugenenazirov/lesson-condenser/internal/report"
	"github.com/eugenenazirov/lesson-condenser/internal/storage"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// Handler wires planner and storage dependencies into HTTP handlers.
type Handler struct {
	planner  planner.Planner
	storage  storage.Storage
	defaults planner.Request

	clock func() time.Time

	mu               sync.RWMutex
	lessonsUpdatedAt time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithDefaults sets the request used for fields a schedule request omits.
func WithDefaults(req planner.Request) HandlerOption {
	return func(h *Handler) {
		h.defaults = req
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(p planner.Planner, store storage.Storage, opts ...HandlerOption) *Handler {
	h := &Handler{
		planner:  p,
		storage:  store,
		defaults: planner.DefaultRequest(),
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.lessonsUpdatedAt = h.clock()
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetLessons(w http.ResponseWriter, r *http.Request) {
	_ = r
	list, err := h.storage.GetLessons()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := lessonsResponse{
		Lessons:      list,
		TotalMinutes: lessons.TotalMinutes(list),
		UpdatedAt:    h.currentLessonsUpdatedAt(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePutLessons(w http.ResponseWriter, r *http.Request) {
	var req lessonsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	list, err := lessons.FromRecords(req.Lessons)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid lessons", err.Error(), "durations use H:MM, e.g. 1:05")
		return
	}

	if err := h.storage.SetLessons(list); err != nil {
		if errors.Is(err, storage.ErrInvalidLessons) {
			writeError(w, http.StatusBadRequest, "Invalid lessons", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}

	h.markLessonsUpdated()

	stored, err := h.storage.GetLessons()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := lessonsResponse{
		Lessons:      stored,
		TotalMinutes: lessons.TotalMinutes(stored),
		UpdatedAt:    h.currentLessonsUpdatedAt(),
		Message:      "Lessons updated successfully",
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	planReq := h.defaults
	if req.AlreadyComplete != nil {
		planReq.AlreadyComplete = *req.AlreadyComplete
	}
	if req.TotalDays != nil {
		planReq.TotalDays = *req.TotalDays
	}

	catalog, err := h.storage.GetLessons()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	start := time.Now()
	schedule, planErr := h.planner.Plan(catalog, planReq)
	elapsed := time.Since(start)

	if planErr != nil {
		switch {
		case errors.Is(planErr, planner.ErrInvalidAlreadyComplete):
			writeError(w, http.StatusBadRequest, "Invalid request", planErr.Error())
		case errors.Is(planErr, balancer.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "Invalid request", planErr.Error())
		default:
			writeInternalError(w, planErr)
		}
		return
	}

	days := make([]dayResponse, len(schedule.Days))
	for i, day := range schedule.Days {
		days[i] = dayResponse{
			Day:      day.Number,
			Minutes:  day.Minutes,
			Duration: report.FormatMinutes(day.Minutes),
			Lessons:  lessons.IDs(day.Lessons),
		}
	}

	resp := scheduleResponse{
		AlreadyComplete:   schedule.AlreadyComplete,
		TotalDays:         schedule.TotalDays,
		Remaining:         schedule.Remaining,
		TotalMinutes:      schedule.TotalMinutes,
		Average:           schedule.Average,
		Days:              days,
		CalculationTimeMs: elapsed.Milliseconds(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	var req balanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	for _, weight := range req.Weights {
		if weight < 0 {
			writeError(w, http.StatusBadRequest, "Invalid weights", "weights must be non-negative integers")
			return
		}
	}

	groups, average, err := balancer.BalanceWithAverage(req.Weights, func(weight int) int { return weight }, req.TargetCount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, balanceResponse{
		Average: average,
		Groups:  groups,
	})
}

func (h *Handler) currentLessonsUpdatedAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lessonsUpdatedAt
}

func (h *Handler) markLessonsUpdated() {
	h.mu.Lock()
	h.lessonsUpdatedAt = h.clock()
	h.mu.Unlock()
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type lessonsRequest struct {
	Lessons []lessons.Record `json:"lessons"`
}

type lessonsResponse struct {
	Lessons      []lessons.Lesson `json:"lessons"`
	TotalMinutes int              `json:"totalMinutes"`
	UpdatedAt    time.Time        `json:"updatedAt"`
	Message      string           `json:"message,omitempty"`
}

type scheduleRequest struct {
	AlreadyComplete *int `json:"alreadyComplete"`
	TotalDays       *int `json:"totalDays"`
}

type dayResponse struct {
	Day      int      `json:"day"`
	Minutes  int      `json:"minutes"`
	Duration string   `json:"duration"`
	Lessons  []string `json:"lessons"`
}

type scheduleResponse struct {
	AlreadyComplete   int           `json:"alreadyComplete"`
	TotalDays         int           `json:"totalDays"`
	Remaining         int           `json:"remaining"`
	TotalMinutes      int           `json:"totalMinutes"`
	Average           int           `json:"average"`
	Days              []dayResponse `json:"days"`
	CalculationTimeMs int64         `json:"calculationTimeMs"`
}

type balanceRequest struct {
	Weights     []int `json:"weights"`
	TargetCount int   `json:"targetCount"`
}

type balanceResponse struct {
	Average int     `json:"average"`
	Groups  [][]int `json:"groups"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
