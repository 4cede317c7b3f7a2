package leavehandler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"timekeep/internal/domain/leave"
	"timekeep/internal/platform/jobs"
	"timekeep/internal/platform/metrics"
	"timekeep/internal/transport/http/api"
	"timekeep/internal/transport/http/middleware"
	"timekeep/internal/transport/http/shared"
)

type Handler struct {
	Service *leave.Service
	Jobs    *jobs.Service
	Metrics *metrics.Collector
}

func NewHandler(service *leave.Service, jobsSvc *jobs.Service, collector *metrics.Collector) *Handler {
	return &Handler{Service: service, Jobs: jobsSvc, Metrics: collector}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leave", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/day-off", h.handleDayOff)
		r.Post("/emergency", h.handleEmergency)
		r.Post("/sil", h.handleSIL)
		r.With(middleware.RequireAdmin).Post("/sil/evaluate/{employeeID}", h.handleEvaluateSIL)
		r.With(middleware.RequireAdmin).Post("/sil/sweep", h.handleSweep)
	})
}

type dayOffRequest struct {
	EmployeeID string   `json:"employeeId"`
	Dates      []string `json:"dates"`
}

func (h *Handler) handleDayOff(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload dayOffRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "employee id is required")
	if len(payload.Dates) == 0 {
		v.Add("dates", "at least one date is required")
	}
	if v.Reject(w, reqID) {
		return
	}

	dates, err := shared.ParseDates(payload.Dates, h.Service.Clock.Location())
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_date", "dates must be in YYYY-MM-DD format", reqID)
		return
	}

	result, err := h.Service.RequestDayOff(r.Context(), payload.EmployeeID, dates)
	if err != nil {
		status, code := leaveErrorStatus(err)
		api.Fail(w, status, code, err.Error(), reqID)
		return
	}
	api.Created(w, result, reqID)
}

type emergencyRequest struct {
	EmployeeID string `json:"employeeId"`
}

func (h *Handler) handleEmergency(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload emergencyRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if payload.EmployeeID == "" {
		api.Fail(w, http.StatusBadRequest, "missing_employee", "employee id is required", reqID)
		return
	}

	result, err := h.Service.RequestEmergency(r.Context(), payload.EmployeeID)
	if err != nil {
		status, code := leaveErrorStatus(err)
		api.Fail(w, status, code, err.Error(), reqID)
		return
	}
	api.Created(w, result, reqID)
}

type silRequest struct {
	EmployeeID string `json:"employeeId"`
	Start      string `json:"start"`
}

func (h *Handler) handleSIL(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload silRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "employee id is required")
	start, _ := v.Date("start", payload.Start, h.Service.Clock.Location())
	if v.Reject(w, reqID) {
		return
	}

	result, err := h.Service.RequestSIL(r.Context(), payload.EmployeeID, start)
	if err != nil {
		status, code := leaveErrorStatus(err)
		api.Fail(w, status, code, err.Error(), reqID)
		return
	}
	api.Created(w, result, reqID)
}

func (h *Handler) handleEvaluateSIL(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	granted, err := h.Service.EvaluateSILGrant(r.Context(), employeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "sil_evaluation_failed", "sil evaluation failed", reqID)
		return
	}
	if granted {
		h.Metrics.SILGrant()
	}
	api.Success(w, map[string]bool{"granted": granted}, reqID)
}

func (h *Handler) handleSweep(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	summary, err := h.Jobs.RunNow(r.Context(), jobs.JobSILSweep, func(ctx context.Context) (any, error) {
		return h.Service.RunSILSweep(ctx)
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "sil_sweep_failed", "sil sweep failed", reqID)
		return
	}
	api.Success(w, summary, reqID)
}

func leaveErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, leave.ErrPastDate):
		return http.StatusUnprocessableEntity, "past_date"
	case errors.Is(err, leave.ErrDayUnavailable):
		return http.StatusUnprocessableEntity, "day_unavailable"
	case errors.Is(err, leave.ErrMonthlyCapExceeded):
		return http.StatusUnprocessableEntity, "monthly_cap_exceeded"
	case errors.Is(err, leave.ErrInsufficientBalance):
		return http.StatusUnprocessableEntity, "insufficient_balance"
	case errors.Is(err, leave.ErrNotEligible):
		return http.StatusUnprocessableEntity, "not_eligible"
	case errors.Is(err, leave.ErrAlreadyRequestedToday):
		return http.StatusUnprocessableEntity, "already_requested_today"
	case errors.Is(err, leave.ErrConcurrentRequest):
		return http.StatusConflict, "concurrent_request"
	}
	return http.StatusInternalServerError, "leave_request_failed"
}
