package timeclockhandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"timekeep/internal/domain/employee"
	"timekeep/internal/domain/timeclock"
	"timekeep/internal/platform/metrics"
	"timekeep/internal/transport/http/api"
	"timekeep/internal/transport/http/middleware"
)

type Handler struct {
	Service   *timeclock.Service
	Employees *employee.Store
	Metrics   *metrics.Collector
}

func NewHandler(service *timeclock.Service, employees *employee.Store, collector *metrics.Collector) *Handler {
	return &Handler{Service: service, Employees: employees, Metrics: collector}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	// the kiosk authenticates by badge token, not by user session
	r.Post("/timeclock/scan", h.handleScan)
}

type scanRequest struct {
	Token string `json:"token"`
}

type scanResponse struct {
	Employee string           `json:"employee"`
	Action   timeclock.Action `json:"action"`
	At       string           `json:"at"`
}

func (h *Handler) handleScan(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload scanRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	payload.Token = strings.TrimSpace(payload.Token)
	if payload.Token == "" {
		api.Fail(w, http.StatusBadRequest, "missing_token", "badge token is required", reqID)
		return
	}

	emp, err := h.Employees.GetByToken(r.Context(), payload.Token)
	if err != nil {
		if errors.Is(err, employee.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "unknown_token", "no employee matches this badge", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "lookup_failed", "employee lookup failed", reqID)
		return
	}
	if emp.Status != employee.StatusActive {
		h.Metrics.ScanRejected()
		api.Fail(w, http.StatusUnprocessableEntity, "inactive_employee", "employee is not active", reqID)
		return
	}

	result, err := h.Service.Scan(r.Context(), emp.ID)
	if err != nil {
		h.Metrics.ScanRejected()
		status, code := scanErrorStatus(err)
		api.Fail(w, status, code, err.Error(), reqID)
		return
	}

	h.Metrics.ScanAccepted()
	api.Success(w, scanResponse{
		Employee: emp.FullName(),
		Action:   result.Action,
		At:       result.At.Format("2006-01-02 15:04:05"),
	}, reqID)
}

func scanErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, timeclock.ErrNotScheduled):
		return http.StatusUnprocessableEntity, "not_scheduled"
	case errors.Is(err, timeclock.ErrTooEarlyForBreak):
		return http.StatusUnprocessableEntity, "too_early_for_break"
	case errors.Is(err, timeclock.ErrDayAlreadyComplete):
		return http.StatusUnprocessableEntity, "day_already_complete"
	case errors.Is(err, timeclock.ErrTooLateToReopen):
		return http.StatusUnprocessableEntity, "too_late_to_reopen"
	case errors.Is(err, timeclock.ErrConcurrentScan):
		return http.StatusConflict, "concurrent_scan"
	case errors.Is(err, timeclock.ErrInvalidDayState):
		return http.StatusConflict, "invalid_day_state"
	}
	return http.StatusInternalServerError, "scan_failed"
}
