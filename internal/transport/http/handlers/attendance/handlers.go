package attendancehandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"timekeep/internal/domain/attendance"
	"timekeep/internal/transport/http/api"
	"timekeep/internal/transport/http/middleware"
	"timekeep/internal/transport/http/shared"
)

type Handler struct {
	Service *attendance.Service
}

func NewHandler(service *attendance.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/attendance", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/live", h.handleLive)
		r.Get("/timesheet/{employeeID}", h.handleTimesheet)
	})
}

func (h *Handler) handleLive(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	entries, err := h.Service.LiveStatus(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "live_status_failed", "failed to build live status", reqID)
		return
	}
	api.Success(w, entries, reqID)
}

func (h *Handler) handleTimesheet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	year, month, err := shared.ParseMonth(r.URL.Query().Get("month"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_month", "month must be in YYYY-MM format", reqID)
		return
	}

	days, err := h.Service.MonthlyTimesheet(r.Context(), employeeID, year, month)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "timesheet_failed", "failed to build timesheet", reqID)
		return
	}
	api.Success(w, days, reqID)
}
