package payrollhandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"timekeep/internal/domain/payroll"
	"timekeep/internal/platform/metrics"
	"timekeep/internal/transport/http/api"
	"timekeep/internal/transport/http/middleware"
	"timekeep/internal/transport/http/shared"
)

type Handler struct {
	Service *payroll.Service
	Metrics *metrics.Collector
}

func NewHandler(service *payroll.Service, collector *metrics.Collector) *Handler {
	return &Handler{Service: service, Metrics: collector}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payroll", func(r chi.Router) {
		r.Use(middleware.RequireAdmin)
		r.Get("/preview", h.handlePreview)
		r.Post("/commit", h.handleCommit)
		r.Get("/lines", h.handleLines)
		r.Patch("/lines/{lineID}/status", h.handleUpdateStatus)
		r.Get("/lines/{lineID}/payslip", h.handlePayslip)

		r.Get("/rules", h.handleListRules)
		r.Post("/rules", h.handleCreateRule)
		r.Put("/rules/{ruleID}", h.handleUpdateRule)
		r.Delete("/rules/{ruleID}", h.handleDeleteRule)
	})
}

func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	ref, err := shared.ParseDate(r.URL.Query().Get("date"), h.Service.Engine.Location)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_date", "date must be in YYYY-MM-DD format", reqID)
		return
	}

	preview, err := h.Service.Preview(r.Context(), ref)
	if err != nil {
		status, code := payrollErrorStatus(err)
		api.Fail(w, status, code, err.Error(), reqID)
		return
	}
	h.Metrics.PayrollRun()
	api.Success(w, preview, reqID)
}

type commitRequest struct {
	Date             string             `json:"date"`
	EmployeeIDs      []string           `json:"employeeIds"`
	ManualDeductions map[string]float64 `json:"manualDeductions"`
	Status           string             `json:"status"`
}

func (h *Handler) handleCommit(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload commitRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	ref, err := shared.ParseDate(payload.Date, h.Service.Engine.Location)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_date", "date must be in YYYY-MM-DD format", reqID)
		return
	}

	lines, err := h.Service.Commit(r.Context(), payroll.CommitInput{
		Reference:        ref,
		EmployeeIDs:      payload.EmployeeIDs,
		ManualDeductions: payload.ManualDeductions,
		Status:           payload.Status,
	})
	if err != nil {
		status, code := payrollErrorStatus(err)
		api.Fail(w, status, code, err.Error(), reqID)
		return
	}
	h.Metrics.PayrollRun()
	api.Created(w, lines, reqID)
}

func (h *Handler) handleLines(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	ref, err := shared.ParseDate(r.URL.Query().Get("date"), h.Service.Engine.Location)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_date", "date must be in YYYY-MM-DD format", reqID)
		return
	}

	period, lines, err := h.Service.LinesForPeriod(r.Context(), ref)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "lines_failed", "failed to load payroll lines", reqID)
		return
	}
	api.Success(w, map[string]any{"period": period, "lines": lines}, reqID)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	lineID := chi.URLParam(r, "lineID")

	var payload statusRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	if err := h.Service.UpdateLineStatus(r.Context(), lineID, payload.Status); err != nil {
		status, code := payrollErrorStatus(err)
		api.Fail(w, status, code, err.Error(), reqID)
		return
	}
	api.Success(w, map[string]string{"id": lineID, "status": payload.Status}, reqID)
}

func (h *Handler) handlePayslip(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	lineID := chi.URLParam(r, "lineID")

	line, err := h.Service.GetLine(r.Context(), lineID)
	if err != nil {
		status, code := payrollErrorStatus(err)
		api.Fail(w, status, code, err.Error(), reqID)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=payslip-%s-%s.pdf", line.EmployeeID, line.PeriodStart.Format("2006-01-02")))
	if err := writePayslip(w, line); err != nil {
		api.Fail(w, http.StatusInternalServerError, "payslip_failed", "failed to render payslip", reqID)
	}
}

type ruleRequest struct {
	Name            string  `json:"name"`
	RaisePercentage float64 `json:"raisePercentage"`
	StartAt         string  `json:"startAt"`
	EndAt           string  `json:"endAt"`
	Active          *bool   `json:"active"`
}

func (h *Handler) parseRule(w http.ResponseWriter, r *http.Request, reqID string) (payroll.RuleInput, bool) {
	var payload ruleRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return payroll.RuleInput{}, false
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	v.Positive("raisePercentage", payload.RaisePercentage, "raise percentage must be positive")
	start, _ := v.Date("startAt", payload.StartAt, h.Service.Engine.Location)
	end, _ := v.Date("endAt", payload.EndAt, h.Service.Engine.Location)
	if v.Reject(w, reqID) {
		return payroll.RuleInput{}, false
	}

	// Rules are active unless the payload says otherwise.
	active := true
	if payload.Active != nil {
		active = *payload.Active
	}

	return payroll.RuleInput{
		Name:            payload.Name,
		RaisePercentage: payload.RaisePercentage,
		StartAt:         start,
		EndAt:           end,
		Active:          active,
	}, true
}

func (h *Handler) handleListRules(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	rules, err := h.Service.ListRules(r.Context(), r.URL.Query().Get("active") == "true")
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "rules_failed", "failed to list salary rules", reqID)
		return
	}
	api.Success(w, rules, reqID)
}

func (h *Handler) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	input, ok := h.parseRule(w, r, reqID)
	if !ok {
		return
	}
	rule, err := h.Service.CreateRule(r.Context(), input)
	if err != nil {
		status, code := payrollErrorStatus(err)
		api.Fail(w, status, code, err.Error(), reqID)
		return
	}
	api.Created(w, rule, reqID)
}

func (h *Handler) handleUpdateRule(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	ruleID := chi.URLParam(r, "ruleID")

	input, ok := h.parseRule(w, r, reqID)
	if !ok {
		return
	}
	rule, err := h.Service.UpdateRule(r.Context(), ruleID, input)
	if err != nil {
		status, code := payrollErrorStatus(err)
		api.Fail(w, status, code, err.Error(), reqID)
		return
	}
	api.Success(w, rule, reqID)
}

func (h *Handler) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	ruleID := chi.URLParam(r, "ruleID")

	if err := h.Service.DeleteRule(r.Context(), ruleID); err != nil {
		status, code := payrollErrorStatus(err)
		api.Fail(w, status, code, err.Error(), reqID)
		return
	}
	api.NoContent(w)
}

func payrollErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, payroll.ErrNoEligibleEmployees):
		return http.StatusUnprocessableEntity, "no_eligible_employees"
	case errors.Is(err, payroll.ErrAlreadyCommitted):
		return http.StatusConflict, "already_committed"
	case errors.Is(err, payroll.ErrInvalidStatus):
		return http.StatusBadRequest, "invalid_status"
	case errors.Is(err, payroll.ErrInvalidRuleWindow):
		return http.StatusBadRequest, "invalid_rule_window"
	case errors.Is(err, payroll.ErrLineNotFound):
		return http.StatusNotFound, "line_not_found"
	case errors.Is(err, payroll.ErrRuleNotFound):
		return http.StatusNotFound, "rule_not_found"
	}
	return http.StatusInternalServerError, "payroll_failed"
}
