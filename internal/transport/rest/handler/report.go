package handler

import (
	"complyflow/internal/service"
	"complyflow/internal/transport/rest/middleware"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// ReportHandler handles officer reporting endpoints
type ReportHandler struct {
	reportSvc *service.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportSvc *service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

// GetOverview handles GET /v1/reports/{standardId}/overview
func (h *ReportHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	report, err := h.reportSvc.GetOverview(r.Context(), mux.Vars(r)["standardId"])
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// GenerateOverview handles POST /v1/reports/{standardId}/overview
func (h *ReportHandler) GenerateOverview(w http.ResponseWriter, r *http.Request) {
	standardID := mux.Vars(r)["standardId"]
	log.Printf("Report for %s regenerated by officer %s", standardID, middleware.GetOfficerID(r.Context()))

	report, err := h.reportSvc.GenerateOverview(r.Context(), standardID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// TopSessions handles GET /v1/reports/{standardId}/sessions/top
func (h *ReportHandler) TopSessions(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := h.reportSvc.TopSessions(r.Context(), mux.Vars(r)["standardId"], limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
