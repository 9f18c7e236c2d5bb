package handler

import (
	"complyflow/internal/model"
	"complyflow/internal/service"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
)

// AssessmentHandler handles guided assessment endpoints
type AssessmentHandler struct {
	assessmentSvc *service.AssessmentService
}

// NewAssessmentHandler creates a new assessment handler
func NewAssessmentHandler(assessmentSvc *service.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{assessmentSvc: assessmentSvc}
}

// Start handles POST /v1/assessments
func (h *AssessmentHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req model.StartAssessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" || req.StandardID == "" {
		writeError(w, http.StatusBadRequest, "userId and standardId are required")
		return
	}

	resp, err := h.assessmentSvc.StartAssessment(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrStandardNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// Get handles GET /v1/assessments/{sessionId}
func (h *AssessmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	assessment, err := h.assessmentSvc.GetSession(r.Context(), mux.Vars(r)["sessionId"])
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, assessment)
}

// ListByUser handles GET /v1/users/{userId}/assessments
func (h *AssessmentHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.assessmentSvc.ListByUser(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

// NextQuestion handles GET /v1/assessments/{sessionId}/question/next
func (h *AssessmentHandler) NextQuestion(w http.ResponseWriter, r *http.Request) {
	decision, err := h.assessmentSvc.NextQuestion(r.Context(), mux.Vars(r)["sessionId"])
	if err != nil {
		writeSessionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"done":     decision.NextQuestion == nil,
		"question": decision.NextQuestion,
		"branchTo": decision.BranchTo,
		"reason":   decision.Reason,
	})
}

// SubmitAnswer handles POST /v1/assessments/{sessionId}/answers
func (h *AssessmentHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req model.SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.QuestionID == "" {
		writeError(w, http.StatusBadRequest, "questionId is required")
		return
	}

	resp, err := h.assessmentSvc.SubmitAnswer(r.Context(), mux.Vars(r)["sessionId"], &req)
	if err != nil {
		writeSessionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Progress handles GET /v1/assessments/{sessionId}/progress
func (h *AssessmentHandler) Progress(w http.ResponseWriter, r *http.Request) {
	summary, err := h.assessmentSvc.GetProgress(r.Context(), mux.Vars(r)["sessionId"])
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Analysis handles GET /v1/assessments/{sessionId}/analysis
func (h *AssessmentHandler) Analysis(w http.ResponseWriter, r *http.Request) {
	analysis, err := h.assessmentSvc.Analyze(r.Context(), mux.Vars(r)["sessionId"])
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

// Complete handles POST /v1/assessments/{sessionId}/complete
func (h *AssessmentHandler) Complete(w http.ResponseWriter, r *http.Request) {
	assessment, err := h.assessmentSvc.Complete(r.Context(), mux.Vars(r)["sessionId"])
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, assessment)
}

func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrVersionRetired):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
