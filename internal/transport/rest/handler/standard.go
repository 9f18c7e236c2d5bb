package handler

import (
	"complyflow/internal/model"
	"complyflow/internal/service"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
)

// StandardHandler handles compliance standard endpoints
type StandardHandler struct {
	standardSvc *service.StandardService
}

// NewStandardHandler creates a new standard handler
func NewStandardHandler(standardSvc *service.StandardService) *StandardHandler {
	return &StandardHandler{standardSvc: standardSvc}
}

// Create handles POST /v1/standards
func (h *StandardHandler) Create(w http.ResponseWriter, r *http.Request) {
	var standard model.Standard
	if err := json.NewDecoder(r.Body).Decode(&standard); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.standardSvc.Create(r.Context(), &standard)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// List handles GET /v1/standards
func (h *StandardHandler) List(w http.ResponseWriter, r *http.Request) {
	standards, err := h.standardSvc.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, standards)
}

// Get handles GET /v1/standards/{standardId}
func (h *StandardHandler) Get(w http.ResponseWriter, r *http.Request) {
	standard, err := h.standardSvc.Get(r.Context(), mux.Vars(r)["standardId"])
	if err != nil {
		writeStandardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, standard)
}

// Update handles PUT /v1/standards/{standardId}
func (h *StandardHandler) Update(w http.ResponseWriter, r *http.Request) {
	var standard model.Standard
	if err := json.NewDecoder(r.Body).Decode(&standard); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	standard.ID = mux.Vars(r)["standardId"]

	updated, err := h.standardSvc.Update(r.Context(), &standard)
	if err != nil {
		if errors.Is(err, service.ErrStandardNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /v1/standards/{standardId}
func (h *StandardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.standardSvc.Delete(r.Context(), mux.Vars(r)["standardId"]); err != nil {
		writeStandardError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeStandardError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrStandardNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}
