package handler

import (
	"complyflow/internal/model"
	"complyflow/internal/service"
	"complyflow/internal/transport/rest/middleware"
	"encoding/json"
	"net/http"
)

// ChatHandler handles conversational assessment endpoints
type ChatHandler struct {
	chatSvc *service.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatSvc *service.ChatService) *ChatHandler {
	return &ChatHandler{chatSvc: chatSvc}
}

// StartConversation handles POST /v1/assessments/{sessionId}/conversation
func (h *ChatHandler) StartConversation(w http.ResponseWriter, r *http.Request) {
	reply, err := h.chatSvc.StartConversation(r.Context(), middleware.GetSessionID(r.Context()))
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, reply)
}

// PostMessage handles POST /v1/assessments/{sessionId}/messages
func (h *ChatHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	var req model.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	reply, err := h.chatSvc.ProcessMessage(r.Context(), middleware.GetSessionID(r.Context()), req.Text)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

// Transcript handles GET /v1/assessments/{sessionId}/transcript
func (h *ChatHandler) Transcript(w http.ResponseWriter, r *http.Request) {
	state, err := h.chatSvc.GetTranscript(r.Context(), middleware.GetSessionID(r.Context()))
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessionId":  state.SessionID,
		"state":      state.State,
		"transcript": state.Transcript,
	})
}
