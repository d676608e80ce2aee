package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nmburu/supportprobe/internal/model/faq"
	convoservice "github.com/nmburu/supportprobe/internal/service/convo"
	"github.com/nmburu/supportprobe/pkg/utils"
)

// Handler exposes the conversation over HTTP.
type Handler struct {
	convoSvc *convoservice.Service
	faqs     faq.Store
}

// New creates the chat handler.
func New(convoSvc *convoservice.Service, faqs faq.Store) *Handler {
	return &Handler{
		convoSvc: convoSvc,
		faqs:     faqs,
	}
}

// RegisterRoutes mounts the chat routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Post("/end", h.handleEnd)
	r.Get("/faqs", h.handleListFAQs)
}

// handleChat runs one conversation turn.
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Message string `json:"message"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reply, err := h.convoSvc.Turn(r.Context(), payload.Message)
	if err != nil {
		if errors.Is(err, convoservice.ErrEmptyMessage) {
			utils.RespondError(w, http.StatusBadRequest, "message is required")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"response": reply})
}

// handleEnd terminates the conversation on the client's request.
func (h *Handler) handleEnd(w http.ResponseWriter, r *http.Request) {
	if h.convoSvc.End(convoservice.ReasonExplicit) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ended"})
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "already-ended"})
}

// handleListFAQs returns the loaded question bank.
func (h *Handler) handleListFAQs(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.faqs.List())
}

