package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/hylla/taskcollab/internal/adapters/server/common"
	"github.com/hylla/taskcollab/internal/app"
	"github.com/hylla/taskcollab/internal/domain"
)

// askRequest is the body of POST `/assistant`.
type askRequest struct {
	History []domain.ChatMessage `json:"history"`
	Prompt  string               `json:"prompt"`
}

// handleSearchHelp serves GET `/help?q=`.
func (h *Handler) handleSearchHelp(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"categories": h.help.Search(r.URL.Query().Get("q")),
	})
}

// handleHelpArticle serves GET `/help/articles/{articleID}`.
func (h *Handler) handleHelpArticle(w http.ResponseWriter, r *http.Request) {
	category, article, ok := h.help.Article(pathVar(r, "articleID"))
	if !ok {
		writeErrorFrom(w, fmt.Errorf("help article %q: %w", pathVar(r, "articleID"), app.ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"category": category.Title,
		"article":  article,
	})
}

// handleAsk serves POST `/assistant`.
func (h *Handler) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeErrorFrom(w, fmt.Errorf("prompt is required: %w", common.ErrInvalidRequest))
		return
	}
	messages, err := h.svc.Ask(r.Context(), req.History, req.Prompt)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

// setMailCORS applies the permissive headers the mail endpoint has always sent.
func setMailCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
}

// handleMailPreflight serves OPTIONS `/mail`.
func (h *Handler) handleMailPreflight(w http.ResponseWriter, _ *http.Request) {
	setMailCORS(w)
	w.WriteHeader(http.StatusOK)
}

// handleSendMail serves POST `/mail`. Responses keep the flat {"message"} shape
// browser clients of this endpoint expect.
func (h *Handler) handleSendMail(w http.ResponseWriter, r *http.Request) {
	setMailCORS(w)
	if h.mail == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"message": "Mail service is not configured"})
		return
	}
	var req app.EmailRequest
	reader := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	defer reader.Close()
	if err := json.NewDecoder(reader).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Missing required fields"})
		return
	}
	if len(req.To) == 0 || strings.TrimSpace(req.Subject) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Missing required fields"})
		return
	}
	if err := h.mail.Deliver(r.Context(), req); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"message": "Error sending email",
			"error":   err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Email sent",
		"info":    map[string]any{"accepted": req.To},
	})
}
