package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/hylla/taskcollab/internal/adapters/server/common"
	"github.com/hylla/taskcollab/internal/domain"
)

// projectRequest is the body of project create and update calls.
type projectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// columnRequest is the body of POST `/projects/{id}/columns`.
type columnRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// handleListProjects serves GET `/projects?q=`.
func (h *Handler) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.svc.ListProjects(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

// handleCreateProject serves POST `/projects`.
func (h *Handler) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	project, err := h.svc.CreateProject(r.Context(), req.Name, req.Description, common.ActorName(r.Context(), "api"))
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

// handleGetProject serves GET `/projects/{projectID}`.
func (h *Handler) handleGetProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.svc.GetProject(r.Context(), pathVar(r, "projectID"))
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// handleUpdateProject serves PATCH `/projects/{projectID}`.
func (h *Handler) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	project, err := h.svc.UpdateProject(r.Context(), pathVar(r, "projectID"), req.Name, req.Description)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// handleDeleteProject serves DELETE `/projects/{projectID}`.
func (h *Handler) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteProject(r.Context(), pathVar(r, "projectID")); err != nil {
		writeErrorFrom(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetBoard serves GET `/projects/{projectID}/board?sprint=`.
func (h *Handler) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	projectID := pathVar(r, "projectID")
	if _, err := h.svc.GetProject(r.Context(), projectID); err != nil {
		writeErrorFrom(w, err)
		return
	}
	b, err := h.svc.LoadBoard(r.Context(), projectID)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	sel := domain.ParseSprintSelector(r.URL.Query().Get("sprint"))
	writeJSON(w, http.StatusOK, common.NewBoardView(projectID, b, sel, nil))
}

// handleAddColumn serves POST `/projects/{projectID}/columns`.
func (h *Handler) handleAddColumn(w http.ResponseWriter, r *http.Request) {
	var req columnRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	projectID := pathVar(r, "projectID")
	col, res, err := h.svc.AddColumn(r.Context(), projectID, req.Title, req.Description)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"column": col,
		"board":  common.NewBoardView(projectID, res.Board, domain.SprintAll, res.Notices),
	})
}

// handleEditColumn serves PATCH `/projects/{projectID}/columns/{columnID}`.
func (h *Handler) handleEditColumn(w http.ResponseWriter, r *http.Request) {
	var patch domain.ColumnPatch
	if err := decodeJSONBody(r.Context(), w, r, &patch); err != nil {
		writeErrorFrom(w, err)
		return
	}
	projectID := pathVar(r, "projectID")
	res, err := h.svc.EditColumn(r.Context(), projectID, pathVar(r, "columnID"), patch)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, common.NewBoardView(projectID, res.Board, domain.SprintAll, res.Notices))
}

// handleDeleteColumn serves DELETE `/projects/{projectID}/columns/{columnID}`.
func (h *Handler) handleDeleteColumn(w http.ResponseWriter, r *http.Request) {
	projectID := pathVar(r, "projectID")
	res, err := h.svc.DeleteColumn(r.Context(), projectID, pathVar(r, "columnID"))
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, common.NewBoardView(projectID, res.Board, domain.SprintAll, res.Notices))
}

// handleAddCard serves POST `/projects/{projectID}/columns/{columnID}/cards`.
// The body is a card patch; an empty body creates a default card.
func (h *Handler) handleAddCard(w http.ResponseWriter, r *http.Request) {
	var patch domain.CardPatch
	if err := decodeOptionalJSONBody(r.Context(), w, r, &patch); err != nil {
		writeErrorFrom(w, err)
		return
	}
	projectID := pathVar(r, "projectID")
	card, res, err := h.svc.AddCard(r.Context(), projectID, pathVar(r, "columnID"), patch)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"card":  card,
		"board": common.NewBoardView(projectID, res.Board, domain.SprintAll, res.Notices),
	})
}

// handleEditCard serves PATCH `/projects/{projectID}/columns/{columnID}/cards/{cardID}`.
func (h *Handler) handleEditCard(w http.ResponseWriter, r *http.Request) {
	var patch domain.CardPatch
	if err := decodeJSONBody(r.Context(), w, r, &patch); err != nil {
		writeErrorFrom(w, err)
		return
	}
	projectID := pathVar(r, "projectID")
	res, err := h.svc.EditCard(r.Context(), projectID, pathVar(r, "columnID"), pathVar(r, "cardID"), patch)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, common.NewBoardView(projectID, res.Board, domain.SprintAll, res.Notices))
}

// handleDeleteCard serves DELETE `/projects/{projectID}/columns/{columnID}/cards/{cardID}`.
func (h *Handler) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	projectID := pathVar(r, "projectID")
	res, err := h.svc.DeleteCard(r.Context(), projectID, pathVar(r, "columnID"), pathVar(r, "cardID"))
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, common.NewBoardView(projectID, res.Board, domain.SprintAll, res.Notices))
}

// handleMoveCard serves POST `/projects/{projectID}/moves`.
func (h *Handler) handleMoveCard(w http.ResponseWriter, r *http.Request) {
	var mv domain.Move
	if err := decodeJSONBody(r.Context(), w, r, &mv); err != nil {
		writeErrorFrom(w, err)
		return
	}
	if strings.TrimSpace(mv.Source.ColumnID) == "" {
		writeErrorFrom(w, fmt.Errorf("source.column_id is required: %w", common.ErrInvalidRequest))
		return
	}
	projectID := pathVar(r, "projectID")
	res, err := h.svc.MoveCard(r.Context(), projectID, mv)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, common.NewBoardView(projectID, res.Board, domain.SprintAll, res.Notices))
}

// handleExport serves GET `/projects/{projectID}/export`.
func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.ExportBoard(r.Context(), pathVar(r, "projectID"))
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// handleBackup serves POST `/projects/{projectID}/backup`.
func (h *Handler) handleBackup(w http.ResponseWriter, r *http.Request) {
	key, err := h.svc.BackupBoard(r.Context(), pathVar(r, "projectID"))
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": key})
}

// handleRestore serves POST `/projects/{projectID}/restore`.
func (h *Handler) handleRestore(w http.ResponseWriter, r *http.Request) {
	projectID := pathVar(r, "projectID")
	if err := h.svc.RestoreBoard(r.Context(), projectID); err != nil {
		writeErrorFrom(w, err)
		return
	}
	b, err := h.svc.LoadBoard(r.Context(), projectID)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, common.NewBoardView(projectID, b, domain.SprintAll, nil))
}
