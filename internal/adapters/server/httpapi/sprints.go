package httpapi

import (
	"net/http"

	"github.com/hylla/taskcollab/internal/app"
	"github.com/hylla/taskcollab/internal/domain"
)

// sprintRequest is the body of sprint create and update calls.
type sprintRequest struct {
	Name      string `json:"name"`
	Goal      string `json:"goal"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Status    string `json:"status"`
}

// input converts the request into service input.
func (r sprintRequest) input() domain.SprintInput {
	return domain.SprintInput{
		Name:      r.Name,
		Goal:      r.Goal,
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
		Status:    r.Status,
	}
}

// subtaskRequest is the body of POST `/cards/{cardID}/subtasks`.
type subtaskRequest struct {
	Name string `json:"name"`
}

// handleListSprints serves GET `/projects/{projectID}/sprints`.
func (h *Handler) handleListSprints(w http.ResponseWriter, r *http.Request) {
	sprints, err := h.svc.ListSprints(r.Context(), pathVar(r, "projectID"))
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sprints": sprints})
}

// handleCreateSprint serves POST `/projects/{projectID}/sprints`.
func (h *Handler) handleCreateSprint(w http.ResponseWriter, r *http.Request) {
	var req sprintRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	sprint, err := h.svc.CreateSprint(r.Context(), pathVar(r, "projectID"), req.input())
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sprint)
}

// handleGetSprint serves GET `/projects/{projectID}/sprints/{sprintID}`.
func (h *Handler) handleGetSprint(w http.ResponseWriter, r *http.Request) {
	sprint, err := h.svc.GetSprint(r.Context(), pathVar(r, "projectID"), pathVar(r, "sprintID"))
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sprint)
}

// handleUpdateSprint serves PATCH `/projects/{projectID}/sprints/{sprintID}`.
func (h *Handler) handleUpdateSprint(w http.ResponseWriter, r *http.Request) {
	var req sprintRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	sprint, err := h.svc.UpdateSprint(r.Context(), pathVar(r, "projectID"), pathVar(r, "sprintID"), req.input())
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sprint)
}

// handleDeleteSprint serves DELETE `/projects/{projectID}/sprints/{sprintID}?mode=`.
func (h *Handler) handleDeleteSprint(w http.ResponseWriter, r *http.Request) {
	mode, err := app.ParseSprintDeleteMode(r.URL.Query().Get("mode"))
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	affected, err := h.svc.DeleteSprint(r.Context(), pathVar(r, "projectID"), pathVar(r, "sprintID"), mode)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"mode":           mode,
		"affected_tasks": affected,
	})
}

// handleSprintStatuses serves GET `/sprint-statuses`.
func (h *Handler) handleSprintStatuses(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.svc.SprintStatusCatalog(r.Context())
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"statuses": statuses})
}

// handleListSubtasks serves GET `/projects/{projectID}/cards/{cardID}/subtasks`.
func (h *Handler) handleListSubtasks(w http.ResponseWriter, r *http.Request) {
	subtasks, err := h.svc.ListSubtasks(r.Context(), pathVar(r, "projectID"), pathVar(r, "cardID"))
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"subtasks": subtasks})
}

// handleAddSubtask serves POST `/projects/{projectID}/cards/{cardID}/subtasks`.
func (h *Handler) handleAddSubtask(w http.ResponseWriter, r *http.Request) {
	var req subtaskRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	subtask, err := h.svc.AddSubtask(r.Context(), pathVar(r, "projectID"), pathVar(r, "cardID"), req.Name)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, subtask)
}

// handleToggleSubtask serves POST `/projects/{projectID}/subtasks/{subtaskID}/toggle`.
func (h *Handler) handleToggleSubtask(w http.ResponseWriter, r *http.Request) {
	subtask, err := h.svc.ToggleSubtask(r.Context(), pathVar(r, "projectID"), pathVar(r, "subtaskID"))
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subtask)
}

// handleDeleteSubtask serves DELETE `/projects/{projectID}/subtasks/{subtaskID}`.
func (h *Handler) handleDeleteSubtask(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteSubtask(r.Context(), pathVar(r, "projectID"), pathVar(r, "subtaskID")); err != nil {
		writeErrorFrom(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
