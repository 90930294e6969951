package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/hylla/taskcollab/internal/adapters/server/common"
	"github.com/hylla/taskcollab/internal/app"
	"github.com/hylla/taskcollab/internal/domain"
)

// userRequest is the body of user create and update calls.
type userRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Position string `json:"position"`
	IsAdmin  bool   `json:"is_admin"`
	Password string `json:"password"`
}

// input converts the request into domain input.
func (r userRequest) input() domain.UserInput {
	return domain.UserInput{
		Name:     r.Name,
		Email:    r.Email,
		Position: r.Position,
		IsAdmin:  r.IsAdmin,
	}
}

// loginRequest is the body of POST `/auth/login`.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleLogin serves POST `/auth/login`.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if len(h.cfg.TokenSecret) == 0 {
		writeErrorFrom(w, fmt.Errorf("login: %w", app.ErrUnavailable))
		return
	}
	var req loginRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	token, identity, err := h.svc.Login(r.Context(), req.Email, req.Password, h.cfg.TokenSecret, h.cfg.TokenTTL)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token":    token,
		"identity": identity,
	})
}

// handleMe serves GET `/auth/me`.
func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := common.IdentityFrom(r.Context())
	if !ok {
		writeErrorFrom(w, common.ErrUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, identity)
}

// handleListUsers serves GET `/users?q=`.
func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

// handleCreateUser serves POST `/users`.
func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	if strings.TrimSpace(req.Password) == "" {
		writeErrorFrom(w, fmt.Errorf("password is required: %w", common.ErrInvalidRequest))
		return
	}
	user, err := h.svc.CreateUser(r.Context(), app.CreateUserInput{
		UserInput: req.input(),
		Password:  req.Password,
		CreatedBy: common.ActorName(r.Context(), "api"),
	})
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// handleGetUser serves GET `/users/{userID}`.
func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.GetUser(r.Context(), pathVar(r, "userID"))
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// handleUpdateUser serves PATCH `/users/{userID}`. An empty password keeps the current one.
func (h *Handler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	user, err := h.svc.UpdateUser(r.Context(), pathVar(r, "userID"), req.input(), req.Password)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// handleDeleteUser serves DELETE `/users/{userID}`.
func (h *Handler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteUser(r.Context(), pathVar(r, "userID")); err != nil {
		writeErrorFrom(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
