// Package httpapi provides the REST HTTP adapter for the server surfaces.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/hylla/taskcollab/internal/adapters/server/common"
	"github.com/hylla/taskcollab/internal/app"
	"github.com/hylla/taskcollab/internal/auth"
	"github.com/hylla/taskcollab/internal/board"
	"github.com/hylla/taskcollab/internal/help"
)

// maxRequestBodyBytes limits decoded JSON payload size for fail-closed request handling.
const maxRequestBodyBytes int64 = 1 << 20

// upMessage is returned by the API root.
const upMessage = "Task Collab is up and running 🚀"

// Config holds REST adapter settings.
type Config struct {
	// BasePath is the mount point of every route, for example "/api".
	BasePath       string
	TokenSecret    []byte
	TokenTTL       time.Duration
	RequireAuth    bool
	AllowedOrigins []string
	Now            func() time.Time
}

// Dependencies holds the collaborators the REST adapter serves.
type Dependencies struct {
	Service common.Service
	Mail    common.MailDeliverer
	Help    help.Catalog
	Logger  common.Logger
}

// Handler serves the REST API.
type Handler struct {
	cfg    Config
	svc    common.Service
	mail   common.MailDeliverer
	help   help.Catalog
	logger common.Logger
	router *mux.Router
}

// APIError represents one structured API failure response.
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Hint    string         `json:"hint,omitempty"`
	Context map[string]any `json:"context,omitempty"`
}

// ErrorEnvelope wraps one structured API error.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// NewHandler builds the REST router.
func NewHandler(cfg Config, deps Dependencies) (*Handler, error) {
	if deps.Service == nil {
		return nil, fmt.Errorf("service dependency is required")
	}
	cfg.BasePath = "/" + strings.Trim(strings.TrimSpace(cfg.BasePath), "/")
	if cfg.BasePath == "/" {
		cfg.BasePath = "/api"
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	h := &Handler{
		cfg:    cfg,
		svc:    deps.Service,
		mail:   deps.Mail,
		help:   deps.Help,
		logger: deps.Logger,
	}
	h.router = h.routes()
	return h, nil
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// routes registers every endpoint under the base path.
func (h *Handler) routes() *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONError(w, http.StatusNotFound, APIError{Code: "not_found", Message: "endpoint not found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONError(w, http.StatusMethodNotAllowed, APIError{Code: "method_not_allowed", Message: "method not allowed"})
	})
	r.Use(h.logRequests, h.cors, h.identify)

	base := h.cfg.BasePath
	r.HandleFunc(base, h.handleRoot).Methods(http.MethodGet)
	r.HandleFunc(base+"/", h.handleRoot).Methods(http.MethodGet)

	api := r.PathPrefix(base).Subrouter()
	api.HandleFunc("/mail", h.handleMailPreflight).Methods(http.MethodOptions)
	api.HandleFunc("/mail", h.handleSendMail).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/auth/me", h.authed(h.handleMe)).Methods(http.MethodGet)
	api.HandleFunc("/help", h.handleSearchHelp).Methods(http.MethodGet)
	api.HandleFunc("/help/articles/{articleID}", h.handleHelpArticle).Methods(http.MethodGet)
	api.HandleFunc("/assistant", h.authed(h.handleAsk)).Methods(http.MethodPost)
	api.HandleFunc("/sprint-statuses", h.authed(h.handleSprintStatuses)).Methods(http.MethodGet)

	api.HandleFunc("/projects", h.authed(h.handleListProjects)).Methods(http.MethodGet)
	api.HandleFunc("/projects", h.authed(h.handleCreateProject)).Methods(http.MethodPost)
	project := api.PathPrefix("/projects/{projectID}").Subrouter()
	project.HandleFunc("", h.authed(h.handleGetProject)).Methods(http.MethodGet)
	project.HandleFunc("", h.authed(h.handleUpdateProject)).Methods(http.MethodPatch)
	project.HandleFunc("", h.authed(h.handleDeleteProject)).Methods(http.MethodDelete)
	project.HandleFunc("/board", h.authed(h.handleGetBoard)).Methods(http.MethodGet)
	project.HandleFunc("/columns", h.authed(h.handleAddColumn)).Methods(http.MethodPost)
	project.HandleFunc("/columns/{columnID}", h.authed(h.handleEditColumn)).Methods(http.MethodPatch)
	project.HandleFunc("/columns/{columnID}", h.authed(h.handleDeleteColumn)).Methods(http.MethodDelete)
	project.HandleFunc("/columns/{columnID}/cards", h.authed(h.handleAddCard)).Methods(http.MethodPost)
	project.HandleFunc("/columns/{columnID}/cards/{cardID}", h.authed(h.handleEditCard)).Methods(http.MethodPatch)
	project.HandleFunc("/columns/{columnID}/cards/{cardID}", h.authed(h.handleDeleteCard)).Methods(http.MethodDelete)
	project.HandleFunc("/moves", h.authed(h.handleMoveCard)).Methods(http.MethodPost)
	project.HandleFunc("/sprints", h.authed(h.handleListSprints)).Methods(http.MethodGet)
	project.HandleFunc("/sprints", h.authed(h.handleCreateSprint)).Methods(http.MethodPost)
	project.HandleFunc("/sprints/{sprintID}", h.authed(h.handleGetSprint)).Methods(http.MethodGet)
	project.HandleFunc("/sprints/{sprintID}", h.authed(h.handleUpdateSprint)).Methods(http.MethodPatch)
	project.HandleFunc("/sprints/{sprintID}", h.authed(h.handleDeleteSprint)).Methods(http.MethodDelete)
	project.HandleFunc("/cards/{cardID}/subtasks", h.authed(h.handleListSubtasks)).Methods(http.MethodGet)
	project.HandleFunc("/cards/{cardID}/subtasks", h.authed(h.handleAddSubtask)).Methods(http.MethodPost)
	project.HandleFunc("/subtasks/{subtaskID}/toggle", h.authed(h.handleToggleSubtask)).Methods(http.MethodPost)
	project.HandleFunc("/subtasks/{subtaskID}", h.authed(h.handleDeleteSubtask)).Methods(http.MethodDelete)
	project.HandleFunc("/export", h.authed(h.handleExport)).Methods(http.MethodGet)
	project.HandleFunc("/backup", h.authed(h.handleBackup)).Methods(http.MethodPost)
	project.HandleFunc("/restore", h.authed(h.handleRestore)).Methods(http.MethodPost)

	api.HandleFunc("/users", h.authed(h.handleListUsers)).Methods(http.MethodGet)
	api.HandleFunc("/users", h.authed(h.handleCreateUser)).Methods(http.MethodPost)
	api.HandleFunc("/users/{userID}", h.authed(h.handleGetUser)).Methods(http.MethodGet)
	api.HandleFunc("/users/{userID}", h.authed(h.handleUpdateUser)).Methods(http.MethodPatch)
	api.HandleFunc("/users/{userID}", h.authed(h.handleDeleteUser)).Methods(http.MethodDelete)
	return r
}

// handleRoot serves GET the API root.
func (h *Handler) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": upMessage})
}

// pathVar returns one trimmed route variable.
func pathVar(r *http.Request, name string) string {
	return strings.TrimSpace(mux.Vars(r)[name])
}


// errorStatuses is checked in order; unmatched errors are internal.
var errorStatuses = []struct {
	status int
	code   string
	hint   string
	match  func(error) bool
}{
	{http.StatusUnauthorized, "unauthorized", "Send Authorization: Bearer <token> from POST /auth/login.", func(err error) bool {
		return errors.Is(err, common.ErrUnauthorized) || errors.Is(err, auth.ErrInvalidToken)
	}},
	{http.StatusUnauthorized, "invalid_credentials", "", is(app.ErrInvalidCredentials)},
	{http.StatusNotFound, "not_found", "", is(app.ErrNotFound)},
	{http.StatusConflict, "already_exists", "", is(app.ErrAlreadyExists)},
	{http.StatusConflict, "invalid_move", "Reload the board and retry the move.", is(app.ErrInvalidMove)},
	{http.StatusBadRequest, "invalid_request", "", common.IsValidationError},
	{http.StatusNotImplemented, "not_implemented", "", is(app.ErrUnavailable)},
	{http.StatusBadGateway, "sync_failed", "", is(board.ErrSyncFailed)},
}

func is(target error) func(error) bool {
	return func(err error) bool { return errors.Is(err, target) }
}

func writeErrorFrom(w http.ResponseWriter, err error) {
	if err == nil {
		writeJSONError(w, http.StatusInternalServerError, APIError{Code: "internal_error", Message: "unknown error"})
		return
	}
	for _, es := range errorStatuses {
		if es.match(err) {
			writeJSONError(w, es.status, APIError{Code: es.code, Message: err.Error(), Hint: es.hint})
			return
		}
	}
	writeJSONError(w, http.StatusInternalServerError, APIError{Code: "internal_error", Message: err.Error()})
}

func writeJSONError(w http.ResponseWriter, status int, apiErr APIError) {
	writeJSON(w, status, ErrorEnvelope{Error: apiErr})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	buf, err := json.Marshal(payload)
	if err != nil {
		buf, status = []byte(`{"error":{"code":"encode_error","message":"response not encodable"}}`), http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(buf, '\n'))
}

// decodeJSONBody requires exactly one JSON value with no unknown fields.
func decodeJSONBody(ctx context.Context, w http.ResponseWriter, r *http.Request, out any) error {
	return decodeBody(ctx, w, r, out, false)
}

// decodeOptionalJSONBody is decodeJSONBody that also accepts an empty body.
func decodeOptionalJSONBody(ctx context.Context, w http.ResponseWriter, r *http.Request, out any) error {
	return decodeBody(ctx, w, r, out, true)
}

func decodeBody(ctx context.Context, w http.ResponseWriter, r *http.Request, out any, optional bool) error {
	body := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	defer body.Close()

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	switch err := dec.Decode(out); {
	case optional && errors.Is(err, io.EOF):
		return nil
	case err != nil:
		return fmt.Errorf("decode request body: %w", errors.Join(common.ErrInvalidRequest, err))
	}
	if dec.More() {
		return fmt.Errorf("decode request body: trailing content: %w", common.ErrInvalidRequest)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("request canceled: %w", err)
	}
	return nil
}
