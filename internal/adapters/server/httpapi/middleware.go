package httpapi

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/hylla/taskcollab/internal/adapters/server/common"
	"github.com/hylla/taskcollab/internal/auth"
)

// statusRecorder captures the response status for request logs.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

// WriteHeader records the status code.
func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// logRequests logs method, route, status and duration of every matched request.
func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.logger == nil {
			next.ServeHTTP(w, r)
			return
		}
		start := h.cfg.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		keyvals := []any{
			"method", r.Method,
			"route", route,
			"status", rec.status,
			"duration", h.cfg.Now().Sub(start).Round(time.Microsecond),
		}
		if rec.status >= http.StatusInternalServerError {
			h.logger.Error("http request", keyvals...)
			return
		}
		h.logger.Info("http request", keyvals...)
	})
}

// cors sets Access-Control-Allow-Origin for configured origins. The mail route
// manages its own headers.
func (h *Handler) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			switch {
			case slices.Contains(h.cfg.AllowedOrigins, "*"):
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case slices.Contains(h.cfg.AllowedOrigins, origin):
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}
		}
		next.ServeHTTP(w, r)
	})
}

// identify decodes an optional bearer token into the request context.
// A present but invalid token is rejected.
func (h *Handler) identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok || len(h.cfg.TokenSecret) == 0 {
			next.ServeHTTP(w, r)
			return
		}
		identity, err := auth.Decode(token, h.cfg.TokenSecret, h.cfg.Now())
		if err != nil {
			writeErrorFrom(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(common.WithIdentity(r.Context(), identity)))
	})
}

// authed rejects anonymous requests when authentication is required.
func (h *Handler) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.cfg.RequireAuth {
			if _, ok := common.IdentityFrom(r.Context()); !ok {
				writeErrorFrom(w, common.ErrUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

// bearerToken extracts the token from an Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
