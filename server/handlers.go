package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"sentisounds/config"
	"sentisounds/core/auth"
	"sentisounds/core/recommend"
	"sentisounds/logger"
	"sentisounds/repository"
)

type contextKey string

const emailContextKey contextKey = "email"

// CodeSender delivers signup verification codes.
type CodeSender interface {
	SendVerificationCode(email, code string, ttl time.Duration) error
}

// APIHandler carries every collaborator the HTTP routes need. One instance
// is created at startup and shared across requests.
type APIHandler struct {
	cfg         *config.Config
	userRepo    repository.UserRepository
	pending     *auth.PendingCache
	mailer      CodeSender
	jwt         *auth.TokenIssuer
	recommender *recommend.Service
}

// NewAPIHandler wires the handler.
func NewAPIHandler(
	cfg *config.Config,
	userRepo repository.UserRepository,
	pending *auth.PendingCache,
	mailer CodeSender,
	jwt *auth.TokenIssuer,
	recommender *recommend.Service,
) *APIHandler {
	return &APIHandler{
		cfg:         cfg,
		userRepo:    userRepo,
		pending:     pending,
		mailer:      mailer,
		jwt:         jwt,
		recommender: recommender,
	}
}

// writeSuccess writes the success envelope, merging any extra fields.
func writeSuccess(w http.ResponseWriter, extra map[string]interface{}) {
	body := map[string]interface{}{"status": "success"}
	for key, value := range extra {
		body[key] = value
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(body)
}

// writeFailure writes the failure envelope with a human-readable message.
// Internal errors never surface as unhandled faults; every propagated error
// becomes this envelope.
func writeFailure(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "failure",
		"error":  err.Error(),
	})
}

// principal resolves the acting email address: the explicit form field wins,
// the bearer-token identity is the fallback.
func (h *APIHandler) principal(r *http.Request) string {
	if email := r.FormValue("email_address"); email != "" {
		return email
	}
	if email, ok := r.Context().Value(emailContextKey).(string); ok {
		return email
	}
	return ""
}

// songIDs reads the song_ids field, accepting either repeated form values
// or a single comma-separated value.
func songIDs(r *http.Request) []string {
	values := r.Form["song_ids"]
	if len(values) == 1 && strings.Contains(values[0], ",") {
		values = strings.Split(values[0], ",")
	}
	ids := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	return ids
}

// corsMiddleware mirrors every origin and short-circuits preflight.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// sessionMiddleware parses an optional bearer token and, when valid, puts
// the session email on the request context. Routes still accept an
// explicit email_address field; the token is only a fallback identity.
func (h *APIHandler) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header != "" {
			parts := strings.Split(header, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				claims, err := h.jwt.Parse(parts[1])
				if err == nil {
					ctx := context.WithValue(r.Context(), emailContextKey, claims.Email)
					r = r.WithContext(ctx)
				} else {
					logger.Debug("[Session] ignoring invalid bearer token", logger.ErrorField(err))
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}
