package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/fjod/storefront/internal/auth"
	"github.com/fjod/storefront/internal/domain"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

type contextKey string

const identityKey contextKey = "identity"

// TokenParser validates access tokens.
type TokenParser interface {
	ParseAccess(token string) (*auth.Claims, error)
}

// Authenticate resolves the bearer token to an Identity stored in the request
// context. Missing tokens answer 401 with errorCode -1, invalid ones with -2.
func Authenticate(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				respondError(w, http.StatusUnauthorized, -1, "Not authenticated the user")
				return
			}

			claims, err := tokens.ParseAccess(strings.TrimSpace(token))
			if err != nil {
				respondError(w, http.StatusUnauthorized, -2, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), claims.Identity())))
		})
	}
}

// RequireAdmin must run after Authenticate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFromContext(r.Context())
		if !ok || !id.IsAdmin() {
			respondError(w, http.StatusForbidden, -3, "Access denied")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(identityKey).(domain.Identity)
	return id, ok
}

// RequestIDMiddleware keeps an incoming X-Request-Id or assigns a new one.
// The id is stored where chi's middleware.GetReqID finds it.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(middleware.RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
			r.Header.Set(middleware.RequestIDHeader, requestID)
		}

		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, requestID)
		w.Header().Set(middleware.RequestIDHeader, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestLogger attaches the global logger to each request and writes one
// access log line per response.
func requestLogger(next http.Handler) http.Handler {
	h := hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Ctx(r.Context()).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	})(next)
	h = hlog.CustomHeaderHandler("request_id", middleware.RequestIDHeader)(h)
	return hlog.NewHandler(log.Logger)(h)
}
