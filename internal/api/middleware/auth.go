package middleware

import (
	"context"
	"errors"
	"net/http"

	"cp_tracker/internal/common"
	"cp_tracker/internal/common/security"
	"cp_tracker/internal/domain/model"
	"cp_tracker/internal/domain/repository"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const SessionCtxKey contextKey = "session"

// Authenticator turns a verified bearer token into a *model.Session on the
// request context, rejecting tokens that were logged out.
func Authenticator(sessions repository.SessionRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())

			if err != nil {
				if errors.Is(err, jwtauth.ErrNoTokenFound) {
					common.RespondWithError(w, http.StatusUnauthorized, "Authorization token required")
				} else {
					common.RespondWithError(w, http.StatusUnauthorized, "Invalid token: "+err.Error())
				}
				return
			}
			if token == nil {
				common.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			session, err := security.SessionFromClaims(jwt.MapClaims(claims))
			if err != nil {
				common.RespondWithError(w, http.StatusUnauthorized, "Invalid token claims: "+err.Error())
				return
			}

			revoked, err := sessions.IsRevoked(r.Context(), session.ID)
			if err != nil {
				common.RespondWithError(w, http.StatusServiceUnavailable, "Session store unavailable")
				return
			}
			if revoked {
				common.RespondWithError(w, http.StatusUnauthorized, "Session has been logged out")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

// AdminOnly must run after Authenticator.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !SessionFromContext(r.Context()).IsAdminUser() {
			common.RespondWithError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func WithSession(ctx context.Context, session *model.Session) context.Context {
	return context.WithValue(ctx, SessionCtxKey, session)
}

// SessionFromContext returns nil when the request is anonymous.
func SessionFromContext(ctx context.Context) *model.Session {
	session, _ := ctx.Value(SessionCtxKey).(*model.Session)
	return session
}
