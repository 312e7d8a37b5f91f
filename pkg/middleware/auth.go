package middleware

import (
	"context"
	"net/http"
	"strings"

	"click-collect/internal/data/entity"
	"click-collect/internal/session"
	"click-collect/pkg/utils"

	"go.uber.org/zap"
)

// SessionResolver resolves a credential to an identity without failing.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) session.Result
}

// RoleResolver resolves the role of an identity without failing.
type RoleResolver interface {
	Resolve(ctx context.Context, identityID string) entity.Role
}

// ExtractToken reads the access token from "Authorization: Bearer <token>",
// falling back to the session cookie.
func ExtractToken(r *http.Request, cookieName string) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}

	if cookieName == "" {
		return ""
	}
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// AuthSession rejects API requests without a valid session with 401 and
// stores the user id and token in the request context.
func AuthSession(resolver SessionResolver, cookieName string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r, cookieName)
			if token == "" {
				utils.ResponseUnauthorized(w, "Missing authorization token")
				return
			}

			res := resolver.Resolve(r.Context(), token)
			if !res.Authenticated() {
				logger.Debug("Invalid or expired session", zap.String("path", r.URL.Path))
				utils.ResponseUnauthorized(w, "Invalid or expired session")
				return
			}

			ctx := utils.SetUserContext(r.Context(), res.Identity.ID)
			ctx = utils.SetTokenContext(ctx, token)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole lets the request through only when the caller holds role.
// It must run after AuthSession.
func RequireRole(roles RoleResolver, role entity.Role, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := utils.GetUserIDFromContext(r.Context())
			if !ok {
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			actual := roles.Resolve(r.Context(), userID)
			if actual != role {
				logger.Warn("Role check failed",
					zap.String("user_id", userID),
					zap.String("role", string(actual)),
					zap.String("required", string(role)),
					zap.String("path", r.URL.Path))
				utils.ResponseForbidden(w, string(role)+" access required")
				return
			}

			next.ServeHTTP(w, r.WithContext(utils.SetRoleContext(r.Context(), string(actual))))
		})
	}
}
