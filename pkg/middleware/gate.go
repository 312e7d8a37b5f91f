package middleware

import (
	"net/http"

	"click-collect/internal/access"
	"click-collect/internal/data/entity"
	"click-collect/pkg/utils"

	"go.uber.org/zap"
)

// AccessGate applies the page access policy. The session and then the role
// are each resolved once, before the decision is made; the role is only
// looked up for authenticated callers. Redirects use 307.
func AccessGate(resolver SessionResolver, roles RoleResolver, gate access.Gate, cookieName string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token := ExtractToken(r, cookieName)

			res := resolver.Resolve(ctx, token)
			role := entity.DefaultRole
			if res.Authenticated() {
				role = roles.Resolve(ctx, res.Identity.ID)
			}

			decision := gate.Decide(r.URL.Path, res.Authenticated(), role)
			if !decision.Allowed() {
				logger.Debug("Navigation redirected",
					zap.String("path", r.URL.Path),
					zap.Bool("authenticated", res.Authenticated()),
					zap.String("role", string(role)),
					zap.String("location", decision.Location()))
				http.Redirect(w, r, decision.Location(), http.StatusTemporaryRedirect)
				return
			}

			if res.Authenticated() {
				ctx = utils.SetUserContext(ctx, res.Identity.ID)
				ctx = utils.SetRoleContext(ctx, string(role))
				ctx = utils.SetTokenContext(ctx, token)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
