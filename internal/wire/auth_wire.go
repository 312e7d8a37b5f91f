package wire

import (
	"click-collect/internal/adaptor"
	"click-collect/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireAuth(
	r chi.Router,
	authHandler *adaptor.AuthHandler,
	g guards,
	log *zap.Logger,
) {
	r.Post("/api/auth/signup", authHandler.SignUp)
	r.Post("/api/auth/login", authHandler.Login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(g.sessions, g.cookie, log))

		r.Post("/api/auth/logout", authHandler.Logout)
		r.Get("/api/auth/user", authHandler.User)
	})

	// provider round trip, browser navigations rather than API calls
	r.Get("/auth/oauth", authHandler.OAuthStart)
	r.Get("/auth/callback", authHandler.OAuthCallback)
}
