package wire

import (
	"click-collect/internal/adaptor"
	"click-collect/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireProfile(
	r chi.Router,
	profileHandler *adaptor.ProfileHandler,
	g guards,
	log *zap.Logger,
) {
	r.Route("/api/profile", func(r chi.Router) {
		r.Use(middleware.AuthSession(g.sessions, g.cookie, log))

		r.Get("/", profileHandler.GetProfile)
		r.Post("/merchant", profileHandler.BecomeMerchant)
	})
}
