package wire

import (
	"click-collect/internal/access"
	"click-collect/internal/adaptor"
	"click-collect/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// wirePages serves built assets directly and sends every other navigation
// through the access gate before the single page app is served.
func wirePages(
	r chi.Router,
	pageHandler *adaptor.PageHandler,
	gate access.Gate,
	g guards,
	log *zap.Logger,
) {
	r.With(
		pageHandler.Static,
		middleware.AccessGate(g.sessions, g.roles, gate, g.cookie, log),
	).Handle("/*", pageHandler)
}
