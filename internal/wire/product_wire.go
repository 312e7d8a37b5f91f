package wire

import (
	"click-collect/internal/adaptor"
	"click-collect/internal/data/entity"
	"click-collect/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireProduct(
	r chi.Router,
	productHandler *adaptor.ProductHandler,
	g guards,
	log *zap.Logger,
) {
	r.Get("/api/products", productHandler.ListProducts)
	r.Get("/api/products/{id}", productHandler.GetProduct)

	r.Route("/api/merchant/products", func(r chi.Router) {
		r.Use(middleware.AuthSession(g.sessions, g.cookie, log))
		r.Use(middleware.RequireRole(g.roles, entity.RoleMerchant, log))

		r.Post("/", productHandler.CreateProduct)
		r.Delete("/{id}", productHandler.DeleteProduct)
	})
}
