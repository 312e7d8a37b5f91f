package wire

import (
	"net/http"

	"click-collect/internal/access"
	"click-collect/internal/adaptor"
	"click-collect/internal/data/repository"
	"click-collect/internal/session"
	"click-collect/internal/usecase"
	"click-collect/pkg/middleware"
	"click-collect/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// App holds the wired router and the services background jobs need.
type App struct {
	Router  *chi.Mux
	Service *usecase.Service
}

// guards are the request-time resolvers shared by every route group.
type guards struct {
	sessions *session.Resolver
	roles    *session.RoleResolver
	cookie   string
}

func Wiring(repo *repository.Repository, config *utils.Config, logger *zap.Logger) *App {
	service := usecase.NewService(repo, config, logger)
	handler := adaptor.NewHandler(service, config, logger)

	g := guards{
		sessions: session.NewResolver(service.Auth, logger),
		roles:    session.NewRoleResolver(repo.Profile, logger),
		cookie:   config.Auth.CookieName,
	}

	return &App{
		Router:  setupRouter(handler, g, config, logger),
		Service: service,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	g guards,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS(config.CORS.AllowedOrigins))

	wireAuth(r, handler.Auth, g, logger)
	wireProfile(r, handler.Profile, g, logger)
	wireProduct(r, handler.Product, g, logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.ResponseSuccess(w, "OK", nil)
	})
	r.HandleFunc("/api/*", func(w http.ResponseWriter, r *http.Request) {
		utils.ResponseNotFound(w, "Route not found")
	})

	paths := access.DefaultPaths()
	paths.Public = config.Auth.PublicPrefixes
	wirePages(r, handler.Page, access.NewGate(paths), g, logger)

	return r
}
