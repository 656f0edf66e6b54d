package http

import (
	"net/http"
	"time"

	"NeedForPartyService/config"
	"NeedForPartyService/pkg/server"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

const requestTimeout = 30 * time.Second

// NewRouter собирает маршрутизатор API со всеми middleware и эндпоинтами
func NewRouter(
	handler *Handler,
	healthCheck *server.HealthCheck,
	logger *zap.Logger,
	cfg config.HTTPConfig,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(server.LoggingMiddleware(logger))
	r.Use(server.MetricsMiddleware)

	r.Get("/", handler.Root)
	r.Get("/docs", handler.Docs)
	r.Get("/api/health", healthCheck.Handler)
	r.Get("/health/live", healthCheck.LivenessHandler)
	r.Get("/health/ready", healthCheck.ReadinessHandler)
	r.Get("/api/test-db", handler.TestDB)

	r.Post("/api/user/register", handler.RegisterUser)
	r.Get("/api/user/{nickname}", handler.GetUser)
	r.Get("/api/users", handler.ListUsers)
	r.Get("/api/parties", handler.ListParties)

	return r
}
