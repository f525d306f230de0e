package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"retailbilling-backend/internal/config"
	"retailbilling-backend/internal/domain"
	"retailbilling-backend/internal/handler"
)

const loginAttemptsPerMinute = 20

// Handlers groups everything the router mounts.
type Handlers struct {
	Home          handler.HomeHandler
	Health        handler.HealthHandler
	Auth          handler.AuthHandler
	Docs          handler.DocsHandler
	Bills         handler.BillHandler
	BillExport    handler.BillExportHandler
	Products      handler.ProductHandler
	ProductsAdmin handler.ProductAdminHandler
	Settings      handler.SettingsHandler
	Users         handler.UserHandler
	Reports       handler.ReportHandler
}

// NewRouter wires HTTP routes and middleware.
func NewRouter(cfg config.Config, logger *slog.Logger, h Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewLoggerMiddleware(logger))
	r.Use(MetricsMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(httprate.LimitByIP(cfg.RateLimitPerMinute, 1*time.Minute))

	h.Home.RegisterRoutes(r)
	h.Health.RegisterRoutes(r)
	r.Group(func(ar chi.Router) {
		ar.Use(httprate.LimitByIP(loginAttemptsPerMinute, 1*time.Minute))
		h.Auth.RegisterRoutes(ar)
	})
	h.Docs.RegisterRoutes(r)
	r.Method("GET", "/metrics", promhttp.Handler())

	r.Group(func(pr chi.Router) {
		pr.Use(AuthMiddleware(cfg.JWTSecret))
		// counter staff (cashier/manager/owner)
		pr.Group(func(sr chi.Router) {
			sr.Use(RequireRole(domain.RoleOwner, domain.RoleManager, domain.RoleCashier))
			h.Auth.RegisterProtectedRoutes(sr)
			h.Bills.RegisterRoutes(sr)
			h.Products.RegisterRoutes(sr)
			h.Settings.RegisterRoutes(sr)
		})
		// back office (manager/owner)
		pr.Group(func(mr chi.Router) {
			mr.Use(RequireRole(domain.RoleOwner, domain.RoleManager))
			h.BillExport.RegisterRoutes(mr)
			h.ProductsAdmin.RegisterRoutes(mr)
			h.Settings.RegisterAdminRoutes(mr)
			h.Users.RegisterRoutes(mr)
			h.Reports.RegisterRoutes(mr)
		})
	})

	return r
}
