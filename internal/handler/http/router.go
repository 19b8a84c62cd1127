package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/metrics"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// RouterConfig carries the settings the router needs from config.AppConfig.
type RouterConfig struct {
	Env         string
	Version     string
	FrontendURL string
	LogLevel    slog.Level
}

type Handlers struct {
	Exception ExceptionHandler
	Robot     RobotHandler
	Part      PartHandler
	Report    ReportHandler
	Stats     StatsHandler
	Stream    StreamHandler
}

func NewRouter(cfg RouterConfig, JWTService jwt.Service, m *metrics.Metrics, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(cfg.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.LogLevel,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "robot-fleet"),
		slog.String("version", cfg.Version),
		slog.String("env", cfg.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(m.Middleware)
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Method(http.MethodGet, "/metrics", m.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// EventSource clients authenticate with a query token
		r.Get("/stream", h.Stream.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)
			r.Use(middleware.RequireWarehouse)
			r.Use(chiMiddleware.AllowContentEncoding("application/json"))

			r.Post("/stream/token", h.Stream.GetToken)

			r.Route("/exceptions", func(r chi.Router) {
				r.Get("/", h.Exception.List)
				r.Post("/", h.Exception.Log)
				r.Post("/import", h.Exception.Import)
				r.Get("/{id}", h.Exception.Get)
				r.Patch("/{id}/status", h.Exception.UpdateStatus)
			})

			r.Route("/robots", func(r chi.Router) {
				r.Get("/", h.Robot.List)
				r.Post("/{id}/status", h.Robot.ChangeStatus)
			})

			r.Route("/parts", func(r chi.Router) {
				r.Get("/", h.Part.List)
				r.Post("/swaps", h.Part.Swap)

				// Supervisor only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireSupervisor)
					r.Post("/{id}/restock", h.Part.Restock)
				})
			})

			r.Route("/reports", func(r chi.Router) {
				r.Get("/shift", h.Report.GetShiftReport)
				r.Get("/monthly", h.Report.GetMonthlyReport)
			})

			r.Route("/stats", func(r chi.Router) {
				r.Get("/current-shift", h.Stats.CurrentShift)
				r.Get("/scores", h.Stats.Scores)
			})
		})
	})
	return r
}
