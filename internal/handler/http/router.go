package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/face-attendance-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/face-attendance-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterOptions struct {
	AllowedOrigins []string
	// Logger receives one ECS record per request. Nil disables request logging.
	Logger *slog.Logger
	// Metrics serves /metrics. Nil falls back to the default prometheus registry.
	Metrics http.Handler
}

type Handlers struct {
	Auth        AuthHandler
	Employee    EmployeeHandler
	Attendance  AttendanceHandler
	Recognition RecognitionHandler
	Report      ReportHandler
}

func NewRouter(JWTService jwt.Service, h Handlers, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	allowedOrigins := opts.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition", "Retry-After"},
		MaxAge:           300,
	}))

	if opts.Logger != nil {
		r.Use(httplog.RequestLogger(opts.Logger, &httplog.Options{
			Level:  slog.LevelInfo,
			Schema: httplog.SchemaECS,
		}))
	}

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/ping"))

	metricsHandler := opts.Metrics
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Route("/api/v1", func(r chi.Router) {

		r.Post("/auth/login", h.Auth.Login)

		// Stream token travels in the query string and is checked by the handler
		r.Get("/attendance/stream", h.Attendance.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			// Admin only
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)

				r.Post("/auth/kiosk-token", h.Auth.IssueKioskToken)

				r.Get("/employees", h.Employee.ListEmployees)
				r.Post("/employees", h.Employee.Enroll)
				r.Get("/employees/{id}", h.Employee.GetEmployee)

				r.Route("/reports", func(r chi.Router) {
					r.Get("/monthly", h.Report.GetMonthlySummary)
					r.Get("/monthly/export", h.Report.ExportMonthlySummary)
				})
			})

			// Kiosk or admin
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireKiosk)

				r.Post("/auth/stream-token", h.Auth.IssueStreamToken)
				r.Get("/employees/encodings", h.Employee.GetEncodings)
				r.Post("/recognition/match", h.Recognition.Match)

				r.Get("/attendance", h.Attendance.List)
				r.Post("/attendance", h.Attendance.Record)
				r.Post("/attendance/scan", h.Attendance.Scan)
				r.Get("/attendance/status/{id}", h.Attendance.Status)
			})
		})
	})
	return r
}
