package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/hrstack/payroll-backend-go/internal/config"
	"github.com/hrstack/payroll-backend-go/internal/handler/http/middleware"
	"github.com/hrstack/payroll-backend-go/internal/pkg/jwt"
)

func NewRouter(
	cfg *config.Config,
	jwtService jwt.Service,
	payrollHandler PayrollHandler,
	salaryHandler SalaryHandler,
	notificationHandler NotificationHandler,
) *chi.Mux {
	r := chi.NewRouter()

	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "payroll-backend"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.App.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.App.FrontendURL},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		// SSE stream authenticates via short-lived query-parameter token.
		r.Get("/notifications/stream", notificationHandler.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Route("/payroll", func(r chi.Router) {

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)

					r.Post("/generate", payrollHandler.Generate)
					r.Put("/items/{id}", payrollHandler.UpdateItem)

					r.Route("/runs", func(r chi.Router) {
						r.Get("/", payrollHandler.ListRuns)
						r.Get("/{id}", payrollHandler.GetRun)
						r.Get("/{id}/items", payrollHandler.GetRunItems)
						r.Post("/{id}/process", payrollHandler.Process)
						r.Post("/{id}/complete", payrollHandler.Complete)
						r.Post("/{id}/mark-paid", payrollHandler.MarkPaid)
					})
				})

				r.Get("/runs/{id}/payslips/{employeeId}", payrollHandler.GetPayslip)
			})

			r.Route("/employees/{id}", func(r chi.Router) {
				r.Get("/payslips", payrollHandler.ListEmployeePayslips)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Get("/salary-structure", salaryHandler.Get)
					r.Put("/salary-structure", salaryHandler.Upsert)
				})
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", notificationHandler.List)
				r.Get("/unread-count", notificationHandler.UnreadCount)
				r.Get("/sse-token", notificationHandler.GetSSEToken)
				r.Put("/read", notificationHandler.MarkAsRead)
				r.Put("/read-all", notificationHandler.MarkAllAsRead)
			})
		})
	})

	return r
}
