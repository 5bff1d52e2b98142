package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/user"
	"github.com/cmlabs-hris/attendance-reconciler/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-reconciler/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterOptions struct {
	Env            string
	Version        string
	AllowedOrigins []string
	LogLevel       slog.Level
}

func NewRouter(opts RouterOptions, JWTService jwt.Service, attendanceHandler AttendanceHandler, scanHandler ScanHandler) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(opts.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "attendance-reconciler"),
		slog.String("version", opts.Version),
		slog.String("env", opts.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Route("/attendance", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceViewReport))
					r.Get("/daily", attendanceHandler.GetDailyReport)
					r.Get("/biometric", attendanceHandler.GetBiometricReport)
					r.Get("/summary", attendanceHandler.GetSummary)
					r.Get("/daily/snapshot", attendanceHandler.GetSnapshot)
				})

				r.With(middleware.RequirePermission(user.PermissionAttendanceExport)).
					Get("/daily/export", attendanceHandler.ExportDailyReport)

				r.With(middleware.RequirePermission(user.PermissionAttendanceSnapshot)).
					Post("/daily/snapshot", attendanceHandler.SnapshotDailyReport)
			})

			r.With(middleware.RequirePermission(user.PermissionScansIngest)).
				Post("/scans", scanHandler.Ingest)
		})
	})
	return r
}
