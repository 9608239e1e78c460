package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/config"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/profile"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// NewLogger builds the ECS-formatted JSON logger shared by the request logger and slog.Default.
func NewLogger(app config.AppConfig) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(app.Env != "production")

	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(app.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "timeclock"),
		slog.String("version", "v1.0.0"),
		slog.String("env", app.Env),
	)
}

func NewRouter(
	cfg *config.Config,
	logger *slog.Logger,
	JWTService jwt.Service,
	profileRepo profile.ProfileRepository,
	shiftHandler ShiftHandler,
	adminShiftHandler AdminShiftHandler,
	locationHandler LocationHandler,
	qrClockHandler QRClockHandler,
	realtimeHandler RealtimeHandler,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.App.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		// SSE clients authenticate with a short-lived query token
		r.Get("/realtime/shifts", realtimeHandler.StreamShifts)

		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))

			// The QR scanner app expects its own envelope, also for 401s
			r.Post("/qr-clock", qrClockHandler.Clock)

			// Requires authentication
			r.Group(func(r chi.Router) {
				r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

				r.Route("/shifts", func(r chi.Router) {
					r.Post("/clock-in", shiftHandler.ClockIn)
					r.Post("/clock-out", shiftHandler.ClockOut)
					r.Get("/active", shiftHandler.GetActive)
					r.Get("/history", shiftHandler.GetHistory)
				})

				r.Get("/location", locationHandler.Get)

				// Admin only
				r.Route("/admin", func(r chi.Router) {
					r.Use(middleware.AdminOnly(profileRepo))

					r.Route("/shifts", func(r chi.Router) {
						r.Get("/", adminShiftHandler.List)
						r.Get("/active", adminShiftHandler.ListActive)
						r.Post("/{id}/clock-out", adminShiftHandler.ClockOut)
						r.Put("/{id}", adminShiftHandler.Update)
						r.Delete("/{id}", adminShiftHandler.Delete)
					})

					r.Route("/location", func(r chi.Router) {
						r.Put("/", locationHandler.Save)
						r.Get("/qr", locationHandler.GetQRPayload)
					})

					r.Get("/realtime/token", realtimeHandler.GetSSEToken)
				})
			})
		})
	})
	return r
}
