package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/config"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/location"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/profile"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/shift"
	appHTTP "github.com/cmlabs-hris/timeclock-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/realtime"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/telemetry"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/repository/memory"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/repository/postgresql"
	locationService "github.com/cmlabs-hris/timeclock-backend-go/internal/service/location"
	qrClockService "github.com/cmlabs-hris/timeclock-backend-go/internal/service/qrclock"
	shiftService "github.com/cmlabs-hris/timeclock-backend-go/internal/service/shift"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type repositories struct {
	shifts    shift.ShiftRepository
	locations location.LocationRepository
	profiles  profile.ProfileRepository
	close     func()
}

func main() {
	tokenFor := flag.String("token", "", "print a 24h access token for the given profile id and exit (local development)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading config: ", err)
	}

	JWTService := jwt.NewJWTService(cfg.JWT.Secret)

	if *tokenFor != "" {
		token, _, err := JWTService.GenerateAccessToken(*tokenFor, "", 24*time.Hour)
		if err != nil {
			log.Fatal("Failed to generate token: ", err)
		}
		fmt.Println(token)
		return
	}

	logger := appHTTP.NewLogger(cfg.App)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry := telemetry.Setup(ctx, cfg.Telemetry)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			slog.Error("Telemetry shutdown failed", "error", err)
		}
	}()

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize storage", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer repos.close()

	hub := sse.NewHub()
	var publisher shift.ChangePublisher = realtime.NewLocalBroker(hub)
	if cfg.Redis.Addr != "" {
		redisBroker, err := realtime.NewRedisBroker(ctx, cfg.Redis, hub)
		if err != nil {
			slog.Error("Failed to connect to redis", "addr", cfg.Redis.Addr, "error", err)
			os.Exit(1)
		}
		defer redisBroker.Close()

		go redisBroker.Run(ctx)
		publisher = redisBroker
	}

	loc := cfg.Location()

	shiftSvc := shiftService.NewShiftService(repos.shifts, repos.locations, repos.profiles, publisher)
	adminShiftSvc := shiftService.NewAdminShiftService(repos.shifts, repos.profiles, publisher, loc)
	locationSvc := locationService.NewLocationService(repos.locations, repos.profiles)
	qrClockSvc := qrClockService.NewQRClockService(repos.shifts, repos.locations, repos.profiles, publisher, loc)

	router := appHTTP.NewRouter(
		cfg,
		logger,
		JWTService,
		repos.profiles,
		appHTTP.NewShiftHandler(shiftSvc),
		appHTTP.NewAdminShiftHandler(adminShiftSvc),
		appHTTP.NewLocationHandler(locationSvc),
		appHTTP.NewQRClockHandler(qrClockSvc),
		appHTTP.NewRealtimeHandler(hub, JWTService, repos.profiles),
	)

	scheduler := cron.NewScheduler(ctx)
	cron.NewShiftJobs(repos.shifts, publisher).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()
	slog.Info("Background jobs scheduled", "jobs", scheduler.Jobs())

	// No WriteTimeout: the shift change feed is a long-lived response.
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           otelhttp.NewHandler(router, cfg.Telemetry.ServiceName),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env, "db_driver", cfg.Database.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down", "open_streams", hub.TotalSubscribers())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}

func openRepositories(ctx context.Context, cfg *config.Config) (repositories, error) {
	switch cfg.Database.Driver {
	case "memory":
		profiles := memory.NewProfileRepository()
		if err := profiles.Seed(cfg.App.SeedProfiles); err != nil {
			return repositories{}, err
		}
		slog.Warn("Using in-memory storage, data is lost on restart", "seeded_profiles", len(cfg.App.SeedProfiles))
		return repositories{
			shifts:    memory.NewShiftRepository(),
			locations: memory.NewLocationRepository(),
			profiles:  profiles,
			close:     func() {},
		}, nil

	default:
		dsn := cfg.DatabaseURL()
		if cfg.Database.AutoMigrate {
			if err := database.RunMigrations(dsn); err != nil {
				return repositories{}, err
			}
		}

		db, err := database.NewPostgreSQLDB(ctx, dsn)
		if err != nil {
			return repositories{}, fmt.Errorf("failed to connect to database: %w", err)
		}
		return repositories{
			shifts:    postgresql.NewShiftRepository(db),
			locations: postgresql.NewLocationRepository(db),
			profiles:  postgresql.NewProfileRepository(db),
			close:     db.Close,
		}, nil
	}
}
