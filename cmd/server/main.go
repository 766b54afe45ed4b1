// @title                       PlayIndia Web API
// @version                     1.0
// @description                 Website gateway in front of the PlayIndia backend.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/shankarmishra/PLAYINDIA-sub002/internal/api"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/api/handler"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/api/middleware"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/ports"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/service"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/validation"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/infrastructure/backend"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/infrastructure/db/mongo"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/infrastructure/db/redis"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/infrastructure/http/handlers"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/infrastructure/queue"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/pkg/config"
	"github.com/shankarmishra/PLAYINDIA-sub002/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "playindia-web",
	})

	if err := run(cfg, log); err != nil {
		log.Error().Err(err).Msg("application error")
		os.Exit(1)
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("env", cfg.Env).
		Str("backend", cfg.Backend.BaseURL).
		Msg("starting")

	rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("redis close error")
		}
	}()
	log.Info().Str("addr", cfg.Redis.Addr).Msg("redis connected")

	mongoClient, db, auditRepo := connectAudit(ctx, cfg.Mongo, log)
	if mongoClient != nil {
		defer func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := mongoClient.Disconnect(disconnectCtx); err != nil {
				log.Error().Err(err).Msg("mongo disconnect error")
			}
		}()
	}

	// The dispatcher outlives the signal: it is closed after the HTTP server so
	// records from in-flight requests are still written.
	dispatcher := queue.NewDispatcher(cfg.AuditWorkers, auditRepo, logger.Component("audit"))
	dispatcher.Start(context.Background())

	// --- Services ---
	client := backend.NewClient(backend.Config{BaseURL: cfg.Backend.BaseURL, Timeout: cfg.Backend.Timeout}, log)
	sessions := service.NewSessionService(redis.NewSessionStore(rdb), cfg.Session.TTL, logger.Component("session"))
	authService := service.NewAuthService(client, sessions, logger.Component("auth"))
	registrationService := service.NewRegistrationService(client, dispatcher, logger.Component("registration"))
	dashboardService := service.NewDashboardService(client, logger.Component("dashboard"))
	statusService := service.NewStatusService(client, cfg.StatusPollInterval, logger.Component("status"))

	// --- HTTP ---
	cookie := middleware.SessionCookie{Name: cfg.Session.CookieName, Secure: cfg.Session.CookieSecure}
	httpLog := logger.Component("http")

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(ctx, rdb, middleware.RateLimitConfig{
			Limit: middleware.PerMinute(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst),
		}, httpLog)
	}

	checks := map[string]handlers.Check{
		"redis":   handlers.RedisCheck(rdb),
		"backend": client.Ping,
	}
	if db != nil {
		checks["mongo"] = handlers.MongoCheck(db)
	}

	e := api.NewRouter(api.Dependencies{
		Log:          httpLog,
		Sessions:     sessions,
		Cookie:       cookie,
		RateLimiter:  limiter,
		Auth:         handler.NewAuthHandler(authService, sessions, cookie, httpLog),
		Registration: handler.NewRegistrationHandler(registrationService, sessions, cookie, handler.RegistrationConfig{ParseTimeout: cfg.Registration.ParseTimeout, MaxMemory: cfg.Registration.MaxMemory}, httpLog),
		Dashboard:    handler.NewDashboardHandler(dashboardService, sessions, cookie, httpLog),
		Status:       handler.NewStatusHandler(statusService, sessions, cookie, httpLog),
		Proxy:        handler.NewProxyHandler(client, backend.GroupPath, sessions, cookie, httpLog),
		Validate:     handler.NewValidateHandler(validation.New()),
		Health:       handlers.NewHealthHandler(),
		HealthReady:  handlers.NewHealthDependenciesHandler(checks),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown error")
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("audit queue not drained")
	}

	log.Info().Msg("stopped")
	return nil
}

// connectAudit returns the audit repository. MongoDB is optional: when it is
// not configured or not reachable, incomplete profiles are only logged.
func connectAudit(ctx context.Context, cfg config.MongoConfig, log zerolog.Logger) (*mongodriver.Client, *mongodriver.Database, ports.IncompleteProfileRepository) {
	fallback := queue.NewLogRepository(logger.Component("audit"))
	if cfg.URI == "" {
		log.Warn().Msg("MONGO_URI not set, incomplete profiles will only be logged")
		return nil, nil, fallback
	}

	client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.URI, Database: cfg.Database})
	if err != nil {
		log.Warn().Err(err).Msg("mongo unavailable, incomplete profiles will only be logged")
		return nil, nil, fallback
	}

	repo := mongo.NewIncompleteProfileRepository(db)
	if err := repo.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to ensure incomplete profile indexes")
	}
	log.Info().Str("database", cfg.Database).Msg("mongo connected")
	return client, db, repo
}
