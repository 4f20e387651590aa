// Command server runs the stock trade HTTP service.
package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"

	app "github.com/Maddhhuri-kothamasu/Stock-Trade/internal/app"
	"github.com/Maddhhuri-kothamasu/Stock-Trade/internal/app/httpapi"
	"github.com/Maddhhuri-kothamasu/Stock-Trade/internal/app/storage/postgres"
	"github.com/Maddhhuri-kothamasu/Stock-Trade/internal/config"
	"github.com/Maddhhuri-kothamasu/Stock-Trade/internal/logging"
	"github.com/Maddhhuri-kothamasu/Stock-Trade/internal/metrics"
	"github.com/Maddhhuri-kothamasu/Stock-Trade/internal/middleware"
	"github.com/Maddhhuri-kothamasu/Stock-Trade/internal/password"
	"github.com/Maddhhuri-kothamasu/Stock-Trade/internal/token"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.NewDefault("server").WithError(err).Fatal("invalid configuration")
	}

	log := logging.New("stock-trade", cfg.LogLevel, cfg.LogFormat)
	log.WithFields(map[string]interface{}{
		"env":    cfg.Env,
		"listen": cfg.ListenAddr,
	}).Info("starting server")

	stores, db, err := buildStores(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("storage initialisation failed")
	}
	if db != nil {
		defer db.Close()
	}

	codec := token.NewCodec(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	hasher := password.NewHasher(cfg.BcryptCost)
	application := app.New(stores, codec, hasher, log)

	m := metrics.New()
	gate := middleware.NewAuthMiddleware(codec, log.WithField("component", "auth"))
	limiter := middleware.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst, log.WithField("component", "ratelimit"))
	limiterCtx, stopLimiterCleanup := context.WithCancel(context.Background())
	defer stopLimiterCleanup()
	limiter.StartCleanup(limiterCtx, 10*time.Minute)

	router := httpapi.NewRouter(application, httpapi.Options{
		AuthGate:       gate.Handler,
		RateLimit:      limiter.Handler,
		MetricsHandler: m.Handler(),
		Middleware: []mux.MiddlewareFunc{
			middleware.LoggingMiddleware(log),
			middleware.MetricsMiddleware(m),
		},
		Logger:      log.WithField("component", "httpapi"),
		Development: cfg.Development(),
	})

	cors := middleware.NewCORSMiddleware(cfg.CORSAllowedOrigins)
	handler := middleware.Recover(log, cfg.Development())(cors.Handler(router))

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: handler,

		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		log.WithField("signal", sig.String()).Info("shutting down")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
	log.Info("server stopped")
}

// buildStores opens Postgres when DATABASE_URL is set, falling back to the
// in-memory store otherwise. The returned *sql.DB is nil for memory mode.
func buildStores(cfg config.Config, log *logging.Logger) (app.Stores, *sql.DB, error) {
	if cfg.DatabaseURL == "" {
		log.Info("no DATABASE_URL configured, using in-memory storage")
		return app.Stores{}, nil, nil
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return app.Stores{}, nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return app.Stores{}, nil, err
	}
	if err := postgres.Apply(ctx, db); err != nil {
		db.Close()
		return app.Stores{}, nil, err
	}

	store := postgres.New(db)
	log.Info("connected to postgres")
	return app.Stores{Users: store, Trades: store}, db, nil
}
