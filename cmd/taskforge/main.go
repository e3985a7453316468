package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"github.com/taskforge/taskforge/pkg/api"
	"github.com/taskforge/taskforge/pkg/auth"
	"github.com/taskforge/taskforge/pkg/config"
	"github.com/taskforge/taskforge/pkg/httputil"
	"github.com/taskforge/taskforge/pkg/observability"
	"github.com/taskforge/taskforge/pkg/storage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		observability.NewLogger(observability.ErrorLevel, os.Stderr).WithError(err).Error("failed to load configuration")
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)
	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Error("taskforge exited with error")
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *observability.Logger) error {
	ctx := context.Background()

	shutdownTracing, err := observability.InitTracing(ctx, observability.OTelConfig{
		Enabled:        cfg.Observability.OTelEnabled,
		Endpoint:       cfg.Observability.OTelEndpoint,
		ServiceName:    cfg.Observability.OTelServiceName,
		ServiceVersion: cfg.Observability.OTelServiceVersion,
		Insecure:       cfg.Observability.OTelInsecure,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.Database.MaxConns)
	db.SetMaxIdleConns(cfg.Database.MinConns)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Database.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	if err := storage.EnsureSchema(pingCtx, db); err != nil {
		return err
	}
	logger.Info("database ready")

	var metrics *observability.Metrics
	var registry *prometheus.Registry
	if cfg.Observability.MetricsEnabled {
		registry = prometheus.NewRegistry()
		metrics = observability.NewMetrics(registry)
	}

	users := storage.NewUserStore(db)
	projects := storage.NewProjectStore(db)
	tasks := storage.NewTaskStore(db)
	if metrics != nil {
		users.WithRecorder(metrics)
		projects.WithRecorder(metrics)
		tasks.WithRecorder(metrics)
	}

	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret)
	if err != nil {
		return err
	}
	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)

	server := api.NewServer(api.Deps{
		Users:    users,
		Projects: projects,
		Tasks:    tasks,
		Hasher:   hasher,
		Tokens:   tokens,
		Metrics:  metrics,
	})

	middlewares := []func(http.Handler) http.Handler{
		httputil.RequestIDMiddleware,
		httputil.LoggingMiddleware(logger),
		httputil.RecoveryMiddleware(logger),
		httputil.MaxBytesMiddleware(1 << 20),
	}
	if metrics != nil {
		middlewares = append(middlewares, observability.HTTPMetricsMiddleware(metrics))
	}
	var handler http.Handler = httputil.Chain(middlewares...)(server)
	if cfg.Observability.OTelEnabled {
		handler = otelhttp.NewHandler(handler, "taskforge")
	}

	apiServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	healthMux := http.NewServeMux()
	checker := observability.NewHealthChecker(db)
	healthMux.HandleFunc("/health/live", checker.Liveness)
	healthMux.HandleFunc("/health/ready", checker.Readiness)
	if registry != nil {
		observability.RegisterMetricsEndpoint(healthMux, registry)
	}
	healthServer := &http.Server{
		Addr:    net.JoinHostPort(cfg.Server.Host, cfg.Server.HealthPort),
		Handler: healthMux,
	}

	sm := observability.NewShutdownManager(logger, cfg.Server.ShutdownTimeout)
	sm.RegisterServer(apiServer)
	sm.RegisterServer(healthServer)
	sm.RegisterShutdownFunc(func(context.Context) error { return db.Close() })
	if shutdownTracing != nil {
		sm.RegisterShutdownFunc(shutdownTracing)
	}

	if metrics != nil {
		stop := make(chan struct{})
		go func() {
			ticker := time.NewTicker(15 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					metrics.UpdateDBStats(db.Stats())
				case <-stop:
					return
				}
			}
		}()
		sm.RegisterShutdownFunc(func(context.Context) error {
			close(stop)
			return nil
		})
	}

	g := new(errgroup.Group)
	g.Go(func() error {
		logger.Infof("API server listening on %s", apiServer.Addr)
		if err := apiServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		logger.Infof("Health server listening on %s", healthServer.Addr)
		if err := healthServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(sm.WaitForShutdown)

	return g.Wait()
}
