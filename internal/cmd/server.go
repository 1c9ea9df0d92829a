package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/bjarke-xyz/careercode/internal/domain"
	"github.com/bjarke-xyz/careercode/internal/repository"
	serverPkg "github.com/bjarke-xyz/careercode/internal/server"
	"github.com/bjarke-xyz/careercode/internal/service"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func ServerCmd(ctx context.Context) error {
	godotenv.Load()
	cfg, err := loadConfig(os.Getenv)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	logger := newLogger(cfg.Env, "api")

	sessions, err := service.NewSessionSigner([]byte(cfg.JWTSecret), cfg.SessionTTL)
	if err != nil {
		return fmt.Errorf("error creating session signer: %w", err)
	}

	var jobRepo domain.JobRepository
	var appRepo domain.ApplicationRepository
	switch cfg.Store {
	case storeMemory:
		logger.Warn("using in-memory store, data is lost on restart")
		store := repository.NewMemoryStore()
		jobRepo, appRepo = store.Jobs(), store.Applications()
	default:
		pool, err := newDatabasePool(ctx, logger, cfg)
		if err != nil {
			return fmt.Errorf("error creating db pool: %w", err)
		}
		defer pool.Close()
		jobRepo, appRepo = repository.NewPostgresJob(pool), repository.NewPostgresApplication(pool)
	}

	server := serverPkg.NewServer(logger, sessions, jobRepo, appRepo, serverPkg.Options{
		CookieSecure:   cfg.CookieSecure,
		AllowedOrigins: cfg.AllowedOrigins,
	})
	srv := server.Server(cfg.Port)

	// metrics
	if cfg.MetricsPort > 0 {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.MetricsPort), mux)
			logger.Error("metrics server stopped", "error", err)
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	logger.Info("started server", slog.Int("port", cfg.Port), slog.String("store", cfg.Store))

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down server")
	return srv.Shutdown(shutdownCtx)
}
