package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/urlstatus/internal/config"
	"github.com/hamed0406/urlstatus/internal/httpapi"
	apimw "github.com/hamed0406/urlstatus/internal/httpapi/middleware"
	"github.com/hamed0406/urlstatus/internal/logging"
	"github.com/hamed0406/urlstatus/internal/scheduler"
)

func main() {
	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	batch, err := scheduler.FromConfig(cfg, logger, nil)
	if err != nil {
		logger.Fatal("api_setup", zap.Error(err))
	}
	api := httpapi.NewServer(logger, batch, httpapi.SettingsFrom(cfg))
	keys := apimw.Keys{Public: cfg.PublicAPIKeys, Admin: cfg.AdminAPIKeys}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Router(keys, cfg.AllowedOrigins, cfg.PublicRPM, cfg.PublicBurst),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeout*2+5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("api_shutdown", zap.Error(err))
		}
	}()

	logger.Info("api_listen", zap.String("addr", cfg.Addr), zap.Int("workers", cfg.MaxWorkers))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("api_listen", zap.Error(err))
	}
	logger.Info("api_stopped")
}
