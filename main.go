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
	"go.uber.org/zap"

	"tablepay-gateway/internal/config"
	httpapi "tablepay-gateway/internal/http"
	applogger "tablepay-gateway/internal/logger"
	"tablepay-gateway/internal/metrics"
	"tablepay-gateway/internal/payment"
	"tablepay-gateway/internal/session"
	"tablepay-gateway/internal/upstream"
	"tablepay-gateway/internal/ws"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	logger, err := applogger.New(cfg.Env)
	if err != nil {
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	client := upstream.New(cfg.APIBaseURL, cfg.UpstreamTimeout, logger)
	registry := session.NewRegistry(client, cfg.SessionPollInterval, logger, metrics.ObservePoll)
	defer registry.Close()

	flow := payment.NewFlow(client, logger)
	wsServer := ws.New(registry, logger)

	router := httpapi.NewRouter(client, registry, flow, logger, cfg, wsServer)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("gateway listening",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("upstream", cfg.APIBaseURL),
			zap.Duration("pollInterval", cfg.SessionPollInterval))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown incomplete", zap.Error(err))
	}
}
