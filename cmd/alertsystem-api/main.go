package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wilsondesouza/AlertSystem/internal/config"
	"github.com/wilsondesouza/AlertSystem/internal/logger"
	"github.com/wilsondesouza/AlertSystem/internal/service"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "alertsystem-api")
	if err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer log.Sync()

	apiService, err := service.NewAPIService(context.Background(), cfg, log)
	if err != nil {
		log.Fatal("Failed to create API service",
			zap.Error(err),
		)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- apiService.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received signal, shutting down",
			zap.String("signal", sig.String()),
		)
	case err := <-errCh:
		if err != nil {
			log.Error("API server failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiService.Stop(shutdownCtx); err != nil {
		log.Error("Shutdown incomplete", zap.Error(err))
	}

	log.Info("Alert API stopped")
}
