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
	// 1. Config
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Logger
	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "alertsystem-monitor")
	if err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Service
	monitorService, err := service.NewMonitorService(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to create monitor service",
			zap.Error(err),
		)
	}

	// 4. Run until signalled; the in-flight tick always completes
	done := make(chan error, 1)
	go func() {
		done <- monitorService.Start(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info("Received signal, shutting down",
			zap.String("signal", sig.String()),
		)
		cancel()
		if err := <-done; err != nil {
			log.Error("Monitor stopped with error", zap.Error(err))
		}
	case err := <-done:
		if err != nil {
			log.Error("Monitor stopped with error", zap.Error(err))
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := monitorService.Stop(shutdownCtx); err != nil {
		log.Error("Shutdown incomplete", zap.Error(err))
	}

	log.Info("Alert monitor stopped")
}
