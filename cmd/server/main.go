package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"bree/internal/audit"
	"bree/internal/checkout"
	"bree/internal/config"
	"bree/internal/drawer"
	"bree/internal/infrastructure/logger"
	"bree/internal/infrastructure/mysql"
	"bree/internal/ledger"
	"bree/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := mysql.NewConnection(cfg.Database)
	if err != nil {
		zapLogger.Fatal("connecting to database", zap.Error(err))
	}
	defer db.Close()
	zapLogger.Info("database connected")

	auditor := audit.NewZapRecorder(zapLogger)

	movementCtrl, stockSvc := ledger.NewModule(db, cfg, auditor, zapLogger)
	drawerCtrl, drawerSvc := drawer.NewModule(db, cfg, auditor, zapLogger)
	checkoutCtrl := checkout.NewModule(db, cfg, stockSvc, drawerSvc, auditor, zapLogger)

	router := server.NewRouter(checkoutCtrl, drawerCtrl, movementCtrl, zapLogger)

	srv := server.New(cfg.Server.Port, router, zapLogger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zapLogger.Info("received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server shutdown failed", zap.Error(err))
	}

	zapLogger.Info("server stopped gracefully")
}
