package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"verokai-pos/internal/config"
	"verokai-pos/internal/repository"
	"verokai-pos/internal/server"
	"verokai-pos/internal/service"
	"verokai-pos/internal/ws"
	"verokai-pos/pkg/database"
	"verokai-pos/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	// 1. Config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// 2. Logger
	zlog, err := logger.Init(logger.Options{Production: cfg.IsProduction(), File: cfg.LogFile})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zlog.Sync()

	// 3. Database
	db, err := database.Connect(database.Options{
		DSN:             cfg.Database.DSN(cfg.Location),
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		Verbose:         !cfg.IsProduction(),
	})
	if err != nil {
		zlog.Fatal("database", zap.Error(err))
	}
	defer database.Close(db)

	if err := repository.AutoMigrate(db); err != nil {
		zlog.Fatal("migrate", zap.Error(err))
	}

	// 4. Seed roles, privileges and the administrator
	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 30*time.Second)
	if err := service.SeedAccessControl(seedCtx, repository.NewPrivilegeRepo(db), repository.NewRoleRepo(db)); err != nil {
		zlog.Fatal("seed access control", zap.Error(err))
	}
	if err := service.SeedAdmin(seedCtx, repository.NewUserRepo(db), repository.NewRoleRepo(db), cfg.Admin.Email, cfg.Admin.Password); err != nil {
		zlog.Fatal("seed admin", zap.Error(err))
	}
	cancelSeed()

	// 5. WebSocket hub
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := ws.NewHub(256)
	go hub.Run(ctx)

	// 6. HTTP
	app := server.New(cfg, db, hub)
	go func() {
		zlog.Info("listening", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := app.Listen(":" + cfg.Port); err != nil {
			zlog.Error("listen", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		zlog.Error("forced shutdown", zap.Error(err))
	}
	zlog.Info("server exited")
}
