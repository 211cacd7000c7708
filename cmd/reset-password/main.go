package main

import (
	"context"
	"flag"
	"log"
	"time"

	"verokai-pos/internal/config"
	"verokai-pos/internal/repository"
	"verokai-pos/pkg/database"
	"verokai-pos/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	email := flag.String("email", "", "account email (defaults to ADMIN_EMAIL)")
	password := flag.String("password", "", "new password (defaults to ADMIN_PASSWORD)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zlog, err := logger.Init(logger.Options{Production: cfg.IsProduction()})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zlog.Sync()

	if *email == "" {
		*email = cfg.Admin.Email
	}
	if *password == "" {
		*password = cfg.Admin.Password
	}
	if len(*password) < 6 {
		zlog.Fatal("password must be at least 6 characters")
	}

	db, err := database.Connect(database.Options{
		DSN:             cfg.Database.DSN(cfg.Location),
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute,
	})
	if err != nil {
		zlog.Fatal("database", zap.Error(err))
	}
	defer database.Close(db)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users := repository.NewUserRepo(db)
	user, err := users.FindByEmail(ctx, *email)
	if err != nil {
		zlog.Fatal("user not found", zap.String("email", *email), zap.Error(err))
	}

	if err := user.SetPassword(*password); err != nil {
		zlog.Fatal("hash password", zap.Error(err))
	}
	if err := users.UpdatePassword(ctx, user.ID, user.Password); err != nil {
		zlog.Fatal("update password", zap.Error(err))
	}
	// log out every open session of the account
	if err := users.UpdateTokenVersion(ctx, user.ID, uuid.NewString()); err != nil {
		zlog.Fatal("rotate session", zap.Error(err))
	}

	zlog.Info("password reset", zap.String("email", user.Email))
}
