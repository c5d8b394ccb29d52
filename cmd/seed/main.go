package main

import (
	"context"
	"errors"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/flyobo-travel-api/config"
	"github.com/oksasatya/flyobo-travel-api/internal/container"
	"github.com/oksasatya/flyobo-travel-api/internal/domain/entity"
	repo "github.com/oksasatya/flyobo-travel-api/internal/domain/repository"
	"github.com/oksasatya/flyobo-travel-api/pkg/helpers"
)

// seed creates, or promotes and resets, a verified admin account.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	if cfg.SeedAdminPassword == "" {
		logger.Fatal("SEED_ADMIN_PASSWORD is required")
	}
	if cfg.StoreDriver == config.StoreMemory {
		logger.Fatal("seeding the in-memory store has no effect, set STORE_DRIVER")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	users, closeStore, err := container.OpenUserStore(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("open user store")
	}
	if closeStore != nil {
		defer func() { _ = closeStore(context.Background()) }()
	}

	u, created, err := upsertAdmin(ctx, users, cfg.SeedAdminName, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
	if err != nil {
		logger.WithError(err).Error("seed admin")
		return
	}
	logger.WithFields(logrus.Fields{"id": u.ID, "email": u.Email, "created": created}).Info("admin seeded")
}

func upsertAdmin(ctx context.Context, users repo.UserRepository, name, email, password string) (*entity.User, bool, error) {
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, false, err
	}
	email = entity.NormalizeEmail(email)

	existing, err := users.FindByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		u, err := users.Create(ctx, &entity.User{
			Name:              name,
			Email:             email,
			Password:          hash,
			Role:              entity.RoleAdmin,
			Avatar:            entity.DefaultAvatar,
			IsAccountVerified: true,
		})
		return u, err == nil, err
	}
	if err != nil {
		return nil, false, err
	}
	role := entity.RoleAdmin
	u, err := users.Update(ctx, existing.ID, entity.UserPatch{
		Password:          &hash,
		Role:              &role,
		IsAccountVerified: entity.Ptr(true),
	})
	return u, false, err
}
