package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sportsreg/sportsreg/internal/app"
	"github.com/sportsreg/sportsreg/internal/auth"
	"github.com/sportsreg/sportsreg/internal/shared"
	"github.com/sportsreg/sportsreg/internal/store"
)

func main() {
	ctx := context.Background()
	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.StoreBackend == store.BackendMemory {
		log.Fatal("seeding the in-memory store has no lasting effect, set STORE_BACKEND=postgres")
	}

	email := os.Getenv("SEED_ADMIN_EMAIL")
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Fatal("SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD are required")
	}

	st, err := store.Open(ctx, store.Config{
		Backend:       cfg.StoreBackend,
		DSN:           cfg.PGDSN,
		MaxConns:      2,
		RunMigrations: cfg.PGRunMigrations,
	}, app.NewLogger(cfg))
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer st.Close()

	tokens, err := auth.NewTokenService([]byte(cfg.JWTSecret), cfg.JWTTTL, auth.WithIssuer(cfg.JWTIssuer))
	if err != nil {
		log.Fatalf("token service: %v", err)
	}
	service := auth.NewService(st.Users, tokens, auth.WithAdminSignup(true))

	fmt.Println("→ Seeding admin account...")
	_, err = service.Register(ctx, auth.RegisterInput{
		Name:     getenv("SEED_ADMIN_NAME", "Administrator"),
		Email:    email,
		Password: password,
		Phone:    getenv("SEED_ADMIN_PHONE", "0000000000"),
		Age:      30,
		Gender:   getenv("SEED_ADMIN_GENDER", "unspecified"),
		Role:     auth.RoleAdmin,
	})
	switch {
	case errors.Is(err, shared.ErrConflict):
		fmt.Println("  admin already exists:", email)
	case err != nil:
		log.Fatalf("seed admin: %v", err)
	default:
		fmt.Println("  created admin:", email)
	}

	fmt.Println("✓ Seed complete at", time.Now().Format(time.RFC3339))
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
