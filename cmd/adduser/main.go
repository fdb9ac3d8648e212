// Command adduser creates a dashboard login.
//
//	adduser -name "User" -email user@nextmail.com -password 123456
package main

import (
	"context"
	"flag"
	"time"

	"github.com/ariefcatur/go-dashboard-invoices/internal/auth"
	"github.com/ariefcatur/go-dashboard-invoices/internal/config"
	"github.com/ariefcatur/go-dashboard-invoices/internal/logx"
	"github.com/ariefcatur/go-dashboard-invoices/internal/postgres"
	"github.com/joho/godotenv"
)

func main() {
	name := flag.String("name", "", "display name")
	email := flag.String("email", "", "login email")
	password := flag.String("password", "", "plain password, at least 6 characters")
	flag.Parse()

	_ = godotenv.Load()
	log := logx.New("info", "adduser")
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	if *email == "" || len(*password) < 6 {
		log.Fatal().Msg("email and a password of at least 6 characters are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN, 1)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("db migrate")
	}

	hash, err := auth.HashPassword(*password)
	if err != nil {
		log.Fatal().Err(err).Msg("hash password")
	}
	repo := &auth.UserRepo{DB: db}
	id, err := repo.CreateUser(ctx, *name, *email, hash)
	if err != nil {
		log.Error().Err(err).Msg("create user")
		return
	}
	log.Info().Str("id", id).Str("email", *email).Msg("user created")
}
