package main

import (
	"flag"
	"log"
	"log/slog"

	"github.com/Srujan253/Gupshup/internal/auth"
	"github.com/Srujan253/Gupshup/internal/chat"
	"github.com/Srujan253/Gupshup/internal/config"
	"github.com/Srujan253/Gupshup/internal/messages"
	"github.com/Srujan253/Gupshup/internal/presence"
	"github.com/Srujan253/Gupshup/internal/storage"
	"github.com/Srujan253/Gupshup/internal/storage/postgres"
	"github.com/Srujan253/Gupshup/internal/storage/sqlite"
	"github.com/Srujan253/Gupshup/internal/users"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	migrate := flag.Bool("migrate", false, "run migrations and exit")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file, using environment")
	}
	cfg := config.MustLoad()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}
	defer store.Close()

	if *migrate {
		if err := store.Migrate(); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		slog.Info("migration completed")
		return
	}

	registry := presence.NewRegistry()
	hub := chat.NewHub(registry)
	go hub.Run()

	dispatcher := messages.NewDispatcher(store, registry)
	userSvc := users.New(store, cfg)

	r := gin.Default()

	api := r.Group("/api")
	userSvc.RegisterPublic(api)

	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg.JWTSecret))
	userSvc.RegisterProtected(protected)
	messages.Register(protected, store, dispatcher)

	chat.RegisterWS(r.Group(""), hub, cfg.JWTSecret)

	slog.Info("gupshup listening", "addr", cfg.Addr)
	if err := r.Run(cfg.Addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func openStore(cfg config.Config) (storage.Store, error) {
	if cfg.DatabaseURL != "" {
		return postgres.New(cfg.DatabaseURL)
	}
	return sqlite.New(cfg.SQLiteDSN)
}
