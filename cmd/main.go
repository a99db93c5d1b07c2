package main

import (
	"context"
	"database/sql"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"chatgate/internal/adapters/api"
	"chatgate/internal/adapters/api/middleware"
	"chatgate/internal/adapters/db/memory"
	pgrepo "chatgate/internal/adapters/db/postgres"
	appauth "chatgate/internal/application/auth"
	appchat "chatgate/internal/application/chat"
	"chatgate/internal/config"
	domainchat "chatgate/internal/domain/chat"
	"chatgate/internal/infrastructure/websession"
)

// webSessionTTL bounds how long an unfinished login round trip may take.
const webSessionTTL = 10 * time.Minute

//	@title			Chatgate API
//	@version		1.0
//	@description	Chat backend gated by Entra ID sign-in

//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT

//	@host		localhost:8080
//	@BasePath	/

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Optional .env for local development
	if err := godotenv.Load(); err == nil {
		log.Info().Msg("Loaded .env file")
	}

	// Load configuration
	cfg := config.LoadConfig()

	log.Info().
		Str("http_port", cfg.HTTPPort).
		Str("tenant_id", cfg.Auth.TenantID).
		Bool("db_enabled", cfg.Database.Enabled).
		Msg("Starting chatgate server")

	// Initialize session storage (Postgres or in-memory)
	var sessionRepo domainchat.Repository
	if cfg.Database.Enabled {
		db, err := sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			log.Fatal().Err(err).Msg("open postgres")
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(30 * time.Minute)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			log.Fatal().Err(err).Msg("ping postgres")
		}
		if err := pgrepo.RunMigrations(ctx, db, cfg.Database.Migrations); err != nil {
			log.Fatal().Err(err).Msg("run migrations")
		}
		sessionRepo = pgrepo.NewSessionRepository(db)
	} else {
		log.Warn().Msg("DB disabled - session records are in-memory only")
		sessionRepo = memory.NewSessionRepository()
	}

	// Initialize services
	authService := appauth.NewService(&cfg.Auth)
	chatService := appchat.NewService(sessionRepo)
	webSessions := websession.NewMemoryStore(webSessionTTL)

	// Initialize API handler
	handler := api.NewHandler(&cfg.Auth, authService, chatService, webSessions)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.AllowedOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}))

	// The gate wraps every route; the process must not start without a secret
	authGate, err := middleware.AuthGate(&cfg.Auth)
	if err != nil {
		log.Fatal().Err(err).Msg("auth gate configuration")
	}
	r.Use(authGate)

	handler.RegisterRoutes(r)

	// Start server
	log.Info().Msgf("Starting chatgate server on port %s", cfg.HTTPPort)
	if err := r.Run(":" + cfg.HTTPPort); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}
}
