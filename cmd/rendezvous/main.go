package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mossy-p/rendezvous/config"
	"github.com/mossy-p/rendezvous/internal/handlers"
	"github.com/mossy-p/rendezvous/internal/middleware"
	"github.com/mossy-p/rendezvous/internal/signaling"
	"github.com/mossy-p/rendezvous/internal/store"
)

func main() {
	cfg := config.Load()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rooms, err := store.Open(ctx, cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer rooms.Close()
	log.Info().Msg("Redis connection established")

	// The hub owns the room table and connection registry; its single
	// goroutine is the serialization point for all room mutation.
	hub := signaling.NewHub(log.Logger)
	go hub.Run(ctx)

	router := gin.Default()
	router.Use(handlers.OriginFilter(cfg.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api")
	{
		apiGroup.POST("/auth/token", handlers.IssueToken(cfg.JWTSecret))
		apiGroup.POST("/rooms", middleware.HostAuth(cfg.JWTSecret), handlers.CreateRoom(rooms))
		apiGroup.GET("/rooms/:roomId", handlers.GetRoom(rooms, hub))
		apiGroup.DELETE("/rooms/:roomId", middleware.HostAuth(cfg.JWTSecret), handlers.DeleteRoom(rooms))
		apiGroup.GET("/credentials", handlers.IssueCredentials(cfg.CredentialUpstreamURL, cfg.CredentialTimeout))
	}

	wsGroup := router.Group("/ws")
	{
		wsGroup.GET("/signal", handlers.ServeSignaling(hub, log.Logger))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting rendezvous signaling server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
