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

	"github.com/Nixie-Tech-LLC/availability/internal/config"
	"github.com/Nixie-Tech-LLC/availability/internal/db"
	"github.com/Nixie-Tech-LLC/availability/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/availability/internal/notify"
	"github.com/Nixie-Tech-LLC/availability/internal/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	zerolog.SetGlobalLevel(cfg.LogLevel)
	if cfg.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	store := openStore(cfg)

	var cache *redis.Cache
	if cfg.RedisAddress != "" {
		cache = redis.NewCache(cfg.RedisAddress, cfg.RedisUsername, cfg.RedisPassword, cfg.CacheTTL)
		if err := cache.Ping(context.Background()); err != nil {
			log.Warn().Err(err).Str("address", cfg.RedisAddress).Msg("redis unavailable, continuing without cache")
			_ = cache.Close()
			cache = nil
		} else {
			defer cache.Close()
		}
	}

	var events notify.Publisher = notify.Nop{}
	if cfg.MQTTBrokerURL != "" {
		p, err := notify.NewMQTTPublisher(cfg.MQTTBrokerURL, cfg.MQTTClientID)
		if err != nil {
			log.Warn().Err(err).Str("broker", cfg.MQTTBrokerURL).Msg("mqtt unavailable, change events disabled")
		} else {
			events = p
			defer p.Close()
		}
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())
	RegisterRoutes(r, cfg, store, cache, events)

	srv := &http.Server{Addr: cfg.ServerAddress, Handler: r}
	go func() {
		log.Info().Str("address", cfg.ServerAddress).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
	log.Info().Msg("server stopped")
}

func openStore(cfg *config.Config) db.Store {
	if cfg.UsesMemoryStore() {
		log.Warn().Msg("using in-memory store, data is lost on exit")
		return db.NewMemoryStore()
	}

	if err := db.Init(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("db init")
	}
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("db migrate")
	}
	return db.NewStore(db.DB)
}
