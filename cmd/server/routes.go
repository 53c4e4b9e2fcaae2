package main

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Nixie-Tech-LLC/availability/internal/config"
	"github.com/Nixie-Tech-LLC/availability/internal/db"
	"github.com/Nixie-Tech-LLC/availability/internal/http/api"
	authapi "github.com/Nixie-Tech-LLC/availability/internal/http/api/auth/endpoints"
	availabilityapi "github.com/Nixie-Tech-LLC/availability/internal/http/api/availability/endpoints"
	"github.com/Nixie-Tech-LLC/availability/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/availability/internal/notify"
	"github.com/Nixie-Tech-LLC/availability/internal/redis"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes(r *gin.Engine, cfg *config.Config, store db.Store, cache *redis.Cache, events notify.Publisher) {
	// CORS
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"PUT",
			"DELETE",
			"OPTIONS",
			"HEAD",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
			"Idempotency-Key",
		},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Disposition",
		},
		AllowCredentials: false,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	limit := middleware.RateLimit(cfg.RateLimitPerMinute, cfg.RateLimitBurst)

	api.MountGroup(r, api.GroupConfig{
		Prefix:     "/api",
		Auth:       false,
		Middleware: []gin.HandlerFunc{limit},
	},
		authapi.AuthPublicModule(cfg.JWTSecret, store),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix:     "/api",
		Auth:       true,
		SecretKey:  cfg.JWTSecret,
		Users:      store,
		Middleware: []gin.HandlerFunc{limit},
	},
		// session endpoints that require auth
		authapi.AuthSessionModule(cfg.JWTSecret, store),
		availabilityapi.AvailabilityModule(availabilityapi.Deps{
			Store:    store,
			Cache:    cache,
			Events:   events,
			Location: cfg.Location,
			Domain:   cfg.PublicDomain,
		}),
	)
}
