// Package router wires handlers, the request gate and the Redis-backed
// middleware onto the Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/greenloop/ewaste-pickup/internal/config"
	"github.com/greenloop/ewaste-pickup/internal/handler"
	"github.com/greenloop/ewaste-pickup/internal/middleware"
)

// Handlers groups everything the router needs to register routes.
type Handlers struct {
	Auth      *handler.AuthHandler
	Pickups   *handler.PickupHandler
	Users     *handler.UserHandler
	Analytics *handler.AnalyticsHandler
	Category  *handler.CategoryHandler
}

// Register mounts all routes. The session gate runs on every request
// and admits only the public allow-list without a valid cookie; rate
// limiting protects the credential endpoints and the response cache
// covers the hot read-only listings. Both Redis middlewares degrade to
// pass-through when rdb is nil.
func Register(e *echo.Echo, h Handlers, cfg config.Config, rdb *redis.Client) {
	e.Use(middleware.SessionGate(cfg.JWTSecret))

	e.GET("/healthz", handler.Health)

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	// Credential endpoints: public, rate limited.
	auth := e.Group("/v1/auth", limiter)
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/logout", h.Auth.Logout)
	auth.GET("/me", h.Auth.Me)
	auth.POST("/forgot-password", h.Auth.ForgotPassword)
	auth.POST("/reset-password", h.Auth.ResetPassword)

	// Pickup lifecycle: protected by the gate.
	e.POST("/v1/pickups", h.Pickups.Create)
	e.GET("/v1/pickups", h.Pickups.List, cache)
	e.PATCH("/v1/pickups/:id", h.Pickups.Patch)

	// Pass-through surfaces.
	e.GET("/v1/users", h.Users.List, cache)
	e.GET("/v1/users/:id", h.Users.Get)
	e.PATCH("/v1/users/role", h.Users.UpdateRole, middleware.RequireRole("admin"))
	e.GET("/v1/categories", h.Category.List, cache)
	e.GET("/v1/analytics/summary", h.Analytics.Summary, cache)
}
