package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/gamebox/reservation-server/internal/config"
	"github.com/gamebox/reservation-server/internal/handler"    // import the handlers that implement business logic
	"github.com/gamebox/reservation-server/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check,
// which load balancers and monitoring systems use to verify that the
// service is up and running.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies
// the necessary middleware.  Unauthenticated operations live under
// /v1/auth, while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Operations that do not require an existing session: register,
	// login and the two refresh variants.  Each handler is responsible
	// for generating or exchanging tokens.
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// /refresh rotates the refresh token; /refresh-access issues a new
	// access token without rotating.
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout accepts either a refresh token in the body or a bearer
	// access token.  OptionalJWT lets the handler see the access token
	// when one is present without rejecting anonymous body-only calls.
	g.POST("/logout", a.Logout, middleware.OptionalJWT(jwtSecret))

	e.GET("/v1/me", a.Me, middleware.JWTAuth(jwtSecret))
}

// RegisterPublic registers the share-link surface. These routes carry
// OptionalJWT so that a logged-in owner or participant gains their
// extra visibility on the same URL a guest uses, and the read endpoint
// runs through the Redis response cache when one is configured.
func RegisterPublic(e *echo.Echo, s *handler.ShareHandler, jwtSecret string, rdb *redis.Client) {
	opt := middleware.OptionalJWT(jwtSecret)

	share := e.Group("/v1/reservations/share")
	if rdb != nil {
		share.GET("/:id", s.Get, opt, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	} else {
		share.GET("/:id", s.Get, opt)
	}

	// Joining is a write and is rate limited per client when Redis is
	// available, so one guest hammering a popular share link cannot
	// starve everyone else.
	if rdb != nil {
		share.POST("/:id/confirm", s.Confirm, opt, middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	} else {
		share.POST("/:id/confirm", s.Confirm, opt)
	}
}
