package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/gamebox/reservation-server/internal/config"
	"github.com/gamebox/reservation-server/internal/handler"
	"github.com/gamebox/reservation-server/internal/middleware"
)

// RegisterReservations wires the authenticated reservation endpoints.
// Players and admins share the surface; per-row checks inside the
// handlers decide what each caller may touch. Reservation creation is
// rate limited and the availability probe is cached when Redis is
// configured.
func RegisterReservations(e *echo.Echo, h *handler.ReservationHandler, jwtSecret string, rdb *redis.Client) {
	g := e.Group("/v1/reservations")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(handler.RolePlayer, handler.RoleAdmin))

	if rdb != nil {
		g.POST("", h.Create, middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
		g.GET("/availability/check", h.CheckAvailability, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	} else {
		g.POST("", h.Create)
		g.GET("/availability/check", h.CheckAvailability)
	}
	g.GET("", h.List)
	g.PATCH("/:id", h.Patch)
	g.DELETE("/:id", h.Delete)
}
