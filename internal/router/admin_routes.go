package router

import (
	"github.com/labstack/echo/v4"

	"github.com/gamebox/reservation-server/internal/handler"
	"github.com/gamebox/reservation-server/internal/middleware"
)

// RegisterAdmin wires the moderation endpoints. Everything here runs
// behind JWTAuth plus RequireRole(ADMIN).
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(handler.RoleAdmin))

	g.PUT("/reservations/:id/status", h.SetStatus)
}
