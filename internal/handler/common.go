package handler // handler defines http handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/gamebox/reservation-server/internal/engine"
)

// RoleAdmin and RolePlayer are the values carried in the JWT "role"
// claim. Admins may moderate any reservation; players only their own.
const (
	RoleAdmin  = "ADMIN"
	RolePlayer = "PLAYER"
)

// getUserID extracts the user_id from echo.Context and converts it to
// uint64. JWT claims decode numbers as float64, so several numeric
// shapes are accepted.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// viewerFrom builds the access-control viewer for the current
// request. Behind JWTAuth it describes the authenticated user; behind
// OptionalJWT it degrades to an anonymous viewer when no valid token
// was sent.
func viewerFrom(c echo.Context) engine.Viewer {
	id, err := getUserID(c)
	if err != nil {
		return engine.Viewer{}
	}
	email, _ := c.Get("email").(string)
	role, _ := c.Get("role").(string)
	return engine.Viewer{
		Authenticated: true,
		UserID:        id,
		Email:         engine.NormalizeEmail(email),
		Admin:         role == RoleAdmin,
	}
}

// engineError maps the engine's failure taxonomy onto HTTP responses.
// Conflicts that invite a retry with different input (slot, capacity,
// transition) become 409; access and lookup failures become 403 and
// 404. Anything unrecognized is surfaced as a 500 with a generic
// message.
func engineError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, engine.ErrSlotConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "slot_conflict", "message": "slot already booked, pick another slot"})
	case errors.Is(err, engine.ErrCapacityExceeded):
		return c.JSON(http.StatusConflict, echo.Map{"error": "capacity_exceeded", "message": "reservation is full"})
	case errors.Is(err, engine.ErrCapacityViolation):
		return c.JSON(http.StatusConflict, echo.Map{"error": "capacity_violation", "message": "capacity below current participant count"})
	case errors.Is(err, engine.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, echo.Map{"error": "invalid_transition", "message": "reservation state does not allow this change"})
	case errors.Is(err, engine.ErrAccessDenied):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, engine.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
}
