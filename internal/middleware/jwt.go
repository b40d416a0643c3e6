package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// JWTAuth returns an Echo middleware that validates a Bearer access
// token and injects the token's subject, email and role claims into
// the request context. The provided secret must match the one used
// when issuing tokens. Handlers behind this middleware read the
// authenticated identity via c.Get("user_id"), c.Get("email") and
// c.Get("role").
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			claims, ok := parseClaims(strings.TrimPrefix(auth, "Bearer "), secret)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			storeClaims(c, claims)
			return next(c)
		}
	}
}

// OptionalJWT resolves the viewer's identity when a Bearer token is
// present but lets anonymous requests through untouched. The share
// surface uses it: public reservations are readable by anyone, while
// a logged-in owner or participant gets their extra access. A
// malformed token is treated as anonymous rather than rejected.
func OptionalJWT(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if strings.HasPrefix(auth, "Bearer ") {
				if claims, ok := parseClaims(strings.TrimPrefix(auth, "Bearer "), secret); ok {
					storeClaims(c, claims)
				}
			}
			return next(c)
		}
	}
}

// parseClaims validates an HS256 token and returns its claims.
func parseClaims(raw, secret string) (jwt.MapClaims, bool) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, echo.ErrUnauthorized
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return nil, false
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	return claims, ok
}

// storeClaims copies the identity claims into the Echo context. Type
// assertions are left to downstream consumers.
func storeClaims(c echo.Context, claims jwt.MapClaims) {
	c.Set("user_id", claims["sub"])
	c.Set("email", claims["email"])
	c.Set("role", claims["role"])
}
