package middleware

import (
	"net/http"
	"strings"

	"gatekit/internal/domain/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Context keys set by Authenticate for downstream handlers.
const (
	ContextKeyUserID       = "userID"
	ContextKeySessionID    = "sessionID"
	ContextKeySecondFactor = "secondFactorVerified"
)

// AuthMiddleware provides middleware for JWT authentication and the
// second-factor gate on sensitive routes.
type AuthMiddleware struct {
	tokenSvc service.TokenService
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc}
}

// Authenticate validates the bearer access token and stores its claims on the
// echo context.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Authorization header is missing"})
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid token format, must be Bearer token"})
		}

		claims, err := m.tokenSvc.ValidateAccessToken(tokenString)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or expired token"})
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeySessionID, claims.SessionID)
		c.Set(ContextKeySecondFactor, claims.SecondFactor)

		return next(c)
	}
}

// RequireSecondFactor rejects tokens whose login has not completed the
// step-up yet. It must be used AFTER the Authenticate middleware.
func (m *AuthMiddleware) RequireSecondFactor(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		verified, ok := c.Get(ContextKeySecondFactor).(bool)
		if !ok || !verified {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "Two-factor verification required"})
		}

		return next(c)
	}
}

// UserIDFromContext extracts the authenticated user ID set by Authenticate.
func UserIDFromContext(c echo.Context) (uuid.UUID, bool) {
	userID, ok := c.Get(ContextKeyUserID).(uuid.UUID)

	return userID, ok
}
