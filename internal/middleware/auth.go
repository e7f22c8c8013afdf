package middleware

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"taskhub/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	SessionCookie = "token"
	SessionTTL    = 7 * 24 * time.Hour

	LocalUserID = "userID"
)

var ErrInvalidToken = errors.New("invalid token")

// IssueToken signs a session token carrying only the user id.
func IssueToken(userID uuid.UUID, secret []byte, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID.String(),
		"iat":     now.Unix(),
		"exp":     now.Add(SessionTTL).Unix(),
	})
	return token.SignedString(secret)
}

// ParseToken verifies signature and expiry and returns the user id.
func ParseToken(tokenString string, secret []byte) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, ErrInvalidToken
	}
	raw, ok := claims["user_id"].(string)
	if !ok {
		return uuid.Nil, ErrInvalidToken
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return id, nil
}

// sessionToken reads the session cookie, falling back to a Bearer header
// for non-browser clients. Both carry the same token.
func sessionToken(c *fiber.Ctx) string {
	if t := c.Cookies(SessionCookie); t != "" {
		return t
	}
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// RequireSession rejects the request with 401 unless it carries a valid
// session token.
func RequireSession(secret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := sessionToken(c)
		if raw == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "Not authenticated",
			})
		}
		userID, err := ParseToken(raw, secret)
		if err != nil {
			logger.SecurityLogger.Warn("Invalid session token", zap.String("ip", c.IP()), zap.String("path", c.Path()))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "Invalid or expired token",
			})
		}
		c.Locals(LocalUserID, userID)
		return c.Next()
	}
}

// UserID returns the id stored by RequireSession.
func UserID(c *fiber.Ctx) uuid.UUID {
	id, _ := c.Locals(LocalUserID).(uuid.UUID)
	return id
}

// SetSessionCookie stores token as the http-only session cookie.
func SetSessionCookie(c *fiber.Ctx, token string, secure bool, now time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  now.Add(SessionTTL),
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func ClearSessionCookie(c *fiber.Ctx, secure bool) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
