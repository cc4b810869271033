package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"

	"github.com/aliskhannn/photoshare/internal/api/respond"
)

// userIDKey is the context key the authenticated user ID is stored under.
const userIDKey = "user_id"

// Auth verifies the bearer token and injects the caller's user ID into the
// request context. Token issuance lives in a separate identity service; this
// middleware only checks the shared HMAC signature.
func Auth(secret string) func(c *ginext.Context) {
	return func(c *ginext.Context) {
		tokenStr := extractToken(c)
		if tokenStr == "" {
			respond.Fail(c, http.StatusUnauthorized, fmt.Errorf("authorization token is required"))
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			respond.Fail(c, http.StatusUnauthorized, fmt.Errorf("invalid or expired token"))
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			respond.Fail(c, http.StatusUnauthorized, fmt.Errorf("invalid token claims"))
			c.Abort()
			return
		}

		userID, err := userIDFromClaims(claims)
		if err != nil {
			respond.Fail(c, http.StatusUnauthorized, err)
			c.Abort()
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserID returns the authenticated user ID injected by Auth.
func UserID(c *ginext.Context) (uuid.UUID, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return uuid.Nil, false
	}

	id, ok := v.(uuid.UUID)
	return id, ok
}

func extractToken(c *ginext.Context) string {
	authHeader := c.GetHeader("Authorization")
	parts := strings.Fields(authHeader)
	if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
		return parts[1]
	}

	return ""
}

func userIDFromClaims(claims jwt.MapClaims) (uuid.UUID, error) {
	raw, ok := claims["user_id"].(string)
	if !ok {
		return uuid.Nil, errors.New("invalid user_id claim")
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.New("invalid user_id claim")
	}

	return id, nil
}
