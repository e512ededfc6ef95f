package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"go-interview-scheduler/config"
	"go-interview-scheduler/internal/delivery/http/response"
	"go-interview-scheduler/internal/domain"
	"go-interview-scheduler/pkg/auth"
	"go-interview-scheduler/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware verifies identity-layer tokens and stores the caller's id and role.
// The role is taken from the token as supplied.
func AuthMiddleware(keys *auth.KeySet, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string

		// 1. Try to get token from Header
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		} else if cookie, err := c.Cookie("auth_token"); err == nil && cookie != "" {
			// 2. Fall back to the session cookie
			tokenString = cookie
		}

		if tokenString == "" {
			response.Error(c, http.StatusUnauthorized, "Authorization header or auth_token cookie required", nil)
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); ok {
				if cfg.JWTSecret == "" {
					return nil, fmt.Errorf("HS256 token received but JWT_SECRET is not configured")
				}
				return []byte(cfg.JWTSecret), nil
			}
			if _, ok := token.Method.(*jwt.SigningMethodRSA); ok {
				if keys == nil {
					return nil, fmt.Errorf("RS256 token received but JWKS_URL is not configured")
				}
				return keys.KeyFunc(token)
			}
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		})
		if err != nil || !token.Valid {
			logger.Log.Info("token validation failed", "error", err, "path", c.FullPath())
			response.Error(c, http.StatusUnauthorized, "Invalid token", nil)
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.Error(c, http.StatusUnauthorized, "Invalid claims", nil)
			c.Abort()
			return
		}

		sub, _ := claims["sub"].(string)
		if sub == "" {
			response.Error(c, http.StatusUnauthorized, "Token has no subject", nil)
			c.Abort()
			return
		}
		email, _ := claims["email"].(string)

		c.Set(string(domain.KeyUserID), sub)
		c.Set(string(domain.KeyUserEmail), email)
		c.Set(string(domain.KeyUserRole), roleFromClaims(claims))

		c.Next()
	}
}

// roleFromClaims prefers app_metadata.role, then a known "role" claim, defaulting to candidate.
func roleFromClaims(claims jwt.MapClaims) string {
	if meta, ok := claims["app_metadata"].(map[string]interface{}); ok {
		if role, ok := meta["role"].(string); ok && role != "" {
			return role
		}
	}
	if role, ok := claims["role"].(string); ok {
		switch role {
		case domain.RoleEmployer, domain.RoleCandidate, domain.RoleAdmin:
			return role
		}
	}
	return domain.RoleCandidate
}

// ActorFrom returns the caller identity set by AuthMiddleware.
func ActorFrom(c *gin.Context) domain.Actor {
	return domain.Actor{
		UserID: c.GetString(string(domain.KeyUserID)),
		Role:   c.GetString(string(domain.KeyUserRole)),
	}
}
