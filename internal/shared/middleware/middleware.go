package middleware

import (
	"net/http"
	"strings"

	"ingrezzi/internal/shared/config"
	"ingrezzi/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

// JWTAuth creates a JWT authentication middleware
func JWTAuth() gin.HandlerFunc {
	return JWTAuthWithConfig(config.Load())
}

// JWTAuthWithConfig creates a JWT authentication middleware with config
func JWTAuthWithConfig(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "Authorization header is required", nil, nil)
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "authorization header format must be Bearer {token}", nil, nil)
			c.Abort()
			return
		}

		claims, ok := parseAccessClaims(parts[1], cfg)
		if !ok {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "invalid or expired token", nil, nil)
			c.Abort()
			return
		}

		setIdentity(c, claims)
		c.Next()
	}
}

// RequireOrganizer restricts a route to profiles with organizer capability
func RequireOrganizer() gin.HandlerFunc {
	return func(c *gin.Context) {
		isOrganizer, exists := c.Get("is_organizer")
		if !exists {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "user identity not found in context", nil, nil)
			c.Abort()
			return
		}

		if ok, _ := isOrganizer.(bool); !ok {
			response.RespondJSON(c, "error", http.StatusForbidden, "Organizer account required", nil, nil)
			c.Abort()
			return
		}

		c.Next()
	}
}

// OptionalAuth validates a JWT token if present but doesn't require it
func OptionalAuth() gin.HandlerFunc {
	return OptionalAuthWithConfig(config.Load())
}

func OptionalAuthWithConfig(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.Next()
			return
		}

		if claims, ok := parseAccessClaims(parts[1], cfg); ok {
			setIdentity(c, claims)
		}

		c.Next()
	}
}

func parseAccessClaims(tokenString string, cfg *config.Config) (jwt.MapClaims, bool) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(cfg.JWT.Secret), nil
	})

	if err != nil || !token.Valid {
		return nil, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, false
	}

	if tokenType, ok := claims["type"]; !ok || tokenType != "access" {
		return nil, false
	}

	return claims, true
}

func setIdentity(c *gin.Context, claims jwt.MapClaims) {
	c.Set("user_id", claims["user_id"])
	c.Set("user_email", claims["email"])
	if isOrganizer, ok := claims["is_organizer"].(bool); ok {
		c.Set("is_organizer", isOrganizer)
	} else {
		c.Set("is_organizer", false)
	}
}
