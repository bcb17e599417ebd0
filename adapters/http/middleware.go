package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nhattran/cardfolio/pkg/apperror"
	"github.com/nhattran/cardfolio/pkg/auth"
	"github.com/nhattran/cardfolio/pkg/logger"
	"go.uber.org/zap"
)

const (
	GinContextKeyOwnerID = "ownerID"
)

func AuthMiddleware(jwtSvc *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format"})
			return
		}

		claims, err := jwtSvc.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(GinContextKeyOwnerID, claims.OwnerID)

		c.Next()
	}
}

// OptionalAuthMiddleware resolves a viewer identity when a valid bearer token
// is present but never rejects the request. Public card reads use it so the
// owner-sees-all projection works without making reads owner-only.
func OptionalAuthMiddleware(jwtSvc *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.Next()
			return
		}

		if claims, err := jwtSvc.ValidateToken(tokenString); err == nil {
			c.Set(GinContextKeyOwnerID, claims.OwnerID)
		}

		c.Next()
	}
}

// ErrorMiddleware turns errors pushed through c.Error into stable status
// codes. Detail stays in the log; clients get the short message only.
func ErrorMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		err := lastErr.Err
		status := apperror.ToHTTPStatus(err)

		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			if status >= http.StatusInternalServerError {
				log.Error("request failed", appErr, zap.String("path", c.Request.URL.Path))
			} else {
				log.Warn("request rejected",
					zap.String("path", c.Request.URL.Path),
					zap.Int("status", status),
					zap.String("details", appErr.Details),
				)
			}
			c.JSON(status, appErr.ToJSON())
			return
		}

		log.Error("request failed with unexpected error", err, zap.String("path", c.Request.URL.Path))
		c.JSON(status, gin.H{"error": "internal server error"})
	}
}

func GetOwnerIDFromGinContext(c *gin.Context) (uuid.UUID, bool) {
	ownerID, ok := c.Get(GinContextKeyOwnerID)
	if !ok {
		return uuid.Nil, false
	}
	ownerIDUUID, ok := ownerID.(uuid.UUID)
	if !ok {
		return uuid.Nil, false
	}
	return ownerIDUUID, true
}
