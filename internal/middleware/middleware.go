package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/wanderbay/wanderbay-api/internal/apperr"
	"github.com/wanderbay/wanderbay-api/internal/helpers"
	"github.com/wanderbay/wanderbay-api/internal/models"
)

// RequestID middleware adds a unique request ID to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// StructuredLogger provides structured logging middleware
func StructuredLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		clientIP := c.ClientIP()
		method := c.Request.Method
		statusCode := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		requestID, _ := c.Get("request_id")

		logger.Info("HTTP Request",
			"request_id", requestID,
			"method", method,
			"path", path,
			"status", statusCode,
			"latency", latency,
			"client_ip", clientIP,
		)
	}
}

// ErrorHandler maps errors pushed onto the gin error list to the uniform
// response envelope; AppError keeps its status and code, everything else
// becomes a 500.
func ErrorHandler(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		requestID, _ := c.Get("request_id")

		ae := apperr.From(err)
		if ae.Status >= http.StatusInternalServerError {
			logger.Error("Request error",
				"request_id", requestID,
				"error", err.Error(),
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
			)
		} else {
			logger.Info("Request rejected",
				"request_id", requestID,
				"code", ae.Code,
				"error", ae.Message,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
			)
		}

		if c.Writer.Written() {
			return
		}
		c.JSON(ae.Status, models.ErrorResponse(ae.Message, ae.Code, ae.Details))
	}
}

// Abort records err and stops the handler chain; the ErrorHandler middleware
// shapes the response.
func Abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// AuthMiddleware validates the bearer token and stores the enhanced claims
// in the request context.
func AuthMiddleware(jwtSecret string, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized access", "UNAUTHORIZED", "bearer token missing"))
			c.Abort()
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")

		claims, err := helpers.ValidateToken(jwtSecret, token)
		if err != nil {
			logger.Info("Token rejected", "error", err)
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized access", "UNAUTHORIZED", "invalid or expired token"))
			c.Abort()
			return
		}

		enhancedClaims := &helpers.EnhancedClaims{
			CustomClaims: claims,
			Role:         claims.Role,
			UserID:       claims.UserID,
			Email:        claims.Email,
		}
		c.Set("user", enhancedClaims)
		c.Next()
	}
}

// RequireAdmin gates admin-only routes; it must run after AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized access", "UNAUTHORIZED", ""))
			c.Abort()
			return
		}
		if !claims.IsAdmin() {
			c.JSON(http.StatusForbidden, models.ErrorResponse("admin access required", "FORBIDDEN", ""))
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentClaims extracts the authenticated claims set by AuthMiddleware.
func CurrentClaims(c *gin.Context) (*helpers.EnhancedClaims, bool) {
	v, exists := c.Get("user")
	if !exists {
		return nil, false
	}
	claims, ok := v.(*helpers.EnhancedClaims)
	return claims, ok
}
