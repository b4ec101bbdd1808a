package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/mdd/internal/common"
	"github.com/dmitrijs2005/mdd/internal/logging"
	"github.com/dmitrijs2005/mdd/internal/server/models"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const principalKey = "principal"

// requestID echoes the caller's X-Request-ID or assigns a new one, and
// stores a logger carrying it in the request context.
func (h *handler) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(common.RequestIDHeaderName)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Header(common.RequestIDHeaderName, id)

		ctx := logging.IntoContext(c.Request.Context(), h.logger.With("request_id", id))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (h *handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		ctx := c.Request.Context()
		log := logging.FromContext(ctx, h.logger)
		fields := []any{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
		}

		switch {
		case status >= http.StatusInternalServerError:
			log.Error(ctx, "HTTP request", fields...)
		case status >= http.StatusBadRequest:
			log.Warn(ctx, "HTTP request", fields...)
		default:
			log.Info(ctx, "HTTP request", fields...)
		}
	}
}

// requireAuth verifies the bearer token and stores the principal; no
// handler behind it runs for a missing, malformed or expired token.
func (h *handler) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader(common.AuthorizationHeaderName))
		if !ok {
			h.fail(c, common.ErrorUnauthorized)
			c.Abort()
			return
		}

		p, err := h.Tokens.Verify(token)
		if err != nil {
			logging.FromContext(c.Request.Context(), h.logger).Debug(c.Request.Context(), "token rejected", "reason", err.Error())
			h.fail(c, err)
			c.Abort()
			return
		}

		c.Set(principalKey, p)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func principal(c *gin.Context) models.Principal {
	p, _ := c.MustGet(principalKey).(models.Principal)
	return p
}

// rateLimit counts requests per client IP. A limiter failure is logged and
// the request goes through.
func (h *handler) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		allowed, err := h.Limiter.Allow(ctx, c.ClientIP())
		if err != nil {
			logging.FromContext(ctx, h.logger).Warn(ctx, "rate limiter unavailable", "error", err)
			c.Next()
			return
		}
		if !allowed {
			h.fail(c, common.ErrTooManyRequests)
			c.Abort()
			return
		}
		c.Next()
	}
}

func allowOrigin(origin string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     []string{origin},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{common.AuthorizationHeaderName, "Content-Type", common.RequestIDHeaderName},
		ExposeHeaders:    []string{common.RequestIDHeaderName},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
