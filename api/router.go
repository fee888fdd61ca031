package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nicfarandi/Automatic-Udemy-Course-Enroller-GET-PAID-UDEMY-COURSES-for-FREE/config"
	"github.com/nicfarandi/Automatic-Udemy-Course-Enroller-GET-PAID-UDEMY-COURSES-for-FREE/models"
	"github.com/nicfarandi/Automatic-Udemy-Course-Enroller-GET-PAID-UDEMY-COURSES-for-FREE/pipeline"
)

// NewRouter creates a configured Gin engine with the status routes.
//
// Health is intentionally outside auth so monitoring probes always work.
func NewRouter(m *pipeline.Manager, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	v1.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	protected := v1.Group("")
	protected.Use(auth(cfg.Server.APIKeys))
	protected.GET("/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, m.Stats())
	})

	return r
}

// auth returns API-key authentication middleware.
//
// Supports two header styles:
//
//	X-API-Key: <key>
//	Authorization: Bearer <key>
//
// If apiKeys is empty, the middleware is a no-op (open access).
func auth(apiKeys []string) gin.HandlerFunc {
	if len(apiKeys) == 0 {
		return func(c *gin.Context) { c.Next() }
	}

	keySet := make(map[string]struct{}, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			keySet[k] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		key := extractAPIKey(c)
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorDetail{
				Code:    models.ErrCodeUnauthorized,
				Message: "missing API key: provide X-API-Key header or Authorization: Bearer <key>",
			})
			return
		}
		if _, ok := keySet[key]; !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorDetail{
				Code:    models.ErrCodeUnauthorized,
				Message: "invalid API key",
			})
			return
		}
		c.Next()
	}
}

func extractAPIKey(c *gin.Context) string {
	if key := c.GetHeader("X-API-Key"); key != "" {
		return key
	}
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
