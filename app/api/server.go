package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aivex/ai-visibility/app/cfg"
)

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler) *gin.Engine {
	// Set Gin mode (can be controlled via GIN_MODE environment variable)
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// Middleware
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	// CORS headers for automated consumers. OPTIONS is answered by the
	// per-route capability probes, which also carry the Allow header.
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, HEAD, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, If-None-Match, If-Modified-Since")
		c.Next()
	})

	// Routes
	setupRoutes(r, handler)

	return r
}

// setupRoutes configures all the application routes
func setupRoutes(r *gin.Engine, handler *Handler) {
	appCfg := cfg.Get()

	// AI content endpoints
	v1 := r.Group("/ai-visibility/v1")
	{
		v1.GET("/content", handler.GetContentList)
		v1.HEAD("/content", handler.GetContentList)
		v1.OPTIONS("/content", handler.OptionsContent)

		v1.POST("/content/batch", handler.BatchContent)
		v1.OPTIONS("/content/batch", handler.OptionsBatch)

		v1.GET("/content/:id", handler.GetContentItem)
		v1.HEAD("/content/:id", handler.GetContentItem)
		v1.OPTIONS("/content/:id", handler.OptionsContent)
	}

	// Static manifest, served at the well-known path and mirrored
	// under the public artifact path.
	r.GET("/.well-known/ai-manifest.json", handler.GetManifest)
	r.GET("/ai/ai-manifest.json", handler.GetManifest)

	// Health and status endpoints
	r.GET("/health", handler.GetHealth)

	// Admin endpoints (conditionally enabled with authentication)
	if appCfg.APIAccessKey != "" {
		api := r.Group("/api")
		api.Use(authMiddleware(appCfg.APIAccessKey))
		{
			api.POST("/manifest/regenerate", handler.APIRegenerateManifest)
			api.GET("/settings", handler.APIGetSettings)
			api.POST("/settings/reload", handler.APIReloadSettings)
		}
		slog.Debug("Admin endpoints enabled with authentication")
	} else {
		slog.Debug("Admin endpoints disabled (API_ACCESS_KEY not set)")
	}

	// Root endpoint with basic information
	r.GET("/", func(c *gin.Context) {
		endpoints := map[string]string{
			"collection": "/ai-visibility/v1/content",
			"item":       "/ai-visibility/v1/content/<id>",
			"batch":      "/ai-visibility/v1/content/batch (POST)",
			"manifest":   "/.well-known/ai-manifest.json",
			"health":     "/health",
		}

		if appCfg.APIAccessKey != "" {
			endpoints["regenerate"] = "/api/manifest/regenerate (POST, requires X-API-Key header)"
			endpoints["settings"] = "/api/settings (requires X-API-Key header)"
		}

		c.JSON(200, gin.H{
			"service":     "AI Visibility",
			"version":     appCfg.Version,
			"description": "Read-only content API and manifest for AI consumers",
			"endpoints":   endpoints,
		})
	})

	// Favicon handler (return 204 to avoid 404s)
	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}

// authMiddleware creates authentication middleware for admin endpoints
func authMiddleware(apiAccessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		providedKey := c.GetHeader("X-API-Key")

		if providedKey == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				providedKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if providedKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "API key required",
				"message": "Provide API key in X-API-Key header or Authorization: Bearer <key>",
			})
			c.Abort()
			return
		}

		if providedKey != apiAccessKey {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid API key",
				"message": "The provided API key is not valid",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
