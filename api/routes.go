package api

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
)

func (s *Server) registerRoutes() {
	if s == nil || s.router == nil {
		return
	}

	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api")
	if key := strings.TrimSpace(os.Getenv("REDBENCH_API_KEY")); key != "" {
		api.Use(apiKeyAuthMiddleware(key))
	}

	api.GET("/runs", s.handleListRuns)
	api.GET("/runs/:id", s.handleGetRun)
}

func apiKeyAuthMiddleware(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("X-API-Key") != key {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid api key"})
			return
		}
		c.Next()
	}
}
