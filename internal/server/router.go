// Package server assembles the HTTP router from the app's handlers.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"joel-backend/internal/account"
	"joel-backend/internal/analyses"
	googleauth "joel-backend/internal/auth"
	"joel-backend/internal/documents"
	"joel-backend/internal/services/health"
	"joel-backend/internal/shared/config"
	"joel-backend/internal/shared/metrics"
	"joel-backend/internal/shared/server/middleware"
	"joel-backend/internal/suggestions"
	"joel-backend/internal/uploads"
	"joel-backend/internal/usage"
	"joel-backend/internal/users"
)

// Deps carries the handlers the router mounts. Nil handlers are skipped,
// which keeps worker and test builds from dragging in the whole surface.
type Deps struct {
	Config      config.Config
	Health      *health.Service
	Documents   *documents.Handler
	Analyses    *analyses.Handler
	Suggestions *suggestions.Handler
	Usage       *usage.Handler
	Users       *users.Handler
	Account     *account.Handler
	GoogleAuth  *googleauth.GoogleService
	Uploads     bool
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/healthz", func(c *gin.Context) {
		status := gin.H{"ok": true}
		if deps.Health != nil {
			for k, v := range deps.Health.Status() {
				status[k] = v
			}
		}
		c.JSON(http.StatusOK, status)
	})
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")
	api.Use(
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				"DEFAULT": {Rate: 20, Burst: 40},
			},
		}),
		middleware.Auth(deps.Config.Env),
	)

	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.Users != nil {
		deps.Users.RegisterRoutes(api)
	}
	if deps.Account != nil {
		deps.Account.RegisterRoutes(api)
	}
	if deps.Documents != nil {
		deps.Documents.RegisterRoutes(api)
	}
	if deps.Uploads {
		uploads.RegisterRoutes(api)
	}
	if deps.Analyses != nil {
		deps.Analyses.RegisterRoutes(api)
	}
	if deps.Suggestions != nil {
		deps.Suggestions.RegisterRoutes(api)
	}
	if deps.Usage != nil {
		deps.Usage.RegisterRoutes(api)
		if deps.Config.Env == "dev" || deps.Config.Env == "local" {
			dev := api.Group("/dev")
			deps.Usage.RegisterDevRoutes(dev)
		}
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
