package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/finrl-desk/internal/metrics"
	"github.com/finrl-desk/internal/middleware"
	"github.com/finrl-desk/internal/models"
	"github.com/finrl-desk/internal/service"
)

// RouterDeps carries everything the HTTP layer needs
type RouterDeps struct {
	Auth     *service.AuthService
	Tokens   service.TokenService
	Analysis *service.AnalysisService
	Admin    *service.AdminService

	LoginRatePerSecond float64
	LoginBurst         int
	StreamInterval     time.Duration
	// TrustedProxies may set X-Forwarded-For; nil trusts none
	TrustedProxies []string
	// Shutdown ends long-lived connections when cancelled
	Shutdown context.Context
	Version  string
	Logger   *zap.Logger
}

// NewRouter builds the gin engine with every route mounted
func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	if err := r.SetTrustedProxies(deps.TrustedProxies); err != nil {
		deps.Logger.Warn("Invalid trusted proxies, trusting none", zap.Strings("proxies", deps.TrustedProxies), zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(
		middleware.RequestLogger(deps.Logger),
		middleware.Recovery(deps.Logger),
		middleware.Metrics(),
		middleware.CORS(),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"version": deps.Version,
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	authMiddleware := middleware.RequireAuthenticated(deps.Tokens, deps.Logger)
	adminMiddleware := middleware.RequireRole(deps.Tokens, deps.Auth, models.RoleAdmin, deps.Logger)
	rateLimit := middleware.RateLimit(deps.LoginRatePerSecond, deps.LoginBurst, deps.Logger)

	api := r.Group("/api")
	NewAuthHandler(deps.Auth, deps.Tokens, deps.Logger).RegisterRoutes(api, authMiddleware, rateLimit)
	NewAnalysisHandler(deps.Analysis, deps.Logger).RegisterRoutes(api, authMiddleware)
	NewAdminHandler(deps.Admin, deps.StreamInterval, deps.Shutdown, deps.Logger).RegisterRoutes(api, adminMiddleware)

	return r
}
