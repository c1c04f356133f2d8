package admin

import (
	"time"

	"poster_shop/internal/domain/admin/handler"
	"poster_shop/internal/domain/admin/service"
	"poster_shop/internal/pkg/middleware"
	"poster_shop/internal/pkg/registry"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// AdminModule 店员后台登录
type AdminModule struct{}

func init() {
	// 自动注册模块
	registry.Register(&AdminModule{})
}

func (m *AdminModule) Name() string {
	return "admin"
}

func (m *AdminModule) Priority() int {
	return 5
}

func (m *AdminModule) Init(ctx *registry.ModuleContext) error {
	cfg := ctx.Config

	// 1. 依赖注入
	ttl := time.Duration(cfg.JWT.Expire) * time.Hour
	authService := service.NewAuthService(cfg.Admin.Username, cfg.Admin.PasswordHash, cfg.JWT.Secret, ttl)
	authHandler := handler.NewAuthHandler(authService)

	// 2. 路由注册；登录接口单独限流，防止暴力破解
	limiter := middleware.NewIPRateLimiter(rate.Limit(1), 5)
	setupRoutes(ctx.Router, authHandler, limiter, cfg.JWT.Secret)

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.AuthHandler, limiter *middleware.IPRateLimiter, secret string) {
	g := r.Group("/api/admin")
	g.POST("/login", middleware.RateLimitMiddleware(limiter), h.Login)

	auth := g.Group("")
	auth.Use(middleware.AdminMiddleware(secret))
	{
		auth.GET("/me", h.Me)
	}
}
