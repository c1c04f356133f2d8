package upload

import (
	"poster_shop/internal/domain/upload/handler"
	"poster_shop/internal/domain/upload/repository"
	"poster_shop/internal/domain/upload/service"
	"poster_shop/internal/pkg/middleware"
	"poster_shop/internal/pkg/registry"
	"poster_shop/internal/pkg/uploader"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// UploadModule 图片上传模块
type UploadModule struct{}

func init() {
	registry.Register(&UploadModule{})
}

func (m *UploadModule) Name() string {
	return "upload"
}

func (m *UploadModule) Priority() int {
	return 10
}

func (m *UploadModule) Init(ctx *registry.ModuleContext) error {
	repo, err := repository.New(ctx)
	if err != nil {
		return err
	}

	maxBytes := ctx.Config.Upload.MaxBytes
	svc := service.NewUploadService(repo, ctx.Uploader, maxBytes, ctx.Metrics)
	h := handler.NewUploadHandler(svc, maxBytes)

	rl := ctx.Config.RateLimit
	limiter := middleware.NewIPRateLimiter(rate.Limit(rl.QPS), rl.Burst)
	setupRoutes(ctx.Router, h, limiter)

	// 本地存储时直接由 gin 提供静态文件
	if local, ok := ctx.Uploader.(*uploader.LocalUploader); ok {
		ctx.Router.Static("/uploads", local.Dir())
	}
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.UploadHandler, limiter *middleware.IPRateLimiter) {
	g := r.Group("/api")
	g.POST("/upload", middleware.RateLimitMiddleware(limiter), h.Upload)
	g.GET("/uploads/:id", h.Get)
}
