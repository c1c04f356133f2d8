package order

import (
	"context"

	"poster_shop/internal/domain/catalog"
	"poster_shop/internal/domain/order/gateway"
	"poster_shop/internal/domain/order/handler"
	"poster_shop/internal/domain/order/notifier"
	"poster_shop/internal/domain/order/repository"
	"poster_shop/internal/domain/order/service"
	uploadRepo "poster_shop/internal/domain/upload/repository"
	uploadService "poster_shop/internal/domain/upload/service"
	"poster_shop/internal/pkg/middleware"
	"poster_shop/internal/pkg/registry"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// OrderModule 下单、支付回调与订单管理
type OrderModule struct{}

func init() {
	registry.Register(&OrderModule{})
}

func (m *OrderModule) Name() string {
	return "order"
}

func (m *OrderModule) Priority() int {
	// 依赖上传模块的存储
	return 20
}

func (m *OrderModule) Init(ctx *registry.ModuleContext) error {
	cfg := ctx.Config

	// 1. 依赖注入
	repo, err := repository.New(ctx)
	if err != nil {
		return err
	}
	uRepo, err := uploadRepo.New(ctx)
	if err != nil {
		return err
	}
	uService := uploadService.NewUploadService(uRepo, ctx.Uploader, cfg.Upload.MaxBytes, nil)

	gw, err := gateway.NewStripeGateway(cfg.Stripe)
	if err != nil {
		return err
	}

	cat := catalog.Default()
	opts := notifier.Options{
		StaffAddress: cfg.Mail.StaffAddress,
		StaffAccount: cfg.Push.StaffAccount,
		UploadURL: func(c context.Context, id string) string {
			u, err := uService.Get(c, id)
			if err != nil {
				return ""
			}
			return u.URL
		},
	}
	if ctx.Worker != nil {
		opts.Dispatcher = ctx.Worker
	}
	n := notifier.New(ctx.Mailer, ctx.Push, cat, opts, ctx.Log.Named("notifier"), ctx.Metrics)

	checkout := service.NewCheckoutService(gw, cat, uService, service.CheckoutConfig{
		Currency:   cfg.Stripe.Currency,
		SuccessURL: cfg.Stripe.SuccessURL,
		CancelURL:  cfg.Stripe.CancelURL,
	}, ctx.Metrics)
	webhook := service.NewWebhookService(gw, repo, n, cfg.Stripe.Currency, ctx.Metrics)
	orders := service.NewOrderService(repo, gw, n, ctx.Cache, ctx.Metrics)

	// 2. 路由注册
	limiter := middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimit.QPS), cfg.RateLimit.Burst)
	setupRoutes(ctx.Router,
		handler.NewOrderHandler(checkout, webhook, orders),
		handler.NewAdminOrderHandler(orders),
		limiter,
		cfg.JWT.Secret,
	)

	ctx.Log.Info("order module ready", zap.String("currency", cfg.Stripe.Currency))
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.OrderHandler, a *handler.AdminOrderHandler, limiter *middleware.IPRateLimiter, secret string) {
	g := r.Group("/api")
	g.POST("/checkout", middleware.RateLimitMiddleware(limiter), h.Checkout)
	g.GET("/orders/session/:sessionId", h.GetBySession)

	// 支付回调 (无需鉴权，但需验签)
	g.POST("/webhook/stripe", h.StripeWebhook)

	admin := g.Group("/admin")
	admin.Use(middleware.AdminMiddleware(secret))
	{
		admin.GET("/orders", a.List)
		admin.GET("/orders/:id", a.Get)
		admin.PATCH("/orders/:id/status", a.UpdateStatus)
	}
}
