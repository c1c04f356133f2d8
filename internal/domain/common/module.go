package common

import (
	"context"
	"errors"
	"os"
	"time"

	_ "poster_shop/docs"
	commonHandler "poster_shop/internal/pkg/common"
	"poster_shop/internal/pkg/registry"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// CommonModule 通用功能模块：健康检查、指标、接口文档
type CommonModule struct{}

func init() {
	registry.Register(&CommonModule{})
}

func (m *CommonModule) Name() string {
	return "common"
}

func (m *CommonModule) Priority() int {
	return 100 // 最后初始化
}

func (m *CommonModule) Init(ctx *registry.ModuleContext) error {
	setupRoutes(ctx.Router, ctx)
	return nil
}

func healthChecks(ctx *registry.ModuleContext) []commonHandler.Check {
	var checks []commonHandler.Check
	if ctx.DB != nil {
		checks = append(checks, commonHandler.Check{Name: "postgres", Fn: func(c context.Context) error {
			sqlDB, err := ctx.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(c)
		}})
	}
	if ctx.File != nil {
		checks = append(checks, commonHandler.Check{Name: "file_store", Fn: func(c context.Context) error {
			_, err := os.Stat(ctx.File.Path())
			return err
		}})
	}
	if ctx.Cache != nil {
		checks = append(checks, commonHandler.Check{Name: "cache", Fn: func(c context.Context) error {
			if err := ctx.Cache.Set(c, "health:probe", "ok", 10*time.Second); err != nil {
				return err
			}
			var v string
			if err := ctx.Cache.Get(c, "health:probe", &v); err != nil {
				return err
			}
			if v != "ok" {
				return errors.New("cache probe mismatch")
			}
			return nil
		}})
	}
	return checks
}

func setupRoutes(r *gin.Engine, ctx *registry.ModuleContext) {
	r.GET("/health", commonHandler.Health(3*time.Second, healthChecks(ctx)...))

	if ctx.Metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(ctx.Metrics.Registry(), promhttp.HandlerOpts{})))
	}

	// 生产环境不暴露接口文档
	if ctx.Config.Server.Mode != gin.ReleaseMode {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
}
