package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "poster_shop/internal/domain/admin"
	_ "poster_shop/internal/domain/catalog"
	_ "poster_shop/internal/domain/common"
	_ "poster_shop/internal/domain/order"
	_ "poster_shop/internal/domain/upload"
	"poster_shop/internal/pkg/config"
	"poster_shop/internal/pkg/filestore"
	"poster_shop/internal/pkg/mailer"
	"poster_shop/internal/pkg/middleware"
	"poster_shop/internal/pkg/push"
	"poster_shop/internal/pkg/registry"
	"poster_shop/internal/pkg/uploader"
	"poster_shop/internal/pkg/worker"
	"poster_shop/pkg/cache"
	"poster_shop/pkg/database"
	"poster_shop/pkg/logger"
	"poster_shop/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// @title Poster Shop API
// @version 1.0
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	if err := logger.InitLogger(cfg.App.Env, cfg.App.Debug); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Log.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mc := metrics.NewMetricsCollector()
	modCtx, cleanup, err := buildModuleContext(ctx, cfg, mc)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := registry.InitModules(modCtx); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           modCtx.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 捕获退出信号
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info("server listening", zap.String("addr", srv.Addr), zap.String("store", cfg.Store.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case sig := <-sigs:
		logger.Log.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		return err
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	// 先停 HTTP 再等待未发完的通知
	if modCtx.Worker != nil {
		if err := modCtx.Worker.Stop(shutdownCtx); err != nil {
			logger.Log.Warn("worker pool did not drain", zap.Error(err), zap.Any("stats", modCtx.Worker.Stats()))
		}
	}
	return nil
}

// buildModuleContext 构造所有共享依赖，返回的 cleanup 负责释放连接
func buildModuleContext(ctx context.Context, cfg *config.Config, mc *metrics.MetricsCollector) (*registry.ModuleContext, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	modCtx := &registry.ModuleContext{
		Config:  cfg,
		Router:  newRouter(cfg, mc),
		Log:     logger.Log,
		Metrics: mc,
	}

	// 存储
	switch cfg.Store.Driver {
	case "postgres":
		db, err := database.InitDatabase(cfg.Database, cfg.App.Debug)
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		})
		modCtx.DB = db
	default:
		store, err := filestore.Open(cfg.Store.FilePath)
		if err != nil {
			return nil, cleanup, err
		}
		modCtx.File = store
	}

	// 缓存：配置了 Redis 时使用 Redis，否则进程内缓存
	rdb, err := database.InitRedis(ctx, cfg.Redis)
	if err != nil {
		return nil, cleanup, err
	}
	if rdb != nil {
		closers = append(closers, func() { _ = rdb.Close() })
		modCtx.Cache = cache.NewRedisCache(rdb, "")
	} else {
		modCtx.Cache = cache.NewMemoryCache()
	}

	// 文件存储
	switch cfg.Upload.Driver {
	case "oss":
		u, err := uploader.NewAliyunOSSUploader(cfg.OSS)
		if err != nil {
			return nil, cleanup, err
		}
		modCtx.Uploader = u
	default:
		baseURL := cfg.Upload.BaseURL
		if baseURL == "" {
			baseURL = cfg.Server.PublicURL
		}
		u, err := uploader.NewLocalUploader(cfg.Upload.Dir, baseURL)
		if err != nil {
			return nil, cleanup, err
		}
		modCtx.Uploader = u
	}

	// 邮件
	switch cfg.Mail.Driver {
	case "directmail":
		m, err := mailer.NewDirectMailMailer(cfg.Mail)
		if err != nil {
			return nil, cleanup, err
		}
		modCtx.Mailer = m
	default:
		modCtx.Mailer = mailer.NewLogMailer(logger.Log.Named("mail"))
	}

	// 推送可选，初始化失败不影响启动
	if cfg.Push.AccessKeyID != "" {
		p, err := push.NewAliyunPushService(cfg.Push)
		if err != nil {
			logger.Log.Error("init push service failed", zap.Error(err))
		} else {
			modCtx.Push = p
		}
	}

	// workers 为 0 时通知同步发送
	if cfg.Worker.Workers > 0 {
		modCtx.Worker = worker.NewPool(worker.Options{
			Workers:   cfg.Worker.Workers,
			QueueSize: cfg.Worker.QueueSize,
			MaxRetry:  cfg.Worker.MaxRetry,
			Backoff:   time.Duration(cfg.Worker.Backoff) * time.Second,
		}, logger.Log.Named("worker"))
		modCtx.Worker.Start()
	}

	return modCtx, cleanup, nil
}

func newRouter(cfg *config.Config, mc *metrics.MetricsCollector) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	if len(cfg.Server.CORSOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.Server.CORSOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}

	r.Use(
		gin.Recovery(),
		cors.New(corsCfg),
		middleware.SecureHeaders(),
		middleware.TraceMiddleware(),
		middleware.LoggerMiddleware(logger.Log),
		middleware.MetricsMiddleware(mc),
	)
	return r
}
