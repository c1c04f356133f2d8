package registry

import (
	"fmt"
	"sort"

	"poster_shop/internal/pkg/config"
	"poster_shop/internal/pkg/filestore"
	"poster_shop/internal/pkg/mailer"
	"poster_shop/internal/pkg/push"
	"poster_shop/internal/pkg/uploader"
	"poster_shop/internal/pkg/worker"
	"poster_shop/pkg/cache"
	"poster_shop/pkg/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ModuleContext 模块初始化所需的上下文；所有依赖在启动时构造一次后显式传入
type ModuleContext struct {
	Config  *config.Config
	Router  *gin.Engine
	Log     *zap.Logger
	Metrics *metrics.MetricsCollector

	// 存储：DB 与 File 二选一，取决于 store.driver
	DB   *gorm.DB
	File *filestore.Store

	Cache    cache.CacheService
	Uploader uploader.Uploader
	Mailer   mailer.Mailer
	Push     push.PushService // 可能为 nil
	Worker   *worker.Pool     // 可能为 nil，此时通知同步发送
}

// Module 模块接口
type Module interface {
	// Name 返回模块名称
	Name() string

	// Init 初始化模块（依赖注入、路由注册等）
	Init(ctx *ModuleContext) error

	// Priority 返回初始化优先级（数字越小越先初始化）
	Priority() int
}

// moduleRegistry 全局模块注册表，只在 init() 阶段写入
var moduleRegistry = make(map[string]Module)

// Register 注册模块
func Register(module Module) {
	moduleRegistry[module.Name()] = module
}

// GetModules 获取所有已注册的模块
func GetModules() map[string]Module {
	return moduleRegistry
}

// Ordered 按优先级返回模块，同优先级按名称排序
func Ordered(modules map[string]Module) []Module {
	list := make([]Module, 0, len(modules))
	for _, m := range modules {
		list = append(list, m)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Priority() != list[j].Priority() {
			return list[i].Priority() < list[j].Priority()
		}
		return list[i].Name() < list[j].Name()
	})
	return list
}

// InitModules 按优先级初始化所有模块
func InitModules(ctx *ModuleContext) error {
	for _, module := range Ordered(moduleRegistry) {
		if err := module.Init(ctx); err != nil {
			return fmt.Errorf("init module %s: %w", module.Name(), err)
		}
		ctx.Log.Debug("module initialized", zap.String("module", module.Name()))
	}
	return nil
}
