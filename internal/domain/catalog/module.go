package catalog

import (
	"poster_shop/internal/pkg/registry"
	"poster_shop/pkg/response"

	"github.com/gin-gonic/gin"
)

// CatalogModule 价目表模块，只暴露只读接口
type CatalogModule struct{}

func init() {
	registry.Register(&CatalogModule{})
}

func (m *CatalogModule) Name() string {
	return "catalog"
}

func (m *CatalogModule) Priority() int {
	return 1
}

func (m *CatalogModule) Init(ctx *registry.ModuleContext) error {
	c := Default()
	currency := ctx.Config.Stripe.Currency

	ctx.Router.GET("/api/catalog", func(gc *gin.Context) {
		response.Success(gc, gin.H{
			"currency": currency,
			"tiers":    c.Tiers(),
			"themes":   c.Themes(),
		})
	})
	return nil
}
