package catalog

import (
	"fmt"
	"sort"

	"poster_shop/pkg/apperr"
)

// Tier 产品规格
type Tier struct {
	Code             string `json:"code"`
	Name             string `json:"name"`
	Price            int64  `json:"price"` // 最小货币单位
	RequiresShipping bool   `json:"requiresShipping"`
}

// Theme 海报主题
type Theme struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Catalog 只读价目表
type Catalog struct {
	tiers  map[string]Tier
	themes map[string]Theme
}

// New builds a catalog from the given tiers and themes.
func New(tiers []Tier, themes []Theme) *Catalog {
	c := &Catalog{
		tiers:  make(map[string]Tier, len(tiers)),
		themes: make(map[string]Theme, len(themes)),
	}
	for _, t := range tiers {
		c.tiers[t.Code] = t
	}
	for _, t := range themes {
		c.themes[t.Code] = t
	}
	return c
}

// Default 默认价目表
func Default() *Catalog {
	return New(
		[]Tier{
			{Code: "digital", Name: "Digital Download", Price: 4900, RequiresShipping: false},
			{Code: "print", Name: "Premium Print", Price: 18900, RequiresShipping: true},
			{Code: "framed", Name: "Framed Print", Price: 29900, RequiresShipping: true},
		},
		[]Theme{
			{Code: "homeAlone", Name: "Home Alone"},
			{Code: "elf", Name: "Elf"},
			{Code: "vacation", Name: "Christmas Vacation"},
		},
	)
}

func (c *Catalog) tier(code string) (Tier, error) {
	t, ok := c.tiers[code]
	if !ok {
		return Tier{}, apperr.UnknownKey("tier", code)
	}
	return t, nil
}

// PriceOf 单价
func (c *Catalog) PriceOf(tier string) (int64, error) {
	t, err := c.tier(tier)
	return t.Price, err
}

// RequiresShipping 是否需要寄送实物
func (c *Catalog) RequiresShipping(tier string) (bool, error) {
	t, err := c.tier(tier)
	return t.RequiresShipping, err
}

// TierName 规格展示名
func (c *Catalog) TierName(tier string) (string, error) {
	t, err := c.tier(tier)
	return t.Name, err
}

// DisplayName 主题展示名
func (c *Catalog) DisplayName(theme string) (string, error) {
	t, ok := c.themes[theme]
	if !ok {
		return "", apperr.UnknownKey("theme", theme)
	}
	return t.Name, nil
}

// ProductLabel 支付页面上展示的商品名，例如 "Elf Poster - Framed Print"
func (c *Catalog) ProductLabel(theme, tier string) (string, error) {
	themeName, err := c.DisplayName(theme)
	if err != nil {
		return "", err
	}
	tierName, err := c.TierName(tier)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s Poster - %s", themeName, tierName), nil
}

// Tiers returns all tiers ordered by price.
func (c *Catalog) Tiers() []Tier {
	list := make([]Tier, 0, len(c.tiers))
	for _, t := range c.tiers {
		list = append(list, t)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Price < list[j].Price })
	return list
}

// Themes returns all themes ordered by code.
func (c *Catalog) Themes() []Theme {
	list := make([]Theme, 0, len(c.themes))
	for _, t := range c.themes {
		list = append(list, t)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return list
}
