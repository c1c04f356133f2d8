package catalog

import (
	"errors"
	"testing"

	"poster_shop/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogLookups(t *testing.T) {
	c := Default()

	for _, tier := range []string{"digital", "print", "framed"} {
		t.Run("tier "+tier, func(t *testing.T) {
			_, err := c.PriceOf(tier)
			assert.NoError(t, err)
			_, err = c.RequiresShipping(tier)
			assert.NoError(t, err)
		})
	}

	for _, theme := range []string{"homeAlone", "elf", "vacation"} {
		t.Run("theme "+theme, func(t *testing.T) {
			name, err := c.DisplayName(theme)
			assert.NoError(t, err)
			assert.NotEmpty(t, name)
		})
	}
}

func TestPrices(t *testing.T) {
	c := Default()

	price, err := c.PriceOf("print")
	require.NoError(t, err)
	assert.Equal(t, int64(18900), price)

	ship, err := c.RequiresShipping("digital")
	require.NoError(t, err)
	assert.False(t, ship)

	ship, err = c.RequiresShipping("framed")
	require.NoError(t, err)
	assert.True(t, ship)
}

func TestUnknownKeys(t *testing.T) {
	c := Default()

	_, err := c.PriceOf("canvas")
	assert.True(t, errors.Is(err, apperr.ErrUnknownKey))
	assert.Equal(t, "tier", apperr.FieldOf(err))

	_, err = c.RequiresShipping("")
	assert.True(t, errors.Is(err, apperr.ErrUnknownKey))

	_, err = c.DisplayName("grinch")
	assert.True(t, errors.Is(err, apperr.ErrUnknownKey))
	assert.Equal(t, "theme", apperr.FieldOf(err))

	// theme codes are case sensitive
	_, err = c.DisplayName("homealone")
	assert.True(t, errors.Is(err, apperr.ErrUnknownKey))
}

func TestProductLabel(t *testing.T) {
	c := Default()

	label, err := c.ProductLabel("vacation", "framed")
	require.NoError(t, err)
	assert.Equal(t, "Christmas Vacation Poster - Framed Print", label)

	_, err = c.ProductLabel("elf", "mug")
	assert.Error(t, err)
}

func TestListingOrder(t *testing.T) {
	c := Default()

	tiers := c.Tiers()
	require.Len(t, tiers, 3)
	assert.Equal(t, "digital", tiers[0].Code)
	assert.Equal(t, "framed", tiers[2].Code)

	themes := c.Themes()
	require.Len(t, themes, 3)
	assert.Equal(t, []string{"elf", "homeAlone", "vacation"}, []string{themes[0].Code, themes[1].Code, themes[2].Code})
}
