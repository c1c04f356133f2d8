package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetPageOffset(t *testing.T) {
	tests := []struct {
		name       string
		in         Pagination
		wantOffset int
		wantLimit  int
	}{
		{"defaults", Pagination{}, 0, 10},
		{"second page", Pagination{Page: 2, Limit: 20}, 20, 20},
		{"limit capped", Pagination{Page: 1, Limit: 500}, 0, 100},
		{"negative page", Pagination{Page: -4, Limit: 5}, 0, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offset, limit := tt.in.GetPageOffset()
			assert.Equal(t, tt.wantOffset, offset)
			assert.Equal(t, tt.wantLimit, limit)
		})
	}
}

func TestGetPageOffset_HugePageDoesNotOverflow(t *testing.T) {
	for _, page := range []int{922337203685477582, math.MaxInt} {
		p := Pagination{Page: page, Limit: 10}
		offset, limit := p.GetPageOffset()
		assert.GreaterOrEqual(t, offset, 0)
		assert.GreaterOrEqual(t, offset+limit, offset, "offset+limit overflowed")
		assert.Less(t, p.Page, page)
	}
}
