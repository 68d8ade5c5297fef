package sqlcrepo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageOffset(t *testing.T) {
	tests := []struct {
		page, limit       int
		wantLimit, wantOf int32
	}{
		{1, 20, 20, 0},
		{3, 25, 25, 50},
		{0, 0, 20, 0},
		{-4, 10, 10, 0},
		{math.MaxInt32, 100, 100, math.MaxInt32},
	}
	for _, tt := range tests {
		limit, offset := pageOffset(tt.page, tt.limit)
		assert.Equal(t, tt.wantLimit, limit)
		assert.Equal(t, tt.wantOf, offset, "page %d limit %d", tt.page, tt.limit)
		assert.GreaterOrEqual(t, offset, int32(0))
	}
}

func TestStrPtr(t *testing.T) {
	assert.Nil(t, strPtr(""))
	assert.Equal(t, " keep spaces ", *strPtr(" keep spaces "))
}
