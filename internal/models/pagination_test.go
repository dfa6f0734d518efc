package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPagination_Bounds(t *testing.T) {
	p := NewPagination(0, 0)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultPageSize, p.PageSize)

	p = NewPagination(3, 500)
	assert.Equal(t, MaxPageSize, p.PageSize)
	assert.Equal(t, 200, p.Offset())
}

func TestNewPagination_HugePageKeepsOffsetPositive(t *testing.T) {
	for _, size := range []int{1, DefaultPageSize, MaxPageSize} {
		p := NewPagination(1<<62, size)
		assert.Equal(t, MaxPage, p.Page)
		assert.GreaterOrEqual(t, p.Offset(), 0)
	}

	p := NewPagination(math.MaxInt, MaxPageSize)
	assert.GreaterOrEqual(t, p.Offset(), 0)
	assert.Nil(t, p.Next(10))
}

func TestPagination_Next(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		pageSize int
		total    int
		want     *int
	}{
		{"empty", 1, 10, 0, nil},
		{"single page", 1, 10, 10, nil},
		{"more pages", 1, 10, 11, intPtr(2)},
		{"last page", 2, 10, 11, nil},
		{"past the end", 5, 10, 11, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewPagination(tt.page, tt.pageSize).Next(tt.total)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestPagination_TotalPages(t *testing.T) {
	p := NewPagination(1, 10)
	assert.Equal(t, 0, p.TotalPages(0))
	assert.Equal(t, 1, p.TotalPages(1))
	assert.Equal(t, 3, p.TotalPages(21))
}

func intPtr(v int) *int { return &v }
