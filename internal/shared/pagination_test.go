package shared

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8}

	p := NewPagination(2, 3, len(items))
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, []int{4, 5, 6}, Paginate(items, p))

	assert.Equal(t, []int{7, 8}, Paginate(items, NewPagination(3, 3, len(items))))
	assert.Empty(t, Paginate(items, NewPagination(9, 3, len(items))))
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, Paginate(items, NewPagination(0, 0, len(items))))
}

func TestPaginationBoundsHugeValues(t *testing.T) {
	cases := []struct {
		name       string
		page       int
		perPage    int
		total      int
		start, end int
	}{
		{"huge page", math.MaxInt, 50, 1, 1, 1},
		{"huge per page", 2, math.MaxInt, 1, 1, 1},
		{"huge per page first page", 1, math.MaxInt, 3, 0, 3},
		{"huge both", math.MaxInt, math.MaxInt, 5, 5, 5},
		{"empty", 1, 10, 0, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start, end := NewPagination(tc.page, tc.perPage, tc.total).Bounds()
			assert.Equal(t, tc.start, start)
			assert.Equal(t, tc.end, end)
		})
	}

	items := []int{1}
	assert.Empty(t, Paginate(items, NewPagination(math.MaxInt, 50, len(items))))
	assert.Empty(t, Paginate(items, NewPagination(2, math.MaxInt, len(items))))
	assert.Equal(t, 1, NewPagination(1, math.MaxInt, len(items)).TotalPages)
}
