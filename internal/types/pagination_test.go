package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPaginationCeilsTotalPages(t *testing.T) {
	cases := []struct {
		total int64
		limit int
		pages int64
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{21, 5, 5},
	}

	for _, tc := range cases {
		p := NewPagination(PageQuery{Page: 1, Limit: tc.limit}, tc.total)
		assert.Equal(t, tc.pages, p.TotalPages, "total=%d limit=%d", tc.total, tc.limit)
	}
}

func TestPageQueryOffset(t *testing.T) {
	assert.Equal(t, 0, PageQuery{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, 20, PageQuery{Page: 3, Limit: 10}.Offset())
}
