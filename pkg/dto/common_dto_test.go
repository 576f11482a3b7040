package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageQueryNormalize(t *testing.T) {
	q := PageQuery{}
	q.Normalize()
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 10, q.Limit)
	assert.Equal(t, 0, q.Offset())

	q = PageQuery{Page: 3, Limit: 20}
	q.Normalize()
	assert.Equal(t, 40, q.Offset())
}

func TestNewPaginationMeta(t *testing.T) {
	meta := NewPaginationMeta(PageQuery{Page: 2, Limit: 10}, 21)
	assert.Equal(t, PaginationMeta{CurrentPage: 2, TotalPages: 3, TotalItems: 21, Limit: 10}, meta)

	meta = NewPaginationMeta(PageQuery{Page: 1, Limit: 10}, 0)
	assert.Equal(t, 0, meta.TotalPages)
}
