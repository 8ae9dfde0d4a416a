package services

import (
	"math"

	"gorm.io/gorm"
)

// MaxPageSize caps the client-overridable page size
const MaxPageSize = 100

// Pagination selects one page of a list, 1-based
type Pagination struct {
	Page  int
	Limit int
}

// maxOffset keeps offsets within what every supported database accepts
const maxOffset = math.MaxInt32

// Normalize clamps the pagination to sane values, using defaultLimit when unset.
// Page is capped so that its offset never exceeds maxOffset.
func (p Pagination) Normalize(defaultLimit int) Pagination {
	if p.Limit < 1 {
		p.Limit = defaultLimit
	}
	if p.Limit < 1 {
		p.Limit = 1
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if maxPage := maxOffset/p.Limit + 1; p.Page > maxPage {
		p.Page = maxPage
	}
	return p
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

func (p Pagination) scope(db *gorm.DB) *gorm.DB {
	return db.Offset(p.Offset()).Limit(p.Limit)
}

// Page is one page of results together with the total item count
type Page[T any] struct {
	Items      []T
	Count      int64
	Pagination Pagination
}

func (p Page[T]) HasNext() bool {
	return int64(p.Pagination.Page)*int64(p.Pagination.Limit) < p.Count
}

func (p Page[T]) HasPrevious() bool {
	return p.Pagination.Page > 1
}
