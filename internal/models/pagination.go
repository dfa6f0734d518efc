package models

import "math"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	// MaxPage keeps Offset within int for every allowed page size.
	MaxPage = math.MaxInt/MaxPageSize + 1
)

// Pagination normalises page parameters. Pages are 1-based.
type Pagination struct {
	Page     int
	PageSize int
}

func NewPagination(page, pageSize int) Pagination {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return Pagination{Page: page, PageSize: pageSize}
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// TotalPages returns the number of pages needed for total items.
func (p Pagination) TotalPages(total int) int {
	if total == 0 {
		return 0
	}
	return (total + p.PageSize - 1) / p.PageSize
}

// Next returns the following page number, or nil on the last page.
func (p Pagination) Next(total int) *int {
	if p.Page >= p.TotalPages(total) {
		return nil
	}
	next := p.Page + 1
	return &next
}
