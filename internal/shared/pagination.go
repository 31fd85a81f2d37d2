package shared

import "math"

// DefaultPageSize applies when the caller does not request one.
const DefaultPageSize = 20

// MaxPageSize caps caller-requested page sizes.
const MaxPageSize = 100

// Pagination contains metadata for paginated listings.
type Pagination struct {
	TotalItems  int `json:"totalItems"`
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage"`
	PageSize    int `json:"pageSize"`
}

// NewPagination computes pagination metadata. Page numbers are 1-indexed.
func NewPagination(page, pageSize, total int) Pagination {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	if page <= 0 {
		page = 1
	}
	totalPages := int(math.Ceil(float64(total) / float64(pageSize)))
	return Pagination{TotalItems: total, TotalPages: totalPages, CurrentPage: page, PageSize: pageSize}
}

// Offset returns the SQL offset for the page.
func (p Pagination) Offset() int {
	return (p.CurrentPage - 1) * p.PageSize
}
