// Package paging carries zero-based page requests and the derived page metadata
// returned by search operations.
package paging

import "math"

// MaxIndex is the highest page index a caller may request. Normalize clamps to it.
const MaxIndex = math.MaxInt32

// Request selects one zero-based page of a result set.
type Request struct {
	Index int
	Size  int
}

// Normalize clamps the index into [0, MaxIndex] and a non-positive size to fallback.
func (r Request) Normalize(fallback int) Request {
	if r.Index < 0 {
		r.Index = 0
	}
	if r.Index > MaxIndex {
		r.Index = MaxIndex
	}
	if r.Size <= 0 {
		r.Size = fallback
	}
	return r
}

// Offset is the number of rows to skip before this page. It saturates at
// math.MaxInt instead of overflowing.
func (r Request) Offset() int {
	if r.Index <= 0 || r.Size <= 0 {
		return 0
	}
	if r.Index > math.MaxInt/r.Size {
		return math.MaxInt
	}
	return r.Index * r.Size
}

// Page is one page of results plus the pre-pagination total.
type Page[T any] struct {
	Items           []T  `json:"items"`
	TotalCount      int  `json:"total_count"`
	PageIndex       int  `json:"page_index"`
	PageSize        int  `json:"page_size"`
	TotalPages      int  `json:"total_pages"`
	HasNextPage     bool `json:"has_next_page"`
	HasPreviousPage bool `json:"has_previous_page"`
}

// New builds a Page and derives TotalPages, HasNextPage and HasPreviousPage.
func New[T any](items []T, total int, req Request) Page[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if req.Size > 0 {
		totalPages = (total + req.Size - 1) / req.Size
	}
	return Page[T]{
		Items:           items,
		TotalCount:      total,
		PageIndex:       req.Index,
		PageSize:        req.Size,
		TotalPages:      totalPages,
		HasNextPage:     req.Index+1 < totalPages,
		HasPreviousPage: req.Index > 0,
	}
}

// Map converts the items of a page, keeping its metadata.
func Map[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := make([]U, len(p.Items))
	for i, item := range p.Items {
		out[i] = fn(item)
	}
	return Page[U]{
		Items:           out,
		TotalCount:      p.TotalCount,
		PageIndex:       p.PageIndex,
		PageSize:        p.PageSize,
		TotalPages:      p.TotalPages,
		HasNextPage:     p.HasNextPage,
		HasPreviousPage: p.HasPreviousPage,
	}
}
