// AngelaMos | 2026
// pagination.go

package core

import (
	"math"
	"strconv"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

const (
	msgInvalidPage  = "page must be a positive integer"
	msgInvalidLimit = "limit must be between 1 and 100"
)

type Pagination struct {
	Page  int
	Limit int
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ParsePagination validates raw page/limit query values. Out-of-range values
// are rejected, never clamped.
func ParsePagination(rawPage, rawLimit string) (Pagination, error) {
	p := Pagination{Page: DefaultPage, Limit: DefaultLimit}

	if rawPage != "" {
		page, err := strconv.Atoi(rawPage)
		if err != nil || page < 1 {
			return Pagination{}, BadRequestError(msgInvalidPage)
		}
		p.Page = page
	}

	if rawLimit != "" {
		limit, err := strconv.Atoi(rawLimit)
		if err != nil || limit < 1 || limit > MaxLimit {
			return Pagination{}, BadRequestError(msgInvalidLimit)
		}
		p.Limit = limit
	}

	// Offset must stay representable.
	if p.Page-1 > math.MaxInt/p.Limit {
		return Pagination{}, BadRequestError(msgInvalidPage)
	}

	return p, nil
}

type Page[T any] struct {
	Items       []T
	TotalCount  int
	CurrentPage int
	TotalPages  int
	Limit       int
}

func NewPage[T any](items []T, total int, p Pagination) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:       items,
		TotalCount:  total,
		CurrentPage: p.Page,
		TotalPages:  TotalPages(total, p.Limit),
		Limit:       p.Limit,
	}
}

func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

func (p Page[T]) HasNext() bool {
	return p.CurrentPage < p.TotalPages
}

func (p Page[T]) HasPrev() bool {
	return p.CurrentPage > 1
}

// MapPage converts the items of a page while keeping its metadata.
func MapPage[T, U any](p Page[T], fn func(T) U) Page[U] {
	items := make([]U, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, fn(item))
	}
	return Page[U]{
		Items:       items,
		TotalCount:  p.TotalCount,
		CurrentPage: p.CurrentPage,
		TotalPages:  p.TotalPages,
		Limit:       p.Limit,
	}
}
