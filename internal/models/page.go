package models

import (
	"fmt"
	"math"
)

// PageRequest is a zero-based page selection
type PageRequest struct {
	Page int
	Size int
}

// Validate rejects negative pages and non-positive sizes
func (p PageRequest) Validate() error {
	if p.Page < 0 {
		return fmt.Errorf("%w: page must be >= 0", ErrInvalidInput)
	}
	if p.Size < 1 {
		return fmt.Errorf("%w: size must be >= 1", ErrInvalidInput)
	}
	return nil
}

// Offset returns the number of rows to skip. It saturates at MaxInt64 so
// a huge page lands past the last row instead of wrapping negative.
func (p PageRequest) Offset() int64 {
	if p.Page <= 0 || p.Size <= 0 {
		return 0
	}
	if int64(p.Page) > math.MaxInt64/int64(p.Size) {
		return math.MaxInt64
	}
	return int64(p.Page) * int64(p.Size)
}

// Page is the pagination envelope returned by every paged endpoint
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	PageNumber    int   `json:"pageNumber"`
	PageSize      int   `json:"pageSize"`
}

// NewPage builds the envelope. Content is never nil so it encodes as [].
func NewPage[T any](content []T, total int64, req PageRequest) Page[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := 0
	if req.Size > 0 {
		size := int64(req.Size)
		pages := total / size
		if total%size != 0 {
			pages++
		}
		totalPages = int(pages)
	}
	return Page[T]{
		Content:       content,
		TotalElements: total,
		TotalPages:    totalPages,
		PageNumber:    req.Page,
		PageSize:      req.Size,
	}
}

// MapPage converts the content of a page, keeping its counters
func MapPage[T, R any](p Page[T], fn func(T) R) Page[R] {
	out := make([]R, 0, len(p.Content))
	for _, item := range p.Content {
		out = append(out, fn(item))
	}
	return Page[R]{
		Content:       out,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
		PageNumber:    p.PageNumber,
		PageSize:      p.PageSize,
	}
}
