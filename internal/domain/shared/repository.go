package shared

import (
	"context"
	"fmt"
	"time"
)

// Filter represents query filter options
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Filters  map[string]interface{}
}

// DefaultFilter returns a filter with default values
func DefaultFilter() Filter {
	return Filter{
		Page:     1,
		PageSize: 20,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Filters:  make(map[string]interface{}),
	}
}

// Offset returns the row offset for the filter's page
func (f Filter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// Paginated represents a paginated result
type Paginated[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginated creates a new paginated result
func NewPaginated[T any](items []T, total int64, page, pageSize int) Paginated[T] {
	if pageSize <= 0 {
		pageSize = 1
	}
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return Paginated[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// TransactionManager runs fn inside a single storage transaction.
// Repositories called with the ctx passed to fn join that transaction.
type TransactionManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// NumberGenerator issues human-facing sequential numbers such as INQ2024010007
type NumberGenerator interface {
	Next(ctx context.Context, at time.Time) (string, error)
}

// NumberResyncer is implemented by generators whose counter can fall behind
// the numbers already stored. Resync moves the counter for the month
// containing at past the highest stored number.
type NumberResyncer interface {
	Resync(ctx context.Context, at time.Time) error
}

// ResyncNumbers resyncs g when it supports it
func ResyncNumbers(ctx context.Context, g NumberGenerator, at time.Time) error {
	if r, ok := g.(NumberResyncer); ok {
		return r.Resync(ctx, at)
	}
	return nil
}

// FormatSequenceNumber renders PREFIX + YYYY + MM + zero padded sequence
func FormatSequenceNumber(prefix string, at time.Time, seq int64) string {
	return fmt.Sprintf("%s%04d%02d%04d", prefix, at.Year(), int(at.Month()), seq)
}

// SequencePeriod returns the PREFIX+YYYYMM stem shared by all numbers of a month
func SequencePeriod(prefix string, at time.Time) string {
	return fmt.Sprintf("%s%04d%02d", prefix, at.Year(), int(at.Month()))
}

// MonthRange returns [first of month, first of next month) for at
func MonthRange(at time.Time) (time.Time, time.Time) {
	start := time.Date(at.Year(), at.Month(), 1, 0, 0, 0, 0, at.Location())
	return start, start.AddDate(0, 1, 0)
}
