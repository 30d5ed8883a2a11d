package csvimport

import (
	"fmt"
	"strings"
)

// Row error codes
const (
	CodeRequired    = "REQUIRED"
	CodeInvalidType = "INVALID_TYPE"
	CodeInvalidEnum = "INVALID_VALUE"
	CodeDuplicate   = "DUPLICATE_IN_FILE"
)

// RowError is a problem with one cell or one row
type RowError struct {
	Line    int    `json:"line"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("line %d, column %q: %s", e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Errors collects row errors up to a limit while still counting the rest
type Errors struct {
	items []RowError
	limit int
	total int
}

// NewErrors creates a collection keeping at most limit entries (100 if <= 0)
func NewErrors(limit int) *Errors {
	if limit <= 0 {
		limit = 100
	}
	return &Errors{limit: limit}
}

// Add records an error
func (e *Errors) Add(err RowError) {
	e.total++
	if len(e.items) < e.limit {
		e.items = append(e.items, err)
	}
}

// Empty reports whether nothing was recorded
func (e *Errors) Empty() bool { return e.total == 0 }

// Total counts every recorded error, including those over the limit
func (e *Errors) Total() int { return e.total }

// Items returns the kept errors in insertion order
func (e *Errors) Items() []RowError { return e.items }

// Lines returns the set of lines with at least one error
func (e *Errors) Lines() map[int]bool {
	lines := make(map[int]bool, len(e.items))
	for _, it := range e.items {
		lines[it.Line] = true
	}
	return lines
}

func (e *Errors) Error() string {
	if e.Empty() {
		return ""
	}
	msgs := make([]string, 0, len(e.items))
	for _, it := range e.items {
		msgs = append(msgs, it.Error())
	}
	if hidden := e.total - len(e.items); hidden > 0 {
		msgs = append(msgs, fmt.Sprintf("and %d more", hidden))
	}
	return strings.Join(msgs, "; ")
}
