package domain

import (
	"fmt"
	"time"
)

// Default pagination for test runs, matching the original preview defaults.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// SampleCeiling is the fixed row cap baked into every compiled statement.
// Pagination always operates within this sample, never the true result set.
const SampleCeiling = 50

// PageRequest holds 1-indexed pagination parameters for a test run.
type PageRequest struct {
	Page     int
	PageSize int
}

// Normalize applies defaults and validates bounds.
func (p PageRequest) Normalize() (PageRequest, error) {
	if p.Page == 0 {
		p.Page = DefaultPage
	}
	if p.PageSize == 0 {
		p.PageSize = DefaultPageSize
	}
	if p.Page < 1 {
		return p, ErrValidation("page must be >= 1")
	}
	if p.PageSize < 1 {
		return p, ErrValidation("pageSize must be >= 1")
	}
	return p, nil
}

// Offset returns the number of rows preceding the requested page.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// RunResult is one page of a test run, shaped for the caller: column order
// preserved in Columns, each row a column-keyed record with nil marking SQL
// NULL.
// FormatCell renders one driver value for presentation: SQL NULL stays nil,
// timestamps render as their date part, byte slices as text, everything else
// through fmt.
func FormatCell(v interface{}) *string {
	if v == nil {
		return nil
	}
	var s string
	switch t := v.(type) {
	case time.Time:
		s = t.Format("2006-01-02")
	case []byte:
		s = string(t)
	case string:
		s = t
	default:
		s = fmt.Sprint(t)
	}
	return &s
}

type RunResult struct {
	ExtractID   int64
	ExtractName string
	Columns     []string
	Rows        []map[string]*string
	TotalCount  int
	CurrentPage int
	PageSize    int
	HasMore     bool
}
