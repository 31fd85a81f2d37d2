package shared

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func mustDate(t *testing.T, year int, month time.Month, day int) time.Time {
	t.Helper()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestNewPaginationDefaults(t *testing.T) {
	meta := NewPagination(0, 0, 45)
	assert.Equal(t, 1, meta.CurrentPage)
	assert.Equal(t, 20, meta.PageSize)
	assert.Equal(t, 45, meta.TotalItems)
	assert.Equal(t, 3, meta.TotalPages)
	assert.Equal(t, 0, meta.Offset())
}

func TestNewPaginationCapsPageSize(t *testing.T) {
	meta := NewPagination(1, 1000, 10)
	assert.Equal(t, 100, meta.PageSize)
}

func TestNewPaginationCeilsTotalPages(t *testing.T) {
	assert.Equal(t, 1, NewPagination(1, 20, 1).TotalPages)
	assert.Equal(t, 1, NewPagination(1, 20, 20).TotalPages)
	assert.Equal(t, 2, NewPagination(1, 20, 21).TotalPages)
	assert.Equal(t, 0, NewPagination(1, 20, 0).TotalPages)
}

func TestPaginationOffset(t *testing.T) {
	meta := NewPagination(3, 10, 100)
	assert.Equal(t, 20, meta.Offset())
}

func TestMonthsBetween(t *testing.T) {
	from := mustDate(t, 2024, 1, 15)
	to := mustDate(t, 2024, 4, 2)

	months := MonthsBetween(from, to)
	assert.Len(t, months, 4)
	assert.Equal(t, mustDate(t, 2024, 1, 1), months[0])
	assert.Equal(t, mustDate(t, 2024, 4, 1), months[3])
}

func TestMonthsBetweenSingleMonth(t *testing.T) {
	day := mustDate(t, 2024, 6, 10)
	months := MonthsBetween(day, day)
	assert.Len(t, months, 1)
}
