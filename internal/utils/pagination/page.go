package pagination

import "math"

const (
	// DefaultPage is the page returned when the caller does not ask for one.
	DefaultPage = 1
	// DefaultPageSize is the page size used when the caller does not ask for one.
	DefaultPageSize = 10
	// MaxPageSize caps the page size a caller may request.
	MaxPageSize = 100
)

// Page is a 1-based page number and a page size.
type Page struct {
	Number int
	Size   int
}

// New returns a Page with defaults applied to non-positive values and the size capped at MaxPageSize.
func New(number, size int) Page {
	if number < 1 {
		number = DefaultPage
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}
}

// Offset returns the number of rows to skip before this page. It saturates at math.MaxInt
// instead of overflowing for very large page numbers.
func (p Page) Offset() int {
	if p.Number <= 1 || p.Size <= 0 {
		return 0
	}
	if p.Number-1 > math.MaxInt/p.Size {
		return math.MaxInt
	}
	return (p.Number - 1) * p.Size
}

// Limit returns the maximum number of rows on this page.
func (p Page) Limit() int {
	return p.Size
}

// TotalPages returns how many pages of the given size cover total rows.
func TotalPages(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}
