// Package pagination computes the visible part of an ordered collection for a page number and
// a page size.
package pagination

import (
	"errors"
	"fmt"
	"slices"
)

// DefaultPageSize is the page size before the user chooses another one.
const DefaultPageSize = 8

// PageSizes are the page sizes the user can choose from.
var PageSizes = []int{8, 10, 20}

// ErrUnsupportedPageSize is returned for a page size that is not in PageSizes.
var ErrUnsupportedPageSize = errors.New("unsupported page size")

// VisibleSlice returns the elements of the given 1-indexed page. An out of range page yields
// an empty slice.
func VisibleSlice[T any](all []T, page int, size int) []T {
	if page < 1 || size < 1 {
		return nil
	}
	start := (page - 1) * size
	if start >= len(all) {
		return nil
	}
	end := min(start+size, len(all))
	return all[start:end]
}

// PageCount returns the number of pages needed for total elements. Zero elements need zero
// pages.
func PageCount(total int, size int) int {
	if total <= 0 || size < 1 {
		return 0
	}
	return (total + size - 1) / size
}

// Pager holds the current page and page size of a table.
type Pager struct {
	size int
	page int
}

// NewPager returns a pager on page 1 with the default page size.
func NewPager() *Pager {
	return &Pager{size: DefaultPageSize, page: 1}
}

// Page returns the current 1-indexed page.
func (p *Pager) Page() int {
	return p.page
}

// Size returns the current page size.
func (p *Pager) Size() int {
	return p.size
}

// Offset returns the index of the first element of the current page.
func (p *Pager) Offset() int {
	return (p.page - 1) * p.size
}

// GoToPage changes the current page if it exists for total elements. It reports whether the
// page was changed; a request outside 1..PageCount leaves the current page as it is.
func (p *Pager) GoToPage(page int, total int) bool {
	if page < 1 || page > PageCount(total, p.size) {
		return false
	}
	p.page = page
	return true
}

// Next moves to the following page if there is one.
func (p *Pager) Next(total int) bool {
	return p.GoToPage(p.page+1, total)
}

// Prev moves to the preceding page if there is one.
func (p *Pager) Prev(total int) bool {
	return p.GoToPage(p.page-1, total)
}

// SetPageSize changes the page size and returns to page 1.
func (p *Pager) SetPageSize(size int) error {
	if !slices.Contains(PageSizes, size) {
		return fmt.Errorf("%w: %d", ErrUnsupportedPageSize, size)
	}
	p.size = size
	p.page = 1
	return nil
}

// Reset returns to page 1.
func (p *Pager) Reset() {
	p.page = 1
}

// Range returns the 1-based positions of the first and last element shown on the current
// page, as in "9 - 16 of 17". It returns 0, 0 if the page shows nothing.
func (p *Pager) Range(total int) (first int, last int) {
	start := p.Offset()
	if start >= total {
		return 0, 0
	}
	return start + 1, min(start+p.size, total)
}
