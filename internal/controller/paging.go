package controller

import (
	"slices"

	"gitlab.com/dirk.krummacker/records-service/internal/model"
	"gitlab.com/dirk.krummacker/records-service/internal/pagination"
)

// VisibleRecords returns the records of the current page.
func (c *Controller) VisibleRecords() []model.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(pagination.VisibleSlice(c.records, c.pager.Page(), c.pager.Size()))
}

// Page returns the current page and the number of pages.
func (c *Controller) Page() (current int, count int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pager.Page(), pagination.PageCount(len(c.records), c.pager.Size())
}

// PageSize returns the number of records per page.
func (c *Controller) PageSize() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pager.Size()
}

// PageOffset returns the index of the first visible record. Adding a row number of the
// visible records gives the index for StartEdit.
func (c *Controller) PageOffset() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pager.Offset()
}

// PageRange returns the positions of the first and last visible record and the total, as in
// "9 - 16 of 17".
func (c *Controller) PageRange() (first int, last int, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	first, last = c.pager.Range(len(c.records))
	return first, last, len(c.records)
}

// GoToPage shows the requested page if it exists.
func (c *Controller) GoToPage(page int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pager.GoToPage(page, len(c.records))
}

// NextPage shows the following page if there is one.
func (c *Controller) NextPage() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pager.Next(len(c.records))
}

// PrevPage shows the preceding page if there is one.
func (c *Controller) PrevPage() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pager.Prev(len(c.records))
}

// SetPageSize changes the number of records per page and shows the first page.
func (c *Controller) SetPageSize(size int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pager.SetPageSize(size)
}

// CyclePageSize switches to the next offered page size and returns it.
func (c *Controller) CyclePageSize() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := slices.Index(pagination.PageSizes, c.pager.Size())
	next := pagination.PageSizes[(i+1)%len(pagination.PageSizes)]
	_ = c.pager.SetPageSize(next)
	return next
}
