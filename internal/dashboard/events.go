package dashboard

import (
	"context"
	"errors"
	"unicode/utf16"

	"momodash/internal/core"
	"momodash/internal/dom"
	"momodash/internal/log"
)

// minSearchLength is the query length, in UTF-16 code units as a browser
// counts them, that a search needs to exceed.
const minSearchLength = 2

// ErrUnknownSection is returned by Navigate when no button targets the section.
var ErrUnknownSection = errors.New("unknown section")

// Navigate makes section the only active section and marks its buttons.
func (c *Controller) Navigate(section string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var targets []int
	for i, b := range c.el.NavButtons {
		if b.Data("section") == section {
			targets = append(targets, i)
		}
	}
	if len(targets) == 0 {
		return ErrUnknownSection
	}

	for _, b := range c.el.NavButtons {
		b.RemoveClass(ClassActive)
	}
	for _, s := range c.el.Sections {
		s.RemoveClass(ClassActive)
	}
	for _, i := range targets {
		c.el.NavButtons[i].AddClass(ClassActive)
	}
	if target := c.doc.ByID(section); target != nil {
		target.AddClass(ClassActive)
	} else {
		c.logger.Warn("Navigation target has no section", log.FieldSection, section)
	}
	return nil
}

// OnSearchInput searches once the query is long enough and otherwise shows
// the unfiltered first page.
func (c *Controller) OnSearchInput(ctx context.Context, query string) {
	c.syncValue(c.el.SearchInput, query)
	if len(utf16.Encode([]rune(query))) > minSearchLength {
		c.SearchTransactions(ctx, query)
		return
	}
	c.FetchTransactions(ctx, 1, core.Filters{})
}

// OnCategoryChange reloads page 1 for the chosen category, or unfiltered for
// "All Categories". Any date filter is dropped.
func (c *Controller) OnCategoryChange(ctx context.Context, category string) {
	c.syncValue(c.el.CategoryFilter, category)
	filters := core.Filters{}
	if category != "" {
		filters = core.CategoryFilter(category)
	}
	c.FetchTransactions(ctx, 1, filters)
}

// OnDateChange reloads page 1 for the date range as the two fields show it.
// Any category filter is dropped.
func (c *Controller) OnDateChange(ctx context.Context, start, end string) {
	c.syncValue(c.el.StartDateFilter, start)
	c.syncValue(c.el.EndDateFilter, end)
	c.FetchTransactions(ctx, 1, core.DateRangeFilter(start, end))
}

// OnPrevPage loads the previous unfiltered page when there is one.
func (c *Controller) OnPrevPage(ctx context.Context) {
	c.mu.Lock()
	page, ok := c.currentPage-1, c.currentPage > 1
	c.mu.Unlock()
	if ok {
		c.FetchTransactions(ctx, page, core.Filters{})
	}
}

// OnNextPage loads the next unfiltered page when there is one.
func (c *Controller) OnNextPage(ctx context.Context) {
	c.mu.Lock()
	page, ok := c.currentPage+1, c.currentPage < c.totalPages
	c.mu.Unlock()
	if ok {
		c.FetchTransactions(ctx, page, core.Filters{})
	}
}

func (c *Controller) syncValue(el *dom.Element, v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el != nil {
		el.SyncValue(v)
	}
}
