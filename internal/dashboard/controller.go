// Package dashboard drives one dashboard page: it loads data from the backend
// and writes it into the page's summary cards, charts, table and controls.
//
// All state lives on a Controller. Loads run without holding the controller
// lock; their results are applied only if no newer load of the same kind has
// started in the meantime.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"momodash/internal/chart"
	"momodash/internal/core"
	"momodash/internal/dom"
	"momodash/internal/log"
	"momodash/internal/metrics"
)

const (
	failedToLoad = "Failed to load"
	searchFailed = "Unable to perform search. Please try again."
)

// Backend is the finance API as the controller sees it.
type Backend interface {
	FinancialOverview(ctx context.Context) (core.FinancialOverview, error)
	Transactions(ctx context.Context, page int, f core.Filters) (core.TransactionPage, error)
	Search(ctx context.Context, query string) (core.TransactionPage, error)
}

type Options struct {
	Formatter *core.Formatter
	Renderer  *chart.Renderer
	Logger    *log.Logger
	Metrics   metrics.Recorder
}

// flight tracks the newest load of one kind.
type flight struct {
	gen    uint64
	cancel context.CancelFunc
}

// Controller owns a page document and the pagination state behind it. It is
// safe for concurrent use.
type Controller struct {
	mu      sync.Mutex
	doc     *dom.Document
	el      Elements
	backend Backend
	format  *core.Formatter
	charts  *chart.Renderer
	logger  *log.Logger
	metrics metrics.Recorder

	currentPage int
	totalPages  int
	filters     core.Filters
	query       string

	overview flight
	table    flight
}

// New binds a controller to doc. Elements missing from doc are logged once and
// their features skipped.
func New(doc *dom.Document, backend Backend, opts Options) *Controller {
	if opts.Formatter == nil {
		opts.Formatter = core.NewFormatter(core.DefaultCurrency, core.DefaultLocale)
	}
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NoOp{}
	}
	if opts.Renderer == nil {
		opts.Renderer = chart.NewRenderer(opts.Logger, opts.Metrics)
	}

	c := &Controller{
		doc:         doc,
		el:          Lookup(doc),
		backend:     backend,
		format:      opts.Formatter,
		charts:      opts.Renderer,
		logger:      opts.Logger.WithComponent(log.ComponentDashboard),
		metrics:     opts.Metrics,
		currentPage: 1,
		totalPages:  1,
	}
	if missing := c.el.Missing(); len(missing) > 0 {
		c.logger.Warn("Dashboard page is missing elements", "missing", missing)
	}
	return c
}

// Init loads the overview and the first transactions page concurrently. The
// returned error is informational: failures are already shown on the page.
func (c *Controller) Init(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return c.loadOverview(ctx) })
	g.Go(func() error { return c.loadTransactions(ctx, 1, core.Filters{}) })
	if err := g.Wait(); err != nil {
		return fmt.Errorf("initial load: %w", err)
	}
	return nil
}

// FetchFinancialOverview reloads the summary cards, charts and category filter.
func (c *Controller) FetchFinancialOverview(ctx context.Context) {
	_ = c.loadOverview(ctx)
}

// FetchTransactions loads one page of transactions with the given filters.
func (c *Controller) FetchTransactions(ctx context.Context, page int, filters core.Filters) {
	_ = c.loadTransactions(ctx, page, filters)
}

// SearchTransactions replaces the table with transactions matching query.
func (c *Controller) SearchTransactions(ctx context.Context, query string) {
	_ = c.loadSearch(ctx, query)
}

func (c *Controller) loadOverview(ctx context.Context) error {
	ctx, gen, done := c.begin(ctx, &c.overview)
	defer done()

	c.logger.DebugContext(ctx, "Fetching financial overview", log.FieldGeneration, gen)
	data, err := c.backend.FinancialOverview(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.latest(ctx, &c.overview, gen, "overview") {
		return nil
	}
	if err != nil {
		c.logger.ErrorContext(ctx, "Error fetching financial overview", log.FieldError, err)
		c.setSummary(failedToLoad, failedToLoad, failedToLoad)
		return fmt.Errorf("financial overview: %w", err)
	}
	c.applyOverview(data.Normalized())
	return nil
}

func (c *Controller) loadTransactions(ctx context.Context, page int, filters core.Filters) error {
	ctx, gen, done := c.begin(ctx, &c.table)
	defer done()

	c.logger.DebugContext(ctx, "Fetching transactions",
		log.FieldPage, page,
		log.FieldFilters, filters.Values(),
		log.FieldGeneration, gen)
	data, err := c.backend.Transactions(ctx, page, filters)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.latest(ctx, &c.table, gen, "table") {
		return nil
	}
	if err != nil {
		c.logger.ErrorContext(ctx, "Error fetching transactions", log.FieldPage, page, log.FieldError, err)
		c.renderTableError(err)
		return fmt.Errorf("transactions page %d: %w", page, err)
	}
	c.filters = filters
	c.query = ""
	c.applyPage(data)
	return nil
}

func (c *Controller) loadSearch(ctx context.Context, query string) error {
	ctx, gen, done := c.begin(ctx, &c.table)
	defer done()

	c.logger.DebugContext(ctx, "Searching transactions", log.FieldSearch, query, log.FieldGeneration, gen)
	data, err := c.backend.Search(ctx, query)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.latest(ctx, &c.table, gen, "table") {
		return nil
	}
	if err != nil {
		c.logger.ErrorContext(ctx, "Error searching transactions", log.FieldSearch, query, log.FieldError, err)
		c.doc.Alert(searchFailed)
		return fmt.Errorf("search %q: %w", query, err)
	}
	c.filters = core.Filters{}
	c.query = query
	c.applyPage(data)
	return nil
}

// begin starts a load of one kind, cancelling the previous one.
func (c *Controller) begin(parent context.Context, f *flight) (context.Context, uint64, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	c.mu.Lock()
	if f.cancel != nil {
		f.cancel()
	}
	f.gen++
	f.cancel = cancel
	gen := f.gen
	c.mu.Unlock()

	return ctx, gen, cancel
}

// latest reports whether a finished load should be applied. c.mu must be held.
func (c *Controller) latest(ctx context.Context, f *flight, gen uint64, kind string) bool {
	if gen != f.gen {
		c.logger.DebugContext(ctx, "Discarding superseded response",
			"kind", kind,
			log.FieldGeneration, gen)
		c.metrics.RecordStaleResponse(kind)
		return false
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		return false
	}
	return true
}

// CurrentPage and TotalPages are the pagination state of the last
// successful load.
func (c *Controller) CurrentPage() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentPage
}

func (c *Controller) TotalPages() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalPages
}

// Filters returns the filters of the listing currently shown. A category
// filter and a date filter never coexist: choosing one drops the other.
func (c *Controller) Filters() core.Filters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters
}

// Query returns the active search, empty when the table shows a listing.
func (c *Controller) Query() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}
