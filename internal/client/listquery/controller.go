// Package listquery keeps a paginated, searched and filtered view of one
// resource in sync with the server.
//
// A Controller owns the query (page, limit, search, filters), debounces
// search and filter input, and commits only the response of the most
// recently issued request. Fetches run on their own goroutines; Wait blocks
// until pending debounces and fetches have settled.
package listquery

import (
	"context"
	"errors"
	"maps"
	"strings"
	"sync"

	"github.com/dmitrijs2005/clinicdesk/internal/client/client"
	"github.com/dmitrijs2005/clinicdesk/internal/client/models"
	"github.com/dmitrijs2005/clinicdesk/internal/client/notify"
	"github.com/dmitrijs2005/clinicdesk/internal/logging"
	"github.com/dmitrijs2005/clinicdesk/internal/timex"
)

var (
	ErrEmptyResponse = errors.New("empty list response")
	ErrInvalidLimit  = errors.New("limit must be positive")
)

// LoadKind tells a renderer which loading indicator to show.
type LoadKind int

const (
	LoadNone LoadKind = iota
	// LoadFull blanks the view; only the first fetch after Mount uses it.
	LoadFull
	// LoadRefresh keeps the previous rows visible.
	LoadRefresh
)

func (k LoadKind) String() string {
	switch k {
	case LoadFull:
		return "loading"
	case LoadRefresh:
		return "refreshing"
	default:
		return "idle"
	}
}

type Fetcher[T any] func(ctx context.Context, q models.Query) (*models.PageOf[T], error)

// View is a snapshot of the controller state. Rev grows with every
// snapshot, so a later state always carries a larger Rev.
type View[T any] struct {
	Rev        uint64
	Query      models.Query
	Rows       []T
	TotalPages int
	TotalDocs  int
	Loading    LoadKind
	Err        error
	Mounted    bool
}

type Controller[T any] struct {
	fetch    Fetcher[T]
	notifier notify.Notifier
	logger   logging.Logger
	search   *timex.Debouncer
	filter   *timex.Debouncer
	onChange func(View[T])

	// emitMu serializes OnChange callbacks; emitted is the last Rev delivered.
	emitMu  sync.Mutex
	emitted uint64

	mu   sync.Mutex
	idle *sync.Cond
	ctx  context.Context

	query      models.Query
	rawSearch  string
	rawFilters map[string]string
	committed  *models.Query
	rev        uint64

	rows       []T
	totalPages int
	totalDocs  int
	hasTotals  bool
	loading    LoadKind
	err        error

	mounted     bool
	fetched     bool
	seq         uint64
	busy        int
	searchArmed bool
	filterArmed bool
}

func New[T any](fetch Fetcher[T], notifier notify.Notifier, opts ...Option) *Controller[T] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	c := &Controller[T]{
		fetch:      fetch,
		notifier:   notifier,
		logger:     o.logger,
		search:     timex.NewDebouncer(o.searchDebounce, o.after),
		filter:     timex.NewDebouncer(FilterDebounce, o.after),
		ctx:        context.Background(),
		query:      models.Query{Page: 1, Limit: o.limit, Filters: map[string]string{}},
		rawFilters: map[string]string{},
	}
	for k, v := range o.filters {
		c.query.Filters[k] = normalizeFilter(v)
	}
	c.idle = sync.NewCond(&c.mu)
	return c
}

// OnChange registers fn to receive a snapshot after every state change.
// Calls are serialized and never go back in Rev; a snapshot overtaken by a
// newer one is skipped. fn runs outside the controller lock but must not
// call methods that change the query.
func (c *Controller[T]) OnChange(fn func(View[T])) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// Mount starts a fresh view and issues its first (full-page) fetch. ctx is
// used for fetches that are not tied to a caller.
func (c *Controller[T]) Mount(ctx context.Context) {
	c.mu.Lock()
	c.ctx = ctx
	c.mounted = true
	c.fetched = false
	c.fetchLocked(ctx)
	v := c.viewLocked()
	c.mu.Unlock()
	c.emit(v)
}

// Unmount cancels pending debounces and drops in-flight responses.
func (c *Controller[T]) Unmount() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.search.Stop()
	c.filter.Stop()
	if c.searchArmed {
		c.searchArmed = false
		c.busy--
	}
	if c.filterArmed {
		c.filterArmed = false
		c.busy--
	}
	c.mounted = false
	c.seq++
	c.loading = LoadNone
	c.idle.Broadcast()
}

// SetSearch records raw input. The query picks it up once the search
// debounce elapses without further input.
func (c *Controller[T]) SetSearch(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rawSearch = text
	if !c.searchArmed {
		c.searchArmed = true
		c.busy++
	}
	c.search.Trigger(c.applySearch)
}

// SetFilter records a filter selection; FilterAll or "" clears it.
func (c *Controller[T]) SetFilter(name, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rawFilters[name] = normalizeFilter(value)
	if !c.filterArmed {
		c.filterArmed = true
		c.busy++
	}
	c.filter.Trigger(c.applyFilters)
}

// SetLimit changes the page size and goes back to page 1 immediately.
func (c *Controller[T]) SetLimit(n int) error {
	if n < 1 {
		return ErrInvalidLimit
	}

	c.mu.Lock()
	if n == c.query.Limit {
		c.mu.Unlock()
		return nil
	}
	c.query.Limit = n
	c.query.Page = 1
	if c.mounted {
		c.fetchLocked(c.ctx)
	}
	v := c.viewLocked()
	c.mu.Unlock()
	c.emit(v)
	return nil
}

// SetPage moves to page n, clamped to [1, totalPages] once the server has
// reported totals. It returns the page actually selected.
func (c *Controller[T]) SetPage(n int) int {
	c.mu.Lock()
	if c.hasTotals && c.totalPages > 0 && n > c.totalPages {
		n = c.totalPages
	}
	if n < 1 {
		n = 1
	}
	if n == c.query.Page {
		c.mu.Unlock()
		return n
	}
	c.query.Page = n
	if c.mounted {
		c.fetchLocked(c.ctx)
	}
	v := c.viewLocked()
	c.mu.Unlock()
	c.emit(v)
	return n
}

func (c *Controller[T]) NextPage() int {
	return c.SetPage(c.currentPage() + 1)
}

func (c *Controller[T]) PrevPage() int {
	return c.SetPage(c.currentPage() - 1)
}

// Refresh refetches the current query, e.g. after a mutation.
func (c *Controller[T]) Refresh(ctx context.Context) {
	c.mu.Lock()
	if !c.mounted {
		c.mu.Unlock()
		return
	}
	c.fetchLocked(ctx)
	v := c.viewLocked()
	c.mu.Unlock()
	c.emit(v)
}

func (c *Controller[T]) View() View[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// Wait blocks until no debounce is armed and no fetch is in flight.
func (c *Controller[T]) Wait() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.busy > 0 {
		c.idle.Wait()
	}
}

func (c *Controller[T]) currentPage() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query.Page
}

func (c *Controller[T]) applySearch() {
	c.mu.Lock()
	if c.searchArmed {
		c.searchArmed = false
		c.busy--
	}
	next := strings.TrimSpace(c.rawSearch)
	changed := c.mounted && next != c.query.Search
	if changed {
		c.query.Search = next
		c.query.Page = 1
		c.fetchLocked(c.ctx)
	}
	c.idle.Broadcast()
	v := c.viewLocked()
	c.mu.Unlock()

	if changed {
		c.emit(v)
	}
}

func (c *Controller[T]) applyFilters() {
	c.mu.Lock()
	if c.filterArmed {
		c.filterArmed = false
		c.busy--
	}
	changed := false
	for name, value := range c.rawFilters {
		if normalizeFilter(c.query.Filters[name]) != value {
			c.query.Filters[name] = value
			changed = true
		}
	}
	changed = changed && c.mounted
	if changed {
		c.query.Page = 1
		c.fetchLocked(c.ctx)
	}
	c.idle.Broadcast()
	v := c.viewLocked()
	c.mu.Unlock()

	if changed {
		c.emit(v)
	}
}

// fetchLocked issues a request for the current query. Callers hold c.mu.
func (c *Controller[T]) fetchLocked(ctx context.Context) {
	c.seq++
	seq := c.seq
	q := c.query.Clone()

	if c.fetched {
		c.loading = LoadRefresh
	} else {
		c.loading = LoadFull
		c.fetched = true
	}
	c.busy++

	c.logger.Debug(ctx, "list fetch", "seq", seq, "page", q.Page, "limit", q.Limit, "search", q.Search)
	go c.run(ctx, seq, q)
}

func (c *Controller[T]) run(ctx context.Context, seq uint64, q models.Query) {
	page, err := c.fetch(ctx, q)
	if err == nil && page == nil {
		err = ErrEmptyResponse
	}

	c.mu.Lock()
	c.busy--

	if seq != c.seq || !c.mounted {
		c.logger.Debug(ctx, "dropping stale list response", "seq", seq, "latest", c.seq)
		c.idle.Broadcast()
		c.mu.Unlock()
		return
	}

	var failure string
	if err != nil {
		c.err = err
		c.loading = LoadNone
		c.rollbackPageLocked()
		failure = client.Message(err)
	} else {
		c.commitLocked(ctx, q, page)
	}

	c.idle.Broadcast()
	v := c.viewLocked()
	c.mu.Unlock()

	if failure != "" {
		c.notifier.Error(ctx, failure)
	}
	c.emit(v)
}

func (c *Controller[T]) commitLocked(ctx context.Context, q models.Query, page *models.PageOf[T]) {
	c.rows = page.Docs
	if c.rows == nil {
		c.rows = []T{}
	}
	c.totalPages = page.TotalPages
	c.totalDocs = page.TotalDocs
	c.hasTotals = true
	c.err = nil
	c.loading = LoadNone
	committed := q.Clone()
	c.committed = &committed

	// rows were removed under us and the current page no longer exists
	if page.TotalPages > 0 && c.query.Page > page.TotalPages {
		c.query.Page = page.TotalPages
		c.fetchLocked(ctx)
	}
}

// rollbackPageLocked picks the page a retry of the current query should ask
// for after a failed fetch: the committed page while search and filters still
// match what was committed, page 1 once they have moved on.
func (c *Controller[T]) rollbackPageLocked() {
	if c.committed == nil {
		return
	}
	if c.query.Search == c.committed.Search && maps.Equal(c.query.Filters, c.committed.Filters) {
		c.query.Page = c.committed.Page
		return
	}
	c.query.Page = 1
}

func (c *Controller[T]) viewLocked() View[T] {
	rows := make([]T, len(c.rows))
	copy(rows, c.rows)
	c.rev++
	return View[T]{
		Rev:        c.rev,
		Query:      c.query.Clone(),
		Rows:       rows,
		TotalPages: c.totalPages,
		TotalDocs:  c.totalDocs,
		Loading:    c.loading,
		Err:        c.err,
		Mounted:    c.mounted,
	}
}

func (c *Controller[T]) emit(v View[T]) {
	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()
	if fn == nil {
		return
	}

	c.emitMu.Lock()
	defer c.emitMu.Unlock()
	if v.Rev <= c.emitted {
		return
	}
	c.emitted = v.Rev
	fn(v)
}

func normalizeFilter(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return models.FilterAll
	}
	return v
}
