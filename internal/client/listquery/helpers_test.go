package listquery

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/clinicdesk/internal/client/models"
	"github.com/dmitrijs2005/clinicdesk/internal/timex"
)

type fakeTimer struct {
	d       time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped && !t.fired
	t.stopped = true
	return was
}

// fakeClock hands out timers that only fire when the test says so.
type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) timex.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{d: d, fn: f}
	c.timers = append(c.timers, t)
	return t
}

// elapse fires every armed timer, as if the quiet period passed.
func (c *fakeClock) elapse() {
	c.mu.Lock()
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	for _, t := range due {
		t.fn()
	}
}

func (c *fakeClock) armed() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []time.Duration
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			out = append(out, t.d)
		}
	}
	return out
}

type row struct {
	ID string
}

// recorder is a Fetcher that answers through respond and keeps every query.
type recorder struct {
	mu      sync.Mutex
	queries []models.Query
	respond func(q models.Query, call int) (*models.PageOf[row], error)
}

func (r *recorder) fetch(ctx context.Context, q models.Query) (*models.PageOf[row], error) {
	r.mu.Lock()
	r.queries = append(r.queries, q)
	call := len(r.queries)
	r.mu.Unlock()
	return r.respond(q, call)
}

func (r *recorder) calls() []models.Query {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Query(nil), r.queries...)
}

func rows(n int, prefix string) []row {
	out := make([]row, n)
	for i := range out {
		out[i] = row{ID: prefix + string(rune('a'+i))}
	}
	return out
}

func fivePages(q models.Query, _ int) (*models.PageOf[row], error) {
	return &models.PageOf[row]{
		Docs:       rows(q.Limit, "p"),
		TotalDocs:  5 * q.Limit,
		TotalPages: 5,
		Limit:      q.Limit,
		Page:       q.Page,
	}, nil
}
