package listquery

import (
	"time"

	"github.com/dmitrijs2005/clinicdesk/internal/logging"
	"github.com/dmitrijs2005/clinicdesk/internal/timex"
)

const (
	DefaultLimit          = 10
	DefaultSearchDebounce = 500 * time.Millisecond
	// FilterDebounce is shorter than the search one and not configurable.
	FilterDebounce = 300 * time.Millisecond
)

type options struct {
	limit          int
	searchDebounce time.Duration
	after          timex.AfterFunc
	logger         logging.Logger
	filters        map[string]string
}

type Option func(*options)

func WithLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.limit = n
		}
	}
}

func WithSearchDebounce(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.searchDebounce = d
		}
	}
}

// WithAfterFunc replaces the timer used by both debouncers.
func WithAfterFunc(after timex.AfterFunc) Option {
	return func(o *options) { o.after = after }
}

func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithFilters sets the initial filter selections.
func WithFilters(filters map[string]string) Option {
	return func(o *options) {
		for k, v := range filters {
			o.filters[k] = v
		}
	}
}

func defaultOptions() options {
	return options{
		limit:          DefaultLimit,
		searchDebounce: DefaultSearchDebounce,
		after:          timex.RealAfterFunc,
		logger:         logging.Nop(),
		filters:        map[string]string{},
	}
}
