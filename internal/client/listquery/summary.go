package listquery

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/clinicdesk/internal/client/client"
	"github.com/dmitrijs2005/clinicdesk/internal/client/models"
	"github.com/dmitrijs2005/clinicdesk/internal/client/notify"
)

// Summary is the statistics query that sits next to a list. It follows the
// same rules: last request wins and failures keep the previous numbers.
type Summary struct {
	fetch    func(ctx context.Context) (models.Stats, error)
	notifier notify.Notifier

	mu      sync.Mutex
	idle    *sync.Cond
	seq     uint64
	busy    int
	stats   models.Stats
	err     error
	loading bool
}

func NewSummary(fetch func(ctx context.Context) (models.Stats, error), notifier notify.Notifier) *Summary {
	s := &Summary{fetch: fetch, notifier: notifier}
	s.idle = sync.NewCond(&s.mu)
	return s
}

func (s *Summary) Refresh(ctx context.Context) {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.busy++
	s.loading = true
	s.mu.Unlock()

	go func() {
		stats, err := s.fetch(ctx)

		s.mu.Lock()
		s.busy--
		stale := seq != s.seq
		if !stale {
			s.loading = false
			if err != nil {
				s.err = err
			} else {
				s.stats = stats
				s.err = nil
			}
		}
		s.idle.Broadcast()
		s.mu.Unlock()

		if !stale && err != nil {
			s.notifier.Error(ctx, client.Message(err))
		}
	}()
}

// Stats returns the last successfully fetched numbers and the error of the
// latest attempt, if it failed.
func (s *Summary) Stats() (models.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats, s.err
}

func (s *Summary) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Summary) Wait() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.busy > 0 {
		s.idle.Wait()
	}
}
