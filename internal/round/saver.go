package round

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// saver persists records on a background goroutine. Only the newest record
// waits; a newer submit replaces an older one that has not been written yet.
type saver struct {
	store   Store
	logger  *log.Logger
	timeout time.Duration

	mu      sync.Mutex
	idle    *sync.Cond
	pending *Record
	busy    bool
	closed  bool
	wake    chan struct{}
	done    chan struct{}
}

func newSaver(store Store, logger *log.Logger, timeout time.Duration) *saver {
	s := &saver{
		store:   store,
		logger:  logger,
		timeout: timeout,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	s.idle = sync.NewCond(&s.mu)
	go s.run()
	return s
}

// submit queues rec without waiting for the store
func (s *saver) submit(rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.logger.Warn("Dropping snapshot save after close", "session", rec.Store.Session)
		return
	}
	if s.pending != nil {
		s.logger.Debug("Replacing unsaved snapshot")
	}
	s.pending = &rec
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// flush blocks until every submitted record has been written
func (s *saver) flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.pending != nil || s.busy {
		s.idle.Wait()
	}
}

// close writes the pending record and stops the goroutine
func (s *saver) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.done
		return
	}
	s.closed = true
	close(s.wake)
	s.mu.Unlock()
	<-s.done
}

func (s *saver) run() {
	defer close(s.done)
	for range s.wake {
		s.drain()
	}
	s.drain()
}

func (s *saver) drain() {
	for {
		s.mu.Lock()
		rec := s.pending
		s.pending = nil
		s.busy = rec != nil
		if rec == nil {
			s.idle.Broadcast()
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		err := s.store.Save(ctx, *rec)
		cancel()
		if err != nil {
			s.logger.Error("Failed to save snapshot", "error", err)
		}
	}
}
