package round

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/lox/mahjongdojo/internal/hand"
	"github.com/lox/mahjongdojo/internal/outcome"
	"github.com/lox/mahjongdojo/internal/wall"
)

const (
	defaultErrorTTL = 3 * time.Second
	saveTimeout     = 5 * time.Second
)

// Option configures an Engine during creation.
type Option func(*Engine)

// WithClock sets the clock used for seeds and error expiry
func WithClock(clock quartz.Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithStore persists every published snapshot
func WithStore(store Store) Option {
	return func(e *Engine) { e.store = store }
}

// WithErrorTTL sets how long error messages stay visible
func WithErrorTTL(ttl time.Duration) Option {
	return func(e *Engine) { e.errorTTL = ttl }
}

// WithRule sets the rule of the initial snapshot
func WithRule(rule hand.Rule) Option {
	return func(e *Engine) { e.snap.Rule = rule }
}

// Engine serializes intents against the current snapshot.
//
// Example usage:
//
//	eval := outcome.NewEvaluator(cache, logger)
//	e := round.NewEngine(eval, logger, round.WithStore(store))
//	defer e.Close()
//	s := e.NewGame("seed-1")
//	s = e.Next()
type Engine struct {
	mu       sync.Mutex
	snap     *Snapshot
	eval     *outcome.Evaluator
	dealer   *wall.Dealer
	store    Store
	saver    *saver
	clock    quartz.Clock
	logger   *log.Logger
	errorTTL time.Duration
}

// NewEngine creates an engine holding an empty snapshot
func NewEngine(eval *outcome.Evaluator, logger *log.Logger, opts ...Option) *Engine {
	e := &Engine{
		snap:     Empty(hand.DefaultRule()),
		eval:     eval,
		clock:    quartz.NewReal(),
		logger:   logger.WithPrefix("round"),
		errorTTL: defaultErrorTTL,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.dealer = wall.NewDealer(e.clock, logger)
	if e.store != nil {
		e.saver = newSaver(e.store, e.logger, saveTimeout)
	}
	return e
}

// Snapshot returns the current snapshot. It must not be modified.
func (e *Engine) Snapshot() *Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snap
}

// Restore replaces the current snapshot with the stored one. A missing or
// unreadable record leaves a fresh snapshot in place.
func (e *Engine) Restore(ctx context.Context) *Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.store == nil {
		return e.snap
	}
	rec, err := e.store.Load(ctx)
	switch {
	case errors.Is(err, ErrNotFound):
		e.logger.Debug("No saved snapshot")
	case err != nil:
		e.logger.Warn("Discarding saved snapshot", "error", err)
	case rec.Revision != Revision || rec.Store == nil:
		e.logger.Warn("Discarding saved snapshot", "revision", rec.Revision)
	default:
		e.snap = rec.Store
		e.logger.Info("Restored snapshot", "session", e.snap.Session, "seed", e.snap.Seed)
	}
	return e.snap
}

// apply runs a transition on a clone of the current snapshot and publishes
// the result.
func (e *Engine) apply(name string, fn func(s *Snapshot)) *Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.snap.Clone()
	e.expireErrors(next)
	fn(next)
	if next.Dealt() {
		if err := next.Verify(); err != nil {
			panic(fmt.Sprintf("round: %s broke the tile invariants: %v", name, err))
		}
	}
	e.snap = next
	e.logger.Debug("Applied intent", "intent", name, "turn", next.Turn, "wall", len(next.Wall))
	e.save(next)
	return next
}

// save hands s to the background saver. Ordering follows e.mu, so the
// newest snapshot is always the one left pending.
func (e *Engine) save(s *Snapshot) {
	if e.saver == nil {
		return
	}
	e.saver.submit(Record{Revision: Revision, Store: s})
}

// Flush waits until the latest snapshot has reached the store
func (e *Engine) Flush() {
	if e.saver != nil {
		e.saver.flush()
	}
}

// Close writes any pending snapshot and stops the background saver
func (e *Engine) Close() {
	if e.saver != nil {
		e.saver.close()
	}
}

func (e *Engine) setError(s *Snapshot, scope Scope, msg string) {
	if s.Errors == nil {
		s.Errors = map[Scope]Notice{}
	}
	s.Errors[scope] = Notice{Message: msg, Expires: e.clock.Now().Add(e.errorTTL)}
}

func (e *Engine) expireErrors(s *Snapshot) {
	now := e.clock.Now()
	for scope, n := range s.Errors {
		if !now.Before(n.Expires) {
			delete(s.Errors, scope)
		}
	}
	if len(s.Errors) == 0 {
		s.Errors = nil
	}
}

func (e *Engine) evaluate(s *Snapshot) outcome.Result {
	return e.eval.Evaluate(s.Query())
}

func newSession() string {
	return uuid.NewString()
}
