package round

import (
	"context"
	"io"
	"slices"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"

	"github.com/lox/mahjongdojo/internal/hand"
	"github.com/lox/mahjongdojo/internal/outcome"
	"github.com/lox/mahjongdojo/tile"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func testRule() hand.Rule {
	r := hand.DefaultRule()
	r.Red = hand.RedFives{}
	return r
}

func newTestEngine(t *testing.T, s *Snapshot, opts ...Option) (*Engine, *quartz.Mock) {
	t.Helper()
	clock := quartz.NewMock(t)
	opts = append([]Option{WithClock(clock), WithRule(testRule())}, opts...)
	e := NewEngine(outcome.NewEvaluator(nil, quietLogger()), quietLogger(), opts...)
	if s != nil {
		e.snap = s
	}
	return e, clock
}

// layout describes a hand-built round. Every tile not named ends up in the
// kan draws, dora queues, opponent hands or wall, so the set stays complete.
type layout struct {
	concealed    string
	drawn        string
	melds        []hand.Meld
	wallTail     string // the last tile listed is drawn first
	selfDiscards string
	emptyWall    bool
	turn         hand.Seat
}

func fullSet() []tile.Tile {
	var out []tile.Tile
	for k := range tile.Kinds {
		for range 4 {
			out = append(out, tile.FromKind(k))
		}
	}
	return out
}

func fixture(t *testing.T, l layout) *Snapshot {
	t.Helper()
	pool := fullSet()
	take := func(s string) []tile.Tile {
		if s == "" {
			return nil
		}
		var out []tile.Tile
		for _, x := range tile.MustParse(s) {
			i := tile.Index(pool, x)
			require.GreaterOrEqual(t, i, 0, "no copy of %s left", x)
			out = append(out, pool[i])
			pool = slices.Delete(pool, i, i+1)
		}
		return out
	}
	fill := func(n int) []tile.Tile {
		out := slices.Clone(pool[:n])
		pool = pool[n:]
		return out
	}

	s := Empty(testRule())
	s.Seed = "fixture"
	s.Session = "test"
	s.Input.Concealed = tile.Sorted(take(l.concealed))
	if l.drawn != "" {
		d := take(l.drawn)[0]
		s.Input.Drawn = &d
	}
	for _, m := range l.melds {
		var tiles []tile.Tile
		for _, x := range m.Tiles {
			tiles = append(tiles, take(x.String())...)
		}
		m.Tiles = tiles
		s.Input.Melds = append(s.Input.Melds, m)
	}
	tail := take(l.wallTail)
	s.Discards[hand.Self] = take(l.selfDiscards)

	s.KanDraws = fill(4)
	s.DoraPending = fill(5)
	s.UraPending = fill(5)
	s.Input.Dora = slices.Clone(s.DoraPending[:1])
	for _, seat := range []hand.Seat{hand.Shimocha, hand.Toimen, hand.Kamicha} {
		s.Hands[seat] = fill(13)
	}
	s.Wall = append(pool, tail...)
	if l.emptyWall {
		s.Discards[hand.Toimen] = s.Wall
		s.Wall = nil
	}
	s.Turn = l.turn
	require.NoError(t, s.Verify())
	return s
}

func tiles(s string) []tile.Tile {
	return tile.MustParse(s)
}

func one(s string) tile.Tile {
	return tile.MustParse(s)[0]
}

type memStore struct {
	mu      sync.Mutex
	saved   []Record
	loadRec Record
	loadErr error
	saveErr error
}

func (m *memStore) Save(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, rec)
	return m.saveErr
}

func (m *memStore) Load(context.Context) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadRec, m.loadErr
}

func (m *memStore) records() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.saved)
}

// blockingStore holds every save until release is closed
type blockingStore struct {
	memStore
	entered chan struct{}
	release chan struct{}
}

func (b *blockingStore) Save(ctx context.Context, rec Record) error {
	select {
	case b.entered <- struct{}{}:
	default:
	}
	<-b.release
	return b.memStore.Save(ctx, rec)
}
