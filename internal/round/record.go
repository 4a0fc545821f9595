package round

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lox/mahjongdojo/internal/wall"
	"github.com/lox/mahjongdojo/tile"
)

// Revision is the snapshot layout version written by this package
const Revision = 1

var (
	// ErrNotFound is returned by a Store that has nothing saved
	ErrNotFound = errors.New("no saved snapshot")
	// ErrRevision marks a record written by an unknown layout
	ErrRevision = errors.New("unsupported snapshot revision")
	// ErrCopyLimit marks more copies of a tile than the set contains
	ErrCopyLimit = errors.New("tile copy limit exceeded")
)

// Record is the persisted form of a snapshot
type Record struct {
	Revision int       `json:"revision"`
	Store    *Snapshot `json:"store"`
}

// Store persists the latest snapshot
type Store interface {
	Save(ctx context.Context, rec Record) error
	Load(ctx context.Context) (Record, error)
}

// Encode serializes a record
func Encode(rec Record) ([]byte, error) {
	return json.Marshal(rec)
}

// Decode parses a record. Unknown revisions, a missing snapshot and payloads
// that fail verification are reported as errors so the caller can fall back to
// a fresh state.
func Decode(data []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if rec.Revision != Revision {
		return Record{}, fmt.Errorf("%w: %d", ErrRevision, rec.Revision)
	}
	if rec.Store == nil {
		return Record{}, fmt.Errorf("%w: record has no snapshot", ErrNotFound)
	}
	if rec.Store.Dealt() {
		if err := rec.Store.Verify(); err != nil {
			return Record{}, err
		}
	}
	return rec, nil
}

// Verify checks tile conservation and copy limits
func (s *Snapshot) Verify() error {
	if n := s.Total(); n != wall.TotalTiles {
		return fmt.Errorf("%w: expected %d tiles, found %d", wall.ErrTileCount, wall.TotalTiles, n)
	}
	counts := map[int]int{}
	var red [3]int
	for _, t := range s.AllTiles() {
		if !t.Valid() {
			return fmt.Errorf("invalid tile %v", t)
		}
		counts[t.Kind()]++
		if t.Red {
			red[t.Suit]++
		}
	}
	for k, n := range counts {
		if n > 4 {
			return fmt.Errorf("%w: %d copies of %s", ErrCopyLimit, n, tile.FromKind(k))
		}
	}
	for _, suit := range []tile.Suit{tile.Man, tile.Pin, tile.Sou} {
		if red[suit] > s.DealtRed.For(suit) {
			return fmt.Errorf("%w: %d red fives in %s", ErrCopyLimit, red[suit], suit)
		}
	}
	return nil
}
