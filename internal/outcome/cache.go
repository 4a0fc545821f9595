package outcome

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dgraph-io/ristretto"

	"github.com/lox/mahjongdojo/tile"
)

// Cache memoizes results by canonical query key
type Cache struct {
	c *ristretto.Cache
}

type entry struct {
	r Result
}

// NewCache creates a cache holding up to entries results. Zero or fewer
// entries returns a nil cache, which never hits.
func NewCache(entries int64) (*Cache, error) {
	if entries <= 0 {
		return nil, nil
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: entries * 10,
		MaxCost:     entries,
		BufferItems: 64,
		Metrics:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("create outcome cache: %w", err)
	}
	return &Cache{c: c}, nil
}

// Get returns a cached result
func (c *Cache) Get(key string) (Result, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.c.Get(key)
	if !ok {
		return nil, false
	}
	e, ok := v.(entry)
	return e.r, ok
}

// Set stores a result. Writes are buffered and may be dropped under load.
func (c *Cache) Set(key string, r Result) {
	if c == nil {
		return
	}
	c.c.Set(key, entry{r: r}, 1)
}

// HitRatio reports the share of lookups served from the cache
func (c *Cache) HitRatio() float64 {
	if c == nil {
		return 0
	}
	return c.c.Metrics.Ratio()
}

// Close releases the cache's goroutines
func (c *Cache) Close() {
	if c == nil {
		return
	}
	c.c.Close()
}

// key builds the canonical cache key of a query. Concealed tiles are sorted
// except the last one of a hand that must discard after a call, which is
// significant.
func (q Query) key() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%+v|%+v|%+v|", q.Table, q.Options, q.Rule)

	concealed := q.Input.Concealed
	if q.Input.Drawn == nil && len(concealed)%3 == 2 {
		sb.WriteString(tile.Format(tile.Sorted(concealed[:len(concealed)-1])))
		sb.WriteString("+")
		sb.WriteString(concealed[len(concealed)-1].String())
	} else {
		sb.WriteString(tile.Format(tile.Sorted(concealed)))
	}
	sb.WriteString("|")
	if d := q.Input.Drawn; d != nil {
		sb.WriteString(d.String())
	}
	for _, m := range q.Input.Melds {
		fmt.Fprintf(&sb, "|%s:%s:%d:%t:%t", m.Kind, tile.Format(m.Tiles), m.Claimed, m.Closed, m.Added)
	}
	sb.WriteString("|" + tile.Format(q.Input.Dora))
	sb.WriteString("|" + tile.Format(q.Input.Ura))
	discards := slices.Clone(q.Discards)
	tile.Sort(discards)
	sb.WriteString("|" + tile.Format(discards))
	return sb.String()
}
