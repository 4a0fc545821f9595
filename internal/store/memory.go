package store

import (
	"context"
	"slices"
	"sync"

	"github.com/lox/mahjongdojo/internal/round"
)

// Memory keeps the encoded record in process
type Memory struct {
	mu   sync.Mutex
	data []byte
}

// NewMemory creates an empty in-process store
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Save(_ context.Context, rec round.Record) error {
	data, err := round.Encode(rec)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = data
	return nil
}

func (m *Memory) Load(context.Context) (round.Record, error) {
	m.mu.Lock()
	data := slices.Clone(m.data)
	m.mu.Unlock()
	if data == nil {
		return round.Record{}, round.ErrNotFound
	}
	return round.Decode(data)
}

func (m *Memory) Close() error { return nil }
