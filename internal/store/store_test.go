package store

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/mahjongdojo/internal/outcome"
	"github.com/lox/mahjongdojo/internal/round"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func dealtRecord(t *testing.T) round.Record {
	t.Helper()
	e := round.NewEngine(outcome.NewEvaluator(nil, quietLogger()), quietLogger(), round.WithClock(quartz.NewMock(t)))
	e.NewGame("store-seed")
	e.Next()
	return round.Record{Revision: round.Revision, Store: e.Snapshot()}
}

// exercise saves and reloads a record through s
func exercise(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	rec := dealtRecord(t)

	require.NoError(t, s.Save(ctx, rec))
	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, round.Revision, got.Revision)
	assert.Equal(t, rec.Store.Seed, got.Store.Seed)
	assert.Equal(t, rec.Store.Session, got.Store.Session)
	assert.Equal(t, rec.Store.Wall, got.Store.Wall)
	assert.Equal(t, rec.Store.Input.Concealed, got.Store.Input.Concealed)
	assert.NoError(t, got.Store.Verify())
	require.NoError(t, s.Close())
}

func TestMemory(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	_, err := m.Load(context.Background())
	assert.ErrorIs(t, err, round.ErrNotFound)
	exercise(t, m)
}

func TestFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "snapshot.json")
	f := NewFile(path)
	_, err := f.Load(context.Background())
	assert.ErrorIs(t, err, round.ErrNotFound)
	exercise(t, f)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are renamed away")
}

func TestFileRejectsCorruptRecord(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"revision":7,"store":{}}`), 0o644))
	_, err := NewFile(path).Load(context.Background())
	assert.ErrorIs(t, err, round.ErrRevision)

	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))
	_, err = NewFile(path).Load(context.Background())
	assert.Error(t, err)
}

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, writeFileAtomic(path, []byte("first"), 0o600))
	require.NoError(t, writeFileAtomic(path, []byte("second"), 0o600))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestOpen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, err := Open(ctx, Config{Backend: BackendMemory}, quietLogger())
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	s, err = Open(ctx, Config{Backend: BackendFile, Path: filepath.Join(t.TempDir(), "s.json")}, quietLogger())
	require.NoError(t, err)
	assert.IsType(t, &File{}, s)

	_, err = Open(ctx, Config{Backend: "etcd"}, quietLogger())
	assert.Error(t, err)
	_, err = Open(ctx, Config{Backend: BackendRedis}, quietLogger())
	assert.Error(t, err)
	_, err = Open(ctx, Config{Backend: BackendMongo}, quietLogger())
	assert.Error(t, err)
}

func TestRedis(t *testing.T) {
	addr := os.Getenv("MAHJONG_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("MAHJONG_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	r, err := NewRedis(ctx, RedisOptions{Addr: addr, Key: "mahjongdojo:test:" + t.Name()}, quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = r.Delete(context.Background())
		_ = r.Close()
	})

	_, err = r.Load(ctx)
	assert.ErrorIs(t, err, round.ErrNotFound)
	require.NoError(t, r.Save(ctx, dealtRecord(t)))
	_, err = r.Load(ctx)
	require.NoError(t, err)
}

func TestMongo(t *testing.T) {
	uri := os.Getenv("MAHJONG_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("MAHJONG_TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	m, err := NewMongo(ctx, MongoOptions{URI: uri, Database: "mahjongdojo_test", ID: t.Name()}, quietLogger())
	require.NoError(t, err)
	require.NoError(t, m.Delete(ctx))

	_, err = m.Load(ctx)
	assert.ErrorIs(t, err, round.ErrNotFound)
	require.NoError(t, m.Save(ctx, dealtRecord(t)))
	_, err = m.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, m.Delete(ctx))
	require.NoError(t, m.Close())
}
