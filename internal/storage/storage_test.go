package storage_test

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nightdrive/showcase/internal/config"
	"github.com/nightdrive/showcase/internal/storage"
	gormstorage "github.com/nightdrive/showcase/internal/storage/gorm"
	"github.com/nightdrive/showcase/internal/storage/influx"
	"github.com/nightdrive/showcase/internal/storage/memory"
	sqlitestorage "github.com/nightdrive/showcase/internal/storage/sqlite"
	"github.com/nightdrive/showcase/internal/storage/websocket"
	"github.com/nightdrive/showcase/pkg/core"
)

var (
	_ storage.Backend  = storage.Nop{}
	_ storage.Backend  = (*memory.Backend)(nil)
	_ storage.Exporter = (*memory.Backend)(nil)
	_ storage.Backend  = (*gormstorage.Backend)(nil)
	_ storage.Flusher  = (*gormstorage.Backend)(nil)
	_ storage.Backend  = (*sqlitestorage.Backend)(nil)
	_ storage.Flusher  = (*sqlitestorage.Backend)(nil)
	_ storage.Exporter = (*sqlitestorage.Backend)(nil)
	_ storage.Backend  = (*influx.Backend)(nil)
	_ storage.Flusher  = (*influx.Backend)(nil)
	_ storage.Backend  = (*websocket.Backend)(nil)
)

func TestNewBackend_None(t *testing.T) {
	for _, typ := range []string{"", storage.TypeNone} {
		b, err := storage.NewBackend(config.StorageConfig{Type: typ}, zerolog.Nop(), nil)
		require.NoError(t, err)
		assert.IsType(t, storage.Nop{}, b)
		assert.NoError(t, b.StartSession(&core.Session{}))
	}
}

func TestNewBackend_Memory(t *testing.T) {
	b, err := storage.NewBackend(config.StorageConfig{
		Type:   storage.TypeMemory,
		Memory: config.MemoryConfig{OutputDir: t.TempDir()},
	}, zerolog.Nop(), nil)
	require.NoError(t, err)
	assert.IsType(t, &memory.Backend{}, b)
}

func TestNewBackend_SQLite(t *testing.T) {
	b, err := storage.NewBackend(config.StorageConfig{
		Type:   storage.TypeSQLite,
		SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "rec.db")},
	}, zerolog.Nop(), nil)
	require.NoError(t, err)
	require.NoError(t, b.Init())
	defer b.Close()

	_, ok := b.(storage.Flusher)
	assert.True(t, ok)
}

func TestNewBackend_InfluxAndRemoteAreLazy(t *testing.T) {
	// neither dials before Init
	b, err := storage.NewBackend(config.StorageConfig{Type: storage.TypeInflux}, zerolog.Nop(), nil)
	require.NoError(t, err)
	assert.IsType(t, &influx.Backend{}, b)

	b, err = storage.NewBackend(config.StorageConfig{
		Type:   storage.TypeRemote,
		Remote: config.RemoteConfig{URL: "ws://127.0.0.1:1"},
	}, zerolog.Nop(), nil)
	require.NoError(t, err)
	assert.IsType(t, &websocket.Backend{}, b)
}

func TestNewBackend_Unknown(t *testing.T) {
	_, err := storage.NewBackend(config.StorageConfig{Type: "tape"}, zerolog.Nop(), nil)
	assert.ErrorContains(t, err, "unknown storage type: tape")
}

func TestNop(t *testing.T) {
	var n storage.Nop
	assert.NoError(t, n.Init())
	assert.NoError(t, n.RecordFrame(&core.FrameState{}))
	assert.NoError(t, n.RecordEvent(&core.Event{}))
	assert.NoError(t, n.EndSession())
	assert.NoError(t, n.Close())
}
