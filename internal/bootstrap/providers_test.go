package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/taskhub/internal/infra/config"
	"github.com/yanqian/taskhub/internal/infra/events"
	"github.com/yanqian/taskhub/internal/infra/taskrepo"
	"github.com/yanqian/taskhub/internal/infra/userrepo"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProvideStorageMemory(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Driver: "memory"}}
	storage, cleanup, err := ProvideStorage(cfg, newTestLogger())
	require.NoError(t, err)
	defer cleanup()

	require.IsType(t, &userrepo.MemoryRepository{}, ProvideUserRepository(storage))
	require.IsType(t, &taskrepo.MemoryRepository{}, ProvideTaskRepository(storage))
}

func TestProvideStorageSQLite(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{
		Driver: "sqlite",
		SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "taskhub.db")},
	}}
	storage, cleanup, err := ProvideStorage(cfg, newTestLogger())
	require.NoError(t, err)
	defer cleanup()

	require.NotNil(t, storage.DB)
	require.IsType(t, &userrepo.SQLiteRepository{}, ProvideUserRepository(storage))
	require.IsType(t, &taskrepo.SQLiteRepository{}, ProvideTaskRepository(storage))
}

func TestProvideStorageUnknownDriver(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Driver: "mongo"}}
	_, _, err := ProvideStorage(cfg, newTestLogger())
	require.Error(t, err)
}

func TestProvideEventPublisherFallsBackToLog(t *testing.T) {
	cfg := &config.Config{}
	publisher, cleanup := ProvideEventPublisher(cfg, newTestLogger())
	defer cleanup()
	require.IsType(t, &events.LogPublisher{}, publisher)

	cfg.Events.Valkey = config.ValkeyConfig{Enabled: true}
	publisher, cleanup = ProvideEventPublisher(cfg, newTestLogger())
	defer cleanup()
	require.IsType(t, &events.LogPublisher{}, publisher)
}

func TestBuildValkeyOptions(t *testing.T) {
	opt, err := buildValkeyOptions("localhost:6379")
	require.NoError(t, err)
	require.Equal(t, []string{"localhost:6379"}, opt.InitAddress)

	opt, err = buildValkeyOptions("redis://localhost:6380/0")
	require.NoError(t, err)
	require.Equal(t, []string{"localhost:6380"}, opt.InitAddress)

	_, err = buildValkeyOptions("")
	require.Error(t, err)
}

func TestProvideTokenConfig(t *testing.T) {
	cfg := &config.Config{Auth: config.AuthConfig{Secret: "s", TokenTTL: time.Hour, RefreshGrace: 2 * time.Hour, Issuer: "taskhub"}}
	tc := ProvideTokenConfig(cfg)
	require.Equal(t, time.Hour, tc.TTL)
	require.Equal(t, 2*time.Hour, tc.RefreshGrace)
	require.Equal(t, "taskhub", tc.Issuer)

	key, err := ProvideKeySource(cfg).Key()
	require.NoError(t, err)
	require.Equal(t, []byte("s"), key)
}

func TestAppRunStopsOnCancel(t *testing.T) {
	cfg := &config.Config{HTTP: config.HTTPConfig{ShutdownTimeout: time.Second}}
	server := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}
	app := NewApp(cfg, newTestLogger(), server)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop")
	}
}
