package monitor_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ThiagoP12/benefit-hub-pro/pkg/monitor"
	"github.com/ThiagoP12/benefit-hub-pro/pkg/storage"
)

func newTestStore(t *testing.T) storage.Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := storage.NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestRunner(store storage.Store) *monitor.Runner {
	logger := newTestLogger()
	return monitor.NewRunner(
		monitor.NewDedupGate(store),
		monitor.NewRecipientResolver(store),
		monitor.NewFanout(store, logger),
		logger,
		4,
		5*time.Second,
	)
}
