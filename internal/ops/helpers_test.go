package ops

import (
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hpungsan/tratativa/internal/config"
	"github.com/hpungsan/tratativa/internal/db"
)

var testNow = time.Date(2024, time.March, 5, 9, 7, 3, 0, time.UTC)

// newTestEnv opens a fresh database and pins the clock and timezone.
func newTestEnv(t *testing.T) Env {
	t.Helper()
	env, _ := newObservedEnv(t)
	return env
}

// newObservedEnv is newTestEnv with a log recorder.
func newObservedEnv(t *testing.T) (Env, *observer.ObservedLogs) {
	t.Helper()

	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("db.Init failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cfg := config.DefaultConfig()
	cfg.Timezone = "UTC"

	core, logs := observer.New(zap.DebugLevel)
	return Env{
		DB:     database,
		Config: cfg,
		Logger: zap.New(core),
		Now:    func() time.Time { return testNow },
	}, logs
}
