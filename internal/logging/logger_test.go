package logging

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T, enabled map[string]bool) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	Initialize(zap.New(core), enabled)
	t.Cleanup(func() { Initialize(nil, nil) })
	return logs
}

func TestGet_NamedByCategory(t *testing.T) {
	logs := observe(t, nil)

	Store("added block %s", "abc")
	WatchDebug("event %d", 3)

	entries := logs.FilterMessage("added block abc").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "store", entries[0].LoggerName)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)

	entries = logs.FilterMessage("event 3").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "watch", entries[0].LoggerName)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
}

func TestGet_DisabledCategoryIsSilent(t *testing.T) {
	logs := observe(t, map[string]bool{"store": false})

	assert.False(t, IsCategoryEnabled(CategoryStore))
	assert.True(t, IsCategoryEnabled(CategoryWatch))

	Store("hidden")
	StoreError("also hidden")
	Watch("shown")

	assert.Zero(t, logs.FilterMessage("hidden").Len())
	assert.Zero(t, logs.FilterMessage("also hidden").Len())
	assert.Equal(t, 1, logs.FilterMessage("shown").Len())
}

func TestGet_Cached(t *testing.T) {
	observe(t, nil)
	assert.Same(t, Get(CategoryFrame), Get(CategoryFrame))
	assert.Equal(t, CategoryFrame, Get(CategoryFrame).Category())
}

func TestLogger_With(t *testing.T) {
	logs := observe(t, nil)

	Get(CategoryTranslate).With("workers", 4).Info("batch of %d", 10)

	entries := logs.FilterMessage("batch of 10").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(4), entries[0].ContextMap()["workers"])
}

func TestAudit(t *testing.T) {
	logs := observe(t, nil)

	Audit(CategoryStore).BlockEvent(AuditBlockAdd, "id-1", nil)
	Audit(CategoryStore).BlockEvent(AuditBlockRemove, "id-2", errors.New("not found"))
	Audit(CategoryFrame).FrameBuilt("blocks.txt", 3, time.Millisecond)

	entries := logs.All()
	var audit []observer.LoggedEntry
	for _, e := range entries {
		if e.LoggerName == "store.audit" || e.LoggerName == "frame.audit" {
			audit = append(audit, e)
		}
	}
	require.Len(t, audit, 3)

	assert.Equal(t, zapcore.InfoLevel, audit[0].Level)
	assert.Equal(t, "id-1", audit[0].ContextMap()["target"])
	assert.Equal(t, zapcore.WarnLevel, audit[1].Level)
	assert.Equal(t, "not found", audit[1].ContextMap()["error"])
	assert.Equal(t, int64(3), audit[2].ContextMap()["blocks"])
}

func TestAudit_DisabledCategory(t *testing.T) {
	logs := observe(t, map[string]bool{"store": false})
	Audit(CategoryStore).BlockEvent(AuditBlockClear, "", nil)
	assert.Zero(t, logs.FilterLoggerName("store.audit").Len())
}

func TestTimer(t *testing.T) {
	logs := observe(t, nil)

	timer := StartTimer(CategoryTranslate, "batch")
	elapsed := timer.StopWithThreshold(time.Hour)
	assert.Less(t, elapsed, time.Hour)
	assert.Equal(t, 1, logs.FilterLoggerName("translate").Len())
}

func TestBuild(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sigma.log")
	l, err := Build(Options{Level: "warn", Format: "json", File: path})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
	_ = l.Sync()

	_, err = Build(Options{Level: "chatty"})
	assert.Error(t, err)
}
