package logx

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFields_Constructors(t *testing.T) {
	now := time.Now()

	require.Equal(t, Field{Key: "k", Value: "v"}, String("k", "v"))
	require.Equal(t, Field{Key: "k", Value: 1}, Int("k", 1))
	require.Equal(t, Field{Key: "k", Value: int64(2)}, Int64("k", int64(2)))
	require.Equal(t, Field{Key: "k", Value: true}, Bool("k", true))
	require.Equal(t, Field{Key: "k", Value: now}, Time("k", now))
	require.Equal(t, Field{Key: "k", Value: time.Second}, Duration("k", time.Second))
	require.Equal(t, Field{Key: "err", Value: "boom"}, Err(errors.New("boom")))
	require.Equal(t, Field{Key: "err", Value: ""}, Err(nil))
}

func TestNopLogger_NoPanic(t *testing.T) {
	l := Nop()
	l.Debug("d", String("k", "v"))
	l.Info("i", Int("n", 1))
	l.Warn("w")
	l.Error("e")

	l2 := l.With(String("x", "y"))
	require.NotNil(t, l2)
	require.NoError(t, l2.Sync())
}

func TestSlogAdapter_WithAndToSlogArgs(t *testing.T) {
	base := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	l := NewSlogAdapter(base)

	args := toSlogArgs([]Field{String("a", "b"), Int("n", 1)})
	require.Len(t, args, 2)

	l2 := l.With(String("x", "y"))
	l2.Info("msg", String("k", "v"))
	require.NoError(t, l2.Sync())
}

func TestNewJSON_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewJSON(&buf, "warn")

	l.Info("skipped")
	l.Warn("kept", String("order_id", "o-1"))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var got map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &got))
	require.Equal(t, "kept", got["msg"])
	require.Equal(t, "o-1", got["order_id"])
}

func TestParseSlogLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, parseSlogLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, parseSlogLevel("warning"))
	require.Equal(t, slog.LevelError, parseSlogLevel(" error "))
	require.Equal(t, slog.LevelInfo, parseSlogLevel("nonsense"))
}

func TestZapAdapter_WritesFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewZapAdapter(zap.New(core)).With(String("component", "sweeper"))

	l.Debug("d")
	l.Error("sweep failed", Err(errors.New("db down")), Int("due", 3))

	require.Equal(t, 2, logs.Len())
	entry := logs.All()[1]
	require.Equal(t, "sweep failed", entry.Message)
	ctx := entry.ContextMap()
	require.Equal(t, "sweeper", ctx["component"])
	require.Equal(t, "db down", ctx["err"])
	require.EqualValues(t, 3, ctx["due"])
}

func TestNewZapProduction_FallsBackToInfo(t *testing.T) {
	l, err := NewZapProduction("not-a-level")
	require.NoError(t, err)
	require.NotNil(t, l)
}
