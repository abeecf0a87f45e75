package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthStatusProbeLine(t *testing.T) {
	h := NewHealthStatus()
	assert.Equal(t, "vrc-sysstat:degraded sent=0 errors=0 last_send=never", h.ProbeLine())

	ts := time.Date(2025, 4, 13, 12, 0, 9, 0, time.UTC)
	h.SetSendOK(true)
	h.MarkSend(ts)
	h.MarkSend(ts.Add(3 * time.Second))
	h.MarkError()

	assert.Equal(t, "vrc-sysstat:ok sent=2 errors=1 last_send=2025-04-13T12:00:12Z", h.ProbeLine())
}

func TestHealthStatusSnapshot(t *testing.T) {
	h := NewHealthStatus()
	snap := h.Snapshot()
	assert.Equal(t, false, snap["send_ok"])
	assert.NotContains(t, snap, "last_send_at")

	h.SetSendOK(true)
	h.MarkSend(time.Now())
	snap = h.Snapshot()
	assert.Equal(t, true, snap["send_ok"])
	assert.Equal(t, uint64(1), snap["sent_count"])
	assert.Contains(t, snap, "last_send_at")
}

type stubSink struct {
	err   error
	calls int
}

func (s *stubSink) Send(context.Context, string) error {
	s.calls++
	return s.err
}

func TestHealthSinkMarksOutcomes(t *testing.T) {
	health := NewHealthStatus()

	inner := &stubSink{}
	ok := &healthSink{sink: inner, health: health}
	require.NoError(t, ok.Send(context.Background(), "update"))
	assert.Equal(t, 1, inner.calls)
	assert.True(t, health.sendOK.Load())
	assert.Equal(t, uint64(1), health.sentCount.Load())
	assert.Zero(t, health.errorCount.Load())

	failing := &healthSink{sink: &stubSink{err: errors.New("boom")}, health: health}
	require.Error(t, failing.Send(context.Background(), "update"))
	assert.False(t, health.sendOK.Load())
	assert.Equal(t, uint64(1), health.errorCount.Load())
	assert.Equal(t, uint64(1), health.sentCount.Load())
}
