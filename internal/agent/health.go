package agent

import (
	"fmt"
	"sync/atomic"
	"time"
)

type HealthStatus struct {
	sendOK     atomic.Bool
	lastSendAt atomic.Int64
	sentCount  atomic.Uint64
	errorCount atomic.Uint64
}

func NewHealthStatus() *HealthStatus {
	h := &HealthStatus{}
	h.sendOK.Store(false)
	return h
}

func (h *HealthStatus) SetSendOK(ok bool) {
	h.sendOK.Store(ok)
}

func (h *HealthStatus) MarkSend(ts time.Time) {
	h.lastSendAt.Store(ts.UnixNano())
	h.sentCount.Add(1)
}

func (h *HealthStatus) MarkError() {
	h.errorCount.Add(1)
}

func (h *HealthStatus) Snapshot() map[string]any {
	out := map[string]any{
		"send_ok":     h.sendOK.Load(),
		"sent_count":  h.sentCount.Load(),
		"error_count": h.errorCount.Load(),
	}
	if v := h.lastSendAt.Load(); v > 0 {
		out["last_send_at"] = time.Unix(0, v).UTC()
	}
	return out
}

// ProbeLine is the one-line status served on the TCP probe endpoint.
func (h *HealthStatus) ProbeLine() string {
	status := "degraded"
	if h.sendOK.Load() {
		status = "ok"
	}
	lastSend := "never"
	if v := h.lastSendAt.Load(); v > 0 {
		lastSend = time.Unix(0, v).UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("vrc-sysstat:%s sent=%d errors=%d last_send=%s",
		status, h.sentCount.Load(), h.errorCount.Load(), lastSend)
}
