package collector

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"vrc-sysstat/internal/format"
	"vrc-sysstat/internal/model"
)

// Source produces one metrics snapshot per tick.
type Source interface {
	Prime(ctx context.Context)
	Sample(ctx context.Context) model.Snapshot
}

// Sink delivers one rendered chatbox update.
type Sink interface {
	Send(ctx context.Context, message string) error
}

// Scheduler drives the sample/render/send loop on a fixed interval. A failed
// tick is logged and followed by a short backoff; the loop itself only stops
// when the context is canceled.
type Scheduler struct {
	logger       *slog.Logger
	source       Source
	renderer     *format.Renderer
	sink         Sink
	interval     time.Duration
	errorBackoff time.Duration
}

func NewScheduler(logger *slog.Logger, source Source, renderer *format.Renderer, sink Sink, interval, errorBackoff time.Duration) *Scheduler {
	if errorBackoff <= 0 {
		errorBackoff = time.Second
	}
	return &Scheduler{
		logger:       logger,
		source:       source,
		renderer:     renderer,
		sink:         sink,
		interval:     interval,
		errorBackoff: errorBackoff,
	}
}

// Run primes the source and ticks until ctx is canceled. The first update
// goes out one full interval after start, which also gives the CPU usage
// baseline a real window to measure against.
func (s *Scheduler) Run(ctx context.Context) error {
	s.source.Prime(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.tick(ctx); err != nil {
				s.logger.Error("chatbox update failed", "error", err)
				s.sleepWithContext(ctx, s.errorBackoff)
			}
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) error {
	tickCtx, cancel := context.WithTimeout(ctx, s.interval)
	defer cancel()

	snap := s.source.Sample(tickCtx)
	message := s.renderer.Render(snap)
	if message == "" {
		s.logger.Debug("nothing to send this tick")
		return nil
	}
	if err := s.sink.Send(tickCtx, message); err != nil {
		return fmt.Errorf("send chatbox update: %w", err)
	}
	s.logger.Debug("chatbox update sent", "chars", len([]rune(message)))
	return nil
}

func (s *Scheduler) sleepWithContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
