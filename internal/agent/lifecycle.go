package agent

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

func (a *Agent) run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.scheduler.Run(gctx)
	})
	if a.cfg.ProbeListenAddr != "" {
		g.Go(func() error {
			return a.runProbeListener(gctx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// shutdown clears the chatbox so the last stats message does not linger
// in-game, then releases the socket.
func (a *Agent) shutdown(ctx context.Context) {
	if err := a.chatbox.Clear(ctx); err != nil {
		a.logger.Warn("chatbox clear failed", "error", err)
	}
	if err := a.chatbox.Close(); err != nil {
		a.logger.Warn("chatbox close failed", "error", err)
	}
	a.health.SetSendOK(false)
}
