package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vrc-sysstat/internal/chatbox"
	"vrc-sysstat/internal/collector"
	"vrc-sysstat/internal/config"
	"vrc-sysstat/internal/format"
)

type Agent struct {
	cfg       config.Config
	logger    *slog.Logger
	chatbox   *chatbox.Client
	scheduler *collector.Scheduler
	health    *HealthStatus
}

func New(cfg config.Config, logger *slog.Logger) (*Agent, error) {
	client, err := chatbox.NewClient(cfg.Host, cfg.Port, chatbox.Options{
		Notify:       cfg.Notify,
		WriteTimeout: cfg.SendTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("chatbox client: %w", err)
	}

	sampler := collector.NewSampler(logger, collector.Toggles{
		CPU: cfg.ShowCPU,
		RAM: cfg.ShowRAM,
		GPU: cfg.ShowGPU,
	})
	renderer := format.NewRenderer(format.Options{
		ShowTime: cfg.ShowTime,
		ShowCPU:  cfg.ShowCPU,
		ShowRAM:  cfg.ShowRAM,
		ShowGPU:  cfg.ShowGPU,
	})

	health := NewHealthStatus()
	wrappedSink := &healthSink{sink: client, health: health}
	scheduler := collector.NewScheduler(logger, sampler, renderer, wrappedSink, cfg.Interval, cfg.ErrorBackoff)

	return &Agent{
		cfg:       cfg,
		logger:    logger,
		chatbox:   client,
		scheduler: scheduler,
		health:    health,
	}, nil
}

func (a *Agent) Run(ctx context.Context) error {
	a.logger.Info("starting vrc-sysstat", "destination", a.chatbox.Destination(), "interval", a.cfg.Interval)
	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	runErrCh := make(chan error, 1)
	go func() {
		runErrCh <- a.run(runCtx)
	}()

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var runErr error
	select {
	case runErr = <-runErrCh:
		// Agent terminated by itself (startup error/runtime error/parent ctx canceled).
	case sig := <-sigCh:
		a.logger.Info("shutdown signal received, starting graceful shutdown", "signal", sig.String(), "timeout", a.cfg.ShutdownTimeout)
		cancelRun()

		graceTimer := time.NewTimer(a.cfg.ShutdownTimeout)
		defer graceTimer.Stop()

		select {
		case runErr = <-runErrCh:
			// graceful stop completed in time
		case sig2 := <-sigCh:
			a.logger.Warn("second signal received, forcing immediate shutdown", "signal", sig2.String())
			runErr = context.Canceled
		case <-graceTimer.C:
			a.logger.Warn("graceful shutdown timeout reached, forcing shutdown", "timeout", a.cfg.ShutdownTimeout)
			runErr = context.DeadlineExceeded
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancelShutdown()
	a.shutdown(shutdownCtx)

	if runErr != nil && !errors.Is(runErr, context.Canceled) && !errors.Is(runErr, context.DeadlineExceeded) {
		return runErr
	}
	a.logger.Info("vrc-sysstat stopped")
	return nil
}

func BuildLogger(cfg config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	hOpts := &slog.HandlerOptions{Level: level}
	if cfg.LogJSON {
		return slog.New(slog.NewJSONHandler(os.Stdout, hOpts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, hOpts))
}

type healthSink struct {
	sink   collector.Sink
	health *HealthStatus
}

func (s *healthSink) Send(ctx context.Context, message string) error {
	if err := s.sink.Send(ctx, message); err != nil {
		s.health.SetSendOK(false)
		s.health.MarkError()
		return err
	}
	s.health.SetSendOK(true)
	s.health.MarkSend(time.Now().UTC())
	return nil
}
