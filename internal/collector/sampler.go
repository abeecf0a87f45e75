package collector

import (
	"context"
	"log/slog"
	"time"

	"vrc-sysstat/internal/model"
	"vrc-sysstat/internal/system"
)

// Toggles selects which metrics the sampler reads each tick.
type Toggles struct {
	CPU bool
	RAM bool
	GPU bool
}

// Sampler reads the enabled system metrics and assembles them into one
// snapshot per tick. A failed probe is logged and its reading left nil;
// sampling itself never fails.
type Sampler struct {
	logger  *slog.Logger
	toggles Toggles
}

func NewSampler(logger *slog.Logger, toggles Toggles) *Sampler {
	return &Sampler{logger: logger, toggles: toggles}
}

// Prime establishes the CPU counter baseline so the first tick reports a
// real usage delta.
func (s *Sampler) Prime(ctx context.Context) {
	if s.toggles.CPU {
		system.PrimeCPU(ctx)
	}
}

func (s *Sampler) Sample(ctx context.Context) model.Snapshot {
	snap := model.Snapshot{Taken: time.Now()}

	if s.toggles.CPU {
		if stats, err := system.ReadCPU(ctx); err != nil {
			s.logger.Warn("cpu sample failed", "error", err)
		} else {
			snap.CPU = &model.CPUReading{
				UsagePercent: stats.UsagePercent,
				ProcessCount: stats.ProcessCount,
			}
		}
	}

	if s.toggles.RAM {
		if stats, err := system.ReadMemory(ctx); err != nil {
			s.logger.Warn("memory sample failed", "error", err)
		} else {
			snap.RAM = &model.RAMReading{
				UsedBytes:   stats.UsedBytes,
				TotalBytes:  stats.TotalBytes,
				UsedPercent: stats.UsedPercent,
			}
		}
	}

	if s.toggles.GPU {
		if stats, ok := system.ReadGPU(ctx); ok {
			snap.GPU = &model.GPUReading{
				Name:           stats.Name,
				UtilPercent:    stats.UtilPercent,
				MemUsedBytes:   stats.MemUsedBytes,
				MemTotalBytes:  stats.MemTotalBytes,
				MemUsedPercent: percentOf(stats.MemUsedBytes, stats.MemTotalBytes),
				PowerWatts:     stats.PowerWatts,
				HasPower:       stats.HasPower,
				TempCelsius:    stats.TempCelsius,
				HasTemp:        stats.HasTemp,
			}
		} else {
			s.logger.Debug("gpu telemetry unavailable")
		}
	}

	return snap
}

func percentOf(part, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
