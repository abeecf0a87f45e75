package system

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/process"
)

type CPUStats struct {
	UsagePercent float64
	ProcessCount int
}

// PrimeCPU records the counter baseline so the next ReadCPU reports usage
// over a real window instead of since boot.
func PrimeCPU(ctx context.Context) {
	_, _ = cpu.PercentWithContext(ctx, 0, false)
}

// ReadCPU returns aggregate CPU usage since the previous call together with
// the current process count. Call PrimeCPU once before the first read.
func ReadCPU(ctx context.Context) (CPUStats, error) {
	percents, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return CPUStats{}, fmt.Errorf("read cpu usage: %w", err)
	}
	if len(percents) == 0 {
		return CPUStats{}, fmt.Errorf("cpu usage unavailable")
	}
	pids, err := process.PidsWithContext(ctx)
	if err != nil {
		return CPUStats{}, fmt.Errorf("list processes: %w", err)
	}
	return CPUStats{
		UsagePercent: clampPercent(percents[0]),
		ProcessCount: len(pids),
	}, nil
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
