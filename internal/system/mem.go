package system

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/mem"
)

type MemoryStats struct {
	UsedBytes   uint64
	TotalBytes  uint64
	UsedPercent float64
}

// ReadMemory returns physical memory usage at call time.
func ReadMemory(ctx context.Context) (MemoryStats, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return MemoryStats{}, fmt.Errorf("read virtual memory: %w", err)
	}
	if vm == nil || vm.Total == 0 {
		return MemoryStats{}, fmt.Errorf("virtual memory unavailable")
	}
	return MemoryStats{
		UsedBytes:   vm.Used,
		TotalBytes:  vm.Total,
		UsedPercent: clampPercent(vm.UsedPercent),
	}, nil
}
