package model

import "time"

// Snapshot holds one polling tick's worth of system readings. It is built,
// rendered, sent and discarded; nothing is carried over between ticks.
//
// A nil reading means the metric is disabled or was unavailable this tick.
type Snapshot struct {
	Taken time.Time
	CPU   *CPUReading
	RAM   *RAMReading
	GPU   *GPUReading
}

// CPUReading is aggregate CPU usage since the previous tick plus the number
// of live processes.
type CPUReading struct {
	UsagePercent float64
	ProcessCount int
}

// RAMReading is physical memory usage at sampling time.
type RAMReading struct {
	UsedBytes   uint64
	TotalBytes  uint64
	UsedPercent float64
}

// GPUReading carries telemetry for the first detected GPU. Power draw and
// temperature are optional because drivers report "[N/A]" per field, and
// VRAM byte counts are only available from the NVIDIA tooling.
type GPUReading struct {
	Name           string
	UtilPercent    float64
	MemUsedBytes   uint64
	MemTotalBytes  uint64
	MemUsedPercent float64
	PowerWatts     float64
	HasPower       bool
	TempCelsius    float64
	HasTemp        bool
}
