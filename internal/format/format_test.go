package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"vrc-sysstat/internal/model"
)

func allOn() Options {
	return Options{ShowTime: true, ShowCPU: true, ShowRAM: true, ShowGPU: true}
}

func sampleSnapshot() model.Snapshot {
	return model.Snapshot{
		Taken: time.Date(2025, 4, 13, 21, 7, 9, 0, time.FixedZone("", 9*60*60)),
		CPU:   &model.CPUReading{UsagePercent: 12.25, ProcessCount: 312},
		RAM: &model.RAMReading{
			UsedBytes:   12 * 1024 * 1024 * 1024,
			TotalBytes:  32 * 1024 * 1024 * 1024,
			UsedPercent: 37.5,
		},
		GPU: &model.GPUReading{
			Name:           "NVIDIA GeForce RTX 4090",
			UtilPercent:    45,
			MemUsedBytes:   11 * 1024 * 1024 * 1024,
			MemTotalBytes:  24 * 1024 * 1024 * 1024,
			MemUsedPercent: 45.75,
			PowerWatts:     123.25,
			HasPower:       true,
			TempCelsius:    67,
			HasTemp:        true,
		},
	}
}

func TestRenderFullSnapshot(t *testing.T) {
	got := NewRenderer(allOn()).Render(sampleSnapshot())

	want := "04/13/2025 21:07:09 UTC+09\n" +
		"CPU: 12.25%, Processes: 312\n" +
		"RAM: 12 GiB (37.50%)\n" +
		"GPU: 45% (123.25W, 67°C)\n" +
		"11 GiB (45.75%)"
	assert.Equal(t, want, got)
}

func TestRenderIsDeterministic(t *testing.T) {
	r := NewRenderer(allOn())
	snap := sampleSnapshot()
	assert.Equal(t, r.Render(snap), r.Render(snap))
}

func TestRenderSectionToggles(t *testing.T) {
	snap := sampleSnapshot()
	tests := []struct {
		name    string
		opts    Options
		missing string
	}{
		{"time off", Options{ShowCPU: true, ShowRAM: true, ShowGPU: true}, "UTC"},
		{"cpu off", Options{ShowTime: true, ShowRAM: true, ShowGPU: true}, "CPU:"},
		{"ram off", Options{ShowTime: true, ShowCPU: true, ShowGPU: true}, "RAM:"},
		{"gpu off", Options{ShowTime: true, ShowCPU: true, ShowRAM: true}, "GPU:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewRenderer(tt.opts).Render(snap)
			assert.NotContains(t, got, tt.missing)
			assert.NotEmpty(t, got)
		})
	}
}

func TestRenderOmitsUnavailableReadings(t *testing.T) {
	snap := sampleSnapshot()
	snap.CPU = nil
	snap.GPU = nil

	got := NewRenderer(allOn()).Render(snap)

	want := "04/13/2025 21:07:09 UTC+09\n" +
		"RAM: 12 GiB (37.50%)"
	assert.Equal(t, want, got)
}

func TestRenderTimeOnly(t *testing.T) {
	snap := model.Snapshot{Taken: time.Date(2025, 4, 13, 21, 7, 9, 0, time.FixedZone("", -7*60*60))}
	got := NewRenderer(Options{ShowTime: true}).Render(snap)
	assert.Equal(t, "04/13/2025 21:07:09 UTC-07", got)
}

func TestRenderEmptyWhenNothingEnabled(t *testing.T) {
	got := NewRenderer(Options{}).Render(sampleSnapshot())
	assert.Equal(t, "", got)
}

func TestRenderEmptyWhenAllReadingsMissing(t *testing.T) {
	snap := model.Snapshot{Taken: time.Now()}
	got := NewRenderer(Options{ShowCPU: true, ShowRAM: true, ShowGPU: true}).Render(snap)
	assert.Equal(t, "", got)
}

func TestRenderGPUVariants(t *testing.T) {
	tests := []struct {
		name string
		gpu  model.GPUReading
		want string
	}{
		{
			name: "no power",
			gpu: model.GPUReading{
				UtilPercent: 45, TempCelsius: 67, HasTemp: true,
				MemUsedBytes: 11 * 1024 * 1024 * 1024, MemTotalBytes: 24 * 1024 * 1024 * 1024, MemUsedPercent: 45.75,
			},
			want: "GPU: 45% (67°C)\n11 GiB (45.75%)",
		},
		{
			name: "no temperature",
			gpu: model.GPUReading{
				UtilPercent: 45, PowerWatts: 123.25, HasPower: true,
				MemUsedBytes: 11 * 1024 * 1024 * 1024, MemTotalBytes: 24 * 1024 * 1024 * 1024, MemUsedPercent: 45.75,
			},
			want: "GPU: 45% (123.25W)\n11 GiB (45.75%)",
		},
		{
			name: "utilization only",
			gpu:  model.GPUReading{UtilPercent: 45},
			want: "GPU: 45%",
		},
		{
			name: "no vram info",
			gpu:  model.GPUReading{UtilPercent: 19, PowerWatts: 87, HasPower: true, TempCelsius: 41, HasTemp: true},
			want: "GPU: 19% (87.00W, 41°C)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := model.Snapshot{Taken: time.Now(), GPU: &tt.gpu}
			got := NewRenderer(Options{ShowGPU: true}).Render(snap)
			assert.Equal(t, tt.want, got)
		})
	}
}
