// Package format renders a metrics snapshot into the multi-line text shown
// in the chatbox. Rendering is pure: the same snapshot and options always
// produce the same string.
package format

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"vrc-sysstat/internal/model"
)

// timeLayout prints local time with the UTC offset, e.g.
// "04/13/2025 21:07:09 UTC+09".
const timeLayout = "01/02/2006 15:04:05 UTC-07"

// Options selects which sections appear in the rendered message.
type Options struct {
	ShowTime bool
	ShowCPU  bool
	ShowRAM  bool
	ShowGPU  bool
}

type Renderer struct {
	opts Options
}

func NewRenderer(opts Options) *Renderer {
	return &Renderer{opts: opts}
}

// Render produces the chatbox message for one snapshot. Sections whose
// reading is nil or disabled are omitted; an empty string means there is
// nothing worth sending this tick.
func (r *Renderer) Render(snap model.Snapshot) string {
	sections := make([]string, 0, 4)
	if r.opts.ShowTime {
		sections = append(sections, snap.Taken.Format(timeLayout))
	}
	if r.opts.ShowCPU && snap.CPU != nil {
		sections = append(sections, fmt.Sprintf("CPU: %.2f%%, Processes: %d", snap.CPU.UsagePercent, snap.CPU.ProcessCount))
	}
	if r.opts.ShowRAM && snap.RAM != nil {
		sections = append(sections, fmt.Sprintf("RAM: %s (%.2f%%)", humanize.IBytes(snap.RAM.UsedBytes), snap.RAM.UsedPercent))
	}
	if r.opts.ShowGPU && snap.GPU != nil {
		sections = append(sections, renderGPU(snap.GPU))
	}
	return strings.Join(sections, "\n")
}

func renderGPU(gpu *model.GPUReading) string {
	var b strings.Builder
	fmt.Fprintf(&b, "GPU: %.0f%%", gpu.UtilPercent)

	extras := make([]string, 0, 2)
	if gpu.HasPower {
		extras = append(extras, fmt.Sprintf("%.2fW", gpu.PowerWatts))
	}
	if gpu.HasTemp {
		extras = append(extras, fmt.Sprintf("%.0f°C", gpu.TempCelsius))
	}
	if len(extras) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(extras, ", "))
	}

	if gpu.MemTotalBytes > 0 {
		fmt.Fprintf(&b, "\n%s (%.2f%%)", humanize.IBytes(gpu.MemUsedBytes), gpu.MemUsedPercent)
	}
	return b.String()
}
