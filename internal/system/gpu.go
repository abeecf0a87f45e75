package system

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os/exec"
	"sort"
	"strconv"
	"strings"
)

type GPUStats struct {
	Name          string
	UtilPercent   float64
	MemUsedBytes  uint64
	MemTotalBytes uint64
	PowerWatts    float64
	HasPower      bool
	TempCelsius   float64
	HasTemp       bool
}

// ReadGPU probes the first detected GPU, trying nvidia-smi before rocm-smi.
// The second return is false when no usable GPU tooling is present.
func ReadGPU(ctx context.Context) (GPUStats, bool) {
	if stats, ok := readNvidiaGPU(ctx); ok {
		return stats, true
	}
	if stats, ok := readAmdGPU(ctx); ok {
		return stats, true
	}
	return GPUStats{}, false
}

var nvidiaQueryFields = []string{
	"name",
	"utilization.gpu",
	"memory.used",
	"memory.total",
	"power.draw",
	"temperature.gpu",
}

func readNvidiaGPU(ctx context.Context) (GPUStats, bool) {
	if _, err := exec.LookPath("nvidia-smi"); err != nil {
		return GPUStats{}, false
	}
	rows, err := runNvidiaQueryCSV(ctx, nvidiaQueryFields)
	if err != nil || len(rows) == 0 {
		return GPUStats{}, false
	}
	return parseNvidiaRow(rows[0])
}

func parseNvidiaRow(row []string) (GPUStats, bool) {
	if len(row) < len(nvidiaQueryFields) {
		return GPUStats{}, false
	}
	stats := GPUStats{
		Name:          normalizeField(row[0]),
		UtilPercent:   clampPercent(parseFloatFlexible(row[1])),
		MemUsedBytes:  mibToBytes(parseUintFlexible(row[2])),
		MemTotalBytes: mibToBytes(parseUintFlexible(row[3])),
	}
	if v := normalizeField(row[4]); v != "" {
		stats.PowerWatts = parseFloatFlexible(v)
		stats.HasPower = true
	}
	if v := normalizeField(row[5]); v != "" {
		stats.TempCelsius = parseFloatFlexible(v)
		stats.HasTemp = true
	}
	return stats, true
}

func runNvidiaQueryCSV(ctx context.Context, fields []string) ([][]string, error) {
	args := []string{
		"--query-gpu=" + strings.Join(fields, ","),
		"--format=csv,noheader,nounits",
	}
	cmd := exec.CommandContext(ctx, "nvidia-smi", args...)
	out, err := cmd.Output()
	if err != nil {
		return nil, err
	}
	reader := csv.NewReader(strings.NewReader(string(out)))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// rocm-smi --json reports utilization, temperature and power but no VRAM
// byte counts, so AMD readings leave the memory fields zero.
func readAmdGPU(ctx context.Context) (GPUStats, bool) {
	if _, err := exec.LookPath("rocm-smi"); err != nil {
		return GPUStats{}, false
	}
	cmd := exec.CommandContext(ctx, "rocm-smi", "--json")
	raw, err := cmd.Output()
	if err != nil {
		return GPUStats{}, false
	}
	return parseRocmOutput(raw)
}

func parseRocmOutput(raw []byte) (GPUStats, bool) {
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return GPUStats{}, false
	}
	cards := make([]string, 0, len(decoded))
	for key := range decoded {
		lk := strings.ToLower(strings.TrimSpace(key))
		if strings.Contains(lk, "card") || strings.Contains(lk, "gpu") {
			cards = append(cards, key)
		}
	}
	if len(cards) == 0 {
		return GPUStats{}, false
	}
	sort.Strings(cards)
	obj, ok := decoded[cards[0]].(map[string]any)
	if !ok {
		return GPUStats{}, false
	}

	util, ok := findMapFloatByContains(obj, "gpu use", "gpu busy")
	if !ok {
		return GPUStats{}, false
	}
	stats := GPUStats{
		Name:        findMapStringByContains(obj, "card series", "card model", "device name"),
		UtilPercent: clampPercent(util),
	}
	if v, ok := findMapFloatByContains(obj, "average graphics package power", "average power", "power"); ok {
		stats.PowerWatts = v
		stats.HasPower = true
	}
	if v, ok := findMapFloatByContains(obj, "sensor edge", "edge temperature", "temperature"); ok {
		stats.TempCelsius = v
		stats.HasTemp = true
	}
	return stats, true
}

func normalizeField(raw string) string {
	v := strings.TrimSpace(raw)
	switch strings.ToLower(v) {
	case "", "n/a", "[n/a]", "[not supported]", "not supported", "[unknown error]", "unknown", "-", "none":
		return ""
	default:
		return v
	}
}

func parseFloatFlexible(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	raw = strings.TrimSuffix(raw, "%")
	raw = strings.TrimSuffix(raw, "C")
	raw = strings.TrimSuffix(raw, "W")
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return 0
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0
	}
	return v
}

func parseUintFlexible(raw string) uint64 {
	v := parseFloatFlexible(raw)
	if v <= 0 {
		return 0
	}
	return uint64(v)
}

func mibToBytes(v uint64) uint64 {
	return v * 1024 * 1024
}

func findMapStringByContains(m map[string]any, contains ...string) string {
	keys := sortedKeys(m)
	for _, needle := range contains {
		needle = strings.ToLower(needle)
		for _, k := range keys {
			if !strings.Contains(strings.ToLower(k), needle) {
				continue
			}
			switch typed := m[k].(type) {
			case string:
				return normalizeField(typed)
			default:
				return normalizeField(fmt.Sprintf("%v", typed))
			}
		}
	}
	return ""
}

// Needles are tried in order so callers can prefer the most specific key;
// keys are walked sorted to keep the pick stable across runs.
func findMapFloatByContains(m map[string]any, contains ...string) (float64, bool) {
	keys := sortedKeys(m)
	for _, needle := range contains {
		needle = strings.ToLower(needle)
		for _, k := range keys {
			if !strings.Contains(strings.ToLower(k), needle) {
				continue
			}
			switch typed := m[k].(type) {
			case float64:
				return typed, true
			case string:
				if normalizeField(typed) == "" {
					return 0, false
				}
				return parseFloatFlexible(typed), true
			default:
				return parseFloatFlexible(fmt.Sprintf("%v", typed)), true
			}
		}
	}
	return 0, false
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
