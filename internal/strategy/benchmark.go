package strategy

import "strings"

// Default benchmarks.
const (
	DefaultBenchmark     = "SPY"
	DefaultREITBenchmark = "VNQ"
)

// PickBenchmark returns explicit when set, otherwise the benchmark for the
// symbol group: REIT lists are measured against a REIT index, everything else
// against the broad market.
func PickBenchmark(explicit, group, broad, reit string) string {
	if s := strings.ToUpper(strings.TrimSpace(explicit)); s != "" {
		return s
	}
	if broad == "" {
		broad = DefaultBenchmark
	}
	if reit == "" {
		reit = DefaultREITBenchmark
	}
	switch strings.ToLower(strings.TrimSpace(group)) {
	case "reit", "reits":
		return strings.ToUpper(reit)
	default:
		return strings.ToUpper(broad)
	}
}
