package engine

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Metrics tracks operational counters across the pipeline.
var metrics struct {
	GuidanceRequests    atomic.Int64
	TriggerRequests     atomic.Int64
	ScoreRequests       atomic.Int64
	LLMCalls            atomic.Int64
	LLMErrors           atomic.Int64
	GenerationFallbacks atomic.Int64
	StaleServed         atomic.Int64
	StoreErrors         atomic.Int64
}

// IncrScoreRequests increments the scorer request counter (HTTP layer).
func IncrScoreRequests() { metrics.ScoreRequests.Add(1) }

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"guidance_requests":    metrics.GuidanceRequests.Load(),
		"trigger_requests":     metrics.TriggerRequests.Load(),
		"score_requests":       metrics.ScoreRequests.Load(),
		"llm_calls":            metrics.LLMCalls.Load(),
		"llm_errors":           metrics.LLMErrors.Load(),
		"generation_fallbacks": metrics.GenerationFallbacks.Load(),
		"stale_served":         metrics.StaleServed.Load(),
		"store_errors":         metrics.StoreErrors.Load(),
		"cache_hits":           hits,
		"cache_misses":         misses,
	}
}

// FormatMetrics returns metrics as a simple text format for the HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"guidance_requests", "trigger_requests", "score_requests",
		"llm_calls", "llm_errors", "generation_fallbacks",
		"stale_served", "store_errors",
		"cache_hits", "cache_misses",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}
