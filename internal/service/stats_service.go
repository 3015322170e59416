package service

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// latencySampleCap bounds the latency ring buffer. Percentiles are computed
// over the most recent samples, which is what callers actually want from a
// process-lifetime metrics endpoint.
const latencySampleCap = 8192

// StatsService accumulates process-lifetime request statistics using
// lock-free counters plus a mutex-guarded latency sample ring. Counters are
// never reset.
type StatsService struct {
	requests atomic.Int64
	errors   atomic.Int64

	mu      sync.Mutex
	samples []float64 // seconds
	next    int
	filled  bool

	started time.Time
}

// NewStatsService creates a StatsService with all counters at zero.
func NewStatsService() *StatsService {
	return &StatsService{
		samples: make([]float64, 0, latencySampleCap),
		started: time.Now().UTC(),
	}
}

// Record registers one completed request. Any status >= 400 counts as an
// error for the error-rate figure.
func (s *StatsService) Record(status int, duration time.Duration) {
	s.requests.Add(1)
	if status >= 400 {
		s.errors.Add(1)
	}

	sec := duration.Seconds()
	s.mu.Lock()
	if len(s.samples) < latencySampleCap {
		s.samples = append(s.samples, sec)
	} else {
		s.samples[s.next] = sec
		s.next = (s.next + 1) % latencySampleCap
		s.filled = true
	}
	s.mu.Unlock()
}

// Stats is a point-in-time snapshot of the accumulated metrics.
type Stats struct {
	UptimeSeconds    float64 `json:"uptime_seconds"`
	TotalRequests    int64   `json:"total_requests"`
	TotalErrors      int64   `json:"total_errors"`
	ErrorRate        float64 `json:"error_rate"`
	LatencyP50MS     float64 `json:"latency_p50_ms"`
	LatencyP90MS     float64 `json:"latency_p90_ms"`
	LatencyP99MS     float64 `json:"latency_p99_ms"`
	LatencySampleLen int     `json:"latency_samples"`
}

// GetStats returns a snapshot of the counters and latency percentiles.
// Percentiles are computed on demand by sorting a copy of the sample ring.
func (s *StatsService) GetStats() Stats {
	total := s.requests.Load()
	errs := s.errors.Load()

	s.mu.Lock()
	sorted := make([]float64, len(s.samples))
	copy(sorted, s.samples)
	s.mu.Unlock()
	sort.Float64s(sorted)

	stats := Stats{
		UptimeSeconds:    math.Round(time.Since(s.started).Seconds()),
		TotalRequests:    total,
		TotalErrors:      errs,
		LatencySampleLen: len(sorted),
	}
	if total > 0 {
		stats.ErrorRate = math.Round(float64(errs)/float64(total)*10000) / 10000
	}
	stats.LatencyP50MS = percentileMS(sorted, 0.50)
	stats.LatencyP90MS = percentileMS(sorted, 0.90)
	stats.LatencyP99MS = percentileMS(sorted, 0.99)
	return stats
}

// percentileMS returns the p-th percentile of sorted samples in
// milliseconds, using nearest-rank on a sorted slice.
func percentileMS(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return math.Round(sorted[idx]*1000*1000) / 1000
}
