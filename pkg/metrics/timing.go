// Package metrics collects timing statistics for the hot paths of covtree:
// dataset loading, tree construction, search, page rendering and export.
//
// Measurements are kept in memory with atomic counters, so concurrent page
// renders can record into the same metric. Collection is on by default and
// can be switched off with COVTREE_METRICS=0.
//
//	func (g *Generator) Generate(...) {
//	    defer metrics.Timer(metrics.ReportGenerate)()
//	    ...
//	}
package metrics

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync/atomic"
	"time"
)

// EnvVar disables collection when set to "0".
const EnvVar = "COVTREE_METRICS"

var enabled atomic.Bool

func init() {
	enabled.Store(os.Getenv(EnvVar) != "0")
}

// Enabled reports whether measurements are being recorded.
func Enabled() bool { return enabled.Load() }

// SetEnabled switches collection on or off for every metric.
func SetEnabled(e bool) { enabled.Store(e) }

// TimingMetric accumulates durations of one named operation.
type TimingMetric struct {
	name  string
	count atomic.Int64
	total atomic.Int64 // ns
	max   atomic.Int64 // ns
	min   atomic.Int64 // ns, 0 until the first sample
}

func newTimingMetric(name string) *TimingMetric {
	return &TimingMetric{name: name}
}

// Record adds one sample. It is a no-op while collection is disabled.
func (m *TimingMetric) Record(d time.Duration) {
	if !enabled.Load() {
		return
	}
	ns := d.Nanoseconds()
	m.count.Add(1)
	m.total.Add(ns)

	for {
		old := m.max.Load()
		if ns <= old || m.max.CompareAndSwap(old, ns) {
			break
		}
	}
	for {
		old := m.min.Load()
		if (old != 0 && ns >= old) || m.min.CompareAndSwap(old, ns) {
			break
		}
	}
}

func (m *TimingMetric) Name() string   { return m.name }
func (m *TimingMetric) Count() int64   { return m.count.Load() }
func (m *TimingMetric) TotalNs() int64 { return m.total.Load() }
func (m *TimingMetric) MaxNs() int64   { return m.max.Load() }

// MinNs is 0 when nothing has been recorded.
func (m *TimingMetric) MinNs() int64 { return m.min.Load() }

// AvgNs is 0 when nothing has been recorded.
func (m *TimingMetric) AvgNs() int64 {
	n := m.count.Load()
	if n == 0 {
		return 0
	}
	return m.total.Load() / n
}

// Stats snapshots the metric in milliseconds.
func (m *TimingMetric) Stats() TimingStats {
	const ms = float64(time.Millisecond)
	return TimingStats{
		Name:    m.name,
		Count:   m.Count(),
		TotalMs: float64(m.TotalNs()) / ms,
		AvgMs:   float64(m.AvgNs()) / ms,
		MaxMs:   float64(m.MaxNs()) / ms,
		MinMs:   float64(m.MinNs()) / ms,
	}
}

// Reset drops every sample.
func (m *TimingMetric) Reset() {
	m.count.Store(0)
	m.total.Store(0)
	m.max.Store(0)
	m.min.Store(0)
}

// TimingStats is a point-in-time view of a TimingMetric.
type TimingStats struct {
	Name    string  `json:"name"`
	Count   int64   `json:"count"`
	TotalMs float64 `json:"total_ms"`
	AvgMs   float64 `json:"avg_ms"`
	MaxMs   float64 `json:"max_ms"`
	MinMs   float64 `json:"min_ms,omitempty"`
}

// Timer starts measuring and returns the function that records the sample:
//
//	defer metrics.Timer(metrics.TreeSearch)()
func Timer(m *TimingMetric) func() {
	return TimerWithCallback(m, nil)
}

// TimerWithCallback is Timer that also hands the duration to cb.
func TimerWithCallback(m *TimingMetric, cb func(time.Duration)) func() {
	if m == nil || !enabled.Load() {
		return func() {}
	}
	start := time.Now()
	return func() {
		d := time.Since(start)
		m.Record(d)
		if cb != nil {
			cb(d)
		}
	}
}

// Instrumented operations.
var (
	DatasetLoad     = newTimingMetric("dataset_load")
	ClassRecordLoad = newTimingMetric("class_record_load")
	TreeBuild       = newTimingMetric("tree_build")
	TreeSearch      = newTimingMetric("tree_search")
	ReportGenerate  = newTimingMetric("report_generate")
	PageRender      = newTimingMetric("page_render")
	SQLiteExport    = newTimingMetric("sqlite_export")
	UIRender        = newTimingMetric("ui_render")
)

// AllTimingMetrics lists the instrumented operations in pipeline order.
func AllTimingMetrics() []*TimingMetric {
	return []*TimingMetric{
		DatasetLoad,
		ClassRecordLoad,
		TreeBuild,
		TreeSearch,
		ReportGenerate,
		PageRender,
		SQLiteExport,
		UIRender,
	}
}

func ResetAll() {
	for _, m := range AllTimingMetrics() {
		m.Reset()
	}
}

// AllTimingStats returns stats for the metrics that have samples.
func AllTimingStats() []TimingStats {
	var stats []TimingStats
	for _, m := range AllTimingMetrics() {
		if m.Count() > 0 {
			stats = append(stats, m.Stats())
		}
	}
	return stats
}

// FormatStats renders stats as an aligned table, largest total first.
func FormatStats(stats []TimingStats) string {
	if len(stats) == 0 {
		return "no timings recorded\n"
	}
	sorted := append([]TimingStats(nil), stats...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].TotalMs > sorted[j].TotalMs })

	var sb strings.Builder
	fmt.Fprintf(&sb, "%-18s %7s %10s %10s %10s\n", "operation", "count", "total ms", "avg ms", "max ms")
	for _, s := range sorted {
		fmt.Fprintf(&sb, "%-18s %7d %10.2f %10.2f %10.2f\n", s.Name, s.Count, s.TotalMs, s.AvgMs, s.MaxMs)
	}
	return sb.String()
}
