package metrics

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Metrics collects size and timing figures for device builds
type Metrics struct {
	mu sync.RWMutex

	// Packing metrics
	FilesPackedTotal int64
	BytesPackedTotal int64
	JSFilesTotal     int64

	// Encoding metrics
	FooterBytesTotal    int64
	ContainerBytesTotal int64

	// Stage durations
	StageDurationNs map[string]int64 // by stage name

	BuildsTotal        int64
	BuildFailuresTotal int64
}

// NewMetrics creates a new metrics collector
func NewMetrics() *Metrics {
	return &Metrics{
		StageDurationNs: make(map[string]int64),
	}
}

// RecordPackedFile records one file appended to the packed blob
func (m *Metrics) RecordPackedFile(name string, bytes int64, js bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.FilesPackedTotal++
	m.BytesPackedTotal += bytes
	if js {
		m.JSFilesTotal++
	}

	log.Debug().
		Str("file", name).
		Int64("bytes", bytes).
		Int64("total_files", m.FilesPackedTotal).
		Int64("total_bytes", m.BytesPackedTotal).
		Msg("file packed")
}

// RecordContainer records the encoded footer and container sizes
func (m *Metrics) RecordContainer(footerBytes int64, containerBytes int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.FooterBytesTotal += footerBytes
	m.ContainerBytesTotal += containerBytes

	log.Debug().
		Int64("footer_bytes", footerBytes).
		Int64("container_bytes", containerBytes).
		Msg("container encoded")
}

// RecordStage records how long one pipeline stage took
func (m *Metrics) RecordStage(stage string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.StageDurationNs[stage] += duration.Nanoseconds()

	log.Debug().
		Str("stage", stage).
		Dur("duration", duration).
		Msg("stage completed")
}

// RecordBuild records the outcome of a build
func (m *Metrics) RecordBuild(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.BuildsTotal++
	if err != nil {
		m.BuildFailuresTotal++
	}
}

// Snapshot returns the counters keyed by metric name
func (m *Metrics) Snapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	metrics := make(map[string]interface{})
	metrics["maxbuild_files_packed_total"] = m.FilesPackedTotal
	metrics["maxbuild_bytes_packed_total"] = m.BytesPackedTotal
	metrics["maxbuild_js_files_total"] = m.JSFilesTotal
	metrics["maxbuild_footer_bytes_total"] = m.FooterBytesTotal
	metrics["maxbuild_container_bytes_total"] = m.ContainerBytesTotal
	metrics["maxbuild_builds_total"] = m.BuildsTotal
	metrics["maxbuild_build_failures_total"] = m.BuildFailuresTotal

	for stage, ns := range m.StageDurationNs {
		metrics["maxbuild_stage_seconds{stage=\""+stage+"\"}"] = float64(ns) / 1e9
	}

	return metrics
}

// LogSummary logs a summary of current metrics
func (m *Metrics) LogSummary() {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var totalNs int64
	for _, ns := range m.StageDurationNs {
		totalNs += ns
	}

	log.Info().
		Int64("files", m.FilesPackedTotal).
		Int64("js_files", m.JSFilesTotal).
		Int64("packed_bytes", m.BytesPackedTotal).
		Int64("footer_bytes", m.FooterBytesTotal).
		Int64("container_bytes", m.ContainerBytesTotal).
		Dur("duration", time.Duration(totalNs)).
		Msg("build summary")
}
