// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaBatch - FFmpeg 批量媒体转换工具

// Package metrics exposes Prometheus counters for conversion runs
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run metrics
var (
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediabatch_runs_total",
			Help: "Total number of conversion runs",
		},
		[]string{"status"}, // "completed", "failed", "cancelled"
	)

	RunInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mediabatch_run_in_progress",
			Help: "Whether a conversion run is currently active (1 = running, 0 = idle)",
		},
	)

	RunLastDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mediabatch_run_last_duration_seconds",
			Help: "Duration of the last conversion run in seconds",
		},
	)
)

// Per-file metrics
var (
	FilesConvertedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediabatch_files_converted_total",
			Help: "Total number of files converted",
		},
		[]string{"kind"}, // "video" or "image"
	)

	FilesFailedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mediabatch_files_failed_total",
			Help: "Total number of files that failed to convert",
		},
	)

	FileConversionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mediabatch_file_conversion_duration_seconds",
			Help:    "Per-file conversion duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
		},
	)

	FastCopiesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mediabatch_fast_copies_total",
			Help: "Total number of files handled by stream copy instead of re-encoding",
		},
	)
)

// Queue metrics
var (
	QueueSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mediabatch_queue_size",
			Help: "Number of files currently queued",
		},
	)

	ProbesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediabatch_probes_total",
			Help: "Total number of ffprobe invocations",
		},
		[]string{"status"}, // "ok" or "error"
	)
)
