package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	JobsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "framecap_jobs_processed_total",
		Help: "Total number of extraction jobs processed, by status",
	}, []string{"status"})

	JobStageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "framecap_job_stage_duration_seconds",
		Help:    "Duration of the extraction pipeline, by stage",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
	}, []string{"stage"})

	ExtractionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "framecap_extractions_total",
		Help: "Total number of engine invocations, by outcome",
	}, []string{"outcome"})

	FramesSavedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "framecap_frames_saved_total",
		Help: "Total number of frames saved to the media library",
	})

	VideosDiscoveredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "framecap_videos_discovered_total",
		Help: "Total number of new videos found by the catalog poller",
	})

	ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "framecap_active_workers",
		Help: "Number of currently active workers processing jobs",
	})

	RetryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "framecap_retry_total",
		Help: "Total number of retries",
	}, []string{"attempt"})
)
