package report

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	collectDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "envreport_collect_duration_seconds",
			Help:    "Time taken to collect a complete environment report",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	collectTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "envreport_collect_total",
			Help: "Total number of report collections",
		},
		[]string{"status"}, // complete, partial or invalid_region
	)

	categoryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "envreport_category_fetch_duration_seconds",
			Help:    "Time taken by individual category fetches",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 15},
		},
		[]string{"category"},
	)

	categoryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "envreport_category_fetch_total",
			Help: "Total number of category fetches by outcome",
		},
		[]string{"category", "outcome"}, // ok or the failure cause
	)
)
