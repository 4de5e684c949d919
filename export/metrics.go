// Copyright 2021 fdb2xml Authors. Licensed under Apache-2.0.

package export

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	finishedSizeCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fdb2xml",
			Subsystem: "export",
			Name:      "finished_size",
			Help:      "counter for exported output bytes",
		}, []string{})
	finishedRowsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fdb2xml",
			Subsystem: "export",
			Name:      "finished_rows",
			Help:      "counter for exported rows",
		}, []string{})
	finishedTablesCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fdb2xml",
			Subsystem: "export",
			Name:      "finished_tables",
			Help:      "counter for fully exported tables",
		}, []string{})
	skippedTablesCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fdb2xml",
			Subsystem: "export",
			Name:      "skipped_tables",
			Help:      "counter for tables skipped or truncated",
		}, []string{})
	writeTimeHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fdb2xml",
			Subsystem: "write",
			Name:      "write_duration_time",
			Help:      "Bucketed histogram of write time (s) of the output file",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 2, 20),
		}, []string{})
	errorCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fdb2xml",
			Subsystem: "export",
			Name:      "error_count",
			Help:      "Total error count during export progress",
		}, []string{})
)

// RegisterMetrics registers metrics.
func RegisterMetrics(registry *prometheus.Registry) {
	registry.MustRegister(finishedSizeCounter)
	registry.MustRegister(finishedRowsCounter)
	registry.MustRegister(finishedTablesCounter)
	registry.MustRegister(skippedTablesCounter)
	registry.MustRegister(writeTimeHistogram)
	registry.MustRegister(errorCount)
}
