package hid

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reportsWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "virthid_reports_written_total",
			Help: "Number of HID input reports written to the kernel device.",
		},
		[]string{"kind"},
	)
	reportErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "virthid_report_errors_total",
			Help: "Number of HID input reports the kernel device refused.",
		},
		[]string{"kind"},
	)
)
