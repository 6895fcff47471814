// Package metrics provides Prometheus metrics for mixer probes and commands.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Probe results beyond the process failure kinds.
const (
	ResultOK           = "ok"
	ResultParseFailure = "parse_failure"
)

var (
	probesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "alsavolume",
		Subsystem: "mixer",
		Name:      "probes_total",
		Help:      "Mixer control probes by outcome",
	}, []string{"result"})

	probeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "alsavolume",
		Subsystem: "mixer",
		Name:      "probe_duration_seconds",
		Help:      "Wall time of a single amixer probe",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	})

	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "alsavolume",
		Subsystem: "mixer",
		Name:      "commands_total",
		Help:      "Mixer commands by command name and outcome",
	}, []string{"command", "result"})

	devicesFound = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "alsavolume",
		Subsystem: "mixer",
		Name:      "devices",
		Help:      "Playback devices seen in the last enumeration",
	})

	devicesUnavailable = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "alsavolume",
		Subsystem: "mixer",
		Name:      "devices_unavailable",
		Help:      "Devices with no usable volume control in the last reading",
	})
)

// ObserveProbe records the outcome and duration of one amixer probe.
func ObserveProbe(result string, duration time.Duration) {
	probesTotal.WithLabelValues(result).Inc()
	probeDuration.Observe(duration.Seconds())
}

// CountCommand records a mixer command outcome ("ok", "error" or "invalid").
func CountCommand(command, result string) {
	commandsTotal.WithLabelValues(command, result).Inc()
}

// SetDevices records the size of the last reading batch.
func SetDevices(total, unavailable int) {
	devicesFound.Set(float64(total))
	devicesUnavailable.Set(float64(unavailable))
}
