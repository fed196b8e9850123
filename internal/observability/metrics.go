package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	framesReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "commwatch",
			Subsystem: "session",
			Name:      "frames_received_total",
			Help:      "Total frames received and appended to a session log.",
		},
		[]string{"transport", "protocol"},
	)
	framesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "commwatch",
			Subsystem: "session",
			Name:      "frames_sent_total",
			Help:      "Total outbound frames written through a live handle.",
		},
		[]string{"transport"},
	)
	frameErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "commwatch",
			Subsystem: "session",
			Name:      "frame_errors_total",
			Help:      "Total frames that failed codec validation, by error code.",
		},
		[]string{"transport", "protocol", "code"},
	)
	decodeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "commwatch",
			Subsystem: "session",
			Name:      "decode_duration_seconds",
			Help:      "Time spent decoding and validating one received chunk.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"protocol"},
	)
	adapterBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "commwatch",
			Subsystem: "adapter",
			Name:      "bytes_total",
			Help:      "Total bytes transferred by direction and transport.",
		},
		[]string{"transport", "direction"},
	)
)

// RegisterMetrics registers every collector with the default
// prometheus registry exactly once.
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(framesReceived, framesSent, frameErrors, decodeDuration, adapterBytes)
	})
}

// RecordFrameReceived increments the received-frame counter for one
// transport/protocol pair.
func RecordFrameReceived(transport, protocol string) {
	RegisterMetrics()
	framesReceived.WithLabelValues(transport, protocol).Inc()
}

// RecordFrameSent increments the sent-frame counter for one transport.
func RecordFrameSent(transport string) {
	RegisterMetrics()
	framesSent.WithLabelValues(transport).Inc()
}

// RecordFrameError increments the frame-error counter for one
// transport/protocol/code triple.
func RecordFrameError(transport, protocol, code string) {
	RegisterMetrics()
	frameErrors.WithLabelValues(transport, protocol, code).Inc()
}

// RecordDecodeDuration observes how long a decode+validate pass took.
func RecordDecodeDuration(protocol string, d time.Duration) {
	RegisterMetrics()
	decodeDuration.WithLabelValues(protocol).Observe(d.Seconds())
}

// RecordAdapterBytes adds n bytes to the transport/direction counter.
func RecordAdapterBytes(transport, direction string, n int) {
	RegisterMetrics()
	adapterBytes.WithLabelValues(transport, direction).Add(float64(n))
}
