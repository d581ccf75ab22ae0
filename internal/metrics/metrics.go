package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the service
type Metrics struct {
	RequestCounter  *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	PreviewsRendered    prometheus.Counter
	PreviewsPublished   prometheus.Counter
	RecordUpdateFailure prometheus.Counter
}

// New creates a new metrics instance
func New(serviceName string) *Metrics {
	return &Metrics{
		RequestCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "loop",
				Subsystem: serviceName,
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"path", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "loop",
				Subsystem: serviceName,
				Name:      "request_duration_seconds",
				Help:      "Request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"path"},
		),
		PreviewsRendered: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "loop",
			Subsystem: serviceName,
			Name:      "previews_rendered_total",
			Help:      "Total number of preview cards rendered",
		}),
		PreviewsPublished: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "loop",
			Subsystem: serviceName,
			Name:      "previews_published_total",
			Help:      "Total number of preview artifacts uploaded",
		}),
		RecordUpdateFailure: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "loop",
			Subsystem: serviceName,
			Name:      "record_update_failures_total",
			Help:      "Uploads whose preview_image_url write-back failed (storage and DB out of sync)",
		}),
	}
}

// Middleware returns a gin middleware recording request counts and latency.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.RequestCounter.WithLabelValues(path, strconv.Itoa(c.Writer.Status())).Inc()
		m.RequestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	}
}
