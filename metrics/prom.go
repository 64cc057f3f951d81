package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ServiceName = "kpifunnel"
)

var (
	Uploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(ServiceName, "upload", "total"),
		Help: "Number of spreadsheet uploads by outcome",
	}, []string{"outcome"})
	FunnelErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(ServiceName, "funnel", "errors_total"),
		Help: "Funnel extraction and layout errors by error code",
	}, []string{"code"})
	ChartsRendered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(ServiceName, "chart", "rendered_total"),
		Help: "Number of rendered funnel charts by format and layout mode",
	}, []string{"format", "mode"})
	RenderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    prometheus.BuildFQName(ServiceName, "chart", "render_duration_seconds"),
		Help:    "Duration of rendering a single funnel chart in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	}, []string{"format"})
)
