package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler returns an HTTP handler exposing the sink's registry in Prometheus
// exposition format. Mount it at the host's metrics path (typically
// "/metrics").
//
// Example:
//
//	sink := metrics.NewSink("callisto", nil)
//	http.Handle("/metrics", sink.Handler())
func (s *Sink) Handler() http.Handler {
	return promhttp.HandlerFor(
		s.registry,
		promhttp.HandlerOpts{
			EnableOpenMetrics: true,
			ErrorHandling:     promhttp.ContinueOnError,
		},
	)
}
