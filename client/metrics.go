package client

import (
	"fmt"

	"github.com/VictoriaMetrics/metrics"
)

// Client side counters, exported in Prometheus text format through
// metrics.WritePrometheus by embedding applications.
var (
	addressCacheHits   = metrics.NewCounter(`anna_client_address_cache_hits_total`)
	addressCacheMisses = metrics.NewCounter(`anna_client_address_cache_misses_total`)
	droppedResponses   = metrics.NewCounter(`anna_client_dropped_responses_total`)
	requestTimeouts    = metrics.NewCounter(`anna_client_request_timeouts_total`)
)

// countRequest increments the per-operation request counter.
func countRequest(op fmt.Stringer) {
	metrics.GetOrCreateCounter(fmt.Sprintf(`anna_client_requests_total{op=%q}`, op.String())).Inc()
}
