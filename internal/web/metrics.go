package web

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics exposed by the server.
type Metrics struct {
	SubscriptionsStarted   prometheus.Counter
	SubscriptionsConfirmed prometheus.Counter
	SubscriptionFailures   *prometheus.CounterVec
	HTTPRequests           *prometheus.CounterVec
}

// newMetrics creates and registers all metrics on the given registerer.
// Each server gets its own registry so multiple servers can coexist in
// one process.
func newMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		SubscriptionsStarted: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "letterbox_subscriptions_started_total",
			Help: "Total number of subscriptions that requested confirmation",
		}),
		SubscriptionsConfirmed: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "letterbox_subscriptions_confirmed_total",
			Help: "Total number of subscriptions that were confirmed",
		}),
		SubscriptionFailures: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "letterbox_subscription_failures_total",
			Help: "Total number of failed subscription requests by stage",
		}, []string{"stage"}),
		HTTPRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "letterbox_http_requests_total",
			Help: "Total number of HTTP requests by status code",
		}, []string{"code"}),
	}
}
