package observability

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lwmacct/251219-go-pkg-rentaroom/pkg/actor"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "rentaroom", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rentaroom", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	Asks = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "rentaroom", Name: "asks_total", Help: "Actor asks by request kind and outcome."},
		[]string{"kind", "outcome"}, // outcome: ok|timeout|not_found|error
	)
	AskLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rentaroom", Name: "ask_duration_seconds",
			Help:    "Actor ask round-trip seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)
	Reservations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "rentaroom", Name: "reservations_total", Help: "Reservation state changes."},
		[]string{"hotel", "outcome"}, // outcome: accepted|rejected|confirmed|cancelled|not_found
	)
	RegistryMembers = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Namespace: "rentaroom", Name: "registry_members", Help: "Live instances per service key."},
		[]string{"key"},
	)
	DeadLetters = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "rentaroom", Name: "dead_letters_total", Help: "Undeliverable actor messages."},
		[]string{"kind"},
	)
)

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, Asks, AskLatency, Reservations, RegistryMembers, DeadLetters)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveAsk(kind, outcome string, dur time.Duration) {
	Asks.WithLabelValues(kind, outcome).Inc()
	AskLatency.WithLabelValues(kind).Observe(dur.Seconds())
}

func ObserveReservation(hotel, outcome string) {
	Reservations.WithLabelValues(hotel, outcome).Inc()
}

func ObserveMembers(key string, n int) {
	RegistryMembers.WithLabelValues(key).Set(float64(n))
}

func ObserveDeadLetter(kind string) {
	DeadLetters.WithLabelValues(kind).Inc()
}

// AskOutcome 把 ask 的错误映射为指标标签
func AskOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case actor.IsTimeout(err):
		return "timeout"
	case errors.Is(err, actor.ErrActorNotFound):
		return "not_found"
	default:
		return "error"
	}
}
