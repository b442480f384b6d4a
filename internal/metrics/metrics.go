package metrics

import (
	"errors"
	"strconv"
	"time"

	xerrors "console-service/internal/pkg/errors"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	//Inbound page request duration with method, route, and status labels
	RequestDuration *prometheus.HistogramVec
	//Outbound remote API call duration with method, endpoint, and status labels
	APIRequestDuration *prometheus.HistogramVec
	//Login attempts counter with outcome label (success, two_factor, failure)
	LoginAttempts *prometheus.CounterVec
	//Hydration outcomes (anonymous, authenticated, failed)
	Hydrations *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "console_request_duration_seconds",
			Help:    "Duration of inbound console page requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
			[]string{"method", "route", "status"},
		),
		APIRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "console_api_request_duration_seconds",
			Help:    "Duration of remote API calls in seconds.",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
			[]string{"method", "endpoint", "status"},
		),
		LoginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "console_login_attempts_total",
			Help: "Total number of login attempts by outcome.",
		},
			[]string{"outcome"},
		),
		Hydrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "console_hydrations_total",
			Help: "Current-user hydrations by outcome.",
		},
			[]string{"outcome"},
		),
	}
	// Register metrics with the provided registry
	reg.MustRegister(m.RequestDuration)
	reg.MustRegister(m.APIRequestDuration)
	reg.MustRegister(m.LoginAttempts)
	reg.MustRegister(m.Hydrations)
	return m
}

// ObserveAPI records the duration and status of one remote call.
// Transport failures are labelled "network".
func (m *Metrics) ObserveAPI(method, endpoint string, start time.Time, status int, err error) {
	if m == nil {
		return
	}
	label := strconv.Itoa(status)
	if status == 0 {
		label = "none"
		if err != nil && errors.Is(err, xerrors.ErrNetwork) {
			label = "network"
		}
	}
	m.APIRequestDuration.WithLabelValues(method, endpoint, label).Observe(time.Since(start).Seconds())
}

// ObserveRequest records one inbound request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// CountLogin increments the login outcome counter.
func (m *Metrics) CountLogin(outcome string) {
	if m == nil {
		return
	}
	m.LoginAttempts.WithLabelValues(outcome).Inc()
}

// CountHydration increments the hydration outcome counter.
func (m *Metrics) CountHydration(outcome string) {
	if m == nil {
		return
	}
	m.Hydrations.WithLabelValues(outcome).Inc()
}
