// Package observability holds the Prometheus collectors of the signup service.
package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// UnknownActivity replaces the activity label whenever the outcome does not
// prove the activity exists, so arbitrary request paths cannot grow label
// cardinality.
const UnknownActivity = "unknown"

// resolvedOutcomes are produced only after the directory found the activity.
var resolvedOutcomes = map[string]struct{}{
	"ok":                 {},
	"already_registered": {},
	"not_registered":     {},
	"invalid_email":      {},
}

var (
	signupCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "signup_service",
		Subsystem: "roster",
		Name:      "signups_total",
		Help:      "Signup attempts labeled by activity and outcome.",
	}, []string{"activity", "outcome"})

	unregisterCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "signup_service",
		Subsystem: "roster",
		Name:      "unregistrations_total",
		Help:      "Unregister attempts labeled by activity and outcome.",
	}, []string{"activity", "outcome"})

	rosterGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "signup_service",
		Subsystem: "roster",
		Name:      "participants",
		Help:      "Current number of participants per activity.",
	}, []string{"activity"})

	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "signup_service",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests labeled by method, route and status code.",
	}, []string{"method", "route", "code"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "signup_service",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Time spent serving HTTP requests.",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
	}, []string{"method", "route"})
)

func init() {
	prometheus.MustRegister(signupCounter, unregisterCounter, rosterGauge, httpRequests, httpDuration)
}

// RecordSignup counts a signup attempt.
func RecordSignup(activity, outcome string) {
	signupCounter.WithLabelValues(activityLabel(activity, outcome), outcome).Inc()
}

// RecordUnregister counts an unregister attempt.
func RecordUnregister(activity, outcome string) {
	unregisterCounter.WithLabelValues(activityLabel(activity, outcome), outcome).Inc()
}

// SetRosterSize updates the participant gauge for one activity.
func SetRosterSize(activity string, size int) {
	rosterGauge.WithLabelValues(activity).Set(float64(size))
}

// ObserveHTTPRequest records one served request.
func ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// SignupCount returns the signup counter for the label pair; used by tests.
func SignupCount(activity, outcome string) prometheus.Counter {
	return signupCounter.WithLabelValues(activityLabel(activity, outcome), outcome)
}

// UnregisterCount returns the unregister counter for the label pair; used by tests.
func UnregisterCount(activity, outcome string) prometheus.Counter {
	return unregisterCounter.WithLabelValues(activityLabel(activity, outcome), outcome)
}

// RosterSize returns the participant gauge for activity; used by tests.
func RosterSize(activity string) prometheus.Gauge {
	return rosterGauge.WithLabelValues(activity)
}

// HTTPRequestCount returns the request counter for one label set; used by tests.
func HTTPRequestCount(method, route string, status int) prometheus.Counter {
	return httpRequests.WithLabelValues(method, route, strconv.Itoa(status))
}

func activityLabel(activity, outcome string) string {
	if _, ok := resolvedOutcomes[outcome]; ok {
		return activity
	}
	return UnknownActivity
}
