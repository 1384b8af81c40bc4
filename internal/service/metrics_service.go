package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for transport, cache and scheduling events.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Histogram
	cacheWrite      prometheus.Histogram
	cacheLookups    *prometheus.CounterVec

	sessionsCreated   prometheus.Counter
	sessionsCancelled prometheus.Counter
	bookingsCascaded  prometheus.Counter
	bookingAttempts   *prometheus.CounterVec
	fanOutBookings    prometheus.Counter
	requestsSubmitted *prometheus.CounterVec
	requestsReviewed  *prometheus.CounterVec
	approvalOverlaps  *prometheus.CounterVec
	roomJoins         *prometheus.CounterVec
	roomDenials       *prometheus.CounterVec
	slotsSuggested    prometheus.Histogram
}

// NewMetricsService registers the collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	m := &MetricsService{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		cacheLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_latency_seconds",
			Help:    "Latency for cache lookups",
			Buckets: prometheus.DefBuckets,
		}),
		cacheWrite: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_write_seconds",
			Help:    "Latency for cache set operations",
			Buckets: prometheus.DefBuckets,
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Cache lookups by result",
		}, []string{"result"}),
		sessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scheduling_sessions_created_total",
			Help: "Sessions inserted into the registry",
		}),
		sessionsCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scheduling_sessions_cancelled_total",
			Help: "Sessions cancelled by their tutor",
		}),
		bookingsCascaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scheduling_bookings_cascade_cancelled_total",
			Help: "Bookings cancelled because their session was cancelled",
		}),
		bookingAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scheduling_booking_attempts_total",
			Help: "Direct booking attempts by outcome",
		}, []string{"outcome"}),
		fanOutBookings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scheduling_fanout_bookings_created_total",
			Help: "Bookings created by enrollment fan-out",
		}),
		requestsSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scheduling_requests_submitted_total",
			Help: "Tutor change requests submitted",
		}, []string{"kind"}),
		requestsReviewed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scheduling_requests_reviewed_total",
			Help: "Tutor change requests reviewed by admins",
		}, []string{"kind", "status"}),
		approvalOverlaps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scheduling_approved_overlaps_total",
			Help: "Approved requests that left the tutor with overlapping sessions",
		}, []string{"kind"}),
		roomJoins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "live_room_joins_total",
			Help: "Room tokens issued by participant role",
		}, []string{"role"}),
		roomDenials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "live_room_denials_total",
			Help: "Room join attempts refused by reason",
		}, []string{"reason"}),
		slotsSuggested: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "scheduling_slot_suggestions",
			Help:    "Number of slots returned per suggestion query",
			Buckets: []float64{0, 1, 5, 10, 25, 50},
		}),
	}

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(
		m.requestDuration, m.requestTotal, m.cacheLatency, m.cacheWrite, m.cacheLookups,
		m.sessionsCreated, m.sessionsCancelled, m.bookingsCascaded, m.bookingAttempts, m.fanOutBookings,
		m.requestsSubmitted, m.requestsReviewed, m.approvalOverlaps, m.roomJoins, m.roomDenials, m.slotsSuggested,
		goroutines,
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Registry exposes the underlying registry for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	return m.registry
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records a cache lookup and whether it hit.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// RecordSessionCreated counts a registry insert.
func (m *MetricsService) RecordSessionCreated() {
	if m == nil {
		return
	}
	m.sessionsCreated.Inc()
}

// RecordSessionCancelled counts a cancellation and the bookings it cascaded to.
func (m *MetricsService) RecordSessionCancelled(cascaded int64) {
	if m == nil {
		return
	}
	m.sessionsCancelled.Inc()
	m.bookingsCascaded.Add(float64(cascaded))
}

// RecordBookingAttempt counts a direct booking by outcome (confirmed, conflict, capacity, not_enrolled).
func (m *MetricsService) RecordBookingAttempt(outcome string) {
	if m == nil {
		return
	}
	m.bookingAttempts.WithLabelValues(outcome).Inc()
}

// RecordFanOut counts bookings created by fan-out.
func (m *MetricsService) RecordFanOut(created int64) {
	if m == nil {
		return
	}
	m.fanOutBookings.Add(float64(created))
}

// RecordRequestSubmitted counts a tutor request by kind.
func (m *MetricsService) RecordRequestSubmitted(kind string) {
	if m == nil {
		return
	}
	m.requestsSubmitted.WithLabelValues(kind).Inc()
}

// RecordRequestReviewed counts an admin decision.
func (m *MetricsService) RecordRequestReviewed(kind, status string) {
	if m == nil {
		return
	}
	m.requestsReviewed.WithLabelValues(kind, status).Inc()
}

// RecordApprovalOverlap counts an approval that produced overlapping sessions.
func (m *MetricsService) RecordApprovalOverlap(kind string) {
	if m == nil {
		return
	}
	m.approvalOverlaps.WithLabelValues(kind).Inc()
}

// RecordRoomJoin counts an issued room token.
func (m *MetricsService) RecordRoomJoin(role string) {
	if m == nil {
		return
	}
	m.roomJoins.WithLabelValues(role).Inc()
}

// RecordRoomDenied counts a refused join.
func (m *MetricsService) RecordRoomDenied(reason string) {
	if m == nil {
		return
	}
	m.roomDenials.WithLabelValues(reason).Inc()
}

// ObserveSlotSuggestions records how many slots a query returned.
func (m *MetricsService) ObserveSlotSuggestions(count int) {
	if m == nil {
		return
	}
	m.slotsSuggested.Observe(float64(count))
}
