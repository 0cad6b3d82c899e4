package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stadium_booking"

var (
	once sync.Once

	slotDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slot_decisions_total",
			Help:      "Slot availability decisions by reason.",
		},
		[]string{"reason"},
	)

	bookingValidations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_validations_total",
			Help:      "Booking range validations by outcome reason.",
		},
		[]string{"reason"},
	)

	bookingTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_transitions_total",
			Help:      "Booking lifecycle transitions by resulting status.",
		},
		[]string{"status"},
	)

	slotRaces = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_slot_taken_concurrently_total",
			Help:      "Booking inserts rejected by the store constraint after passing validation.",
		},
	)

	notificationsFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_failures_total",
			Help:      "Notification deliveries that failed, by sink.",
		},
		[]string{"sink"},
	)

	httpRequests = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status code.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "code"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(slotDecisions, bookingValidations, bookingTransitions,
			slotRaces, notificationsFailed, httpRequests)
	})
}

// ObserveDecision counts one resolved slot.
func ObserveDecision(reason string) {
	slotDecisions.WithLabelValues(reason).Inc()
}

// ObserveValidation counts one range validation.
func ObserveValidation(reason string) {
	bookingValidations.WithLabelValues(reason).Inc()
}

// ObserveTransition counts a booking reaching a status.
func ObserveTransition(status string) {
	bookingTransitions.WithLabelValues(status).Inc()
}

// ObserveSlotRace counts a SlotTakenConcurrently rejection.
func ObserveSlotRace() {
	slotRaces.Inc()
}

// ObserveNotificationFailure counts a failed notification sink.
func ObserveNotificationFailure(sink string) {
	notificationsFailed.WithLabelValues(sink).Inc()
}

// Middleware records request latency per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the default registry for scraping.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
