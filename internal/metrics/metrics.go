package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "stagepass"

const (
	OutcomePurchased = "purchased"
	OutcomeSoldOut   = "sold_out"
	OutcomeValidated = "validated"
	OutcomeRejected  = "rejected"
	OutcomeConflict  = "conflict"
	OutcomeError     = "error"
)

var (
	ticketPurchases = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticket_purchases_total",
			Help:      "Ticket purchase attempts by outcome",
		},
		[]string{"outcome"},
	)

	ticketValidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticket_validations_total",
			Help:      "Ticket validation attempts by method and outcome",
		},
		[]string{"method", "outcome"},
	)

	lockWait = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "critical_section_duration_seconds",
			Help:      "Time spent inside a locking transaction",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		},
		[]string{"operation"},
	)

	httpRequests = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

func ObservePurchase(outcome string) {
	ticketPurchases.WithLabelValues(outcome).Inc()
}

func ObserveValidation(method, outcome string) {
	ticketValidations.WithLabelValues(method, outcome).Inc()
}

// ObserveCriticalSection records how long a locking transaction took. Use it
// as `defer metrics.ObserveCriticalSection("purchase", time.Now())`.
func ObserveCriticalSection(operation string, start time.Time) {
	lockWait.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// Middleware records request latency labelled with the matched route pattern
// so path parameters do not explode cardinality.
func Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.
			WithLabelValues(ctx.Request.Method, route, strconv.Itoa(ctx.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
