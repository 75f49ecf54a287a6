package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "train_station_"

	resultSuccess  = "success"
	resultError    = "error"
	resultConflict = "conflict"
	resultInvalid  = "invalid"
)

var (
	registerOnce sync.Once

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec

	orderCreateTotal   *prometheus.CounterVec
	orderCreateLatency *prometheus.HistogramVec
	ticketsBooked      prometheus.Counter

	availabilityQueries *prometheus.CounterVec
	availabilityLatency prometheus.Histogram

	exportTotal *prometheus.CounterVec
)

// Init registers service metrics and DB-backed gauges.
func Init(counts CountSource) {
	registerOnce.Do(func() {
		httpRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "Total HTTP requests by method and status",
			},
			[]string{"method", "status"},
		)
		httpLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "http_latency_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		)

		orderCreateTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "order_create_total",
				Help: "Total order creation attempts by result",
			},
			[]string{"result"},
		)
		orderCreateLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "order_create_latency_seconds",
				Help:    "Order creation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		ticketsBooked = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "tickets_booked_total",
				Help: "Total tickets persisted through orders",
			},
		)

		availabilityQueries = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "availability_queries_total",
				Help: "Total journey availability computations by result",
			},
			[]string{"result"},
		)
		availabilityLatency = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "availability_latency_seconds",
				Help:    "Journey availability query latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total document exports by format and result",
			},
			[]string{"format", "result"},
		)

		prometheus.MustRegister(
			httpRequests,
			httpLatency,
			orderCreateTotal,
			orderCreateLatency,
			ticketsBooked,
			availabilityQueries,
			availabilityLatency,
			exportTotal,
		)

		if counts != nil {
			registerCountGauges(counts)
		}
	})
}

// ObserveHTTP records a served request.
func ObserveHTTP(method string, status int, duration time.Duration) {
	if httpRequests != nil {
		httpRequests.WithLabelValues(method, statusClass(status)).Inc()
	}
	if httpLatency != nil {
		httpLatency.WithLabelValues(method).Observe(duration.Seconds())
	}
}

// ObserveOrderCreate records an order creation attempt.
func ObserveOrderCreate(result string, tickets int, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if orderCreateTotal != nil {
		orderCreateTotal.WithLabelValues(result).Inc()
	}
	if orderCreateLatency != nil {
		orderCreateLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
	if result == resultSuccess && ticketsBooked != nil && tickets > 0 {
		ticketsBooked.Add(float64(tickets))
	}
}

// ObserveAvailability records an availability computation.
func ObserveAvailability(err error, duration time.Duration) {
	result := resultSuccess
	if err != nil {
		result = resultError
	}
	if availabilityQueries != nil {
		availabilityQueries.WithLabelValues(result).Inc()
	}
	if availabilityLatency != nil {
		availabilityLatency.Observe(duration.Seconds())
	}
}

// ObserveExport records a manifest or receipt export.
func ObserveExport(format string, err error) {
	if exportTotal == nil {
		return
	}
	result := resultSuccess
	if err != nil {
		result = resultError
	}
	exportTotal.WithLabelValues(format, result).Inc()
}

// ResultConflict names the double-booking outcome for ObserveOrderCreate.
func ResultConflict() string { return resultConflict }

// ResultInvalid names the validation-failure outcome for ObserveOrderCreate.
func ResultInvalid() string { return resultInvalid }

// ResultError names the storage-failure outcome for ObserveOrderCreate.
func ResultError() string { return resultError }

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
