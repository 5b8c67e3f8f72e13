package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	CallLogQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calllog_queries_total",
			Help: "Total number of call log queries by outcome (count)",
		},
		[]string{"status"},
	)

	CallLogQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "calllog_query_duration_ms",
			Help:    "Call log query duration in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
		[]string{"status"},
	)

	CallLogRecordsScannedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calllog_records_scanned_total",
			Help: "Total number of raw call records read from the source (count)",
		},
		[]string{"source"},
	)

	CallLogRecordsReturned = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "calllog_records_returned",
			Help:    "Number of call records returned per query (count)",
			Buckets: []float64{0, 1, 10, 50, 100, 500, 1000, 5000, 10000},
		},
	)

	CallLogPassStopsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calllog_pass_stops_total",
			Help: "Total number of filter passes by stop reason (count)",
		},
		[]string{"reason"},
	)

	SourceOpensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calllog_source_opens_total",
			Help: "Total number of record source opens (count)",
		},
		[]string{"source", "status"},
	)

	SourceOpenDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "calllog_source_open_duration_ms",
			Help:    "Duration of opening a record source in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
		[]string{"source"},
	)

	DLQMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dlq_messages_total",
			Help: "Total number of messages sent to DLQ (count)",
		},
		[]string{"service", "topic", "reason"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open) (state code)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker (count)",
		},
		[]string{"name", "state"},
	)

	CircuitBreakerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total number of failures through circuit breaker (count)",
		},
		[]string{"name"},
	)

	RateLimitRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_requests_total",
			Help: "Total number of requests checked by the rate limiter (count)",
		},
		[]string{"status"},
	)

	KafkaMessagesReadTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_read_total",
			Help: "Total number of messages read from Kafka (count)",
		},
		[]string{"service", "topic"},
	)

	KafkaMessagesWrittenTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_written_total",
			Help: "Total number of messages written to Kafka (count)",
		},
		[]string{"service", "topic"},
	)

	KafkaMessageSizeBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kafka_message_size_bytes",
			Help:    "Size of Kafka messages in bytes",
			Buckets: []float64{100, 500, 1000, 5000, 10000, 50000, 100000, 500000, 1000000},
		},
		[]string{"service", "topic", "direction"},
	)

	KafkaWriteDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kafka_write_duration_ms",
			Help:    "Duration of writing messages to Kafka in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"service", "topic"},
	)
)

func RegisterCallLogMetrics() {
	prometheus.MustRegister(CallLogQueriesTotal)
	prometheus.MustRegister(CallLogQueryDuration)
	prometheus.MustRegister(CallLogRecordsScannedTotal)
	prometheus.MustRegister(CallLogRecordsReturned)
	prometheus.MustRegister(CallLogPassStopsTotal)
	prometheus.MustRegister(SourceOpensTotal)
	prometheus.MustRegister(SourceOpenDuration)
}

func RegisterBrokerMetrics() {
	prometheus.MustRegister(DLQMessagesTotal)
	prometheus.MustRegister(KafkaMessagesReadTotal)
	prometheus.MustRegister(KafkaMessagesWrittenTotal)
	prometheus.MustRegister(KafkaMessageSizeBytes)
	prometheus.MustRegister(KafkaWriteDuration)
}

func RegisterCircuitBreakerMetrics() {
	prometheus.MustRegister(CircuitBreakerState)
	prometheus.MustRegister(CircuitBreakerRequests)
	prometheus.MustRegister(CircuitBreakerFailures)
}

func RegisterAPIMetrics() {
	prometheus.MustRegister(RateLimitRequestsTotal)
}

func ObserveQuery(duration time.Duration, status string) {
	CallLogQueriesTotal.WithLabelValues(status).Inc()
	CallLogQueryDuration.WithLabelValues(status).Observe(float64(duration.Milliseconds()))
}

func ObservePass(source string, scanned, returned int, stopReason string) {
	CallLogRecordsScannedTotal.WithLabelValues(source).Add(float64(scanned))
	CallLogRecordsReturned.Observe(float64(returned))
	CallLogPassStopsTotal.WithLabelValues(stopReason).Inc()
}

func ObserveSourceOpen(source, status string, duration time.Duration) {
	SourceOpensTotal.WithLabelValues(source, status).Inc()
	SourceOpenDuration.WithLabelValues(source).Observe(float64(duration.Milliseconds()))
}

func IncKafkaMessagesRead(service, topic string) {
	KafkaMessagesReadTotal.WithLabelValues(service, topic).Inc()
}

func IncKafkaMessagesWritten(service, topic string) {
	KafkaMessagesWrittenTotal.WithLabelValues(service, topic).Inc()
}

func ObserveKafkaMessageSize(service, topic, direction string, sizeBytes int) {
	KafkaMessageSizeBytes.WithLabelValues(service, topic, direction).Observe(float64(sizeBytes))
}

func ObserveKafkaWriteDuration(service, topic string, duration time.Duration) {
	KafkaWriteDuration.WithLabelValues(service, topic).Observe(float64(duration.Milliseconds()))
}
