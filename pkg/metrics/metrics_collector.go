package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Webhook 处理结果标签
const (
	OutcomeCreated   = "created"
	OutcomeDuplicate = "duplicate"
	OutcomeIgnored   = "ignored"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
)

// MetricsCollector 指标收集器
type MetricsCollector struct {
	registry *prometheus.Registry

	// HTTP 指标
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// 业务指标
	webhookEventsTotal   *prometheus.CounterVec
	ordersCreatedTotal   *prometheus.CounterVec
	checkoutsTotal       *prometheus.CounterVec
	statusUpdatesTotal   *prometheus.CounterVec
	notificationsTotal   *prometheus.CounterVec
	uploadsTotal         *prometheus.CounterVec
	uploadBytesHistogram prometheus.Histogram
}

// NewMetricsCollector 创建指标收集器，使用独立的 Registry
func NewMetricsCollector() *MetricsCollector {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &MetricsCollector{
		registry: reg,

		httpRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		httpRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		webhookEventsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_webhook_events_total",
				Help: "Payment events received, by event type and outcome",
			},
			[]string{"event_type", "outcome"},
		),
		ordersCreatedTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orders_created_total",
				Help: "Orders materialized from confirmed payments",
			},
			[]string{"tier", "theme"},
		),
		checkoutsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "checkout_sessions_total",
				Help: "Checkout initiations by result",
			},
			[]string{"result"},
		),
		statusUpdatesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "order_status_updates_total",
				Help: "Staff status updates by new status",
			},
			[]string{"status"},
		),
		notificationsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notifications_total",
				Help: "Notifications sent, by kind and result",
			},
			[]string{"kind", "result"},
		),
		uploadsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "uploads_total",
				Help: "Image uploads by result",
			},
			[]string{"result"},
		),
		uploadBytesHistogram: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "upload_size_bytes",
				Help:    "Accepted upload sizes in bytes",
				Buckets: []float64{1 << 16, 1 << 18, 1 << 20, 1 << 22, 1 << 24, 25 << 20},
			},
		),
	}
}

// Registry exposes the collector's registry for the /metrics handler.
func (m *MetricsCollector) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest 记录 HTTP 请求
func (m *MetricsCollector) RecordHTTPRequest(method, endpoint string, status int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordWebhookEvent 记录支付回调处理结果
func (m *MetricsCollector) RecordWebhookEvent(eventType, outcome string) {
	if eventType == "" {
		eventType = "unknown"
	}
	m.webhookEventsTotal.WithLabelValues(eventType, outcome).Inc()
}

func (m *MetricsCollector) RecordOrderCreated(tier, theme string) {
	m.ordersCreatedTotal.WithLabelValues(tier, theme).Inc()
}

func (m *MetricsCollector) RecordCheckout(result string) {
	m.checkoutsTotal.WithLabelValues(result).Inc()
}

func (m *MetricsCollector) RecordStatusUpdate(status string) {
	m.statusUpdatesTotal.WithLabelValues(status).Inc()
}

func (m *MetricsCollector) RecordNotification(kind string, err error) {
	result := "sent"
	if err != nil {
		result = "failed"
	}
	m.notificationsTotal.WithLabelValues(kind, result).Inc()
}

func (m *MetricsCollector) RecordUpload(size int64, err error) {
	if err != nil {
		m.uploadsTotal.WithLabelValues("rejected").Inc()
		return
	}
	m.uploadsTotal.WithLabelValues("accepted").Inc()
	m.uploadBytesHistogram.Observe(float64(size))
}
