package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "account_manager"

// Metrics holds all Prometheus metrics for the bot
type Metrics struct {
	// Command surface
	CommandsTotal *prometheus.CounterVec
	CommandErrors *prometheus.CounterVec

	// Dialogs
	DialogsStarted  *prometheus.CounterVec
	DialogsFinished *prometheus.CounterVec
	DialogsGauge    prometheus.Gauge

	// Bulk tasks
	TasksTotal       *prometheus.CounterVec
	TaskActions      *prometheus.CounterVec
	TasksGauge       prometheus.Gauge
	FloodWaitsTotal  prometheus.Counter
	FloodWaitSeconds prometheus.Histogram

	// Accounts
	TotalAccounts  prometheus.Gauge
	ActiveAccounts prometheus.Gauge
	FrozenAccounts prometheus.Gauge

	// Channel log relay
	KafkaMessagesProduced prometheus.Counter
	KafkaProduceErrors    *prometheus.CounterVec
	ChannelLogsDelivered  *prometheus.CounterVec
}

var (
	// DefaultMetrics is the default metrics instance
	DefaultMetrics *Metrics
	once           sync.Once
)

// GetDefaultMetrics returns the singleton metrics instance
func GetDefaultMetrics() *Metrics {
	once.Do(func() {
		DefaultMetrics = NewMetrics()
	})
	return DefaultMetrics
}

func init() {
	GetDefaultMetrics()
}

// NewMetrics registers every collector with the default registry
func NewMetrics() *Metrics {
	return &Metrics{
		CommandsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Bot commands and callbacks handled",
		}, []string{"command"}),
		CommandErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "command_errors_total",
			Help:      "Bot commands that ended with an error reply",
		}, []string{"command", "error_type"}),

		DialogsStarted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dialogs_started_total",
			Help:      "Dialogs started by kind",
		}, []string{"kind"}),
		DialogsFinished: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dialogs_finished_total",
			Help:      "Dialogs ended by kind and outcome",
		}, []string{"kind", "outcome"}),
		DialogsGauge: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_dialogs",
			Help:      "Dialogs currently open",
		}),

		TasksTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bulk_tasks_total",
			Help:      "Bulk tasks by kind and state",
		}, []string{"kind", "state"}),
		TaskActions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bulk_actions_total",
			Help:      "Bulk task invocations by kind and outcome",
		}, []string{"kind", "outcome"}),
		TasksGauge: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_bulk_tasks",
			Help:      "Bulk tasks currently registered",
		}),
		FloodWaitsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flood_waits_total",
			Help:      "Rate limit responses from the remote API",
		}),
		FloodWaitSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "flood_wait_seconds",
			Help:      "Mandated waits of rate limit responses",
			Buckets:   []float64{1, 5, 10, 30, 60, 300, 900, 3600},
		}),

		TotalAccounts: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "accounts_total",
			Help:      "Registered non-deleted accounts",
		}),
		ActiveAccounts: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "accounts_active",
			Help:      "Active accounts",
		}),
		FrozenAccounts: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "accounts_frozen",
			Help:      "Frozen accounts",
		}),

		KafkaMessagesProduced: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_messages_produced_total",
			Help:      "Channel log events produced to Kafka",
		}),
		KafkaProduceErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_produce_errors_total",
			Help:      "Kafka produce errors",
		}, []string{"error_type"}),
		ChannelLogsDelivered: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "channel_logs_total",
			Help:      "Log channel deliveries by kind and result",
		}, []string{"kind", "result"}),
	}
}

func label(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}

// RecordCommand counts a handled command or callback
func (m *Metrics) RecordCommand(command string) {
	m.CommandsTotal.WithLabelValues(label(command)).Inc()
}

// RecordCommandError counts a failed command by error class
func (m *Metrics) RecordCommandError(command, errorType string) {
	m.CommandErrors.WithLabelValues(label(command), label(errorType)).Inc()
}

func (m *Metrics) DialogStarted(kind string) {
	m.DialogsStarted.WithLabelValues(label(kind)).Inc()
}

func (m *Metrics) DialogFinished(kind, outcome string) {
	m.DialogsFinished.WithLabelValues(label(kind), label(outcome)).Inc()
}

func (m *Metrics) ActiveDialogs(n int) {
	m.DialogsGauge.Set(float64(n))
}

func (m *Metrics) TaskStarted(kind string) {
	m.TasksTotal.WithLabelValues(label(kind), "started").Inc()
}

func (m *Metrics) TaskFinished(kind, state string) {
	m.TasksTotal.WithLabelValues(label(kind), label(state)).Inc()
}

func (m *Metrics) ActionCompleted(kind, outcome string) {
	m.TaskActions.WithLabelValues(label(kind), label(outcome)).Inc()
}

func (m *Metrics) FloodWait(wait time.Duration) {
	m.FloodWaitsTotal.Inc()
	if wait > 0 {
		m.FloodWaitSeconds.Observe(wait.Seconds())
	}
}

func (m *Metrics) ActiveTasks(n int) {
	m.TasksGauge.Set(float64(n))
}

// AccountsSnapshot updates account gauges
func (m *Metrics) AccountsSnapshot(total, active, frozen int64) {
	m.TotalAccounts.Set(float64(total))
	m.ActiveAccounts.Set(float64(active))
	m.FrozenAccounts.Set(float64(frozen))
}

// RecordKafkaMessage records a produced message
func (m *Metrics) RecordKafkaMessage() {
	m.KafkaMessagesProduced.Inc()
}

// RecordKafkaError records a Kafka production error with error type
func (m *Metrics) RecordKafkaError(errorType string) {
	m.KafkaProduceErrors.WithLabelValues(label(errorType)).Inc()
}

// RecordChannelLog records a log channel delivery attempt
func (m *Metrics) RecordChannelLog(kind string, ok bool) {
	result := "delivered"
	if !ok {
		result = "failed"
	}
	m.ChannelLogsDelivered.WithLabelValues(label(kind), result).Inc()
}
