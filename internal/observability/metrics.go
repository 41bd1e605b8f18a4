package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rehire_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// MessagesTotal counts direct-message lifecycle events.
	MessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rehire_messages_total",
		Help: "Direct message events by kind",
	}, []string{"event"})

	// ConversationEventsTotal counts per-user conversation state changes.
	ConversationEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rehire_conversation_events_total",
		Help: "Conversation state changes by kind",
	}, []string{"event"})

	// SendPartialFailures counts sends whose message was stored but whose
	// conversation bookkeeping failed.
	SendPartialFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rehire_message_send_partial_failures_total",
		Help: "Messages stored without conversation bookkeeping",
	})

	// SweeperRuns counts maintenance runs by outcome.
	SweeperRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rehire_sweeper_runs_total",
		Help: "Maintenance sweeper runs by outcome",
	}, []string{"outcome"})

	// SweeperReclaimed counts rows physically removed or repaired by the sweeper.
	SweeperReclaimed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rehire_sweeper_reclaimed_total",
		Help: "Rows reclaimed or repaired by the maintenance sweeper",
	}, []string{"kind"})

	// CacheLookups counts cache-aside lookups by result.
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rehire_cache_lookups_total",
		Help: "Cache-aside lookups by result",
	}, []string{"result"})
)

// Event labels for MessagesTotal and ConversationEventsTotal.
const (
	MessageSent           = "sent"
	MessageEdited         = "edited"
	MessageDeleted        = "deleted"
	MessageRead           = "read"
	ConversationOpened    = "opened"
	ConversationArchive   = "archived"
	ConversationUnarchive = "unarchived"
	ConversationDeleted   = "deleted"
)

// ObserveQuery records the latency of a database query.
func ObserveQuery(operation, table string, elapsed time.Duration) {
	if table == "" {
		table = "unknown"
	}
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(elapsed.Seconds())
}
