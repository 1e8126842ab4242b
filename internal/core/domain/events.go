package domain

import (
	"fmt"
	"time"
)

// EventType defines the type of real-time event.
type EventType string

const (
	EventPoolUpdated EventType = "POOL_UPDATED"
	EventLog         EventType = "LOG"
)

// Topics used for routing events to subscribed clients.
const (
	TopicTicketPool = "ticketpool"
	TopicLogs       = "logs"
)

// LogTimeLayout is the timestamp layout used in human-readable log lines.
const LogTimeLayout = "2006-01-02 15:04:05"

// Event is the payload sent over WebSocket and other notification sinks.
type Event struct {
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload"`
	Topic   string      `json:"topic"` // Used for routing to topic "rooms"
}

// NewPoolUpdatedEvent wraps a pool snapshot for the ticketpool topic.
func NewPoolUpdatedEvent(tickets []TicketSnapshot) Event {
	return Event{
		Type:    EventPoolUpdated,
		Payload: tickets,
		Topic:   TopicTicketPool,
	}
}

// NewLogEvent builds a timestamped log line for the logs topic.
func NewLogEvent(at time.Time, message string) Event {
	return Event{
		Type:    EventLog,
		Payload: FormatLogLine(at, message),
		Topic:   TopicLogs,
	}
}

// FormatLogLine renders "[2006-01-02 15:04:05] message".
func FormatLogLine(at time.Time, message string) string {
	return fmt.Sprintf("[%s] %s", at.Format(LogTimeLayout), message)
}
