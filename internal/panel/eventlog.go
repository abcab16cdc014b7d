package panel

import "time"

// EventKind is the severity shown next to an event log entry.
type EventKind string

const (
	EventInfo    EventKind = "info"
	EventSuccess EventKind = "success"
	EventWarning EventKind = "warning"
	EventDanger  EventKind = "danger"
)

// Event is one entry of the dashboard event log.
type Event struct {
	Kind      EventKind `json:"kind"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// EventLog keeps the most recent events in a fixed-size ring. It is not safe for concurrent use.
type EventLog struct {
	buf  []Event
	head int // next write position
	size int
}

// NewEventLog returns a log that holds at most capacity entries.
func NewEventLog(capacity int) *EventLog {
	if capacity < 1 {
		capacity = 1
	}
	return &EventLog{buf: make([]Event, capacity)}
}

// Append records e, evicting the oldest entry once the log is full.
func (l *EventLog) Append(e Event) {
	l.buf[l.head] = e
	l.head = (l.head + 1) % len(l.buf)
	if l.size < len(l.buf) {
		l.size++
	}
}

// Entries returns the retained events, most recent first.
func (l *EventLog) Entries() []Event {
	out := make([]Event, 0, l.size)
	for i := 0; i < l.size; i++ {
		idx := (l.head - 1 - i + len(l.buf)) % len(l.buf)
		out = append(out, l.buf[idx])
	}
	return out
}

// Len returns the number of retained events.
func (l *EventLog) Len() int {
	return l.size
}

// Cap returns the maximum number of retained events.
func (l *EventLog) Cap() int {
	return len(l.buf)
}
