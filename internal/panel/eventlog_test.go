package panel

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEventLog_BoundedMostRecentFirst(t *testing.T) {
	log := NewEventLog(DefaultEventLogCapacity)
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	for i := 1; i <= 12; i++ {
		log.Append(Event{Kind: EventInfo, Message: fmt.Sprintf("event %d", i), Timestamp: base.Add(time.Duration(i) * time.Second)})

		entries := log.Entries()
		assert.LessOrEqual(t, len(entries), 5)
		assert.Equal(t, fmt.Sprintf("event %d", i), entries[0].Message)
	}

	entries := log.Entries()
	assert.Equal(t, 5, log.Len())
	assert.Equal(t, 5, log.Cap())
	assert.Equal(t, "event 12", entries[0].Message)
	assert.Equal(t, "event 8", entries[4].Message)
}

func TestEventLog_PartiallyFilled(t *testing.T) {
	log := NewEventLog(5)
	log.Append(Event{Kind: EventWarning, Message: "first"})
	log.Append(Event{Kind: EventDanger, Message: "second"})

	entries := log.Entries()
	assert.Equal(t, 2, log.Len())
	assert.Equal(t, []string{"second", "first"}, []string{entries[0].Message, entries[1].Message})
}

func TestEventLog_MinimumCapacity(t *testing.T) {
	log := NewEventLog(0)
	log.Append(Event{Message: "a"})
	log.Append(Event{Message: "b"})

	assert.Equal(t, 1, log.Cap())
	assert.Equal(t, "b", log.Entries()[0].Message)
}
