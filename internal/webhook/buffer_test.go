package webhook

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffer_AppendAssignsSequence(t *testing.T) {
	b := NewBuffer(10)

	first := b.Append("message.received", json.RawMessage(`{}`))
	second := b.Append("call.answered", json.RawMessage(`{}`))

	assert.Equal(t, uint64(1), first.Sequence)
	assert.Equal(t, uint64(2), second.Sequence)
	assert.Equal(t, 2, b.Len())
	assert.Equal(t, uint64(2), b.Total())
}

func TestBuffer_EvictsOldest(t *testing.T) {
	const capacity = 5
	b := NewBuffer(capacity)

	// Append N+C events; only the C most recent survive.
	for i := 0; i < capacity+7; i++ {
		b.Append(fmt.Sprintf("event.%d", i), json.RawMessage(`{}`))
	}

	events := b.Events()
	require.Len(t, events, capacity)
	assert.Equal(t, uint64(capacity+7), b.Total())

	// Ascending sequence order, ending at the newest.
	for i, ev := range events {
		assert.Equal(t, uint64(8+i), ev.Sequence)
	}
	assert.Equal(t, "event.7", events[0].EventType)
	assert.Equal(t, "event.11", events[capacity-1].EventType)
}

func TestBuffer_EventsDoesNotDrain(t *testing.T) {
	b := NewBuffer(3)
	b.Append("a", nil)
	b.Append("b", nil)

	assert.Len(t, b.Events(), 2)
	assert.Len(t, b.Events(), 2)
	assert.Equal(t, 2, b.Len())
}

func TestBuffer_CapacityFloor(t *testing.T) {
	b := NewBuffer(0)
	assert.Equal(t, 1, b.Capacity())
	b.Append("a", nil)
	b.Append("b", nil)
	events := b.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "b", events[0].EventType)
}

func TestBuffer_ConcurrentAppends(t *testing.T) {
	const (
		workers = 8
		each    = 50
	)
	b := NewBuffer(20)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < each; i++ {
				b.Append("concurrent", json.RawMessage(`{}`))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(workers*each), b.Total())
	events := b.Events()
	require.Len(t, events, 20)
	for i := 1; i < len(events); i++ {
		assert.Greater(t, events[i].Sequence, events[i-1].Sequence)
	}
}
