package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"mini-mc-server/internal/inventory"
	"mini-mc-server/internal/item"

	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	calls  int
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls++
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	return nil
}

func (w *fakeWriter) messages() []kafka.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]kafka.Message(nil), w.msgs...)
}

func decode(t *testing.T, m kafka.Message) Event {
	t.Helper()
	var e Event
	require.NoError(t, json.Unmarshal(m.Value, &e))
	return e
}

func TestListenerPublishesContainerEvents(t *testing.T) {
	w := &fakeWriter{}
	p := NewPublisher(w)

	store := inventory.NewBasic(2)
	c := inventory.NewContainer(inventory.WithTitle("Chest"))
	c.AddSlot(inventory.NewSlot(store, 0, 0, 0))
	c.AddSlot(inventory.NewSlot(store, 1, 18, 0))
	require.NoError(t, c.AddListener(p.ListenerFor("steve")))

	stone := item.NewItemStack(item.Stone, 4)
	require.NoError(t, c.SetSlotContents(1, &stone))
	require.NoError(t, c.SetWindowProperty(0, 7))
	require.NoError(t, c.BroadcastFullState())

	// unpaired bulk updates are not published
	bulk, ok := p.ListenerFor("steve").(inventory.BulkListener)
	require.True(t, ok)
	bulk.SendBulkSlotUpdates(c, []int{0, 1}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, p.Run(ctx))
	assert.True(t, w.closed)

	msgs := w.messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, []byte("steve"), msgs[0].Key)

	slot := decode(t, msgs[0])
	assert.Equal(t, inventory.DispatchSlot, slot.Type)
	assert.Equal(t, c.ID.String(), slot.Window)
	assert.Equal(t, []SlotChange{{Slot: 1, Item: "stone", Count: 4}}, slot.Slots)
	assert.NotEmpty(t, slot.ID)

	prop := decode(t, msgs[1])
	require.NotNil(t, prop.Value)
	assert.Equal(t, 7, *prop.Value)

	contents := decode(t, msgs[2])
	assert.Equal(t, inventory.DispatchContents, contents.Type)
	assert.Len(t, contents.Slots, 1)
	assert.Equal(t, int64(3), p.Published())
}

func TestFullQueueDrops(t *testing.T) {
	p := NewPublisher(&fakeWriter{}, WithQueueSize(1))
	assert.True(t, p.Publish(Event{Type: "slot"}))
	assert.False(t, p.Publish(Event{Type: "slot"}))
	assert.Equal(t, int64(1), p.Dropped())
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := NewPublisher(w, WithBatchSize(1), WithBreaker(2, time.Minute))

	for i := 0; i < 4; i++ {
		p.write(context.Background(), []Event{{Type: "slot", Player: "steve"}})
	}
	assert.Equal(t, gobreaker.StateOpen, p.State())
	assert.Equal(t, 2, w.calls)
	assert.Equal(t, int64(4), p.Failed())
	assert.Zero(t, p.Published())
}

func TestRunBatches(t *testing.T) {
	w := &fakeWriter{}
	p := NewPublisher(w, WithBatchSize(2))
	for i := 0; i < 5; i++ {
		require.True(t, p.Publish(Event{Type: "slot", Player: "alex"}))
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	assert.Eventually(t, func() bool { return len(w.messages()) == 5 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, 3, w.calls)
}
