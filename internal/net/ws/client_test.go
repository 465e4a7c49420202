package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mini-mc-server/internal/inventory"
	"mini-mc-server/internal/item"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type countingObserver struct {
	queued  map[string]int
	dropped int
}

func (o *countingObserver) FrameQueued(kind string) { o.queued[kind]++ }
func (o *countingObserver) ClientDropped()          { o.dropped++ }

func TestClientBulkFrame(t *testing.T) {
	obs := &countingObserver{queued: map[string]int{}}
	c := newClient(nil, 4, 0, obs, zap.NewNop())
	w := inventory.NewContainer(inventory.WithTitle("test"))

	stone := item.NewItemStack(item.Stone, 3)
	c.SendBulkSlotUpdates(w, []int{1, 4}, []*item.ItemStack{&stone, nil})

	var msg ServerMessage
	require.NoError(t, json.Unmarshal(<-c.send, &msg))
	assert.Equal(t, TypeSlots, msg.Type)
	assert.Equal(t, []SlotStack{{Slot: 1, Stack: &Stack{Item: "stone", Count: 3}}, {Slot: 4}}, msg.Slots)
	assert.Equal(t, 1, obs.queued[TypeSlots])
}

func TestClientRejectsMismatchedBulk(t *testing.T) {
	obs := &countingObserver{queued: map[string]int{}}
	c := newClient(nil, 4, 0, obs, zap.NewNop())
	w := inventory.NewContainer()

	assert.NotPanics(t, func() {
		c.SendBulkSlotUpdates(w, []int{1, 4}, nil)
	})
	assert.Empty(t, c.send)
	assert.Zero(t, obs.queued[TypeSlots])
}

func TestSlowClientIsDropped(t *testing.T) {
	obs := &countingObserver{queued: map[string]int{}}
	c := newClient(nil, 1, 0, obs, zap.NewNop())
	w := inventory.NewContainer()

	c.SendWindowProperty(w, 0, 10)
	c.SendWindowProperty(w, 0, 9)
	assert.Equal(t, 1, obs.dropped)

	select {
	case <-c.Done():
	default:
		t.Fatal("client not closed")
	}

	// closed clients ignore further frames
	c.SendMessage("§chello")
	assert.Equal(t, 1, obs.queued[TypeProperty])
	assert.Zero(t, obs.queued[TypeChat])
}

func TestWritePumpLogsWriteErrors(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.ReadMessage()
	}))
	defer srv.Close()

	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.NoError(t, conn.UnderlyingConn().Close())

	core, logs := observer.New(zap.DebugLevel)
	c := newClient(conn, 1, time.Second, nil, zap.New(core))
	c.SendWindowProperty(inventory.NewContainer(), 0, 1)

	done := make(chan struct{})
	go func() {
		c.writePump()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("write pump did not stop")
	}

	entries := logs.FilterLevelExact(zap.DebugLevel).All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Message, "failed")
	assert.NotNil(t, entries[0].ContextMap()["error"])
}
