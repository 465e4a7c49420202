package ws

import (
	"encoding/json"
	"sync"
	"time"

	"mini-mc-server/internal/chatfmt"
	"mini-mc-server/internal/inventory"
	"mini-mc-server/internal/item"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Observer is told about queued frames and dropped clients.
type Observer interface {
	FrameQueued(kind string)
	ClientDropped()
}

type nopObserver struct{}

func (nopObserver) FrameQueued(string) {}
func (nopObserver) ClientDropped()     {}

// Client is one websocket connection. It is a container listener: every
// notification is encoded and queued without blocking, and a single writer
// goroutine drains the queue. A client that falls a full queue behind is
// disconnected.
type Client struct {
	conn         *websocket.Conn
	send         chan []byte
	done         chan struct{}
	closeOnce    sync.Once
	writeTimeout time.Duration

	observer Observer
	logger   *zap.Logger
}

func newClient(conn *websocket.Conn, queueSize int, writeTimeout time.Duration, observer Observer, logger *zap.Logger) *Client {
	if observer == nil {
		observer = nopObserver{}
	}
	return &Client{
		conn:         conn,
		send:         make(chan []byte, queueSize),
		done:         make(chan struct{}),
		writeTimeout: writeTimeout,
		observer:     observer,
		logger:       logger,
	}
}

func (c *Client) SendContainerContents(w *inventory.Container, items []*item.ItemStack) {
	stacks := make([]*Stack, len(items))
	for i, s := range items {
		stacks[i] = toStack(s)
	}
	c.enqueue(ServerMessage{Type: TypeContents, Window: w.ID.String(), Title: w.Title, Items: stacks})
}

func (c *Client) SendSlotUpdate(w *inventory.Container, slotIndex int, stack *item.ItemStack) {
	c.enqueue(ServerMessage{Type: TypeSlot, Window: w.ID.String(), Slot: intPtr(slotIndex), Stack: toStack(stack)})
}

// SendBulkSlotUpdates coalesces a batch into one frame.
func (c *Client) SendBulkSlotUpdates(w *inventory.Container, slotIndexes []int, stacks []*item.ItemStack) {
	if err := inventory.CheckBulk(slotIndexes, stacks); err != nil {
		c.logger.Error("bulk frame rejected", zap.Error(err))
		return
	}
	slots := make([]SlotStack, len(slotIndexes))
	for i, idx := range slotIndexes {
		slots[i] = SlotStack{Slot: idx, Stack: toStack(stacks[i])}
	}
	c.enqueue(ServerMessage{Type: TypeSlots, Window: w.ID.String(), Slots: slots})
}

func (c *Client) SendWindowProperty(w *inventory.Container, propertyID, propertyValue int) {
	c.enqueue(ServerMessage{Type: TypeProperty, Window: w.ID.String(), Property: intPtr(propertyID), Value: intPtr(propertyValue)})
}

// SendMessage queues a chat line.
func (c *Client) SendMessage(text string) {
	c.enqueue(ServerMessage{Type: TypeChat, Text: text, Plain: chatfmt.Strip(text)})
}

func (c *Client) sendError(err error) {
	c.enqueue(ServerMessage{Type: TypeError, Error: err.Error()})
}

func (c *Client) enqueue(msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error("marshal frame", zap.String("type", msg.Type), zap.Error(err))
		return
	}
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.send <- data:
		c.observer.FrameQueued(msg.Type)
	default:
		c.logger.Warn("send queue full, dropping client", zap.Int("queue", cap(c.send)))
		c.observer.ClientDropped()
		c.Close()
	}
}

// Done is closed once the client is closed.
func (c *Client) Done() <-chan struct{} { return c.done }

// Close stops the writer and closes the connection. It is idempotent.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.conn != nil {
			c.conn.Close()
		}
	})
}

func (c *Client) writePump() {
	defer c.Close()
	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
				c.logger.Debug("set write deadline failed", zap.Error(err))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Debug("write failed", zap.Error(err))
				return
			}
		}
	}
}
