// Package events publishes an audit trail of container changes to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"mini-mc-server/internal/inventory"
	"mini-mc-server/internal/item"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// Event is one container notification as written to the audit topic.
type Event struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Player   string       `json:"player"`
	Window   string       `json:"window"`
	Title    string       `json:"title,omitempty"`
	Slots    []SlotChange `json:"slots,omitempty"`
	Property *int         `json:"property,omitempty"`
	Value    *int         `json:"value,omitempty"`
	Time     time.Time    `json:"time"`
}

type SlotChange struct {
	Slot  int    `json:"slot"`
	Item  string `json:"item,omitempty"`
	Count int    `json:"count"`
	Meta  int    `json:"meta,omitempty"`
}

func change(slot int, s *item.ItemStack) SlotChange {
	if s.IsEmpty() {
		return SlotChange{Slot: slot}
	}
	return SlotChange{Slot: slot, Item: s.Type.String(), Count: s.Count, Meta: s.Meta}
}

// MessageWriter is the part of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Observer is told about publish outcomes.
type Observer interface {
	AuditPublished(n int)
	AuditDropped()
	AuditFailed(n int)
}

type nopObserver struct{}

func (nopObserver) AuditPublished(int) {}
func (nopObserver) AuditDropped()      {}
func (nopObserver) AuditFailed(int)    {}

// NewKafkaWriter builds the writer for the audit topic.
func NewKafkaWriter(brokers []string, topic string, batchTimeout time.Duration) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: batchTimeout,
		RequiredAcks: kafka.RequireOne,
	}
}

// Publisher queues container events and writes them in batches from Run.
// Enqueueing never blocks: when the queue is full the event is dropped.
type Publisher struct {
	writer  MessageWriter
	breaker *gobreaker.CircuitBreaker
	queue   chan Event

	batchSize        int
	failureThreshold uint32
	breakerTimeout   time.Duration

	published *atomic.Int64
	dropped   *atomic.Int64
	failed    *atomic.Int64

	observer Observer
	logger   *zap.Logger
}

type Option func(*Publisher)

func WithQueueSize(n int) Option {
	return func(p *Publisher) {
		if n > 0 {
			p.queue = make(chan Event, n)
		}
	}
}

func WithBatchSize(n int) Option {
	return func(p *Publisher) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

// WithBreaker sets how many consecutive failures open the circuit and how
// long it stays open.
func WithBreaker(failures uint32, timeout time.Duration) Option {
	return func(p *Publisher) {
		p.failureThreshold = failures
		p.breakerTimeout = timeout
	}
}

func WithObserver(o Observer) Option {
	return func(p *Publisher) { p.observer = o }
}

func WithLogger(l *zap.Logger) Option {
	return func(p *Publisher) {
		if l != nil {
			p.logger = l
		}
	}
}

func NewPublisher(w MessageWriter, opts ...Option) *Publisher {
	p := &Publisher{
		writer:           w,
		queue:            make(chan Event, 1024),
		batchSize:        100,
		failureThreshold: 5,
		breakerTimeout:   30 * time.Second,
		published:        atomic.NewInt64(0),
		dropped:          atomic.NewInt64(0),
		failed:           atomic.NewInt64(0),
		observer:         nopObserver{},
		logger:           zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}

	threshold := p.failureThreshold
	p.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "audit-publisher",
		Timeout: p.breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			p.logger.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to))
		},
	})
	return p
}

// Publish queues e. It reports false when the queue is full.
func (p *Publisher) Publish(e Event) bool {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}
	select {
	case p.queue <- e:
		return true
	default:
		p.dropped.Inc()
		p.observer.AuditDropped()
		return false
	}
}

// Published, Dropped and Failed return event counts since start.
func (p *Publisher) Published() int64 { return p.published.Load() }
func (p *Publisher) Dropped() int64   { return p.dropped.Load() }
func (p *Publisher) Failed() int64    { return p.failed.Load() }

// State returns the circuit breaker state.
func (p *Publisher) State() gobreaker.State { return p.breaker.State() }

// Run writes queued events until ctx is done, then flushes what is left
// and closes the writer.
func (p *Publisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			p.flush(flushCtx)
			cancel()
			return p.writer.Close()
		case e := <-p.queue:
			batch := p.collect(e)
			p.write(ctx, batch)
		}
	}
}

func (p *Publisher) collect(first Event) []Event {
	batch := []Event{first}
	for len(batch) < p.batchSize {
		select {
		case e := <-p.queue:
			batch = append(batch, e)
		default:
			return batch
		}
	}
	return batch
}

func (p *Publisher) flush(ctx context.Context) {
	for {
		select {
		case e := <-p.queue:
			p.write(ctx, p.collect(e))
		default:
			return
		}
	}
}

func (p *Publisher) write(ctx context.Context, batch []Event) {
	msgs := make([]kafka.Message, 0, len(batch))
	for _, e := range batch {
		data, err := json.Marshal(e)
		if err != nil {
			p.logger.Error("marshal audit event", zap.Error(err))
			continue
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(e.Player),
			Value: data,
			Headers: []kafka.Header{
				{Key: "event-type", Value: []byte(e.Type)},
				{Key: "event-id", Value: []byte(e.ID)},
			},
			Time: e.Time,
		})
	}
	if len(msgs) == 0 {
		return
	}

	_, err := p.breaker.Execute(func() (interface{}, error) {
		return nil, p.writer.WriteMessages(ctx, msgs...)
	})
	if err != nil {
		p.failed.Add(int64(len(msgs)))
		p.observer.AuditFailed(len(msgs))
		p.logger.Warn("publish audit events",
			zap.Int("events", len(msgs)),
			zap.Error(fmt.Errorf("write %d messages: %w", len(msgs), err)))
		return
	}
	p.published.Add(int64(len(msgs)))
	p.observer.AuditPublished(len(msgs))
}

// ListenerFor returns a container listener that records events for player.
func (p *Publisher) ListenerFor(player string) inventory.Listener {
	return &playerListener{publisher: p, player: player}
}

type playerListener struct {
	publisher *Publisher
	player    string
}

func (l *playerListener) event(c *inventory.Container, kind string) Event {
	return Event{Type: kind, Player: l.player, Window: c.ID.String(), Title: c.Title}
}

func (l *playerListener) SendContainerContents(c *inventory.Container, items []*item.ItemStack) {
	e := l.event(c, inventory.DispatchContents)
	for i, s := range items {
		if !s.IsEmpty() {
			e.Slots = append(e.Slots, change(i, s))
		}
	}
	l.publisher.Publish(e)
}

func (l *playerListener) SendSlotUpdate(c *inventory.Container, slotIndex int, stack *item.ItemStack) {
	e := l.event(c, inventory.DispatchSlot)
	e.Slots = []SlotChange{change(slotIndex, stack)}
	l.publisher.Publish(e)
}

func (l *playerListener) SendBulkSlotUpdates(c *inventory.Container, slotIndexes []int, stacks []*item.ItemStack) {
	if err := inventory.CheckBulk(slotIndexes, stacks); err != nil {
		l.publisher.logger.Error("bulk event rejected", zap.Error(err))
		return
	}
	e := l.event(c, inventory.DispatchBulk)
	e.Slots = make([]SlotChange, len(slotIndexes))
	for i, idx := range slotIndexes {
		e.Slots[i] = change(idx, stacks[i])
	}
	l.publisher.Publish(e)
}

func (l *playerListener) SendWindowProperty(c *inventory.Container, propertyID, propertyValue int) {
	e := l.event(c, inventory.DispatchProperty)
	e.Property = &propertyID
	e.Value = &propertyValue
	l.publisher.Publish(e)
}
