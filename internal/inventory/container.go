package inventory

import (
	"fmt"
	"time"

	"mini-mc-server/internal/item"

	"github.com/google/uuid"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// Dispatch kinds reported to a DispatchObserver.
const (
	DispatchContents = "contents"
	DispatchSlot     = "slot"
	DispatchBulk     = "bulk"
	DispatchProperty = "property"
)

// DispatchObserver is told about every completed fan-out.
type DispatchObserver interface {
	ObserveDispatch(kind string, listeners int, elapsed time.Duration)
}

// Container manages a collection of slots and pushes every observable change
// to its listeners. It is the logical side of an inventory interface (e.g.
// Player Inventory, Chest, Brewing Stand).
//
// A container has a single writer: all mutating calls must come from one
// goroutine at a time (see session.Session.Do). Listener registration may
// happen from anywhere.
type Container struct {
	ID    uuid.UUID
	Title string
	Slots []*Slot

	// PlayerSlotsStart is the index where the player's own inventory section
	// begins, or 0 when the container has no player section.
	PlayerSlotsStart int

	listeners  listenerRegistry
	properties map[int]int
	lastSent   []*item.ItemStack
	closed     *atomic.Bool

	logger   *zap.Logger
	observer DispatchObserver
}

// Option configures a Container.
type Option func(*Container)

// WithID sets the window id instead of generating one.
func WithID(id uuid.UUID) Option {
	return func(c *Container) { c.ID = id }
}

// WithTitle sets the display title.
func WithTitle(title string) Option {
	return func(c *Container) { c.Title = title }
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *Container) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver reports dispatch timings to o.
func WithObserver(o DispatchObserver) Option {
	return func(c *Container) { c.observer = o }
}

// NewContainer create a new container
func NewContainer(opts ...Option) *Container {
	c := &Container{
		ID:         uuid.New(),
		Slots:      make([]*Slot, 0),
		properties: make(map[int]int),
		closed:     atomic.NewBool(false),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(zap.String("window", c.ID.String()))
	return c
}

// AddSlot appends s and assigns its index. Slots are only added while the
// container is being built.
func (c *Container) AddSlot(s *Slot) *Slot {
	s.Index = len(c.Slots)
	c.Slots = append(c.Slots, s)
	c.lastSent = append(c.lastSent, s.GetStack().Copy())
	return s
}

// GetSlot returns the slot at index, or nil when out of range.
func (c *Container) GetSlot(index int) *Slot {
	if index >= 0 && index < len(c.Slots) {
		return c.Slots[index]
	}
	return nil
}

func (c *Container) slotAt(index int) (*Slot, error) {
	if index < 0 || index >= len(c.Slots) {
		return nil, &IndexError{Index: index, Size: len(c.Slots)}
	}
	return c.Slots[index], nil
}

func (c *Container) checkOpen() error {
	if c.closed.Load() {
		return ErrContainerClosed
	}
	return nil
}

// Size returns the number of slots.
func (c *Container) Size() int { return len(c.Slots) }

// Closed reports whether Close has been called.
func (c *Container) Closed() bool { return c.closed.Load() }

// AddListener registers l. Nothing is sent until the next broadcast.
func (c *Container) AddListener(l Listener) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	if !c.listeners.add(l) {
		return ErrListenerRegistered
	}
	c.logger.Debug("listener added", zap.Int("listeners", c.listeners.count()))
	return nil
}

// RemoveListener unregisters l; it is a no-op if l is not registered.
func (c *Container) RemoveListener(l Listener) {
	if c.listeners.remove(l) {
		c.logger.Debug("listener removed", zap.Int("listeners", c.listeners.count()))
	}
}

// HasListener reports whether l is registered.
func (c *Container) HasListener(l Listener) bool {
	return c.listeners.contains(l)
}

// ListenerCount returns the number of registered listeners.
func (c *Container) ListenerCount() int {
	return c.listeners.count()
}

// Contents returns a copy of every slot's stack in index order.
func (c *Container) Contents() []*item.ItemStack {
	out := make([]*item.ItemStack, len(c.Slots))
	for i, s := range c.Slots {
		out[i] = s.GetStack().Copy()
	}
	return out
}

// GetWindowProperty returns a property value and whether it was ever set.
func (c *Container) GetWindowProperty(id int) (int, bool) {
	v, ok := c.properties[id]
	return v, ok
}

// SetSlotContents puts stack into the slot at index and notifies every
// listener. It bypasses the slot's acceptance predicate (server-authoritative
// writes) but still refuses stacks above the slot's limit.
func (c *Container) SetSlotContents(index int, stack *item.ItemStack) error {
	slot, err := c.slotAt(index)
	if err != nil {
		return err
	}
	if err := c.checkOpen(); err != nil {
		return err
	}
	if !stack.IsEmpty() && stack.Count > slot.GetMaxStackSize(stack) {
		return fmt.Errorf("slot %d: %d %s: %w", index, stack.Count, stack.Type, ErrStackLimitExceeded)
	}
	slot.PutStack(stack.Copy())
	c.notifySlot(index)
	return nil
}

// SetWindowProperty stores a property and notifies every listener.
func (c *Container) SetWindowProperty(id, value int) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	c.properties[id] = value
	c.dispatch(DispatchProperty, func(l Listener) {
		l.SendWindowProperty(c, id, value)
	})
	return nil
}

// BroadcastFullState sends the complete contents to every listener, e.g.
// after a listener attaches or to resynchronize.
func (c *Container) BroadcastFullState() error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	for i, s := range c.Slots {
		c.lastSent[i] = s.GetStack().Copy()
	}
	c.dispatch(DispatchContents, func(l Listener) {
		// every listener gets its own slice
		l.SendContainerContents(c, c.Contents())
	})
	return nil
}

// BroadcastDeltas sends the current stacks of several slots that changed
// together as one bulk call per listener. Repeated indices are sent once.
func (c *Container) BroadcastDeltas(indices []int) error {
	for _, idx := range indices {
		if _, err := c.slotAt(idx); err != nil {
			return err
		}
	}
	if err := c.checkOpen(); err != nil {
		return err
	}

	seen := make(map[int]struct{}, len(indices))
	slots := make([]int, 0, len(indices))
	for _, idx := range indices {
		if _, dup := seen[idx]; dup {
			continue
		}
		seen[idx] = struct{}{}
		slots = append(slots, idx)
		c.lastSent[idx] = c.Slots[idx].GetStack().Copy()
	}
	if len(slots) == 0 {
		return nil
	}

	c.dispatch(DispatchBulk, func(l Listener) {
		stacks := make([]*item.ItemStack, len(slots))
		for i, idx := range slots {
			stacks[i] = c.lastSent[idx].Copy()
		}
		if err := SendBulkSlotUpdates(l, c, append([]int(nil), slots...), stacks); err != nil {
			c.logger.Error("bulk update", zap.Error(err))
		}
	})
	return nil
}

// DetectChanges compares every slot with what listeners last saw and sends
// one batch for the slots that were changed directly in a backing store.
// It returns the indices that were sent.
func (c *Container) DetectChanges() ([]int, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	var changed []int
	for i, s := range c.Slots {
		if !item.Equal(s.GetStack(), c.lastSent[i]) {
			changed = append(changed, i)
		}
	}
	if len(changed) == 0 {
		return nil, nil
	}
	return changed, c.BroadcastDeltas(changed)
}

// Close ends the container's session. Listeners are dropped and no further
// notification is delivered, even by a fan-out already in progress.
func (c *Container) Close() {
	if c.closed.Swap(true) {
		return
	}
	c.listeners.clear()
	c.logger.Debug("container closed")
}

func (c *Container) notifySlot(index int) {
	c.lastSent[index] = c.Slots[index].GetStack().Copy()
	c.dispatch(DispatchSlot, func(l Listener) {
		l.SendSlotUpdate(c, index, c.lastSent[index].Copy())
	})
}

// dispatch fans fn out over the registry as it was when dispatch started.
func (c *Container) dispatch(kind string, fn func(Listener)) {
	if c.closed.Load() {
		return
	}
	listeners := c.listeners.snapshot()
	if len(listeners) == 0 {
		return
	}
	start := time.Now()
	for _, l := range listeners {
		if c.closed.Load() {
			return
		}
		fn(l)
	}
	if c.observer != nil {
		c.observer.ObserveDispatch(kind, len(listeners), time.Since(start))
	}
}
