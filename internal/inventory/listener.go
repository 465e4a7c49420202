package inventory

import (
	"fmt"
	"sync"

	"mini-mc-server/internal/item"
)

// Listener observes a container. Calls arrive synchronously on the goroutine
// that mutated the container; implementations that talk to the network must
// hand the work off instead of blocking.
//
// Listeners are compared by ==, so implementations should be pointer types.
type Listener interface {
	// SendContainerContents delivers every slot in index order. The slice
	// and its stacks belong to the listener.
	SendContainerContents(c *Container, items []*item.ItemStack)

	// SendSlotUpdate delivers a single slot; stack is nil when the slot is empty.
	SendSlotUpdate(c *Container, slotIndex int, stack *item.ItemStack)

	// SendWindowProperty delivers a changed window property.
	SendWindowProperty(c *Container, propertyID, propertyValue int)
}

// BulkListener is implemented by listeners that can deliver several slot
// updates at once, e.g. as a single network frame. Implementations must leave
// every index at its given stack and must not skip pairs.
type BulkListener interface {
	Listener
	SendBulkSlotUpdates(c *Container, slotIndexes []int, stacks []*item.ItemStack)
}

// CheckBulk reports ErrBulkLengthMismatch unless every slot index has a stack.
func CheckBulk(slotIndexes []int, stacks []*item.ItemStack) error {
	if len(slotIndexes) != len(stacks) {
		return fmt.Errorf("%w: %d indexes, %d stacks", ErrBulkLengthMismatch, len(slotIndexes), len(stacks))
	}
	return nil
}

// SendBulkSlotUpdates delivers paired slot updates to l, using the listener's
// own bulk method when it has one and falling back to one SendSlotUpdate per
// pair in order. Mismatched slices are rejected before anything is delivered.
func SendBulkSlotUpdates(l Listener, c *Container, slotIndexes []int, stacks []*item.ItemStack) error {
	if err := CheckBulk(slotIndexes, stacks); err != nil {
		return err
	}
	if bl, ok := l.(BulkListener); ok {
		bl.SendBulkSlotUpdates(c, slotIndexes, stacks)
		return nil
	}
	for i, idx := range slotIndexes {
		l.SendSlotUpdate(c, idx, stacks[i])
	}
	return nil
}

// ListenerFuncs builds a Listener from optional callbacks; nil callbacks are
// ignored. Useful for tests and lightweight observers.
type ListenerFuncs struct {
	Contents func(c *Container, items []*item.ItemStack)
	Slot     func(c *Container, slotIndex int, stack *item.ItemStack)
	Property func(c *Container, propertyID, propertyValue int)
}

func (f *ListenerFuncs) SendContainerContents(c *Container, items []*item.ItemStack) {
	if f.Contents != nil {
		f.Contents(c, items)
	}
}

func (f *ListenerFuncs) SendSlotUpdate(c *Container, slotIndex int, stack *item.ItemStack) {
	if f.Slot != nil {
		f.Slot(c, slotIndex, stack)
	}
}

func (f *ListenerFuncs) SendWindowProperty(c *Container, propertyID, propertyValue int) {
	if f.Property != nil {
		f.Property(c, propertyID, propertyValue)
	}
}

// listenerRegistry is a copy-on-write set. Writers replace the slice; readers
// take the current slice and iterate it without holding the lock, so a detach
// during a fan-out never disturbs the iteration in progress.
type listenerRegistry struct {
	mu   sync.Mutex
	list []Listener
}

func (r *listenerRegistry) add(l Listener) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.list {
		if existing == l {
			return false
		}
	}
	next := make([]Listener, len(r.list), len(r.list)+1)
	copy(next, r.list)
	r.list = append(next, l)
	return true
}

func (r *listenerRegistry) remove(l Listener) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.list {
		if existing == l {
			next := make([]Listener, 0, len(r.list)-1)
			next = append(next, r.list[:i]...)
			r.list = append(next, r.list[i+1:]...)
			return true
		}
	}
	return false
}

func (r *listenerRegistry) contains(l Listener) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.list {
		if existing == l {
			return true
		}
	}
	return false
}

func (r *listenerRegistry) snapshot() []Listener {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list
}

func (r *listenerRegistry) clear() {
	r.mu.Lock()
	r.list = nil
	r.mu.Unlock()
}

func (r *listenerRegistry) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.list)
}
