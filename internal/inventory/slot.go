package inventory

import (
	"mini-mc-server/internal/item"
	"mini-mc-server/internal/stats"

	"github.com/go-gl/mathgl/mgl32"
)

// DefaultStackLimit is the stack limit of a plain slot.
const DefaultStackLimit = 64

// SlotPolicy captures what differs between slot variants: which items are
// accepted, how many fit, and what happens when items are taken out.
type SlotPolicy interface {
	IsItemValid(stack *item.ItemStack) bool
	StackLimit() int
	OnPickup(actor stats.Actor, removed *item.ItemStack)
}

// DefaultPolicy accepts any item whose own placement rule allows it.
type DefaultPolicy struct{}

func (DefaultPolicy) IsItemValid(stack *item.ItemStack) bool {
	return item.ValidForSlot(stack)
}

func (DefaultPolicy) StackLimit() int { return DefaultStackLimit }

func (DefaultPolicy) OnPickup(stats.Actor, *item.ItemStack) {}

// CappedPolicy is a DefaultPolicy with a custom stack limit. A limit of 0
// marks an inert slot.
type CappedPolicy struct {
	DefaultPolicy
	Limit int
}

func (p CappedPolicy) StackLimit() int { return p.Limit }

// Slot represents a single slot in a container
type Slot struct {
	Index int // position within the owning container
	Pos   mgl32.Vec2

	inventory Store
	slotIndex int
	policy    SlotPolicy
}

// NewSlot creates a new slot with the default policy
func NewSlot(inv Store, index, x, y int) *Slot {
	return NewSlotWithPolicy(inv, index, mgl32.Vec2{float32(x), float32(y)}, DefaultPolicy{})
}

// NewSlotWithPolicy creates a slot backed by inv[index] whose behavior is
// decided by p.
func NewSlotWithPolicy(inv Store, index int, pos mgl32.Vec2, p SlotPolicy) *Slot {
	if p == nil {
		p = DefaultPolicy{}
	}
	return &Slot{
		Index:     -1,
		Pos:       pos,
		inventory: inv,
		slotIndex: index,
		policy:    p,
	}
}

// Policy returns the slot's variant policy.
func (s *Slot) Policy() SlotPolicy { return s.policy }

// Store returns the backing store and the index the slot mirrors.
func (s *Slot) Store() (Store, int) { return s.inventory, s.slotIndex }

// GetStack returns the item stack in this slot.
func (s *Slot) GetStack() *item.ItemStack {
	if s.inventory == nil {
		return nil
	}
	return s.inventory.GetItem(s.slotIndex)
}

// HasStack reports whether the slot holds any items.
func (s *Slot) HasStack() bool {
	return !s.GetStack().IsEmpty()
}

// PutStack places an item stack into this slot
func (s *Slot) PutStack(stack *item.ItemStack) {
	if s.inventory == nil {
		return
	}
	s.inventory.SetItem(s.slotIndex, stack)
}

// IsItemValid reports whether stack may be placed in this slot. Absent stacks
// are never valid.
func (s *Slot) IsItemValid(stack *item.ItemStack) bool {
	if stack.IsEmpty() {
		return false
	}
	return s.policy.IsItemValid(stack)
}

// GetSlotStackLimit returns the slot's own limit, independent of the item.
func (s *Slot) GetSlotStackLimit() int {
	return s.policy.StackLimit()
}

// GetMaxStackSize returns how many of stack's items fit in this slot: the
// lower of the slot limit and the item's own stack size.
func (s *Slot) GetMaxStackSize(stack *item.ItemStack) int {
	limit := s.GetSlotStackLimit()
	if stack.IsEmpty() {
		return limit
	}
	return min(limit, stack.GetMaxStackSize())
}

// OnPickupFromSlot runs the variant's pickup hook. Callers invoke it once per
// removal, after the slot has been decremented.
func (s *Slot) OnPickupFromSlot(actor stats.Actor, removed *item.ItemStack) {
	if actor == nil || removed == nil {
		return
	}
	s.policy.OnPickup(actor, removed)
}

// decrStack removes up to n items and returns them.
func (s *Slot) decrStack(n int) *item.ItemStack {
	stack := s.GetStack()
	if stack.IsEmpty() || n <= 0 {
		return nil
	}
	removed := stack.Split(n)
	if stack.IsEmpty() {
		s.PutStack(nil)
	}
	return removed
}

// place merges as much of stack as fits into the slot and reports whether
// anything moved. The caller has already checked IsItemValid.
func (s *Slot) place(stack *item.ItemStack) bool {
	if stack.IsEmpty() {
		return false
	}
	limit := s.GetMaxStackSize(stack)
	existing := s.GetStack()
	if existing.IsEmpty() {
		n := min(stack.Count, limit)
		if n <= 0 {
			return false
		}
		s.PutStack(stack.Split(n))
		return true
	}
	if !existing.IsItemEqual(*stack) {
		return false
	}
	space := limit - existing.Count
	if space <= 0 {
		return false
	}
	n := min(space, stack.Count)
	existing.Count += n
	stack.Count -= n
	return true
}
