package item

// ItemStack represents a stack of items
type ItemStack struct {
	Type  Kind
	Count int
	Meta  int // auxiliary data, e.g. potion effect
}

// NewItemStack creates a new item stack
func NewItemStack(t Kind, count int) ItemStack {
	return ItemStack{
		Type:  t,
		Count: count,
	}
}

// NewItemStackMeta creates a new item stack carrying auxiliary metadata
func NewItemStackMeta(t Kind, count, meta int) ItemStack {
	return ItemStack{
		Type:  t,
		Count: count,
		Meta:  meta,
	}
}

// IsEmpty reports whether the stack is absent or holds no items.
func (s *ItemStack) IsEmpty() bool {
	return s == nil || s.Count <= 0 || s.Type == Air
}

// GetMaxStackSize returns the maximum stack size for this item
func (s ItemStack) GetMaxStackSize() int {
	return Lookup(s.Type).MaxStackSize
}

// IsStackable returns if the item can be stacked
func (s ItemStack) IsStackable() bool {
	return s.GetMaxStackSize() > 1
}

// IsItemEqual checks if two stacks contain the same item type and metadata,
// i.e. whether they can be merged.
func (s ItemStack) IsItemEqual(other ItemStack) bool {
	return s.Type == other.Type && s.Meta == other.Meta
}

// Copy returns a detached copy of the stack, or nil for an empty stack.
func (s *ItemStack) Copy() *ItemStack {
	if s.IsEmpty() {
		return nil
	}
	c := *s
	return &c
}

// Split removes up to n items from s and returns them as a new stack.
func (s *ItemStack) Split(n int) *ItemStack {
	if s.IsEmpty() || n <= 0 {
		return nil
	}
	n = min(n, s.Count)
	out := NewItemStackMeta(s.Type, n, s.Meta)
	s.Count -= n
	return &out
}

// Equal compares two possibly empty stacks by content.
func Equal(a, b *ItemStack) bool {
	if a.IsEmpty() || b.IsEmpty() {
		return a.IsEmpty() && b.IsEmpty()
	}
	return a.IsItemEqual(*b) && a.Count == b.Count
}
