package inventory

import (
	"mini-mc-server/internal/item"
)

// Store is the backing storage a Slot reads and writes through. Slots never
// own the store.
type Store interface {
	Size() int
	GetItem(index int) *item.ItemStack
	SetItem(index int, stack *item.ItemStack)
}

// Basic is a fixed-size Store, used by block containers such as the brewing stand.
type Basic struct {
	items []*item.ItemStack
}

// NewBasic creates an empty store with n positions.
func NewBasic(n int) *Basic {
	return &Basic{items: make([]*item.ItemStack, n)}
}

func (b *Basic) Size() int { return len(b.items) }

func (b *Basic) GetItem(index int) *item.ItemStack {
	if index >= 0 && index < len(b.items) {
		return b.items[index]
	}
	return nil
}

func (b *Basic) SetItem(index int, stack *item.ItemStack) {
	if index >= 0 && index < len(b.items) {
		if stack.IsEmpty() {
			stack = nil
		}
		b.items[index] = stack
	}
}

const (
	MainInventorySize  = 36
	ArmorInventorySize = 4
	HotbarSize         = 9
)

// Inventory is a player's personal store.
type Inventory struct {
	// Main inventory includes hotbar (indices 0-8) and main storage (9-35)
	MainInventory  [MainInventorySize]*item.ItemStack
	ArmorInventory [ArmorInventorySize]*item.ItemStack
	CurrentItem    int             // Index 0-8
	CursorStack    *item.ItemStack // Item held by mouse cursor
}

func New() *Inventory {
	return &Inventory{
		CurrentItem: 0,
	}
}

// Size returns the number of addressable positions (main + armor).
func (inv *Inventory) Size() int {
	return MainInventorySize + ArmorInventorySize
}

// GetItem returns the item stack at the given global index
// 0-35: Main Inventory (including hotbar)
// 36-39: Armor Inventory
func (inv *Inventory) GetItem(index int) *item.ItemStack {
	if index >= 0 && index < MainInventorySize {
		return inv.MainInventory[index]
	}
	if index >= MainInventorySize && index < MainInventorySize+ArmorInventorySize {
		return inv.ArmorInventory[index-MainInventorySize]
	}
	return nil
}

// SetItem sets the item stack at the given global index
func (inv *Inventory) SetItem(index int, stack *item.ItemStack) {
	if stack.IsEmpty() {
		stack = nil
	}
	if index >= 0 && index < MainInventorySize {
		inv.MainInventory[index] = stack
	} else if index >= MainInventorySize && index < MainInventorySize+ArmorInventorySize {
		inv.ArmorInventory[index-MainInventorySize] = stack
	}
}

// GetCurrentItem returns the currently selected item in the hotbar
func (inv *Inventory) GetCurrentItem() *item.ItemStack {
	if inv.CurrentItem >= 0 && inv.CurrentItem < HotbarSize {
		return inv.MainInventory[inv.CurrentItem]
	}
	return nil
}

// AddItem attempts to add an item stack to the inventory.
// Returns true if successful (fully added), false if failed (inventory full).
// Updates the passed stack's count if partially added.
func (inv *Inventory) AddItem(stack *item.ItemStack) bool {
	if stack.IsEmpty() {
		return false
	}

	// 1. Try to merge with existing stacks
	if stack.IsStackable() {
		for i := 0; i < len(inv.MainInventory); i++ {
			existing := inv.MainInventory[i]
			if existing != nil && existing.IsItemEqual(*stack) {
				maxStack := existing.GetMaxStackSize()
				if existing.Count < maxStack {
					toAdd := min(stack.Count, maxStack-existing.Count)

					existing.Count += toAdd
					stack.Count -= toAdd

					if stack.Count == 0 {
						return true
					}
				}
			}
		}
	}

	// 2. Place in empty slots
	for stack.Count > 0 {
		emptySlot := inv.GetFirstEmptyStack()
		if emptySlot < 0 {
			return false
		}
		toAdd := min(stack.Count, stack.GetMaxStackSize())
		inv.MainInventory[emptySlot] = stack.Split(toAdd)
	}

	return true
}

// Room returns how many items like stack the main inventory can still take,
// counting both partial matching stacks and empty slots.
func (inv *Inventory) Room(stack *item.ItemStack) int {
	if stack.IsEmpty() {
		return 0
	}
	maxStack := stack.GetMaxStackSize()
	room := 0
	for _, existing := range inv.MainInventory {
		switch {
		case existing == nil:
			room += maxStack
		case stack.IsStackable() && existing.IsItemEqual(*stack) && existing.Count < maxStack:
			room += maxStack - existing.Count
		}
	}
	return room
}

// GetFirstEmptyStack returns the index of the first empty slot in main inventory
func (inv *Inventory) GetFirstEmptyStack() int {
	for i := 0; i < len(inv.MainInventory); i++ {
		if inv.MainInventory[i] == nil {
			return i
		}
	}
	return -1
}

// SetCurrentItem sets the selected hotbar slot directly (0-8)
func (inv *Inventory) SetCurrentItem(index int) {
	if index >= 0 && index < HotbarSize {
		inv.CurrentItem = index
	}
}

// HasItem checks if the inventory contains a specific item type
func (inv *Inventory) HasItem(t item.ItemStack) bool {
	for _, slot := range inv.MainInventory {
		if slot != nil && slot.IsItemEqual(t) {
			return true
		}
	}
	return false
}

// Clear empties the main and armor inventories and the cursor. It returns the
// number of items removed.
func (inv *Inventory) Clear() int {
	removed := 0
	for i := 0; i < inv.Size(); i++ {
		if s := inv.GetItem(i); !s.IsEmpty() {
			removed += s.Count
		}
		inv.SetItem(i, nil)
	}
	if !inv.CursorStack.IsEmpty() {
		removed += inv.CursorStack.Count
	}
	inv.CursorStack = nil
	return removed
}
