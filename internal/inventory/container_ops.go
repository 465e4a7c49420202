package inventory

import (
	"mini-mc-server/internal/item"
	"mini-mc-server/internal/stats"

	"go.uber.org/zap"
)

// MouseButton represents a mouse button click
type MouseButton int

const (
	MouseButtonLeft   MouseButton = 0
	MouseButtonRight  MouseButton = 1
	MouseButtonMiddle MouseButton = 2
)

// Insert merges as much of stack into the slot as its predicate and limit
// allow. Whatever does not fit stays in stack. It returns false, with no
// notification, when the slot rejects the item or has no room.
func (c *Container) Insert(index int, stack *item.ItemStack) (bool, error) {
	slot, err := c.slotAt(index)
	if err != nil {
		return false, err
	}
	if err := c.checkOpen(); err != nil {
		return false, err
	}
	if !slot.IsItemValid(stack) {
		c.logger.Debug("item rejected", zap.Int("slot", index), zap.Stringer("item", itemType(stack)))
		return false, nil
	}
	if !slot.place(stack) {
		return false, nil
	}
	c.notifySlot(index)
	return true, nil
}

// Take removes up to amount items from the slot, notifies listeners, then
// runs the slot's pickup hook with the removed stack.
func (c *Container) Take(index, amount int, actor stats.Actor) (*item.ItemStack, error) {
	slot, err := c.slotAt(index)
	if err != nil {
		return nil, err
	}
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	removed := slot.decrStack(amount)
	if removed == nil {
		return nil, nil
	}
	c.notifySlot(index)
	slot.OnPickupFromSlot(actor, removed)
	return removed, nil
}

// SlotClick handles interactions with a slot using the player's cursor.
// It returns true if something happened.
func (c *Container) SlotClick(slotIndex int, button MouseButton, isDoubleClick bool, playerInventory *Inventory, actor stats.Actor) (bool, error) {
	slot, err := c.slotAt(slotIndex)
	if err != nil {
		return false, err
	}
	if err := c.checkOpen(); err != nil {
		return false, err
	}

	// Handle double-click: collect all items of same type
	if isDoubleClick {
		changed := c.collectToCursor(slotIndex, playerInventory, actor)
		if len(changed) == 0 {
			return false, nil
		}
		return true, c.BroadcastDeltas(changed)
	}

	var removed *item.ItemStack
	changed := false
	cursor := playerInventory.CursorStack
	itemInSlot := slot.GetStack()

	switch button {
	case MouseButtonRight:
		if !cursor.IsEmpty() {
			// Place one item from cursor stack into slot
			if slot.IsItemValid(cursor) {
				one := item.NewItemStackMeta(cursor.Type, 1, cursor.Meta)
				if slot.place(&one) {
					cursor.Count--
					changed = true
				}
			}
		} else if !itemInSlot.IsEmpty() {
			// Pick up half, rounding up
			removed = slot.decrStack((itemInSlot.Count + 1) / 2)
			playerInventory.CursorStack = removed
			changed = true
		}
	case MouseButtonLeft:
		if cursor.IsEmpty() {
			if !itemInSlot.IsEmpty() {
				// Pick up entire stack
				removed = slot.decrStack(itemInSlot.Count)
				playerInventory.CursorStack = removed
				changed = true
			}
		} else if slot.IsItemValid(cursor) {
			if itemInSlot.IsEmpty() || itemInSlot.IsItemEqual(*cursor) {
				// Place or merge as much as fits
				changed = slot.place(cursor)
			} else if cursor.Count <= slot.GetMaxStackSize(cursor) {
				// Different items: swap
				removed = slot.decrStack(itemInSlot.Count)
				slot.PutStack(cursor)
				playerInventory.CursorStack = removed
				changed = true
			}
		}
	}

	if playerInventory.CursorStack.IsEmpty() {
		playerInventory.CursorStack = nil
	}
	if !changed {
		return false, nil
	}
	c.notifySlot(slotIndex)
	slot.OnPickupFromSlot(actor, removed)
	return true, nil
}

// collectToCursor gathers items matching the cursor from every other slot,
// up to the cursor's max stack size.
func (c *Container) collectToCursor(clickedSlotIndex int, playerInventory *Inventory, actor stats.Actor) []int {
	cursor := playerInventory.CursorStack
	if cursor.IsEmpty() {
		return nil
	}

	var changed []int
	for i, slot := range c.Slots {
		if i == clickedSlotIndex {
			continue
		}
		space := cursor.GetMaxStackSize() - cursor.Count
		if space <= 0 {
			break
		}
		itemInSlot := slot.GetStack()
		if itemInSlot.IsEmpty() || !itemInSlot.IsItemEqual(*cursor) {
			continue
		}
		removed := slot.decrStack(min(itemInSlot.Count, space))
		cursor.Count += removed.Count
		changed = append(changed, i)
		slot.OnPickupFromSlot(actor, removed)
	}
	return changed
}

// QuickMove transfers a slot's stack between the container section and the
// player section (shift-click). All touched slots go out as one batch.
func (c *Container) QuickMove(index int, actor stats.Actor) (bool, error) {
	slot, err := c.slotAt(index)
	if err != nil {
		return false, err
	}
	if err := c.checkOpen(); err != nil {
		return false, err
	}
	if c.PlayerSlotsStart <= 0 || !slot.HasStack() {
		return false, nil
	}

	src := slot.GetStack()
	moving := src.Copy()
	start, end := c.PlayerSlotsStart, len(c.Slots)
	if index >= c.PlayerSlotsStart {
		start, end = 0, c.PlayerSlotsStart
	}

	changed := c.mergeInto(moving, start, end)
	moved := src.Count - moving.Count
	if moved <= 0 {
		return false, nil
	}
	removed := slot.decrStack(moved)
	changed = append(changed, index)

	if err := c.BroadcastDeltas(changed); err != nil {
		return true, err
	}
	slot.OnPickupFromSlot(actor, removed)
	return true, nil
}

// mergeInto spreads stack over slots [start,end): first onto matching stacks,
// then into empty slots.
func (c *Container) mergeInto(stack *item.ItemStack, start, end int) []int {
	var changed []int
	for pass := 0; pass < 2 && !stack.IsEmpty(); pass++ {
		for i := start; i < end && !stack.IsEmpty(); i++ {
			s := c.Slots[i]
			if !s.IsItemValid(stack) {
				continue
			}
			empty := !s.HasStack()
			if (pass == 0 && empty) || (pass == 1 && !empty) {
				continue
			}
			if s.place(stack) {
				changed = append(changed, i)
			}
		}
	}
	return changed
}

func itemType(s *item.ItemStack) item.Kind {
	if s == nil {
		return item.Air
	}
	return s.Type
}
