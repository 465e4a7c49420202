package inventory

import "github.com/go-gl/mathgl/mgl32"

// SlotSpacing is the distance between neighbouring slots in GUI pixels.
const SlotSpacing = 18

// GridPos returns the screen position of the slot at (col, row) in a grid
// whose top-left slot sits at origin.
func GridPos(origin mgl32.Vec2, col, row int) mgl32.Vec2 {
	return origin.Add(mgl32.Vec2{float32(col * SlotSpacing), float32(row * SlotSpacing)})
}

// AddPlayerSlots appends the 27 main-inventory slots followed by the hotbar,
// laid out below a container GUI whose player section starts at origin.
// It returns the container index of the first added slot.
func AddPlayerSlots(c *Container, inv *Inventory, origin mgl32.Vec2) int {
	first := len(c.Slots)

	// Main inventory: indices 9-35, 9 columns x 3 rows
	for row := 0; row < 3; row++ {
		for col := 0; col < 9; col++ {
			index := col + (row+1)*9
			c.AddSlot(NewSlotWithPolicy(inv, index, GridPos(origin, col, row), DefaultPolicy{}))
		}
	}

	// Hotbar: indices 0-8, with a small gap below the main grid
	hotbar := origin.Add(mgl32.Vec2{0, 3*SlotSpacing + 4})
	for col := 0; col < HotbarSize; col++ {
		c.AddSlot(NewSlotWithPolicy(inv, col, GridPos(hotbar, col, 0), DefaultPolicy{}))
	}

	return first
}

// SlotSize is the clickable width and height of a slot in GUI pixels.
const SlotSize = 16

// SlotAt returns the index of the slot whose square contains p, or -1.
func (c *Container) SlotAt(p mgl32.Vec2) int {
	for _, s := range c.Slots {
		if p.X() >= s.Pos.X() && p.X() < s.Pos.X()+SlotSize &&
			p.Y() >= s.Pos.Y() && p.Y() < s.Pos.Y()+SlotSize {
			return s.Index
		}
	}
	return -1
}
