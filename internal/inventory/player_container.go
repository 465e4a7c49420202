package inventory

import (
	"mini-mc-server/internal/item"
	"mini-mc-server/internal/stats"

	"github.com/go-gl/mathgl/mgl32"
)

// NewPlayerContainer creates a container for the player's inventory
func NewPlayerContainer(inv *Inventory, opts ...Option) *Container {
	c := NewContainer(append([]Option{WithTitle("Inventory")}, opts...)...)

	// Armor slots (global indices 36-39), helmet at the top, one worn piece each
	for i := 0; i < ArmorInventorySize; i++ {
		pos := GridPos(mgl32.Vec2{8, 8}, 0, i)
		piece := ArmorPolicy{Piece: item.ArmorHelmet + item.ArmorPiece(i)}
		c.AddSlot(NewSlotWithPolicy(inv, MainInventorySize+i, pos, piece))
	}

	c.PlayerSlotsStart = AddPlayerSlots(c, inv, mgl32.Vec2{8, 84})
	return c
}

// ArmorPolicy accepts only the armor worn in one body slot.
type ArmorPolicy struct {
	Piece item.ArmorPiece
}

func (p ArmorPolicy) IsItemValid(stack *item.ItemStack) bool {
	return item.ValidForSlot(stack) && item.ArmorFor(stack) == p.Piece
}

func (ArmorPolicy) StackLimit() int { return 1 }

func (ArmorPolicy) OnPickup(stats.Actor, *item.ItemStack) {}
