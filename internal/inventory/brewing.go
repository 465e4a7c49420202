package inventory

import (
	"mini-mc-server/internal/item"

	"github.com/go-gl/mathgl/mgl32"
)

// Brewing stand layout.
const (
	BrewingSlotBottles    = 3 // slots 0-2 hold bottles
	BrewingSlotIngredient = 3
	BrewingStandSize      = 4

	// PropertyBrewTime is the window property carrying the remaining brew ticks.
	PropertyBrewTime = 0

	DefaultBrewTicks = 400
)

// BrewingStand is the block-side state of a brewing stand: its store and
// brew timer. It is driven by Tick from the owning session.
type BrewingStand struct {
	store      *Basic
	brewTicks  int
	brewTime   int
	ingredient item.Kind
}

// NewBrewingStand creates an empty stand that needs brewTicks ticks per brew.
func NewBrewingStand(brewTicks int) *BrewingStand {
	if brewTicks <= 0 {
		brewTicks = DefaultBrewTicks
	}
	return &BrewingStand{
		store:     NewBasic(BrewingStandSize),
		brewTicks: brewTicks,
	}
}

// Store returns the stand's backing store.
func (b *BrewingStand) Store() Store { return b.store }

// BrewTime returns the remaining ticks of the current brew, 0 when idle.
func (b *BrewingStand) BrewTime() int { return b.brewTime }

// Tick advances the brew by one tick and reports whether the brew timer
// changed.
func (b *BrewingStand) Tick() bool {
	before := b.brewTime
	ingredient := b.store.GetItem(BrewingSlotIngredient)

	switch {
	case b.brewTime > 0:
		b.brewTime--
		if b.brewTime == 0 {
			b.brew()
		} else if !b.canBrew() || ingredient.IsEmpty() || ingredient.Type != b.ingredient {
			b.brewTime = 0
		}
	case b.canBrew():
		b.brewTime = b.brewTicks
		b.ingredient = ingredient.Type
	}

	return b.brewTime != before
}

func brewResult(meta, effect int) int {
	if meta == 0 {
		return effect
	}
	return meta
}

func (b *BrewingStand) canBrew() bool {
	ingredient := b.store.GetItem(BrewingSlotIngredient)
	if !item.IsIngredient(ingredient) {
		return false
	}
	effect := item.Lookup(ingredient.Type).BrewEffect
	for i := 0; i < BrewingSlotBottles; i++ {
		s := b.store.GetItem(i)
		if !s.IsEmpty() && s.Type == item.Potion && brewResult(s.Meta, effect) != s.Meta {
			return true
		}
	}
	return false
}

func (b *BrewingStand) brew() {
	if !b.canBrew() {
		return
	}
	ingredient := b.store.GetItem(BrewingSlotIngredient)
	effect := item.Lookup(ingredient.Type).BrewEffect
	for i := 0; i < BrewingSlotBottles; i++ {
		s := b.store.GetItem(i)
		if !s.IsEmpty() && s.Type == item.Potion {
			s.Meta = brewResult(s.Meta, effect)
		}
	}
	ingredient.Count--
	if ingredient.IsEmpty() {
		b.store.SetItem(BrewingSlotIngredient, nil)
	}
}

// NewBrewingContainer builds the brewing stand window: three bottle slots,
// the ingredient slot, then the player's inventory.
func NewBrewingContainer(stand *BrewingStand, playerInv *Inventory, opts ...Option) *Container {
	c := NewContainer(append([]Option{WithTitle("Brewing Stand")}, opts...)...)

	bottles := []mgl32.Vec2{{56, 46}, {79, 53}, {102, 46}}
	for i, pos := range bottles {
		c.AddSlot(NewSlotWithPolicy(stand.store, i, pos, BrewingPolicy{}))
	}
	c.AddSlot(NewSlotWithPolicy(stand.store, BrewingSlotIngredient, mgl32.Vec2{79, 17}, IngredientPolicy{}))

	c.PlayerSlotsStart = AddPlayerSlots(c, playerInv, mgl32.Vec2{8, 84})
	return c
}
