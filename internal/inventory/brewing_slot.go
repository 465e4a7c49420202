package inventory

import (
	"mini-mc-server/internal/item"
	"mini-mc-server/internal/stats"
)

// IsValidBrewingItem reports whether stack may sit in a brewing stand bottle
// slot: a potion or an empty glass bottle.
func IsValidBrewingItem(stack *item.ItemStack) bool {
	if stack.IsEmpty() {
		return false
	}
	return stack.Type == item.Potion || stack.Type == item.GlassBottle
}

// BrewingPolicy holds a single potion or glass bottle and credits the potion
// achievement when a potion is taken out.
type BrewingPolicy struct{}

func (BrewingPolicy) IsItemValid(stack *item.ItemStack) bool {
	return IsValidBrewingItem(stack)
}

// StackLimit is 1 even for items that stack higher elsewhere.
func (BrewingPolicy) StackLimit() int { return 1 }

// OnPickup credits every qualifying withdrawal; repeated pickups credit again.
func (BrewingPolicy) OnPickup(actor stats.Actor, removed *item.ItemStack) {
	if removed != nil && removed.Type == item.Potion && removed.Count > 0 {
		actor.AddStat(stats.AchievementPotion, 1)
	}
	DefaultPolicy{}.OnPickup(actor, removed)
}

// IngredientPolicy accepts brewing ingredients only.
type IngredientPolicy struct{}

func (IngredientPolicy) IsItemValid(stack *item.ItemStack) bool {
	return item.IsIngredient(stack)
}

func (IngredientPolicy) StackLimit() int { return DefaultStackLimit }

func (IngredientPolicy) OnPickup(stats.Actor, *item.ItemStack) {}
