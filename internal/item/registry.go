package item

import (
	"sort"
	"strings"
)

// Kind identifies an item type.
type Kind uint16

const (
	Air Kind = iota
	Stone
	Dirt
	Grass
	GlassBottle
	Potion
	NetherWart
	Redstone
	Glowstone
	Sugar
	BlazePowder
	SpiderEye
	Stick
	DiamondSword
	Barrier
	IronHelmet
	IronChestplate
	IronLeggings
	IronBoots
)

// ArmorPiece is the body slot an item is worn in.
type ArmorPiece int

const (
	ArmorNone ArmorPiece = iota
	ArmorHelmet
	ArmorChestplate
	ArmorLeggings
	ArmorBoots
)

// Definition defines the properties of an item type
type Definition struct {
	ID           Kind
	Name         string
	MaxStackSize int

	// BrewEffect is the potion meta an ingredient produces; 0 means the item
	// is not a brewing ingredient.
	BrewEffect int

	// Placeable reports whether the item may sit in a generic slot.
	Placeable bool

	Armor ArmorPiece
}

var (
	definitions = make(map[Kind]*Definition)
	names       = make(map[string]Kind)
)

func register(def *Definition) {
	if def.MaxStackSize == 0 {
		def.MaxStackSize = 64
	}
	definitions[def.ID] = def
	names[def.Name] = def.ID
}

// The table is populated once here and treated as read-only afterwards.
func init() {
	register(&Definition{ID: Air, Name: "air"})
	register(&Definition{ID: Stone, Name: "stone", Placeable: true})
	register(&Definition{ID: Dirt, Name: "dirt", Placeable: true})
	register(&Definition{ID: Grass, Name: "grass", Placeable: true})
	register(&Definition{ID: GlassBottle, Name: "glass_bottle", Placeable: true})
	register(&Definition{ID: Potion, Name: "potion", MaxStackSize: 1, Placeable: true})
	register(&Definition{ID: NetherWart, Name: "nether_wart", BrewEffect: 16, Placeable: true})
	register(&Definition{ID: Redstone, Name: "redstone", BrewEffect: 64, Placeable: true})
	register(&Definition{ID: Glowstone, Name: "glowstone_dust", BrewEffect: 32, Placeable: true})
	register(&Definition{ID: Sugar, Name: "sugar", BrewEffect: 2, Placeable: true})
	register(&Definition{ID: BlazePowder, Name: "blaze_powder", BrewEffect: 9, Placeable: true})
	register(&Definition{ID: SpiderEye, Name: "spider_eye", BrewEffect: 4, Placeable: true})
	register(&Definition{ID: Stick, Name: "stick", Placeable: true})
	register(&Definition{ID: DiamondSword, Name: "diamond_sword", MaxStackSize: 1, Placeable: true})
	register(&Definition{ID: Barrier, Name: "barrier"})
	register(&Definition{ID: IronHelmet, Name: "iron_helmet", MaxStackSize: 1, Placeable: true, Armor: ArmorHelmet})
	register(&Definition{ID: IronChestplate, Name: "iron_chestplate", MaxStackSize: 1, Placeable: true, Armor: ArmorChestplate})
	register(&Definition{ID: IronLeggings, Name: "iron_leggings", MaxStackSize: 1, Placeable: true, Armor: ArmorLeggings})
	register(&Definition{ID: IronBoots, Name: "iron_boots", MaxStackSize: 1, Placeable: true, Armor: ArmorBoots})
}

var unknown = &Definition{ID: Air, Name: "unknown", MaxStackSize: 64}

// Lookup returns the definition for k. Unknown kinds get a non-placeable
// placeholder so callers never see nil.
func Lookup(k Kind) *Definition {
	if def, ok := definitions[k]; ok {
		return def
	}
	return unknown
}

// ByName resolves an item name, case-insensitively, with an optional
// "minecraft:" namespace.
func ByName(name string) (Kind, bool) {
	name = strings.TrimPrefix(strings.ToLower(name), "minecraft:")
	k, ok := names[name]
	return k, ok
}

// Names returns all registered item names in alphabetical order.
func Names() []string {
	out := make([]string, 0, len(names))
	for n := range names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func (k Kind) String() string {
	return Lookup(k).Name
}

// ValidForSlot is the item's own placement rule for generic slots.
func ValidForSlot(stack *ItemStack) bool {
	if stack.IsEmpty() {
		return false
	}
	return Lookup(stack.Type).Placeable
}

// IsIngredient reports whether the stack can be used as a brewing ingredient.
func IsIngredient(stack *ItemStack) bool {
	return !stack.IsEmpty() && Lookup(stack.Type).BrewEffect != 0
}

// ArmorFor returns the body slot stack is worn in, or ArmorNone.
func ArmorFor(stack *ItemStack) ArmorPiece {
	if stack.IsEmpty() {
		return ArmorNone
	}
	return Lookup(stack.Type).Armor
}
