package item

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsEmpty(t *testing.T) {
	var nilStack *ItemStack
	assert.True(t, nilStack.IsEmpty())

	zero := NewItemStack(Stone, 0)
	assert.True(t, zero.IsEmpty())

	air := NewItemStack(Air, 5)
	assert.True(t, air.IsEmpty())

	stone := NewItemStack(Stone, 1)
	assert.False(t, stone.IsEmpty())
}

func TestIsItemEqualHonorsMeta(t *testing.T) {
	water := NewItemStackMeta(Potion, 1, 0)
	awkward := NewItemStackMeta(Potion, 1, 16)

	assert.False(t, water.IsItemEqual(awkward))
	assert.True(t, water.IsItemEqual(NewItemStackMeta(Potion, 1, 0)))
	assert.False(t, water.IsItemEqual(NewItemStack(GlassBottle, 1)))
}

func TestSplit(t *testing.T) {
	s := NewItemStack(Dirt, 10)

	part := s.Split(4)
	require.NotNil(t, part)
	assert.Equal(t, 4, part.Count)
	assert.Equal(t, 6, s.Count)

	rest := s.Split(100)
	require.NotNil(t, rest)
	assert.Equal(t, 6, rest.Count)
	assert.True(t, s.IsEmpty())

	assert.Nil(t, s.Split(1))
}

func TestCopyIsDetached(t *testing.T) {
	s := NewItemStack(Stone, 3)
	c := s.Copy()
	c.Count = 1
	assert.Equal(t, 3, s.Count)

	var empty *ItemStack
	assert.Nil(t, empty.Copy())
}

func TestEqual(t *testing.T) {
	a := NewItemStack(Stone, 3)
	b := NewItemStack(Stone, 3)
	zero := NewItemStack(Stone, 0)

	assert.True(t, Equal(&a, &b))
	assert.True(t, Equal(nil, &zero))
	assert.False(t, Equal(&a, nil))
}

func TestRegistry(t *testing.T) {
	k, ok := ByName("minecraft:Potion")
	require.True(t, ok)
	assert.Equal(t, Potion, k)

	_, ok = ByName("unobtainium")
	assert.False(t, ok)

	assert.Equal(t, 1, Lookup(Potion).MaxStackSize)
	assert.Equal(t, 64, Lookup(GlassBottle).MaxStackSize)
	assert.Equal(t, "unknown", Lookup(Kind(9999)).Name)
	assert.Contains(t, Names(), "nether_wart")
}

func TestPlacementRules(t *testing.T) {
	barrier := NewItemStack(Barrier, 1)
	stone := NewItemStack(Stone, 1)
	wart := NewItemStack(NetherWart, 1)

	assert.False(t, ValidForSlot(nil))
	assert.False(t, ValidForSlot(&barrier))
	assert.True(t, ValidForSlot(&stone))

	assert.True(t, IsIngredient(&wart))
	assert.False(t, IsIngredient(&stone))
	assert.False(t, IsIngredient(nil))

	boots := NewItemStack(IronBoots, 1)
	assert.Equal(t, ArmorBoots, ArmorFor(&boots))
	assert.Equal(t, ArmorNone, ArmorFor(&stone))
	assert.Equal(t, ArmorNone, ArmorFor(nil))
}
