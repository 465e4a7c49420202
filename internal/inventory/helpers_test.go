package inventory

import (
	"mini-mc-server/internal/item"
	"mini-mc-server/internal/stats"
)

type event struct {
	kind   string
	slots  []int
	stacks []*item.ItemStack
	prop   [2]int
}

// recorder captures every notification in order.
type recorder struct {
	events []event
}

func (r *recorder) SendContainerContents(c *Container, items []*item.ItemStack) {
	r.events = append(r.events, event{kind: "contents", stacks: items})
}

func (r *recorder) SendSlotUpdate(c *Container, slotIndex int, stack *item.ItemStack) {
	r.events = append(r.events, event{kind: "slot", slots: []int{slotIndex}, stacks: []*item.ItemStack{stack}})
}

func (r *recorder) SendWindowProperty(c *Container, propertyID, propertyValue int) {
	r.events = append(r.events, event{kind: "property", prop: [2]int{propertyID, propertyValue}})
}

func (r *recorder) count(kind string) int {
	n := 0
	for _, e := range r.events {
		if e.kind == kind {
			n++
		}
	}
	return n
}

// bulkRecorder overrides the bulk path.
type bulkRecorder struct {
	recorder
}

func (b *bulkRecorder) SendBulkSlotUpdates(c *Container, slotIndexes []int, stacks []*item.ItemStack) {
	b.events = append(b.events, event{kind: "bulk", slots: slotIndexes, stacks: stacks})
}

// view replays slot events onto a local copy of the container contents.
func (r *recorder) view(size int) []*item.ItemStack {
	out := make([]*item.ItemStack, size)
	for _, e := range r.events {
		switch e.kind {
		case "contents":
			copy(out, e.stacks)
		case "slot", "bulk":
			for i, idx := range e.slots {
				out[idx] = e.stacks[i]
			}
		}
	}
	return out
}

type statRecorder struct {
	credits map[stats.Achievement]int
	calls   int
}

func newStatRecorder() *statRecorder {
	return &statRecorder{credits: make(map[stats.Achievement]int)}
}

func (s *statRecorder) AddStat(a stats.Achievement, amount int) {
	s.calls++
	s.credits[a] += amount
}

func stackOf(k item.Kind, n int) *item.ItemStack {
	s := item.NewItemStack(k, n)
	return &s
}

func newTwoSlotContainer() *Container {
	store := NewBasic(2)
	c := NewContainer()
	c.AddSlot(NewSlot(store, 0, 0, 0))
	c.AddSlot(NewSlot(store, 1, 18, 0))
	return c
}
