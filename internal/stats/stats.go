package stats

import (
	"sort"
	"sync"

	"go.uber.org/atomic"
)

// Achievement identifies a stat or achievement that can be credited to an actor.
type Achievement string

const (
	AchievementPotion      Achievement = "achievement.potion"
	AchievementOpenInv     Achievement = "achievement.openInventory"
	StatItemsPickedUp      Achievement = "stat.itemsPickedUp"
	StatBrewingStandUsed   Achievement = "stat.brewingstandInteraction"
	StatContainersOpened   Achievement = "stat.containersOpened"
	StatCommandsDispatched Achievement = "stat.commandsDispatched"
)

// Actor is anything that can be credited with stats, typically a player.
type Actor interface {
	AddStat(a Achievement, amount int)
}

// ActorFunc adapts a function to the Actor interface.
type ActorFunc func(a Achievement, amount int)

func (f ActorFunc) AddStat(a Achievement, amount int) {
	if f == nil {
		return
	}
	f(a, amount)
}

// Tracker accumulates stat values. It is safe for concurrent use: stats are
// credited from the session goroutine and read by commands and transports.
type Tracker struct {
	mu       sync.RWMutex
	counters map[Achievement]*atomic.Int64
}

func NewTracker() *Tracker {
	return &Tracker{counters: make(map[Achievement]*atomic.Int64)}
}

func (t *Tracker) counter(a Achievement) *atomic.Int64 {
	t.mu.RLock()
	c, ok := t.counters[a]
	t.mu.RUnlock()
	if ok {
		return c
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if c, ok = t.counters[a]; ok {
		return c
	}
	c = atomic.NewInt64(0)
	t.counters[a] = c
	return c
}

// AddStat implements Actor.
func (t *Tracker) AddStat(a Achievement, amount int) {
	t.counter(a).Add(int64(amount))
}

// Get returns the current value of a stat.
func (t *Tracker) Get(a Achievement) int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if c, ok := t.counters[a]; ok {
		return c.Load()
	}
	return 0
}

// Entry is a single stat value in a snapshot.
type Entry struct {
	Achievement Achievement
	Value       int64
}

// Snapshot returns every non-zero stat sorted by name.
func (t *Tracker) Snapshot() []Entry {
	t.mu.RLock()
	out := make([]Entry, 0, len(t.counters))
	for a, c := range t.counters {
		if v := c.Load(); v != 0 {
			out = append(out, Entry{Achievement: a, Value: v})
		}
	}
	t.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Achievement < out[j].Achievement })
	return out
}
