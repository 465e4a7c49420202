package stats

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerAddAndGet(t *testing.T) {
	tr := NewTracker()
	assert.Equal(t, int64(0), tr.Get(AchievementPotion))

	tr.AddStat(AchievementPotion, 1)
	tr.AddStat(AchievementPotion, 2)
	assert.Equal(t, int64(3), tr.Get(AchievementPotion))
}

func TestTrackerConcurrentCredits(t *testing.T) {
	tr := NewTracker()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tr.AddStat(StatItemsPickedUp, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1600), tr.Get(StatItemsPickedUp))
}

func TestSnapshotSortedAndSkipsZero(t *testing.T) {
	tr := NewTracker()
	tr.AddStat(StatItemsPickedUp, 4)
	tr.AddStat(AchievementPotion, 1)
	tr.AddStat(StatContainersOpened, 0)

	snap := tr.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, AchievementPotion, snap[0].Achievement)
	assert.Equal(t, StatItemsPickedUp, snap[1].Achievement)
}

func TestActorFunc(t *testing.T) {
	var got []Achievement
	var a Actor = ActorFunc(func(ach Achievement, amount int) {
		got = append(got, ach)
	})
	a.AddStat(AchievementPotion, 1)
	assert.Equal(t, []Achievement{AchievementPotion}, got)

	var nilFn ActorFunc
	assert.NotPanics(t, func() { nilFn.AddStat(AchievementPotion, 1) })
}
