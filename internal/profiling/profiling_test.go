package profiling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatMs(t *testing.T) {
	assert.Equal(t, "4.2ms", FormatMs(4200*time.Microsecond))
	assert.Equal(t, "3ms", FormatMs(3*time.Millisecond))
	assert.Equal(t, "0ms", FormatMs(0))
}

func TestTrackAndReset(t *testing.T) {
	p := New()
	p.Track("a")()
	p.Track("a")()
	p.Track("b")()

	snap := p.Snapshot()
	assert.Len(t, snap, 2)
	assert.Contains(t, p.TopN(5), "a:")
	assert.NotContains(t, p.TopN(1), ",")

	p.Reset()
	assert.Empty(t, p.Snapshot())
	assert.Equal(t, "", p.TopN(3))
}

