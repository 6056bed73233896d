package countdown

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitTimeout = 2 * time.Second

type tick struct {
	round     uint64
	remaining int
}

type recorder struct {
	ticks   chan tick
	expired chan uint64
}

func newRecorder() *recorder {
	return &recorder{
		ticks:   make(chan tick, 16),
		expired: make(chan uint64, 4),
	}
}

func (that *recorder) onTick(round uint64, remaining int) {
	that.ticks <- tick{round: round, remaining: remaining}
}

func (that *recorder) onExpire(round uint64) {
	that.expired <- round
}

func (that *recorder) nextTick(t *testing.T) tick {
	t.Helper()

	select {
	case got := <-that.ticks:
		return got
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for a tick")
		return tick{}
	}
}

func (that *recorder) nextExpire(t *testing.T) uint64 {
	t.Helper()

	select {
	case got := <-that.expired:
		return got
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for the expiry")
		return 0
	}
}

func waitForTicker(t *testing.T, clock *clockwork.FakeClock) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
}

func TestCountdown_Expires(t *testing.T) {
	// Given: a started countdown of 3 ticks
	clock := clockwork.NewFakeClock()
	rec := newRecorder()
	countdown := New(clock, 3, time.Second, rec.onTick, rec.onExpire)

	countdown.Restart()

	// Then: the full count is reported right away
	first := rec.nextTick(t)
	assert.Equal(t, tick{round: 1, remaining: 3}, first)
	assert.Equal(t, 3, countdown.Remaining())
	waitForTicker(t, clock)

	// When: the clock advances tick by tick
	for _, want := range []int{2, 1, 0} {
		clock.Advance(time.Second)

		// Then: the remaining ticks count down to zero
		got := rec.nextTick(t)
		assert.Equal(t, tick{round: 1, remaining: want}, got)
	}

	// Then: the round expires once and is still current until stopped
	assert.Equal(t, uint64(1), rec.nextExpire(t))
	assert.True(t, countdown.IsCurrent(1))

	countdown.Stop()
	assert.False(t, countdown.IsCurrent(1))
	assert.Empty(t, rec.expired)
}

func TestCountdown_Stop(t *testing.T) {
	// Given: a started countdown
	clock := clockwork.NewFakeClock()
	rec := newRecorder()
	countdown := New(clock, 3, time.Second, rec.onTick, rec.onExpire)

	countdown.Restart()
	rec.nextTick(t)
	waitForTicker(t, clock)

	// When: it is stopped and the time passes
	countdown.Stop()
	clock.Advance(10 * time.Second)

	// Then: nothing is reported any more
	assert.Never(t, func() bool {
		return len(rec.ticks) > 0 || len(rec.expired) > 0
	}, 100*time.Millisecond, 10*time.Millisecond)
	assert.False(t, countdown.IsCurrent(1))
	assert.Equal(t, 0, countdown.Remaining())
}

func TestCountdown_Restart(t *testing.T) {
	// Given: a countdown one tick into its first round
	clock := clockwork.NewFakeClock()
	rec := newRecorder()
	countdown := New(clock, 3, time.Second, rec.onTick, rec.onExpire)

	countdown.Restart()
	rec.nextTick(t)
	waitForTicker(t, clock)
	clock.Advance(time.Second)
	assert.Equal(t, tick{round: 1, remaining: 2}, rec.nextTick(t))

	// When: it is restarted
	countdown.Restart()

	// Then: a new round begins with the full count
	assert.Equal(t, tick{round: 2, remaining: 3}, rec.nextTick(t))
	assert.False(t, countdown.IsCurrent(1))
	assert.True(t, countdown.IsCurrent(2))

	// When: the new round runs out
	for range 3 {
		waitForTicker(t, clock)
		clock.Advance(time.Second)
		got := rec.nextTick(t)
		assert.Equal(t, uint64(2), got.round)
	}

	// Then: only the new round expires
	assert.Equal(t, uint64(2), rec.nextExpire(t))
}

func TestCountdown_StopIsIdempotent(t *testing.T) {
	countdown := New(clockwork.NewFakeClock(), 3, time.Second, nil, nil)

	assert.NotPanics(t, func() {
		countdown.Stop()
		countdown.Stop()
	})
	assert.Equal(t, 0, countdown.Remaining())
}

func TestIsWarning(t *testing.T) {
	assert.False(t, IsWarning(3))
	assert.False(t, IsWarning(2))
	assert.True(t, IsWarning(1))
	assert.False(t, IsWarning(0))
}
