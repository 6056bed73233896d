package countdown

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	DefaultTicks    = 3
	DefaultInterval = time.Second

	// WarningThreshold - remaining ticks at which the readout switches to the warning color.
	WarningThreshold = 1
)

// TickFunc receives the remaining ticks of a round, starting with the full count and ending with 0.
type TickFunc func(round uint64, remaining int)

// ExpireFunc is called once when a round reaches 0 without being restarted or stopped.
type ExpireFunc func(round uint64)

// Countdown - per-turn timer. Every Restart begins a new round and cancels the previous one,
// callbacks of a cancelled round are never delivered.
type Countdown struct {
	clock    clockwork.Clock
	ticks    int
	interval time.Duration
	onTick   TickFunc
	onExpire ExpireFunc

	mu        sync.Mutex
	round     uint64
	running   bool
	remaining int
	cancel    chan struct{}
}

func New(clock clockwork.Clock, ticks int, interval time.Duration, onTick TickFunc, onExpire ExpireFunc) *Countdown {
	if ticks <= 0 {
		ticks = DefaultTicks
	}

	if interval <= 0 {
		interval = DefaultInterval
	}

	if onTick == nil {
		onTick = func(uint64, int) {}
	}

	if onExpire == nil {
		onExpire = func(uint64) {}
	}

	return &Countdown{
		clock:    clock,
		ticks:    ticks,
		interval: interval,
		onTick:   onTick,
		onExpire: onExpire,
	}
}

// Restart - cancels the running round and starts a new one.
func (that *Countdown) Restart() {
	that.mu.Lock()
	that.stopLocked()

	that.round++
	that.running = true
	that.remaining = that.ticks
	that.cancel = make(chan struct{})

	round, cancel := that.round, that.cancel
	that.mu.Unlock()

	go that.run(round, cancel)
}

// Stop - cancels the running round, it does not wait for the round's goroutine.
func (that *Countdown) Stop() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.stopLocked()
}

// IsCurrent - reports whether the round is still running.
func (that *Countdown) IsCurrent(round uint64) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.running && that.round == round
}

// Remaining - ticks left in the running round, 0 when stopped.
func (that *Countdown) Remaining() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	if !that.running {
		return 0
	}

	return that.remaining
}

func (that *Countdown) stopLocked() {
	if !that.running {
		return
	}

	close(that.cancel)
	that.running = false
	that.remaining = 0
}

func (that *Countdown) run(round uint64, cancel <-chan struct{}) {
	ticker := that.clock.NewTicker(that.interval)
	defer ticker.Stop()

	if !that.IsCurrent(round) {
		return
	}

	that.onTick(round, that.ticks)

	for {
		select {
		case <-cancel:
			return
		case <-ticker.Chan():
			remaining, ok := that.tick(round)
			if !ok {
				return
			}

			that.onTick(round, remaining)

			if remaining <= 0 {
				that.onExpire(round)
				return
			}
		}
	}
}

// tick - decrements the round, false when the round was cancelled in the meantime.
func (that *Countdown) tick(round uint64) (int, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if !that.running || that.round != round {
		return 0, false
	}

	that.remaining--

	return that.remaining, true
}

// IsWarning - whether the readout for the remaining ticks is in the warning color.
func IsWarning(remaining int) bool {
	return remaining == WarningThreshold
}
