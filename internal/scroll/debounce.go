package scroll

import (
	"sync"
	"time"
)

// Clock abstracts timer creation so the debouncer can run against a fake
// clock in tests.
type Clock interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer is the subset of *time.Timer the debouncer needs.
type Timer interface {
	Stop() bool
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// Debouncer coalesces a burst of calls into one: each Call cancels the
// previous pending one, and only the last survives the settle period.
type Debouncer struct {
	clock Clock
	d     time.Duration

	mu    sync.Mutex
	timer Timer
}

func NewDebouncer(d time.Duration) *Debouncer {
	return &Debouncer{clock: realClock{}, d: d}
}

func newDebouncerWithClock(d time.Duration, c Clock) *Debouncer {
	return &Debouncer{clock: c, d: d}
}

// Call schedules fn after the settle period, replacing any pending call.
func (b *Debouncer) Call(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = b.clock.AfterFunc(b.d, fn)
}

// Stop cancels the pending call, if any.
func (b *Debouncer) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}
