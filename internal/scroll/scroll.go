// Package scroll decides when a scrolled-up viewport should fetch older
// history and how to re-position after content is prepended. The arithmetic
// is pure; the presentation layer supplies raw scroll metrics and applies
// the returned offsets.
package scroll

import "time"

const (
	DefaultSettle       = 150 * time.Millisecond
	DefaultTopThreshold = 100.0
	DefaultBottomSlack  = 40.0
)

// Mode selects how the presentation layer moves the viewport to the bottom.
type Mode int

const (
	ModeInstant Mode = iota // initial load
	ModeSmooth              // live message while already near the bottom
)

// RestoreOffset returns the scroll position that keeps previously visible
// content stationary after height was added above the viewport. A viewport
// pinned to the very top stays at the top. Call it only after the new
// content has been laid out, so newHeight reflects the prepended messages.
func RestoreOffset(oldHeight, oldTop, newHeight float64) float64 {
	if oldTop == 0 {
		return 0
	}
	return oldTop + (newHeight - oldHeight)
}

// NearBottom reports whether the viewport bottom edge is within slack of
// the content bottom.
func NearBottom(top, height, client, slack float64) bool {
	return height-(top+client) <= slack
}

// BottomTarget returns the scroll position that pins the viewport to the
// newest message.
func BottomTarget(height, client float64) float64 {
	if height <= client {
		return 0
	}
	return height - client
}

// Controller turns raw scroll events into load-older triggers. Events are
// debounced so only the last event of a burst is evaluated, and the trigger
// fires only when the viewport is near the top and the gate allows it.
type Controller struct {
	debounce     *Debouncer
	topThreshold float64
	bottomSlack  float64
	trigger      func()
	gate         func() bool
}

// NewController builds a controller firing trigger after settle-debounced
// near-top scroll events. gate is consulted at fire time and should report
// whether an older fetch is currently worthwhile; nil means always. Zero
// settle/threshold/slack values fall back to the defaults.
func NewController(trigger func(), gate func() bool, settle time.Duration, topThreshold, bottomSlack float64) *Controller {
	if settle <= 0 {
		settle = DefaultSettle
	}
	if topThreshold <= 0 {
		topThreshold = DefaultTopThreshold
	}
	if bottomSlack <= 0 {
		bottomSlack = DefaultBottomSlack
	}
	return &Controller{
		debounce:     NewDebouncer(settle),
		topThreshold: topThreshold,
		bottomSlack:  bottomSlack,
		trigger:      trigger,
		gate:         gate,
	}
}

// OnScroll records a raw scroll event. Metrics from the last event of a
// burst are the ones evaluated once the settle period elapses.
func (c *Controller) OnScroll(top, height, client float64) {
	_ = height
	_ = client
	c.debounce.Call(func() {
		if top > c.topThreshold {
			return
		}
		if c.gate != nil && !c.gate() {
			return
		}
		c.trigger()
	})
}

// ShouldStickToBottom reports whether a live append may auto-scroll the
// viewport down. A reader scrolled up into history must not be yanked back.
func (c *Controller) ShouldStickToBottom(top, height, client float64) bool {
	return NearBottom(top, height, client, c.bottomSlack)
}

// Stop cancels any pending settle timer.
func (c *Controller) Stop() {
	c.debounce.Stop()
}
