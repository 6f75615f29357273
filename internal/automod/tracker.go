package automod

import (
	"time"

	"luna-guard/internal/utils"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	windowMessages = "messages"
	windowImages   = "images"
)

// Tracker owns the in-memory sliding windows used by the rate detectors.
// Idle windows are evicted; losing one only means a burst is under-counted.
type Tracker struct {
	windows *expirable.LRU[string, *utils.SlidingWindow]
}

func NewTracker(capacity int, idle time.Duration) *Tracker {
	if capacity <= 0 {
		capacity = 50000
	}
	if idle <= 0 {
		idle = 10 * time.Minute
	}
	return &Tracker{windows: expirable.NewLRU[string, *utils.SlidingWindow](capacity, nil, idle)}
}

// Record appends an event for key and returns the number of events within interval.
func (t *Tracker) Record(key string, interval time.Duration, at time.Time) int {
	return t.window(key, interval).Add(at)
}

func (t *Tracker) Count(key string, interval time.Duration, at time.Time) int {
	return t.window(key, interval).Count(at)
}

func (t *Tracker) Reset(key string) {
	if window, ok := t.windows.Peek(key); ok {
		window.Reset()
	}
}

func (t *Tracker) Len() int {
	return t.windows.Len()
}

func (t *Tracker) window(key string, interval time.Duration) *utils.SlidingWindow {
	window, ok := t.windows.Get(key)
	if !ok || window.Window() != interval {
		window = utils.NewSlidingWindow(interval)
	}
	// Add refreshes the idle timer for the key.
	t.windows.Add(key, window)
	return window
}

func windowKey(guildID, userID, kind string) string {
	return guildID + ":" + userID + ":" + kind
}
