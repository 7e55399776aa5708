package timer

import (
	"sync/atomic"
	"time"
)

// clock holds the unix-time in milliseconds, refreshed every Resolution.
var clock = new(atomic.Int64)

// Now returns the cached time. It is imprecise by at most Resolution, which is fine
// for I/O deadlines and nothing else.
func Now() time.Time {
	millis := clock.Load()
	return time.Unix(millis/1000, (millis%1000)*1e6)
}

// Resolution is how often the cached time is refreshed.
const Resolution = 500 * time.Millisecond

func init() {
	// store once synchronously, otherwise an early caller may observe the zero time
	clock.Store(time.Now().UnixMilli())

	go func() {
		for {
			time.Sleep(Resolution)
			clock.Store(time.Now().UnixMilli())
		}
	}()
}
