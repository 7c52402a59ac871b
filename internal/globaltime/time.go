package globaltime

import (
	"sync"
	"time"
)

// The clock is swappable so tests can pin run timestamps.
var (
	mu      sync.RWMutex
	nowFunc = time.Now
)

func Now() time.Time {
	mu.RLock()
	defer mu.RUnlock()
	return nowFunc()
}

func UTC() time.Time {
	return Now().UTC()
}

// Since is time.Since against the swappable clock.
func Since(start time.Time) time.Duration {
	return Now().Sub(start)
}

func SetMockTime(t time.Time) {
	mu.Lock()
	defer mu.Unlock()
	nowFunc = func() time.Time { return t }
}

func ResetTime() {
	mu.Lock()
	defer mu.Unlock()
	nowFunc = time.Now
}
