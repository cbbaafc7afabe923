package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUptime_MockClock(t *testing.T) {
	t.Parallel()

	clock := NewMockClock(time.Unix(1000, 0))
	up := NewUptime(clock)
	assert.Equal(t, int64(0), up.Millis())

	clock.Advance(2500 * time.Millisecond)
	assert.Equal(t, int64(2500), up.Millis())
	assert.Equal(t, int64(2), up.Seconds())
}

func TestMockClock_SleepRecordsAndAdvances(t *testing.T) {
	t.Parallel()

	start := time.Unix(0, 0)
	clock := NewMockClock(start)
	calls := 0
	clock.OnSleep(func(time.Duration) { calls++ })

	clock.Sleep(time.Millisecond)
	clock.Sleep(3 * time.Millisecond)

	assert.Equal(t, []time.Duration{time.Millisecond, 3 * time.Millisecond}, clock.Sleeps())
	assert.Equal(t, 4*time.Millisecond, clock.Since(start))
	assert.Equal(t, 2, calls)
}

func TestUptime_RealClockMonotonic(t *testing.T) {
	t.Parallel()

	up := NewUptime(nil)
	first := up.Millis()
	time.Sleep(5 * time.Millisecond)
	assert.GreaterOrEqual(t, up.Millis(), first+5)
}
