package circuit

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	b := New("verdict-cache")
	assert.Equal(t, "verdict-cache", b.Name())
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, "closed", b.State().String())

	for range 4 {
		useFallback, _ := b.RecordFailure()
		require.False(t, useFallback)
	}
	useFallback, change := b.RecordFailure()
	assert.True(t, useFallback)
	assert.True(t, change.Opened)
	assert.Equal(t, "open", b.State().String())
}

// Each step records one result: 'f' for a failure, 's' for a success.
func TestBreaker_Sequences(t *testing.T) {
	tests := []struct {
		name     string
		steps    string
		opened   int
		closed   int
		expected State
	}{
		{name: "below failure threshold", steps: "ff", expected: StateClosed},
		{name: "opens at threshold", steps: "fff", opened: 1, expected: StateOpen},
		{name: "success resets failure streak", steps: "ffsff", expected: StateClosed},
		{name: "stays open on further failures", steps: "fffff", opened: 1, expected: StateOpen},
		{name: "needs consecutive successes to close", steps: "fffs", opened: 1, expected: StateOpen},
		{name: "closes after two successes", steps: "fffss", opened: 1, closed: 1, expected: StateClosed},
		{name: "failure while open restarts success count", steps: "fffsfs", opened: 1, expected: StateOpen},
		{name: "reopens after closing", steps: "fffssfff", opened: 2, closed: 1, expected: StateOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New("redis", WithFailureThreshold(3), WithSuccessThreshold(2))
			var opened, closed int
			for _, step := range tt.steps {
				var change StateChange
				if step == 'f' {
					_, change = b.RecordFailure()
				} else {
					_, change = b.RecordSuccess()
				}
				if change.Opened {
					opened++
				}
				if change.Closed {
					closed++
				}
			}
			assert.Equal(t, tt.expected, b.State())
			assert.Equal(t, tt.opened, opened)
			assert.Equal(t, tt.closed, closed)
		})
	}
}

func TestBreaker_RecordSuccessReportsPrimary(t *testing.T) {
	b := New("redis", WithFailureThreshold(1), WithSuccessThreshold(2))

	usePrimary, _ := b.RecordSuccess()
	assert.True(t, usePrimary, "closed breaker keeps the primary")

	b.RecordFailure()
	usePrimary, _ = b.RecordSuccess()
	assert.False(t, usePrimary, "one success is not enough")
	usePrimary, _ = b.RecordSuccess()
	assert.True(t, usePrimary)
}

func TestBreaker_IgnoresNonPositiveThresholds(t *testing.T) {
	b := New("redis", WithFailureThreshold(0), WithSuccessThreshold(-1))
	for range 4 {
		b.RecordFailure()
	}
	assert.False(t, b.IsOpen())
	b.RecordFailure()
	assert.True(t, b.IsOpen())
}

func TestBreaker_Reset(t *testing.T) {
	b := New("redis", WithFailureThreshold(1))
	b.RecordFailure()
	require.True(t, b.IsOpen())

	b.Reset()
	assert.False(t, b.IsOpen())
	useFallback, _ := b.RecordFailure()
	assert.True(t, useFallback)
}

func TestBreaker_ConcurrentUse(t *testing.T) {
	b := New("redis", WithFailureThreshold(50))

	var wg sync.WaitGroup
	var mu sync.Mutex
	opened := 0
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, change := b.RecordFailure(); change.Opened {
				mu.Lock()
				opened++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.True(t, b.IsOpen())
	assert.Equal(t, 1, opened)
}
