package circuit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBreakerStartsClosed(t *testing.T) {
	b := New("lookup")
	assert.Equal(t, "lookup", b.Name())
	assert.Equal(t, StateClosed, b.State())
	assert.False(t, b.IsOpen())
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	b := New("lookup", WithFailureThreshold(3))

	for i := 0; i < 2; i++ {
		useFallback, change := b.RecordFailure()
		assert.False(t, useFallback, "failure %d is below the threshold", i+1)
		assert.False(t, change.Opened)
	}

	useFallback, change := b.RecordFailure()
	assert.True(t, useFallback)
	assert.True(t, change.Opened)
	assert.True(t, b.IsOpen())

	// Further failures keep signalling the fallback without re-transitioning.
	useFallback, change = b.RecordFailure()
	assert.True(t, useFallback)
	assert.False(t, change.Opened)
}

func TestBreakerSuccessResetsTheFailureRun(t *testing.T) {
	b := New("lookup", WithFailureThreshold(2))

	b.RecordFailure()
	b.RecordSuccess()
	// The run restarts, so a single failure is not enough to open.
	useFallback, change := b.RecordFailure()
	assert.False(t, useFallback)
	assert.False(t, change.Opened)
	assert.False(t, b.IsOpen())
}

func TestBreakerClosesAfterSuccessThreshold(t *testing.T) {
	b := New("lookup", WithFailureThreshold(1), WithSuccessThreshold(2))

	b.RecordFailure()
	assert.True(t, b.IsOpen())

	usePrimary, change := b.RecordSuccess()
	assert.False(t, usePrimary, "one success is below the close threshold")
	assert.False(t, change.Closed)
	assert.True(t, b.IsOpen())

	usePrimary, change = b.RecordSuccess()
	assert.True(t, usePrimary)
	assert.True(t, change.Closed)
	assert.False(t, b.IsOpen())
}

func TestBreakerFailureWhileOpenResetsSuccessRun(t *testing.T) {
	b := New("lookup", WithFailureThreshold(1), WithSuccessThreshold(2))

	b.RecordFailure()
	b.RecordSuccess()
	// The intervening failure discards the accumulated success.
	b.RecordFailure()
	b.RecordSuccess()
	assert.True(t, b.IsOpen(), "success run must restart after a failure")

	b.RecordSuccess()
	assert.False(t, b.IsOpen())
}

func TestBreakerReset(t *testing.T) {
	b := New("lookup", WithFailureThreshold(2))

	b.RecordFailure()
	b.RecordFailure()
	assert.True(t, b.IsOpen())

	b.Reset()
	assert.Equal(t, StateClosed, b.State())

	// Counts are cleared too; the threshold applies from scratch.
	b.RecordFailure()
	assert.False(t, b.IsOpen())
}
