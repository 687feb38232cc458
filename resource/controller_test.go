package resource

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilControllerIsNoop(t *testing.T) {
	var c *Controller

	assert.NoError(t, c.AcquireMemory(context.Background(), 1<<20))
	c.ReleaseMemory(1 << 20)
	assert.Equal(t, int64(0), c.MemoryUsed())
	assert.NoError(t, c.WaitIO(context.Background(), 1<<20))
}

func TestMemoryTracking(t *testing.T) {
	c := NewController(Config{})

	require.NoError(t, c.AcquireMemory(context.Background(), 100))
	require.NoError(t, c.AcquireMemory(context.Background(), 50))
	assert.Equal(t, int64(150), c.MemoryUsed())

	c.ReleaseMemory(100)
	assert.Equal(t, int64(50), c.MemoryUsed())

	c.ReleaseMemory(50)
	assert.Equal(t, int64(0), c.MemoryUsed())
}

func TestMemoryLimitBlocks(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})

	require.NoError(t, c.AcquireMemory(context.Background(), 80))

	// A reservation that does not fit must block until released or ctx ends.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := c.AcquireMemory(ctx, 50)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	c.ReleaseMemory(80)
	require.NoError(t, c.AcquireMemory(context.Background(), 50))
	c.ReleaseMemory(50)
}

func TestAcquireZeroIsNoop(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 10})
	assert.NoError(t, c.AcquireMemory(context.Background(), 0))
	assert.Equal(t, int64(0), c.MemoryUsed())
}

func TestWaitIOUnlimited(t *testing.T) {
	c := NewController(Config{})
	assert.NoError(t, c.WaitIO(context.Background(), 1<<30))
}

func TestWaitIOLargerThanBurst(t *testing.T) {
	// Requests above the burst are split into chunks rather than rejected.
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})
	assert.NoError(t, c.WaitIO(context.Background(), (1<<20)+1))
}

func TestWaitIOCanceled(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	// Draining 100 bytes at 1 byte/sec cannot finish in time.
	err := c.WaitIO(ctx, 100)
	assert.Error(t, err)
}
