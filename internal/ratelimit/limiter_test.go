package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
)

func TestLimiterAllowsBurst(t *testing.T) {
	l := New("test", 2)

	assert.True(t, l.Allow())
	assert.True(t, l.Allow())
	assert.False(t, l.Allow())
}

func TestLimiterWaitRespectsContext(t *testing.T) {
	l := New("test", 1)

	// Drain the burst so the next Wait has to block
	assert.True(t, l.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := l.Wait(ctx)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit wait for test")
}

func TestLimiterName(t *testing.T) {
	assert.Equal(t, "Wikipedia", New("Wikipedia", 1).Name())
}
