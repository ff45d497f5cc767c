package guard

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/logger"
)

func TestLocal_AcquireRelease(t *testing.T) {
	g := NewLocal()
	ctx := context.Background()

	release, err := g.Acquire(ctx, "s1")
	require.NoError(t, err)

	_, err = g.Acquire(ctx, "s1")
	assert.ErrorIs(t, err, ErrHeld)

	// Other sessions are independent.
	other, err := g.Acquire(ctx, "s2")
	require.NoError(t, err)
	other()

	release()
	release() // second call is a no-op

	again, err := g.Acquire(ctx, "s1")
	require.NoError(t, err)
	again()
}

func TestLocal_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLocal().Acquire(ctx, "s1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLocal_OneWinnerUnderContention(t *testing.T) {
	g := NewLocal()
	var (
		wins  atomic.Int32
		wg    sync.WaitGroup
		start = make(chan struct{})
		hold  = make(chan struct{})
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			release, err := g.Acquire(context.Background(), "s1")
			if err != nil {
				if !errors.Is(err, ErrHeld) {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			wins.Add(1)
			<-hold
			release()
		}()
	}
	close(start)
	time.Sleep(20 * time.Millisecond)
	close(hold)
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

func TestRedis_AcquireRelease(t *testing.T) {
	addr := os.Getenv("AIBORG_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("AIBORG_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	g, err := NewRedis(ctx, logger.Nop(), RedisOptions{Addr: addr, Prefix: "aiborg:test:" + t.Name() + ":", TTL: time.Second})
	require.NoError(t, err)
	defer g.Close()

	release, err := g.Acquire(ctx, "s1")
	require.NoError(t, err)

	_, err = g.Acquire(ctx, "s1")
	assert.ErrorIs(t, err, ErrHeld)

	release()
	again, err := g.Acquire(ctx, "s1")
	require.NoError(t, err)
	again()
}

func TestRedisOptionsFromEnv(t *testing.T) {
	t.Setenv("AIBORG_REDIS_ADDR", " localhost:6379 ")
	t.Setenv("AIBORG_REDIS_PREFIX", "p:")
	t.Setenv("AIBORG_REDIS_LOCK_TTL", "10s")

	opts := RedisOptionsFromEnv()
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, "p:", opts.Prefix)
	assert.Equal(t, 10*time.Second, opts.TTL)
}

func TestNewRedis_RequiresAddr(t *testing.T) {
	_, err := NewRedis(context.Background(), nil, RedisOptions{})
	assert.Error(t, err)
}
