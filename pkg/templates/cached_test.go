package templates

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCached_FetchesOnce(t *testing.T) {
	var calls atomic.Int32
	src := SourceFunc(func(_ context.Context, title string) (string, error) {
		calls.Add(1)
		if title == "Template:Missing" {
			return "", ErrNotFound
		}
		return "body of " + title, nil
	})
	c, err := NewCached(src, 2)
	require.NoError(t, err)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		text, err := c.Fetch(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "body of Template:A", text)
	}
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, c.Len())

	_, err = c.Fetch(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = c.Fetch(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int32(3), calls.Load(), "failures are not cached")

	c.Purge()
	assert.Equal(t, 0, c.Len())
}

func TestCached_Evicts(t *testing.T) {
	var calls atomic.Int32
	src := SourceFunc(func(_ context.Context, title string) (string, error) {
		calls.Add(1)
		return title, nil
	})
	c, err := NewCached(src, 1)
	require.NoError(t, err)
	ctx := context.Background()

	_, _ = c.Fetch(ctx, "a")
	_, _ = c.Fetch(ctx, "b")
	_, _ = c.Fetch(ctx, "a")
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, 1, c.Len())
}

func TestCached_CollapsesConcurrentFetches(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	src := SourceFunc(func(_ context.Context, title string) (string, error) {
		calls.Add(1)
		<-release
		return "x", nil
	})
	c, err := NewCached(src, 0)
	require.NoError(t, err)

	const n = 8
	var started, done sync.WaitGroup
	started.Add(n)
	done.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer done.Done()
			started.Done()
			text, err := c.Fetch(context.Background(), "t")
			assert.NoError(t, err)
			assert.Equal(t, "x", text)
		}()
	}
	started.Wait()
	close(release)
	done.Wait()

	assert.LessOrEqual(t, calls.Load(), int32(n))
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
	text, err := c.Fetch(context.Background(), "t")
	require.NoError(t, err)
	assert.Equal(t, "x", text)
}
