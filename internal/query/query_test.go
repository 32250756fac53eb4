package query

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counter(value string, calls *int32) func(context.Context) (string, error) {
	return func(context.Context) (string, error) {
		atomic.AddInt32(calls, 1)
		return value, nil
	}
}

func TestNewKeyNormalizesParameters(t *testing.T) {
	assert.Equal(t, NewKey("color", 5).String(), NewKey("color", "5").String())
	assert.Equal(t, NewKey("product-variants", int64(7), 2).String(), "product-variants/7/2")
	assert.True(t, NewKey("product-variants", 7, 2).HasPrefix(NewKey("product-variants")))
	assert.False(t, NewKey("color", 5).HasPrefix(NewKey("colors")))
	assert.False(t, NewKey("colors").HasPrefix(NewKey("colors", 1)))
	assert.True(t, NewKey("a", "b").Equal(Key{"a", "b"}))
	assert.NotEqual(t, NewKey("a/b").String(), NewKey("a", "b").String())
}

func TestFetchMemoizesUntilInvalidated(t *testing.T) {
	ctx := context.Background()
	c := New()
	var calls int32
	key := NewKey("colors")

	for i := 0; i < 3; i++ {
		v, err := Fetch(ctx, c, key, counter("red", &calls))
		require.NoError(t, err)
		assert.Equal(t, "red", v)
	}
	assert.EqualValues(t, 1, calls)

	assert.Equal(t, 1, c.Invalidate(key))
	_, err := Fetch(ctx, c, key, counter("red", &calls))
	require.NoError(t, err)
	assert.EqualValues(t, 2, calls)
}

func TestFetchSharesInFlightRead(t *testing.T) {
	ctx := context.Background()
	c := New()
	var calls int32
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	fn := func(context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		once.Do(func() { close(started) })
		<-release
		return 42, nil
	}

	var wg sync.WaitGroup
	results := make([]int, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := Fetch(ctx, c, NewKey("sizes"), fn)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	<-started
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, calls)
	for _, v := range results {
		assert.Equal(t, 42, v)
	}
}

func TestInvalidateMatchesKeyPrefix(t *testing.T) {
	ctx := context.Background()
	c := New()
	var calls int32
	page1 := NewKey("product-variants", 7, 1)
	page2 := NewKey("product-variants", 7, 2)
	colors := NewKey("colors")

	for _, k := range []Key{page1, page2, colors} {
		_, err := Fetch(ctx, c, k, counter(k.String(), &calls))
		require.NoError(t, err)
	}
	require.EqualValues(t, 3, calls)

	assert.Equal(t, 2, c.Invalidate(NewKey("product-variants")))
	assert.False(t, c.IsFresh(page1))
	assert.False(t, c.IsFresh(page2))
	assert.True(t, c.IsFresh(colors))
	assert.Equal(t, 3, c.Len())
}

func TestPagesAreCachedSeparately(t *testing.T) {
	ctx := context.Background()
	c := New()
	var calls int32
	page1 := NewKey("product-variants", 7, 1)
	page2 := NewKey("product-variants", 7, 2)

	v1, err := Fetch(ctx, c, page1, counter("p1", &calls))
	require.NoError(t, err)
	v2, err := Fetch(ctx, c, page2, counter("p2", &calls))
	require.NoError(t, err)
	again, err := Fetch(ctx, c, page1, counter("other", &calls))
	require.NoError(t, err)

	assert.Equal(t, "p1", v1)
	assert.Equal(t, "p2", v2)
	assert.Equal(t, "p1", again)
	assert.EqualValues(t, 2, calls)
}

func TestFailedReadKeepsPreviousEntry(t *testing.T) {
	ctx := context.Background()
	c := New()
	key := NewKey("colors")
	var calls int32
	_, err := Fetch(ctx, c, key, counter("cached", &calls))
	require.NoError(t, err)
	c.Invalidate(key)

	boom := errors.New("boom")
	_, err = Fetch(ctx, c, key, func(context.Context) (string, error) { return "", boom })
	require.ErrorIs(t, err, boom)

	v, ok := c.Peek(key)
	require.True(t, ok)
	assert.Equal(t, "cached", v)
	assert.False(t, c.IsFresh(key))
}

func TestMutateInvalidatesOnlyOnSuccess(t *testing.T) {
	ctx := context.Background()
	c := New()
	key := NewKey("colors")
	var calls int32
	_, err := Fetch(ctx, c, key, counter("x", &calls))
	require.NoError(t, err)

	boom := errors.New("server down")
	_, err = Mutate(ctx, c, func(context.Context) (string, error) { return "", boom }, key)
	require.ErrorIs(t, err, boom)
	assert.True(t, c.IsFresh(key))

	out, err := Mutate(ctx, c, func(context.Context) (string, error) { return "ok", nil }, key)
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.False(t, c.IsFresh(key))
}

func TestReadInvalidatedInFlightIsNotStored(t *testing.T) {
	ctx := context.Background()
	c := New()
	key := NewKey("product-variants", 7, 1)
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan string)

	go func() {
		v, err := Fetch(ctx, c, key, func(context.Context) (string, error) {
			close(started)
			<-release
			return "old", nil
		})
		assert.NoError(t, err)
		done <- v
	}()
	<-started
	c.Invalidate(NewKey("product-variants"))
	close(release)

	assert.Equal(t, "old", <-done)
	assert.False(t, c.IsFresh(key))

	var calls int32
	v, err := Fetch(ctx, c, key, counter("new", &calls))
	require.NoError(t, err)
	assert.Equal(t, "new", v)
	assert.EqualValues(t, 1, calls)
}

func TestFetchRejectsMismatchedType(t *testing.T) {
	ctx := context.Background()
	c := New()
	key := NewKey("colors")
	_, err := Fetch(ctx, c, key, func(context.Context) (int, error) { return 1, nil })
	require.NoError(t, err)

	_, err = Fetch(ctx, c, key, func(context.Context) (string, error) { return "", nil })
	assert.Error(t, err)
}
