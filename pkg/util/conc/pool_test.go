package conc

import (
	"sync/atomic"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool(t *testing.T) {
	var pre atomic.Int32
	pool := NewPool[int](2, WithPreHandler(func() { pre.Add(1) }))
	defer pool.Release()
	assert.Equal(t, 2, pool.Cap())

	futures := make([]*Future[int], 0, 10)
	for i := 0; i < 10; i++ {
		futures = append(futures, pool.Submit(func() (int, error) {
			return i * i, nil
		}))
	}
	require.NoError(t, AwaitAll(futures...))
	for i, f := range futures {
		assert.True(t, f.Done())
		assert.Equal(t, i*i, f.Value())
	}
	assert.EqualValues(t, 10, pre.Load())
}

func TestPoolErrors(t *testing.T) {
	pool := NewPool[string](0)
	defer pool.Release()
	assert.Positive(t, pool.Cap())

	boom := errors.New("boom")
	ok := pool.Submit(func() (string, error) { return "ok", nil })
	bad := pool.Submit(func() (string, error) { return "ignored", boom })

	assert.ErrorIs(t, AwaitAll(ok, bad), boom)
	v, err := bad.Await()
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, v)
	assert.NoError(t, ok.Err())
}

func TestPoolConcealPanic(t *testing.T) {
	pool := NewPool[int](1, WithConcealPanic(true))
	defer pool.Release()

	f := pool.Submit(func() (int, error) { panic("bad task") })
	<-f.Inner()
	assert.ErrorContains(t, f.Err(), "bad task")

	next := pool.Submit(func() (int, error) { return 1, nil })
	assert.Equal(t, 1, next.Value())
}

func TestPoolNonBlocking(t *testing.T) {
	pool := NewPool[int](1, WithNonBlocking(true), WithPreAlloc(true), WithDisablePurge(true))
	defer pool.Release()

	release := make(chan struct{})
	busy := pool.Submit(func() (int, error) {
		<-release
		return 1, nil
	})
	overload := pool.Submit(func() (int, error) { return 2, nil })
	assert.Error(t, overload.Err())
	assert.True(t, overload.Done())

	close(release)
	assert.Equal(t, 1, busy.Value())
	assert.Contains(t, pool.String(), "cap=1")
}
