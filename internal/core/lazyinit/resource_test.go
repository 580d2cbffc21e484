package lazyinit

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-zmsg/pkg/types"
)

// TestResource_InitAndTeardownOnce 测试初始化和拆除各执行一次
func TestResource_InitAndTeardownOnce(t *testing.T) {
	var inits, teardowns int
	r := New("test", func() error { inits++; return nil }, func() { teardowns++ })

	require.NoError(t, r.Acquire())
	require.NoError(t, r.Acquire())
	require.NoError(t, r.Acquire())
	assert.Equal(t, 1, inits)
	assert.Equal(t, 3, r.Refs())
	assert.True(t, r.Ready())

	r.Release()
	r.Release()
	assert.Equal(t, 0, teardowns)
	assert.True(t, r.Ready())

	r.Release()
	assert.Equal(t, 1, teardowns)
	assert.False(t, r.Ready())
	assert.Equal(t, 0, r.Refs())
}

// TestResource_Reinitialize 测试拆除后再次获取会重新初始化
func TestResource_Reinitialize(t *testing.T) {
	var inits int
	r := New("test", func() error { inits++; return nil }, nil)

	require.NoError(t, r.Acquire())
	r.Release()
	require.NoError(t, r.Acquire())
	r.Release()

	assert.Equal(t, 2, inits)
}

// TestResource_InitFailure 测试初始化失败
func TestResource_InitFailure(t *testing.T) {
	boom := errors.New("boom")
	r := New("test", func() error { return boom }, func() { t.Fatal("teardown should not run") })

	err := r.Acquire()
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrSharedInit)
	assert.Equal(t, 0, r.Refs())
	assert.False(t, r.Ready())

	assert.Panics(t, r.MustAcquire)
}

// TestResource_ReleaseWithoutAcquire 测试未获取时释放是空操作
func TestResource_ReleaseWithoutAcquire(t *testing.T) {
	var teardowns int
	r := New("test", nil, func() { teardowns++ })

	r.Release()
	assert.Equal(t, 0, teardowns)
	assert.Equal(t, 0, r.Refs())
}

// TestResource_With 测试 With 在资源不可用时失败
func TestResource_With(t *testing.T) {
	r := New("test", nil, nil)

	err := r.With(func() error { return nil })
	assert.ErrorIs(t, err, types.ErrNotInitialized)

	require.NoError(t, r.Acquire())
	called := false
	require.NoError(t, r.With(func() error { called = true; return nil }))
	assert.True(t, called)

	r.Release()
	assert.ErrorIs(t, r.With(func() error { return nil }), types.ErrNotInitialized)
}

// TestResource_ConcurrentAcquireRelease 并发获取/释放时初始化与拆除不重叠
func TestResource_ConcurrentAcquireRelease(t *testing.T) {
	var active atomic.Int32
	var overlap atomic.Bool
	var inits, teardowns atomic.Int32

	enter := func() {
		if active.Add(1) != 1 {
			overlap.Store(true)
		}
		time.Sleep(50 * time.Microsecond)
		active.Add(-1)
	}

	r := New("test",
		func() error { enter(); inits.Add(1); return nil },
		func() { enter(); teardowns.Add(1) },
	)

	const goroutines = 32
	const rounds = 50

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := 0; k < rounds; k++ {
				if err := r.Acquire(); err != nil {
					t.Error(err)
					return
				}
				_ = r.With(func() error { return nil })
				r.Release()
			}
		}()
	}
	wg.Wait()

	assert.False(t, overlap.Load(), "初始化/拆除发生了并发执行")
	assert.Equal(t, inits.Load(), teardowns.Load())
	assert.GreaterOrEqual(t, inits.Load(), int32(1))
	assert.Equal(t, 0, r.Refs())
}
