package lazyinit

import (
	"fmt"
	"sync"

	"github.com/dep2p/go-zmsg/pkg/lib/log"
	"github.com/dep2p/go-zmsg/pkg/types"
)

var logger = log.Logger("core/lazyinit")

// Resource 引用计数的共享资源
type Resource struct {
	name     string
	init     func() error
	teardown func()

	mu    sync.RWMutex
	refs  int
	ready bool
}

// New 创建共享资源
//
// init 在引用计数 0→1 时执行，teardown 在 1→0 时执行，二者均可为 nil。
func New(name string, init func() error, teardown func()) *Resource {
	return &Resource{
		name:     name,
		init:     init,
		teardown: teardown,
	}
}

// Acquire 获取一个引用
//
// 若为第一个引用则执行初始化。初始化失败时引用计数保持不变，
// 返回包装了 types.ErrSharedInit 的错误。
func (r *Resource) Acquire() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.refs == 0 && r.init != nil {
		if err := r.init(); err != nil {
			logger.Error("共享资源初始化失败", "resource", r.name, "error", err)
			return fmt.Errorf("%w: %s: %v", types.ErrSharedInit, r.name, err)
		}
		logger.Debug("共享资源已初始化", "resource", r.name)
	}

	r.refs++
	r.ready = true
	return nil
}

// MustAcquire 获取引用，初始化失败时 panic
func (r *Resource) MustAcquire() {
	if err := r.Acquire(); err != nil {
		panic(err)
	}
}

// Release 释放一个引用
//
// 最后一个引用释放时执行拆除。没有引用时调用是空操作。
func (r *Resource) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.refs == 0 {
		logger.Warn("释放未获取的共享资源", "resource", r.name)
		return
	}

	r.refs--
	if r.refs > 0 {
		return
	}

	r.ready = false
	if r.teardown != nil {
		r.teardown()
	}
	logger.Debug("共享资源已拆除", "resource", r.name)
}

// With 在资源可用期间执行 fn
//
// 资源未初始化或已拆除时返回 types.ErrNotInitialized。
func (r *Resource) With(fn func() error) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.ready {
		return fmt.Errorf("%w: %s", types.ErrNotInitialized, r.name)
	}
	return fn()
}

// Refs 当前引用数
func (r *Resource) Refs() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.refs
}

// Ready 资源是否已初始化
func (r *Resource) Ready() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ready
}

// Name 资源名称
func (r *Resource) Name() string {
	return r.name
}
