package refcount

import "sync"

// Ref 共享所有权句柄
//
// 计数归零时恰好执行一次 dispose。用于管道对：socket 端与 I/O 端
// 各持有一个引用，两端都释放后才回收管道缓冲。
type Ref struct {
	count   Counter
	once    sync.Once
	dispose func()
}

// NewRef 创建初始持有者数为 holders 的引用
func NewRef(holders uint32, dispose func()) *Ref {
	r := &Ref{dispose: dispose}
	r.count.Set(holders)
	return r
}

// Acquire 增加一个持有者，返回之前的持有者数
func (r *Ref) Acquire() uint32 {
	return r.count.Add(1)
}

// Release 释放一个持有者；最后一个持有者释放时执行 dispose 并返回 true
func (r *Ref) Release() bool {
	if r.count.Sub(1) {
		return false
	}
	r.once.Do(func() {
		if r.dispose != nil {
			r.dispose()
		}
	})
	return true
}

// Holders 当前持有者数
func (r *Ref) Holders() uint32 {
	return r.count.Get()
}
