package refcount

import "sync/atomic"

// Counter 原子计数器
//
// 零值可用，初值为 0。不可复制。
type Counter struct {
	_     noCopy
	value atomic.Uint32
}

// New 创建初值为 v 的计数器
func New(v uint32) *Counter {
	c := &Counter{}
	c.value.Store(v)
	return c
}

// Set 设置计数值（不要求与其他操作并发安全）
func (c *Counter) Set(v uint32) {
	c.value.Store(v)
}

// Add 原子加 k，返回旧值
func (c *Counter) Add(k uint32) uint32 {
	return c.value.Add(k) - k
}

// Sub 原子减 k，返回减后的值是否非零
func (c *Counter) Sub(k uint32) bool {
	return c.value.Add(^(k - 1)) != 0
}

// Get 读取当前值
func (c *Counter) Get() uint32 {
	return c.value.Load()
}

// noCopy 供 go vet copylocks 检查使用
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
