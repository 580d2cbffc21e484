// Package refcount 提供原子引用计数器
//
// Counter 是一个 32 位无符号整数，支持原子加（返回旧值）和原子减
// （返回减后是否非零），用作管道和 socket 的共享所有权计数：
//
//	var c refcount.Counter
//	c.Set(2)          // 两个持有者：socket 端和 I/O 端
//	c.Add(1)          // 共享时加一
//	if !c.Sub(1) {    // 释放时减一，返回 false 表示最后一个持有者
//	    dispose()
//	}
//
// # 内存序
//
// Add/Sub 基于 sync/atomic，Go 内存模型保证其为顺序一致，
// 强于获取-释放语义；不需要按平台区分实现。
//
// Set 不是原子操作的语义保证：调用方必须保证没有并发访问，
// 通常只在对象发布给其他 goroutine 之前调用。
package refcount
