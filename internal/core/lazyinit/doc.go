// Package lazyinit 提供引用计数的共享资源初始化/拆除
//
// 某些底层库（典型如密码学库）既不可重入，也不能重复初始化，
// 但可能被许多对端同时使用。Resource 将初始化推迟到第一次 Acquire，
// 将拆除推迟到最后一次 Release：
//
//	res := lazyinit.New("crypto", open, close)
//	if err := res.Acquire(); err != nil {
//	    // 初始化失败不可恢复：半初始化的共享资源不能安全使用
//	}
//	defer res.Release()
//
//	err := res.With(func() error {
//	    // 此处保证资源已初始化且拆除尚未开始
//	    return nil
//	})
//
// # 并发安全
//
// Acquire/Release 由同一把锁互斥，初始化与拆除不会并发执行，
// 也不会与其他 Acquire/Release 并发执行。With 持读锁，
// 与初始化/拆除互斥。
//
// # 生命周期
//
// 拆除由应用显式驱动（最后一次 Release），不依赖进程退出时的隐式清理。
package lazyinit
