// Package crypto 提供进程级共享的密码学随机源
//
// 随机源在第一次 Acquire 时从系统熵源取 32 字节密钥和 12 字节随机数，
// 构造 ChaCha20 密钥流；最后一次 Release 时清零密钥并丢弃状态。
// 初始化/拆除由 lazyinit.Resource 保证互斥且只在 0↔1 边界执行。
//
//	if err := crypto.Acquire(); err != nil {
//	    return err // 不可恢复
//	}
//	defer crypto.Release()
//
//	nonce := make([]byte, 24)
//	if _, err := crypto.Read(nonce); err != nil { ... }
//
// 安全敏感路径上的标识或随机数必须从这里取得，而不是 idgen。
package crypto
