// Package idgen 生成伪随机 32 位标识
//
// Generator 用当前时间（微秒）与进程号组合出种子，每次 Next 取底层
// 生成器的两次 31 位抽样拼成 32 位值。用于铸造匿名对端的路由标识，
// 不具备密码学强度；安全敏感的标识使用 SecureNext（基于 crypto 包）。
// 路由端 socket 创建时用 SecureNext 取匿名标识计数起点，随机源未获取时
// 退回 Next。
//
// Generator 不是并发安全的：多 goroutine 使用时由调用方串行化，
// 或各自持有独立实例。包级函数 Next 内部加锁，可并发调用。
package idgen
