// Package pipeset 管理 socket 的对端管道集合
//
// PipeSet 按连接顺序保存对端（Peer），为发送提供轮询（round-robin）
// 的可写对端选择，为接收提供同样方式的可读对端选择，
// 并支持按路由标识查找。
//
// # 游标
//
// 发送游标指向下一次选择的起点。NextWritable 从游标开始环形扫描，
// 返回第一个可写对端并把游标移到其后一位，因此每次发送都优先选择
// 等待最久的对端。读取游标独立维护，避免收发互相干扰。
//
// Detach 移除的下标不大于游标时游标减一（变为负数时回到 0），
// 保证非空集合中 0 <= cursor < len。
//
// # 并发
//
// PipeSet 不是并发安全的，只能由拥有 socket 的 goroutine 使用。
// 管道本身可被 I/O goroutine 并发读写。
package pipeset
