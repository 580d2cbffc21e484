// Package pipe 实现进程内有界帧管道
//
// NewPair 创建一对相连的管道端点：socket 端和 I/O 端（或另一个 socket）。
// 每个方向是一条有界的单生产者单消费者队列，高水位按消息数计算。
//
// # 原子提交
//
// 写入方逐帧 Push，帧先暂存；More=false 的帧到达时整条消息一次性
// 提交到队列，读方只会看到完整消息。是否可写只在消息边界判断，
// 因此一条消息要么全部入队，要么一帧都不入队。
//
// # 通知
//
//   - 空队列提交第一条消息时，通知读端 ReadActivated
//   - 读端取走消息使队列从满变为未满时，通知写端 WriteActivated
//   - 一端 Terminate 时，通知另一端 Terminated
//
// # 生命周期
//
// 两端共享一个 refcount.Ref（初值 2），各自 Terminate 时释放一次；
// 两端都终止后回收队列缓冲。对端终止后，本端仍可读完队列中剩余的消息。
package pipe
