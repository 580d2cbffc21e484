// Package socket 实现 socket 基座
//
// Base 把传输层、管道与状态机（req.Endpoint / router.Router）连接起来：
//
//   - 传输层在任意 goroutine 调用 AttachPipe；管道通知（Terminated）
//     同样来自 I/O goroutine。它们只写入邮箱，不直接修改对端列表。
//   - 持有 socket 的 goroutine 在每次操作前调用 process，按顺序执行
//     邮箱中的挂接/终止命令，这是唯一修改状态机对端列表的地方。
//   - 对端断开但管道仍有未读消息时进入 Draining，读空后才摘除。
//   - 每个挂接的管道持有 socket 的一个引用；Close 后待所有管道
//     两端都终止，Done 通道关闭。
//
// Changed 返回一个在任何可能改变收发结果的事件发生时关闭的通道，
// 调用方据此实现带 context 的阻塞等待。
package socket
