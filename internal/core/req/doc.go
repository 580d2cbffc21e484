// Package req 实现请求端（REQ）状态机
//
// 请求端严格交替发送与接收：
//
//	ReadyToSend --Send--> AwaitingReply --Recv--> ReadyToSend
//
// Send 通过 PipeSet 轮询选择可写对端，在正文前加空分隔帧后原子写入，
// 并记住该对端。Recv 只接受该对端的应答：其他对端在此阶段到达的消息
// 会被读出并静默丢弃（亲和性）。
//
// # 错误
//
//   - ErrFSM: 违反收发交替
//   - ErrWouldBlock: 没有可写对端或应答尚未到达
//   - ErrPeerLost: 等待应答期间对端断开，状态重置为 ReadyToSend
//   - ErrMalformedReply: 应答首帧不是空分隔帧，状态同样重置
//
// 所有方法只能由拥有 socket 的 goroutine 调用，从不阻塞。
package req
