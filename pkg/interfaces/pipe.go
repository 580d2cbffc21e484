// Package interfaces 定义 go-zmsg 公共接口
//
// 本文件定义 Pipe 接口：socket 与单个对端连接之间的有界有序帧队列。
package interfaces

import "github.com/dep2p/go-zmsg/pkg/types"

// Pipe 管道的一端
//
// 每端恰好有一个生产者和一个消费者：socket 端由拥有 socket 的
// goroutine 读写，另一端由 I/O goroutine 读写。
type Pipe interface {
	// Push 写入一帧；more=false 的帧提交整条消息
	//
	// 在消息边界处若队列已满或对端已终止则返回 false，
	// 此时不会写入任何帧。
	Push(data []byte, more bool) bool

	// Rollback 丢弃尚未提交的暂存帧
	Rollback()

	// Pop 读取下一帧，没有已提交的消息时返回 false
	Pop() (types.Frame, bool)

	// ProbeWritable 是否可以开始写入一条新消息
	ProbeWritable() bool

	// ProbeReadable 是否有已提交的消息可读
	ProbeReadable() bool

	// Terminate 关闭本端并释放本端持有的引用（幂等）
	Terminate()

	// Terminated 本端是否已终止
	Terminated() bool

	// PeerTerminated 对端是否已终止
	PeerTerminated() bool

	// SetEvents 设置本端通知接收者
	SetEvents(events PipeEvents)

	// RoutingID 对端在握手中声明的路由标识
	RoutingID() types.RoutingID

	// Endpoint 建立该管道的端点地址
	Endpoint() string
}

// PipeEvents 管道通知
//
// 回调在对端的 goroutine 中执行，实现方不得在回调中阻塞，
// 也不得直接修改 socket 的对端列表，而应转交给拥有 socket 的 goroutine。
type PipeEvents interface {
	// ReadActivated 有新消息可读
	ReadActivated(p Pipe)

	// WriteActivated 队列从满变为可写
	WriteActivated(p Pipe)

	// Terminated 对端已终止
	Terminated(p Pipe)
}
