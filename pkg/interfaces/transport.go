// Package interfaces 定义 go-zmsg 公共接口
//
// 本文件定义传输层接口。
package interfaces

import (
	"context"
	"io"

	"github.com/dep2p/go-zmsg/pkg/types"
)

// PipeAttacher 接收新建管道的一方（socket）
//
// 传输层在连接建立时调用 AttachPipe（on_connect），在连接断开时
// 终止管道（on_disconnect 通过 PipeEvents.Terminated 送达）。
type PipeAttacher interface {
	// AttachPipe 挂接新管道，可在任意 goroutine 调用
	AttachPipe(p Pipe)

	// SocketType socket 类型
	SocketType() types.SocketType

	// RoutingID 本端在握手中声明的路由标识
	RoutingID() types.RoutingID

	// HWM 发送/接收高水位（消息数）
	HWM() (send, recv int)
}

// Transport 传输层
type Transport interface {
	// Scheme 地址前缀，如 "inproc"、"tcp"
	Scheme() string

	// Bind 在地址上监听，新连接的管道挂接到 s
	Bind(ctx context.Context, addr string, s PipeAttacher) (Listener, error)

	// Connect 连接到地址，管道挂接到 s
	Connect(ctx context.Context, addr string, s PipeAttacher) (io.Closer, error)

	// Close 关闭传输层所有监听和连接
	Close() error
}

// Listener 已绑定的端点
type Listener interface {
	io.Closer

	// Addr 实际监听地址（含协议前缀）
	Addr() string
}
