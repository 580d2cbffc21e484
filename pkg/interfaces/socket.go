// Package interfaces 定义 go-zmsg 公共接口
//
// 本文件定义 socket 状态机接口。
package interfaces

import (
	"github.com/dep2p/go-zmsg/pkg/types"
)

// PeerHandler socket 状态机对对端生命周期的处理
//
// 所有方法都在拥有 socket 的 goroutine 上调用。
type PeerHandler interface {
	// AttachPeer 挂接对端管道；返回错误时管道被拒绝并终止
	AttachPeer(p Pipe, id types.RoutingID) (types.RoutingID, error)

	// DetachPeer 摘除对端管道
	DetachPeer(p Pipe)

	// PeerDraining 对端已断开但管道仍有未读数据
	PeerDraining(p Pipe)
}

// ReqSocket 请求端
type ReqSocket interface {
	PeerHandler

	// Send 发送请求，成功后进入等待应答阶段
	Send(msg types.Message) error

	// Recv 接收最近请求对端的应答
	Recv() (types.Message, error)
}

// RouterSocket 路由端
type RouterSocket interface {
	PeerHandler

	// Send 按路由标识发送
	Send(id types.RoutingID, msg types.Message) error

	// Recv 接收任一对端的请求，返回来源路由标识
	Recv() (types.RoutingID, types.Message, error)
}
