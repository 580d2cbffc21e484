package zmsg

import (
	"github.com/dep2p/go-zmsg/internal/core/metrics"
	"github.com/dep2p/go-zmsg/pkg/types"
)

// ════════════════════════════════════════════════════════════════════════════
//                              类型别名
// ════════════════════════════════════════════════════════════════════════════

type (
	// Message 多帧消息
	Message = types.Message

	// RoutingID 对端路由标识
	RoutingID = types.RoutingID

	// SocketID socket 实例标识
	SocketID = types.SocketID

	// SocketType socket 类型
	SocketType = types.SocketType

	// DropReason 消息丢弃原因
	DropReason = types.DropReason

	// MetricsSnapshot 单个 socket 的指标快照
	MetricsSnapshot = metrics.Snapshot
)

// 事件类型
type (
	EvtPeerConnected    = types.EvtPeerConnected
	EvtPeerDisconnected = types.EvtPeerDisconnected
	EvtPeerRejected     = types.EvtPeerRejected
	EvtMessageDropped   = types.EvtMessageDropped
)

// socket 类型
const (
	REQ    = types.SocketReq
	ROUTER = types.SocketRouter
)

// NewMessage 从若干帧创建消息
func NewMessage(parts ...[]byte) Message {
	return types.NewMessage(parts...)
}

// NewStringMessage 从字符串创建消息
func NewStringMessage(parts ...string) Message {
	return types.NewStringMessage(parts...)
}
