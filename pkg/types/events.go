package types

import "time"

// ============================================================================
//                              对端事件
// ============================================================================

// EvtPeerConnected 对端管道已挂接到 socket
type EvtPeerConnected struct {
	Socket    SocketID
	Type      SocketType
	Peer      RoutingID
	Endpoint  string
	Timestamp time.Time
}

// EvtPeerDisconnected 对端管道已从 socket 摘除
type EvtPeerDisconnected struct {
	Socket    SocketID
	Type      SocketType
	Peer      RoutingID
	Endpoint  string
	Timestamp time.Time
}

// EvtPeerRejected 对端因路由标识冲突被拒绝
type EvtPeerRejected struct {
	Socket    SocketID
	Peer      RoutingID
	Endpoint  string
	Reason    error
	Timestamp time.Time
}

// ============================================================================
//                              消息事件
// ============================================================================

// EvtMessageDropped 消息被静默丢弃
//
// 丢弃是协议策略而非错误，事件仅用于观测。
type EvtMessageDropped struct {
	Socket    SocketID
	Peer      RoutingID
	Reason    DropReason
	Frames    int
	Timestamp time.Time
}
