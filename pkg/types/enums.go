package types

// ============================================================================
//                              SocketType - socket 类型
// ============================================================================

// SocketType socket 类型
type SocketType int

const (
	// SocketUnknown 未知类型
	SocketUnknown SocketType = iota
	// SocketReq 请求端（严格交替、单对端应答亲和）
	SocketReq
	// SocketRouter 路由端（按身份寻址）
	SocketRouter
)

// String 返回 socket 类型的字符串表示
func (t SocketType) String() string {
	switch t {
	case SocketReq:
		return "REQ"
	case SocketRouter:
		return "ROUTER"
	default:
		return "UNKNOWN"
	}
}

// CompatibleWith 是否可与对端类型建立连接
//
// REQ 只能连接 ROUTER；ROUTER 可连接 REQ 或 ROUTER。
func (t SocketType) CompatibleWith(peer SocketType) bool {
	switch t {
	case SocketReq:
		return peer == SocketRouter
	case SocketRouter:
		return peer == SocketReq || peer == SocketRouter
	default:
		return false
	}
}

// ============================================================================
//                              PeerState - 对端状态
// ============================================================================

// PeerState 对端生命周期状态
//
// Active -> Draining -> Terminated，不可逆。
type PeerState int

const (
	// PeerActive 管道可读写
	PeerActive PeerState = iota
	// PeerDraining 传输层已断开，但管道中仍有未读数据
	PeerDraining
	// PeerTerminated 管道已摘除，可回收
	PeerTerminated
)

// String 返回对端状态的字符串表示
func (s PeerState) String() string {
	switch s {
	case PeerActive:
		return "active"
	case PeerDraining:
		return "draining"
	case PeerTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// ============================================================================
//                              DropReason - 丢弃原因
// ============================================================================

// DropReason 消息被静默丢弃的原因
type DropReason int

const (
	// DropOffAffinity 来自非亲和对端的应答
	DropOffAffinity DropReason = iota
	// DropUnroutable 非强制路由模式下目标不可达
	DropUnroutable
	// DropMalformed 线格式违规
	DropMalformed
)

// String 返回丢弃原因的字符串表示
func (r DropReason) String() string {
	switch r {
	case DropOffAffinity:
		return "off_affinity"
	case DropUnroutable:
		return "unroutable"
	case DropMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}
