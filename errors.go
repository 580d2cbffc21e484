package zmsg

import "github.com/dep2p/go-zmsg/pkg/types"

// 公共错误定义（与 pkg/types 相同，便于 errors.Is 比较）
var (
	// ────────────────────────────────────────────────────────────────────────
	// 状态机
	// ────────────────────────────────────────────────────────────────────────

	// ErrFSM 调用顺序违反请求/应答状态机
	ErrFSM = types.ErrFSM

	// ErrWouldBlock 当前没有可用对端
	ErrWouldBlock = types.ErrWouldBlock

	// ErrPeerLost 亲和对端在等待应答期间断开
	ErrPeerLost = types.ErrPeerLost

	// ────────────────────────────────────────────────────────────────────────
	// 线格式
	// ────────────────────────────────────────────────────────────────────────

	// ErrMalformedReply 应答缺少空分隔帧
	ErrMalformedReply = types.ErrMalformedReply

	// ErrMalformedRequest 请求缺少空分隔帧
	ErrMalformedRequest = types.ErrMalformedRequest

	// ErrEmptyMessage 消息至少需要一帧
	ErrEmptyMessage = types.ErrEmptyMessage

	// ────────────────────────────────────────────────────────────────────────
	// 路由
	// ────────────────────────────────────────────────────────────────────────

	// ErrUnroutable 强制路由模式下目标不可达
	ErrUnroutable = types.ErrUnroutable

	// ErrInvalidRoutingID 路由标识长度非法
	ErrInvalidRoutingID = types.ErrInvalidRoutingID

	// ErrDuplicateRoutingID 路由标识已被占用
	ErrDuplicateRoutingID = types.ErrDuplicateRoutingID

	// ────────────────────────────────────────────────────────────────────────
	// 生命周期
	// ────────────────────────────────────────────────────────────────────────

	// ErrClosed socket 或 Context 已关闭
	ErrClosed = types.ErrClosed

	// ErrSharedInit 共享随机源初始化失败
	ErrSharedInit = types.ErrSharedInit

	// ErrAddrInUse 端点地址已被绑定
	ErrAddrInUse = types.ErrAddrInUse

	// ErrConnRefused 端点没有监听者
	ErrConnRefused = types.ErrConnRefused

	// ErrIncompatibleSocket 对端 socket 类型不兼容
	ErrIncompatibleSocket = types.ErrIncompatibleSocket
)
