package types

import "errors"

// ============================================================================
//                              状态机错误
// ============================================================================

var (
	// ErrFSM 调用顺序违反请求/应答状态机（send/recv 未交替）
	ErrFSM = errors.New("operation not valid in current socket state")

	// ErrWouldBlock 当前没有可用对端，调用方自行决定重试策略
	ErrWouldBlock = errors.New("resource temporarily unavailable")

	// ErrPeerLost 亲和对端在等待应答期间断开
	ErrPeerLost = errors.New("affinity peer disconnected while awaiting reply")
)

// ============================================================================
//                              线格式错误
// ============================================================================

var (
	// ErrMalformedReply 应答缺少空分隔帧
	ErrMalformedReply = errors.New("malformed reply: missing empty delimiter frame")

	// ErrMalformedRequest 请求缺少空分隔帧
	ErrMalformedRequest = errors.New("malformed request: missing empty delimiter frame")

	// ErrEmptyMessage 消息至少需要一帧
	ErrEmptyMessage = errors.New("message has no frames")

	// ErrFrameTooLarge 帧长度超过上限
	ErrFrameTooLarge = errors.New("frame exceeds maximum size")
)

// ============================================================================
//                              路由错误
// ============================================================================

var (
	// ErrUnroutable 强制路由模式下目标对端不存在或不可写
	ErrUnroutable = errors.New("destination peer is not routable")

	// ErrInvalidRoutingID 路由标识长度非法（必须为 0-255 字节）
	ErrInvalidRoutingID = errors.New("invalid routing id: length must be 0-255 bytes")

	// ErrDuplicateRoutingID 路由标识已被活跃对端占用
	ErrDuplicateRoutingID = errors.New("routing id already in use")
)

// ============================================================================
//                              生命周期错误
// ============================================================================

var (
	// ErrClosed socket 或管道已关闭
	ErrClosed = errors.New("socket closed")

	// ErrSharedInit 共享资源初始化失败（不可恢复）
	ErrSharedInit = errors.New("shared resource initialization failed")

	// ErrNotInitialized 共享资源尚未初始化或已拆除
	ErrNotInitialized = errors.New("shared resource not initialized")

	// ErrAddrInUse 端点地址已被绑定
	ErrAddrInUse = errors.New("address already in use")

	// ErrConnRefused 端点地址没有监听者
	ErrConnRefused = errors.New("connection refused")

	// ErrIncompatibleSocket 对端 socket 类型不兼容
	ErrIncompatibleSocket = errors.New("incompatible socket type")

	// ErrUnsupportedTransport 不支持的传输协议
	ErrUnsupportedTransport = errors.New("unsupported transport")
)
