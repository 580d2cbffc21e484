package tcp

import "errors"

var (
	// ErrTransportClosed 传输已关闭
	ErrTransportClosed = errors.New("transport closed")

	// ErrConnectionClosed 连接已关闭
	ErrConnectionClosed = errors.New("connection closed")

	// ErrInvalidAddress 地址格式错误
	ErrInvalidAddress = errors.New("invalid tcp address")

	// errPipeClosed socket 端已终止管道
	errPipeClosed = errors.New("pipe closed by socket")
)
