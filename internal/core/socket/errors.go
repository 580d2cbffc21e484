package socket

import "errors"

var (
	// ErrUnknownEndpoint 端点未绑定也未连接
	ErrUnknownEndpoint = errors.New("endpoint not bound or connected")

	// ErrNoHandler 未设置状态机
	ErrNoHandler = errors.New("socket has no peer handler")
)
