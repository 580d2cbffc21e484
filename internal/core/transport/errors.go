package transport

import "errors"

var (
	// ErrInvalidEndpoint 端点缺少 "scheme://" 前缀
	ErrInvalidEndpoint = errors.New("invalid endpoint")
)
