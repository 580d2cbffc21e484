package codec

import "errors"

var (
	// ErrBadFlags 保留位非零
	ErrBadFlags = errors.New("codec: reserved flag bits set")

	// ErrBadGreeting 握手格式错误
	ErrBadGreeting = errors.New("codec: bad greeting")

	// ErrVersionMismatch 协议版本不一致
	ErrVersionMismatch = errors.New("codec: version mismatch")
)
