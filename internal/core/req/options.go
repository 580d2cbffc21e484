package req

import "github.com/dep2p/go-zmsg/internal/core/pipeset"

// Option 请求端选项
type Option func(*Endpoint)

// WithDropHook 设置静默丢弃回调
func WithDropHook(fn pipeset.DropFunc) Option {
	return func(e *Endpoint) {
		e.onDrop = fn
	}
}
