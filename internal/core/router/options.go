package router

import (
	"github.com/dep2p/go-zmsg/internal/core/pipeset"
	pkgif "github.com/dep2p/go-zmsg/pkg/interfaces"
)

// DefaultDepartedCacheSize 最近离开的标识缓存大小
const DefaultDepartedCacheSize = 256

// Option 路由端选项
type Option func(*Router)

// WithMandatory 不可路由时返回错误而不是静默丢弃
func WithMandatory(on bool) Option {
	return func(r *Router) {
		r.mandatory = on
	}
}

// WithHandover 重复标识的新连接接管旧连接
func WithHandover(on bool) Option {
	return func(r *Router) {
		r.handover = on
	}
}

// WithDropHook 设置静默丢弃回调
func WithDropHook(fn pipeset.DropFunc) Option {
	return func(r *Router) {
		r.onDrop = fn
	}
}

// WithEvictHook 设置接管时旧管道的处理函数
//
// 由 socket 设置，以便同步释放它对旧管道的持有；未设置时路由端
// 自行摘除并终止旧管道。
func WithEvictHook(fn func(pkgif.Pipe)) Option {
	return func(r *Router) {
		r.evict = fn
	}
}

// WithIDSeed 设置匿名标识计数起点
func WithIDSeed(seed uint32) Option {
	return func(r *Router) {
		r.nextID = seed
		r.seeded = true
	}
}

// WithDepartedCacheSize 设置最近离开的标识缓存大小
func WithDepartedCacheSize(n int) Option {
	return func(r *Router) {
		if n > 0 {
			r.departedSize = n
		}
	}
}
