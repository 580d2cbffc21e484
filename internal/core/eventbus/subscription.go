package eventbus

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	pkgif "github.com/dep2p/go-zmsg/pkg/interfaces"
)

// ============================================================================
// Subscription 实现
// ============================================================================

// Subscription 订阅
type Subscription struct {
	bus       *Bus
	typ       reflect.Type
	out       chan interface{}
	closeOnce sync.Once
}

// Out 返回事件通道
func (s *Subscription) Out() <-chan interface{} {
	return s.out
}

// Close 取消订阅
//
// 并发安全，可以多次调用。先从总线移除再关闭通道，
// 因此不会有发射者向已关闭的通道发送。
func (s *Subscription) Close() error {
	s.closeOnce.Do(func() {
		s.bus.removeSub(s)
		close(s.out)
	})
	return nil
}

// Next 等待下一个类型为 T 的事件
func Next[T any](ctx context.Context, sub pkgif.Subscription) (T, error) {
	var zero T
	select {
	case evt, ok := <-sub.Out():
		if !ok {
			return zero, ErrClosed
		}
		e, ok := evt.(T)
		if !ok {
			return zero, fmt.Errorf("%w: %T", ErrUnexpectedEvent, evt)
		}
		return e, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// ============================================================================
// Emitter 实现
// ============================================================================

// Emitter 事件发射器
type Emitter struct {
	bus       *Bus
	node      *node
	typ       reflect.Type
	closed    atomic.Bool
	closeOnce sync.Once
}

// Emit 发射事件
func (e *Emitter) Emit(event interface{}) error {
	if e.closed.Load() {
		return ErrEmitterClosed
	}
	e.node.emit(event)
	return nil
}

// Close 关闭发射器，最后一个发射器关闭且没有订阅者时删除节点
func (e *Emitter) Close() error {
	e.closeOnce.Do(func() {
		e.closed.Store(true)
		if !e.node.emitters.Sub(1) {
			e.bus.tryDropNode(e.typ)
		}
	})
	return nil
}
