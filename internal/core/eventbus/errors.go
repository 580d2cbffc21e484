package eventbus

import (
	"errors"
	"fmt"

	"github.com/dep2p/go-zmsg/pkg/types"
)

var (
	// ErrClosed 事件总线已关闭，可用 errors.Is(err, types.ErrClosed) 判断
	ErrClosed = fmt.Errorf("eventbus: %w", types.ErrClosed)

	// ErrInvalidEventType 无效的事件类型
	ErrInvalidEventType = errors.New("invalid event type")

	// ErrNonPointerType 非指针类型
	ErrNonPointerType = errors.New("subscribe called with non-pointer type")

	// ErrEmitterClosed 发射器已关闭
	ErrEmitterClosed = errors.New("emitter is closed")

	// ErrUnexpectedEvent 事件类型与期望不符
	ErrUnexpectedEvent = errors.New("unexpected event type")
)
