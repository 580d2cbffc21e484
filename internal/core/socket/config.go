package socket

import (
	pkgif "github.com/dep2p/go-zmsg/pkg/interfaces"
	"github.com/dep2p/go-zmsg/pkg/types"
)

// Config socket 基座配置
type Config struct {
	// ID socket 实例标识，空时自动生成
	ID types.SocketID

	// Type socket 类型
	Type types.SocketType

	// RoutingID 握手时声明的路由标识，空表示匿名
	RoutingID types.RoutingID

	// SendHWM / RecvHWM 每个对端管道的高水位（消息数）
	SendHWM int
	RecvHWM int

	// Bus 事件总线，可为 nil
	Bus pkgif.EventBus

	// Metrics 指标记录器，可为 nil
	Metrics pkgif.SocketMetrics
}

// Validate 验证配置
func (c Config) Validate() error {
	if c.Type == types.SocketUnknown {
		return types.ErrIncompatibleSocket
	}
	return c.RoutingID.Validate()
}
