package config

import (
	"errors"
	"fmt"
	"time"
)

// SocketConfig socket 选项
type SocketConfig struct {
	// SendHWM 每个对端出站队列的高水位（消息数），0 表示不限
	SendHWM int `json:"send_hwm"`

	// RecvHWM 每个对端入站队列的高水位（消息数），0 表示不限
	RecvHWM int `json:"recv_hwm"`

	// RoutingID 连接时声明的路由标识（0-255 字节），空表示由路由端分配
	RoutingID string `json:"routing_id,omitempty"`

	// RouterMandatory 路由端不可路由时返回错误而不是静默丢弃
	RouterMandatory bool `json:"router_mandatory"`

	// RouterHandover 重复路由标识的新连接接管旧连接
	RouterHandover bool `json:"router_handover"`

	// Linger 关闭后写完剩余消息的最长时间，0 表示直接丢弃
	Linger Duration `json:"linger"`
}

// DefaultSocketConfig 默认 socket 选项
func DefaultSocketConfig() SocketConfig {
	return SocketConfig{
		SendHWM: 1000,
		RecvHWM: 1000,
		Linger:  Duration(time.Second),
	}
}

// Validate 验证 socket 选项
func (c SocketConfig) Validate() error {
	if c.SendHWM < 0 || c.RecvHWM < 0 {
		return errors.New("socket hwm must be non-negative")
	}
	if len(c.RoutingID) > 255 {
		return fmt.Errorf("socket routing id too long: %d bytes", len(c.RoutingID))
	}
	if c.Linger < 0 {
		return errors.New("socket linger must be non-negative")
	}
	return nil
}

// WithHWM 设置收发高水位
func (c SocketConfig) WithHWM(send, recv int) SocketConfig {
	c.SendHWM = send
	c.RecvHWM = recv
	return c
}

// WithRoutingID 设置路由标识
func (c SocketConfig) WithRoutingID(id string) SocketConfig {
	c.RoutingID = id
	return c
}

// WithRouterMandatory 设置强制路由
func (c SocketConfig) WithRouterMandatory(on bool) SocketConfig {
	c.RouterMandatory = on
	return c
}

// WithRouterHandover 设置标识接管
func (c SocketConfig) WithRouterHandover(on bool) SocketConfig {
	c.RouterHandover = on
	return c
}
