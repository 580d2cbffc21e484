package config

import (
	"errors"
	"time"
)

// TransportConfig 传输层配置
type TransportConfig struct {
	// TCP 配置
	TCP TCPConfig `json:"tcp"`
}

// TCPConfig TCP 传输配置
type TCPConfig struct {
	// DialTimeout 拨号与握手超时
	DialTimeout Duration `json:"dial_timeout"`

	// MaxFrameSize 单帧上限（字节）
	MaxFrameSize int `json:"max_frame_size"`

	// WriteBufferSize 写缓冲大小
	WriteBufferSize int `json:"write_buffer_size,omitempty"`

	// ReadBufferSize 读缓冲大小
	ReadBufferSize int `json:"read_buffer_size,omitempty"`
}

// DefaultTransportConfig 返回默认传输层配置
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		TCP: TCPConfig{
			DialTimeout:     Duration(5 * time.Second),
			MaxFrameSize:    16 << 20,
			WriteBufferSize: 64 << 10,
			ReadBufferSize:  64 << 10,
		},
	}
}

// Validate 验证传输层配置
func (c TransportConfig) Validate() error {
	if c.TCP.DialTimeout < 0 {
		return errors.New("tcp dial timeout must be non-negative")
	}
	if c.TCP.MaxFrameSize <= 0 {
		return errors.New("tcp max frame size must be positive")
	}
	if c.TCP.WriteBufferSize < 0 || c.TCP.ReadBufferSize < 0 {
		return errors.New("tcp buffer sizes must be non-negative")
	}
	return nil
}
