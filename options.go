package zmsg

import (
	"fmt"
	"time"

	"go.uber.org/fx"

	"github.com/dep2p/go-zmsg/config"
)

// ============================================================================
//                              Context 选项
// ============================================================================

// Option Context 配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	// 基础配置（WithConfig / WithConfigFile）
	base       *config.Config
	configFile string

	// 预设
	preset string

	// 按顺序应用的覆盖
	overrides []func(*config.Config) error

	// 用户自定义 Fx 选项
	fxOptions []fx.Option
}

func newOptions() *options {
	return &options{}
}

// toConfig 合成最终配置：基础配置 → 预设 → 覆盖 → 验证
func (o *options) toConfig() (*config.Config, error) {
	var cfg *config.Config
	switch {
	case o.base != nil:
		cfg = config.CloneConfig(o.base)
	case o.configFile != "":
		loaded, err := config.LoadFile(o.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	default:
		cfg = config.NewConfig()
	}

	if err := config.ApplyPreset(cfg, o.preset); err != nil {
		return nil, err
	}
	for _, fn := range o.overrides {
		if err := fn(cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (o *options) override(fn func(*config.Config) error) {
	o.overrides = append(o.overrides, fn)
}

// WithConfig 使用完整配置作为基础（会被复制）
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return fmt.Errorf("config must not be nil")
		}
		o.base = cfg
		return nil
	}
}

// WithConfigFile 从 JSON 文件加载基础配置
func WithConfigFile(path string) Option {
	return func(o *options) error {
		o.configFile = path
		return nil
	}
}

// WithPreset 使用预设配置：default / reliable / throughput
func WithPreset(name string) Option {
	return func(o *options) error {
		o.preset = name
		return nil
	}
}

// WithLogLevel 设置日志级别：debug / info / warn / error
func WithLogLevel(level string) Option {
	return func(o *options) error {
		o.override(func(c *config.Config) error {
			c.Log.Level = level
			return nil
		})
		return nil
	}
}

// WithLogFormat 设置日志格式：text / json
func WithLogFormat(format string) Option {
	return func(o *options) error {
		o.override(func(c *config.Config) error {
			c.Log.Format = format
			return nil
		})
		return nil
	}
}

// WithFxEvents 输出依赖注入容器事件（调试用）
func WithFxEvents(on bool) Option {
	return func(o *options) error {
		o.override(func(c *config.Config) error {
			c.Log.FxEvents = on
			return nil
		})
		return nil
	}
}

// WithMetrics 启用或关闭 prometheus 指标
func WithMetrics(enable bool) Option {
	return func(o *options) error {
		o.override(func(c *config.Config) error {
			c.Metrics.Enable = enable
			return nil
		})
		return nil
	}
}

// WithMetricsNamespace 设置指标名前缀
func WithMetricsNamespace(ns string) Option {
	return func(o *options) error {
		o.override(func(c *config.Config) error {
			c.Metrics.Namespace = ns
			return nil
		})
		return nil
	}
}

// WithDialTimeout 设置 TCP 拨号超时
func WithDialTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d <= 0 {
			return fmt.Errorf("dial timeout must be positive")
		}
		o.override(func(c *config.Config) error {
			c.Transport.TCP.DialTimeout = config.Duration(d)
			return nil
		})
		return nil
	}
}

// WithMaxFrameSize 设置 TCP 单帧上限
func WithMaxFrameSize(n int) Option {
	return func(o *options) error {
		o.override(func(c *config.Config) error {
			c.Transport.TCP.MaxFrameSize = n
			return nil
		})
		return nil
	}
}

// WithSocketDefaults 设置该 Context 创建的所有 socket 的默认选项
func WithSocketDefaults(opts ...SocketOption) Option {
	return func(o *options) error {
		o.override(func(c *config.Config) error {
			return applySocketOptions(&c.Socket, opts)
		})
		return nil
	}
}

// WithFxOption 追加自定义 Fx 选项
func WithFxOption(opts ...fx.Option) Option {
	return func(o *options) error {
		o.fxOptions = append(o.fxOptions, opts...)
		return nil
	}
}

// ============================================================================
//                              Socket 选项
// ============================================================================

// SocketOption socket 选项函数
type SocketOption func(*config.SocketConfig) error

func applySocketOptions(c *config.SocketConfig, opts []SocketOption) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return c.Validate()
}

// WithHWM 设置每个对端管道的收发高水位（消息数，0 表示不限）
func WithHWM(send, recv int) SocketOption {
	return func(c *config.SocketConfig) error {
		*c = c.WithHWM(send, recv)
		return nil
	}
}

// WithSendHWM 设置发送高水位
func WithSendHWM(n int) SocketOption {
	return func(c *config.SocketConfig) error {
		c.SendHWM = n
		return nil
	}
}

// WithRecvHWM 设置接收高水位
func WithRecvHWM(n int) SocketOption {
	return func(c *config.SocketConfig) error {
		c.RecvHWM = n
		return nil
	}
}

// WithRoutingID 设置连接时声明的路由标识
func WithRoutingID(id string) SocketOption {
	return func(c *config.SocketConfig) error {
		if err := RoutingID(id).Validate(); err != nil {
			return err
		}
		*c = c.WithRoutingID(id)
		return nil
	}
}

// WithMandatory ROUTER 不可路由时返回 ErrUnroutable
func WithMandatory(on bool) SocketOption {
	return func(c *config.SocketConfig) error {
		*c = c.WithRouterMandatory(on)
		return nil
	}
}

// WithHandover ROUTER 允许重复标识的新连接接管旧连接
func WithHandover(on bool) SocketOption {
	return func(c *config.SocketConfig) error {
		*c = c.WithRouterHandover(on)
		return nil
	}
}

// WithLinger 设置关闭后写完剩余消息的最长时间
func WithLinger(d time.Duration) SocketOption {
	return func(c *config.SocketConfig) error {
		c.Linger = config.Duration(d)
		return nil
	}
}
