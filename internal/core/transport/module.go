package transport

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/multierr"

	"github.com/dep2p/go-zmsg/config"
	"github.com/dep2p/go-zmsg/internal/core/transport/inproc"
	"github.com/dep2p/go-zmsg/internal/core/transport/tcp"
	pkgif "github.com/dep2p/go-zmsg/pkg/interfaces"
	"github.com/dep2p/go-zmsg/pkg/lib/log"
	"github.com/dep2p/go-zmsg/pkg/types"
)

var logger = log.Logger("core/transport")

// Config 传输层配置
type Config struct {
	TCP tcp.Config
}

// ConfigFromUnified 从统一配置创建传输配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return NewConfig()
	}
	c := NewConfig()
	c.TCP.DialTimeout = cfg.Transport.TCP.DialTimeout.Duration()
	c.TCP.MaxFrameSize = cfg.Transport.TCP.MaxFrameSize
	c.TCP.WriteBufferSize = cfg.Transport.TCP.WriteBufferSize
	c.TCP.ReadBufferSize = cfg.Transport.TCP.ReadBufferSize
	c.TCP.Linger = cfg.Socket.Linger.Duration()
	return c
}

// NewConfig 创建默认配置
func NewConfig() Config {
	return Config{TCP: tcp.DefaultConfig()}
}

// Manager 传输管理器
type Manager struct {
	transports map[string]pkgif.Transport
}

// NewManager 创建传输管理器
func NewManager(cfg Config) *Manager {
	m := &Manager{transports: make(map[string]pkgif.Transport)}
	for _, t := range []pkgif.Transport{tcp.New(cfg.TCP), inproc.New()} {
		m.transports[t.Scheme()] = t
	}
	logger.Debug("创建传输管理器", "transportCount", len(m.transports))
	return m
}

// SplitEndpoint 拆分 "scheme://address"
func SplitEndpoint(endpoint string) (scheme, addr string, err error) {
	scheme, addr, ok := strings.Cut(endpoint, "://")
	if !ok || scheme == "" || addr == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidEndpoint, endpoint)
	}
	return scheme, addr, nil
}

// Resolve 返回端点对应的传输层
func (m *Manager) Resolve(endpoint string) (pkgif.Transport, error) {
	scheme, _, err := SplitEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	t, ok := m.transports[scheme]
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrUnsupportedTransport, scheme)
	}
	return t, nil
}

// Bind 在端点上监听
func (m *Manager) Bind(ctx context.Context, endpoint string, s pkgif.PipeAttacher) (pkgif.Listener, error) {
	t, err := m.Resolve(endpoint)
	if err != nil {
		return nil, err
	}
	return t.Bind(ctx, endpoint, s)
}

// Connect 连接到端点
func (m *Manager) Connect(ctx context.Context, endpoint string, s pkgif.PipeAttacher) (io.Closer, error) {
	t, err := m.Resolve(endpoint)
	if err != nil {
		return nil, err
	}
	return t.Connect(ctx, endpoint, s)
}

// Transport 按前缀返回传输层
func (m *Manager) Transport(scheme string) pkgif.Transport {
	return m.transports[scheme]
}

// Close 关闭所有传输
func (m *Manager) Close() error {
	var err error
	for _, t := range m.transports {
		err = multierr.Append(err, t.Close())
	}
	return err
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("transport",
		fx.Provide(
			ProvideConfig,
			NewManager,
		),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideConfig 从统一配置提供传输配置
func ProvideConfig(cfg *config.Config) Config {
	return ConfigFromUnified(cfg)
}

// registerLifecycle 注册生命周期钩子
func registerLifecycle(lc fx.Lifecycle, m *Manager) {
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return m.Close()
		},
	})
}
