package zmsg

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/multierr"

	"github.com/dep2p/go-zmsg/config"
	"github.com/dep2p/go-zmsg/internal/core/eventbus"
	"github.com/dep2p/go-zmsg/internal/core/metrics"
	"github.com/dep2p/go-zmsg/internal/core/transport"
	pkgif "github.com/dep2p/go-zmsg/pkg/interfaces"
	"github.com/dep2p/go-zmsg/pkg/lib/log"
)

var logger = log.Logger("zmsg")

const (
	// startTimeout Fx 应用启动超时
	startTimeout = 10 * time.Second

	// stopTimeout Fx 应用停止超时
	stopTimeout = 10 * time.Second
)

// closer 由 Context 统一关闭的 socket
type closer interface {
	Close() error
	Done() <-chan struct{}
	linger() time.Duration
}

// Context 持有共享资源（随机源、传输层、事件总线、指标）并创建 socket
//
// Context 并发安全。同一 Context 创建的 socket 可以通过 inproc 互连。
type Context struct {
	cfg *config.Config
	app *fx.App

	// 由 Fx 注入
	transports *transport.Manager
	bus        *eventbus.Bus
	registry   *prometheus.Registry
	collectors *metrics.Collectors

	mu      sync.Mutex
	sockets map[closer]struct{}
	closed  bool
}

// New 创建 Context
//
// 共享随机源初始化失败时返回包装 ErrSharedInit 的错误，
// 且不会留下部分初始化的 Context。
func New(opts ...Option) (*Context, error) {
	o := newOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	cfg, err := o.toConfig()
	if err != nil {
		return nil, err
	}
	if err := log.Configure(cfg.Log.Level, cfg.Log.Format); err != nil {
		return nil, err
	}

	c := &Context{
		cfg:     cfg,
		sockets: make(map[closer]struct{}),
	}
	c.app = buildFxApp(cfg, o, c)
	if err := c.app.Err(); err != nil {
		return nil, fmt.Errorf("build context: %w", err)
	}

	startCtx, cancel := context.WithTimeout(context.Background(), startTimeout)
	defer cancel()
	if err := c.app.Start(startCtx); err != nil {
		logger.Error("Context 启动失败", "err", err)
		return nil, fmt.Errorf("start context: %w", err)
	}

	logger.Debug("Context 已创建", "version", Version, "metrics", cfg.Metrics.Enable)
	return c, nil
}

// Config 返回生效配置的副本
func (c *Context) Config() *config.Config {
	return config.CloneConfig(c.cfg)
}

// EventBus 返回事件总线，可订阅 EvtPeerConnected 等事件
func (c *Context) EventBus() pkgif.EventBus {
	return c.bus
}

// Gatherer 返回该 Context 的 prometheus 指标
func (c *Context) Gatherer() prometheus.Gatherer {
	return c.registry
}

// register 登记 socket；Context 已关闭时返回 ErrClosed
func (c *Context) register(s closer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.sockets[s] = struct{}{}
	return nil
}

func (c *Context) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Context) forget(s closer) {
	c.mu.Lock()
	delete(c.sockets, s)
	c.mu.Unlock()
}

// socketConfig 在 Context 默认值上应用 socket 选项
func (c *Context) socketConfig(opts []SocketOption) (config.SocketConfig, error) {
	sc := c.cfg.Socket
	if err := applySocketOptions(&sc, opts); err != nil {
		return sc, fmt.Errorf("apply socket option: %w", err)
	}
	return sc, nil
}

// Close 关闭所有 socket，等待它们在 linger 内回收，然后释放共享资源
func (c *Context) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	sockets := make([]closer, 0, len(c.sockets))
	for s := range c.sockets {
		sockets = append(sockets, s)
	}
	c.mu.Unlock()

	var err error
	for _, s := range sockets {
		err = multierr.Append(err, s.Close())
	}
	for _, s := range sockets {
		waitDone(s)
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	err = multierr.Append(err, c.app.Stop(stopCtx))

	logger.Debug("Context 已关闭", "sockets", len(sockets))
	return err
}

// waitDone 等待 socket 回收，最长 linger
func waitDone(s closer) {
	d := s.linger()
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-s.Done():
	case <-t.C:
		logger.Debug("socket 在 linger 内未回收")
	}
}
