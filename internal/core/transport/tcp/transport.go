package tcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/multierr"

	"github.com/dep2p/go-zmsg/internal/core/codec"
	pkgif "github.com/dep2p/go-zmsg/pkg/interfaces"
	"github.com/dep2p/go-zmsg/pkg/lib/log"
	"github.com/dep2p/go-zmsg/pkg/types"
)

var logger = log.Logger("core/transport/tcp")

// ============================================================================
//                              配置
// ============================================================================

// Config TCP 传输配置
type Config struct {
	// DialTimeout 拨号与握手超时
	DialTimeout time.Duration

	// MaxFrameSize 单帧上限（字节）
	MaxFrameSize int

	// WriteBufferSize / ReadBufferSize 编解码缓冲大小
	WriteBufferSize int
	ReadBufferSize  int

	// Linger socket 关闭后写完剩余消息的最长时间，0 表示直接丢弃
	Linger time.Duration

	// Clock 时钟（测试可替换）
	Clock clock.Clock
}

// DefaultConfig 默认配置
func DefaultConfig() Config {
	return Config{
		DialTimeout:     5 * time.Second,
		MaxFrameSize:    codec.DefaultMaxFrameSize,
		WriteBufferSize: 64 << 10,
		ReadBufferSize:  64 << 10,
		Linger:          time.Second,
	}
}

// ============================================================================
//                              Transport 实现
// ============================================================================

// Transport TCP 传输层
type Transport struct {
	config Config
	clock  clock.Clock

	mu        sync.Mutex
	listeners map[*Listener]struct{}
	conns     map[*Conn]struct{}

	closed atomic.Bool
}

// 确保实现接口
var _ pkgif.Transport = (*Transport)(nil)

// New 创建 TCP 传输层
func New(cfg Config) *Transport {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}
	return &Transport{
		config:    cfg,
		clock:     clk,
		listeners: make(map[*Listener]struct{}),
		conns:     make(map[*Conn]struct{}),
	}
}

// Scheme 地址前缀
func (t *Transport) Scheme() string {
	return Scheme
}

// Bind 监听地址，接受的连接挂接到 s
func (t *Transport) Bind(_ context.Context, addr string, s pkgif.PipeAttacher) (pkgif.Listener, error) {
	if t.closed.Load() {
		return nil, ErrTransportClosed
	}
	a, err := ParseAddress(addr)
	if err != nil {
		return nil, err
	}

	nl, err := net.Listen("tcp", a.NetAddr())
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return nil, fmt.Errorf("%w: %s", types.ErrAddrInUse, addr)
		}
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	l, err := newListener(t, nl, s)
	if err != nil {
		_ = nl.Close()
		return nil, err
	}

	t.mu.Lock()
	t.listeners[l] = struct{}{}
	t.mu.Unlock()

	l.start()
	logger.Debug("TCP 监听已启动", "addr", l.Addr())
	return l, nil
}

// Connect 拨号并握手，连接挂接到 s
func (t *Transport) Connect(ctx context.Context, addr string, s pkgif.PipeAttacher) (io.Closer, error) {
	if t.closed.Load() {
		return nil, ErrTransportClosed
	}
	a, err := ParseAddress(addr)
	if err != nil {
		return nil, err
	}

	dialCtx, cancel := t.dialContext(ctx)
	defer cancel()

	var d net.Dialer
	nc, err := d.DialContext(dialCtx, "tcp", a.NetAddr())
	if err != nil {
		if errors.Is(err, syscall.ECONNREFUSED) {
			return nil, fmt.Errorf("%w: %s", types.ErrConnRefused, addr)
		}
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	setOptions(nc)

	c, err := t.setup(dialCtx, nc, a.String(), s)
	if err != nil {
		_ = nc.Close()
		return nil, err
	}
	return c, nil
}

// dialContext 拨号与握手的超时上下文
func (t *Transport) dialContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if t.config.DialTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return t.clock.WithTimeout(ctx, t.config.DialTimeout)
}

// setup 握手并登记连接
func (t *Transport) setup(ctx context.Context, nc net.Conn, endpoint string, s pkgif.PipeAttacher) (*Conn, error) {
	c, err := newConn(ctx, nc, endpoint, t.config, s, t.removeConn)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	if t.closed.Load() {
		t.mu.Unlock()
		_ = c.Close()
		return nil, ErrTransportClosed
	}
	select {
	case <-c.Done():
		// 握手后立即断开，run 已经（或即将）移除记录
	default:
		t.conns[c] = struct{}{}
	}
	t.mu.Unlock()
	return c, nil
}

func setOptions(nc net.Conn) {
	if tc, ok := nc.(*net.TCPConn); ok {
		_ = tc.SetNoDelay(true)
		_ = tc.SetKeepAlive(true)
	}
}

// Close 关闭所有监听和连接
func (t *Transport) Close() error {
	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}

	t.mu.Lock()
	listeners := make([]*Listener, 0, len(t.listeners))
	for l := range t.listeners {
		listeners = append(listeners, l)
	}
	conns := make([]*Conn, 0, len(t.conns))
	for c := range t.conns {
		conns = append(conns, c)
	}
	t.mu.Unlock()

	var err error
	for _, l := range listeners {
		err = multierr.Append(err, l.Close())
	}
	for _, c := range conns {
		err = multierr.Append(err, c.Close())
	}
	return err
}

// ============================================================================
//                              辅助方法
// ============================================================================

func (t *Transport) removeConn(c *Conn) {
	t.mu.Lock()
	delete(t.conns, c)
	t.mu.Unlock()
}

func (t *Transport) removeListener(l *Listener) {
	t.mu.Lock()
	delete(t.listeners, l)
	t.mu.Unlock()
}

// ConnCount 返回连接数量
func (t *Transport) ConnCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.conns)
}

// ListenerCount 返回监听器数量
func (t *Transport) ListenerCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.listeners)
}

// IsClosed 检查是否已关闭
func (t *Transport) IsClosed() bool {
	return t.closed.Load()
}
