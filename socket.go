package zmsg

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dep2p/go-zmsg/config"
	"github.com/dep2p/go-zmsg/internal/core/metrics"
	"github.com/dep2p/go-zmsg/internal/core/socket"
	pkgif "github.com/dep2p/go-zmsg/pkg/interfaces"
	"github.com/dep2p/go-zmsg/pkg/types"
)

// ════════════════════════════════════════════════════════════════════════════
//                              socket 公共部分
// ════════════════════════════════════════════════════════════════════════════

// sock REQ 与 ROUTER 共用的端点管理、指标与关闭逻辑
type sock struct {
	zctx    *Context
	cfg     config.SocketConfig
	base    *socket.Base
	metrics *metrics.SocketMetrics

	closeOnce sync.Once
	closeErr  error
}

// newSock 创建 socket 基座并登记到 Context
func (c *Context) newSock(typ types.SocketType, opts []SocketOption, build func(*socket.Base, config.SocketConfig) pkgif.PeerHandler) (*sock, error) {
	if c.isClosed() {
		return nil, ErrClosed
	}
	sc, err := c.socketConfig(opts)
	if err != nil {
		return nil, err
	}

	s := &sock{zctx: c, cfg: sc}
	id := types.SocketID(uuid.NewString())
	m := c.collectors.Socket(typ, id)
	base, err := socket.New(socket.Config{
		ID:        id,
		Type:      typ,
		RoutingID: types.RoutingID(sc.RoutingID),
		SendHWM:   sc.SendHWM,
		RecvHWM:   sc.RecvHWM,
		Bus:       c.bus,
		Metrics:   m,
	}, func(b *socket.Base) pkgif.PeerHandler {
		return build(b, sc)
	})
	if err != nil {
		m.Release()
		return nil, err
	}
	s.base = base
	s.metrics = m

	if err := c.register(s); err != nil {
		_ = base.Close()
		m.Release()
		return nil, err
	}
	logger.Debug("socket 已创建", "socket", base.ID().ShortString(), "type", typ)
	return s, nil
}

// ID socket 实例标识
func (s *sock) ID() SocketID {
	return s.base.ID()
}

// Bind 在端点上监听，返回实际地址（如 tcp 端口 0 时分配的端口）
func (s *sock) Bind(endpoint string) (string, error) {
	return s.BindCtx(context.Background(), endpoint)
}

// BindCtx 带 context 的 Bind
func (s *sock) BindCtx(ctx context.Context, endpoint string) (string, error) {
	l, err := s.zctx.transports.Bind(ctx, endpoint, s.base)
	if err != nil {
		return "", fmt.Errorf("bind %s: %w", endpoint, err)
	}
	addr := l.Addr()
	if err := s.base.AddEndpoint(addr, l); err != nil {
		return "", err
	}
	return addr, nil
}

// Connect 连接到端点
func (s *sock) Connect(endpoint string) error {
	return s.ConnectCtx(context.Background(), endpoint)
}

// ConnectCtx 带 context 的 Connect
func (s *sock) ConnectCtx(ctx context.Context, endpoint string) error {
	conn, err := s.zctx.transports.Connect(ctx, endpoint, s.base)
	if err != nil {
		return fmt.Errorf("connect %s: %w", endpoint, err)
	}
	return s.base.AddEndpoint(endpoint, conn)
}

// Disconnect 关闭端点上的监听或连接
func (s *sock) Disconnect(endpoint string) error {
	return s.base.Disconnect(endpoint)
}

// Endpoints 已绑定或连接的端点
func (s *sock) Endpoints() []string {
	return s.base.Endpoints()
}

// Peers 当前挂接的对端数
func (s *sock) Peers() int {
	return s.base.PeerCount()
}

// Metrics 指标快照
func (s *sock) Metrics() MetricsSnapshot {
	return s.metrics.Snapshot()
}

// Close 关闭 socket（幂等）
func (s *sock) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.base.Close()
		s.metrics.Release()
		s.zctx.forget(s)
	})
	return s.closeErr
}

// Done socket 关闭且所有连接回收后关闭
func (s *sock) Done() <-chan struct{} {
	return s.base.Done()
}

func (s *sock) linger() time.Duration {
	return s.cfg.Linger.Duration()
}

// ────────────────────────────────────────────────────────────────────────────
// 收发辅助
// ────────────────────────────────────────────────────────────────────────────

// run 非阻塞时执行一次尝试，阻塞时等待直到不再是 ErrWouldBlock
func (s *sock) run(ctx context.Context, block bool, fn func() error) error {
	if !block {
		return s.base.Do(fn)
	}
	return s.base.Wait(ctx, fn)
}

// errDiscarded fn 按策略静默丢弃了消息：对调用方是成功，但不计入发送
var errDiscarded = errors.New("message discarded")

// send 发送并记录指标
func (s *sock) send(ctx context.Context, block bool, msg Message, fn func() error) error {
	err := s.run(ctx, block, fn)
	if errors.Is(err, errDiscarded) {
		return nil
	}
	if err != nil {
		s.metrics.SendFailed(err)
		return err
	}
	s.metrics.MessageSent(len(msg), msg.Size())
	return nil
}

// recv 接收并记录指标
func (s *sock) recv(ctx context.Context, block bool, fn func() error, got func() Message) error {
	if err := s.run(ctx, block, fn); err != nil {
		return err
	}
	msg := got()
	s.metrics.MessageReceived(len(msg), msg.Size())
	return nil
}
