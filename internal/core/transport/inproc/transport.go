package inproc

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/multierr"

	"github.com/dep2p/go-zmsg/internal/core/pipe"
	pkgif "github.com/dep2p/go-zmsg/pkg/interfaces"
	"github.com/dep2p/go-zmsg/pkg/lib/log"
	"github.com/dep2p/go-zmsg/pkg/types"
)

var logger = log.Logger("core/transport/inproc")

// Scheme 地址前缀
const Scheme = "inproc"

// Transport 进程内传输
type Transport struct {
	mu        sync.Mutex
	listeners map[string]*Listener
	conns     map[*Conn]struct{}
	closed    bool
}

// 确保实现接口
var _ pkgif.Transport = (*Transport)(nil)

// New 创建进程内传输
func New() *Transport {
	return &Transport{
		listeners: make(map[string]*Listener),
		conns:     make(map[*Conn]struct{}),
	}
}

// Scheme 地址前缀
func (t *Transport) Scheme() string {
	return Scheme
}

// parseName 解析 "inproc://name"
func parseName(addr string) (string, error) {
	name := strings.TrimPrefix(addr, Scheme+"://")
	if name == "" || strings.Contains(name, "://") {
		return "", fmt.Errorf("invalid inproc address %q", addr)
	}
	return name, nil
}

// Bind 以名字登记 socket
func (t *Transport) Bind(_ context.Context, addr string, s pkgif.PipeAttacher) (pkgif.Listener, error) {
	name, err := parseName(addr)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil, types.ErrClosed
	}
	if _, ok := t.listeners[name]; ok {
		return nil, fmt.Errorf("%w: %s", types.ErrAddrInUse, addr)
	}
	l := &Listener{transport: t, name: name, socket: s}
	t.listeners[name] = l
	logger.Debug("inproc 端点已绑定", "name", name, "type", s.SocketType())
	return l, nil
}

// Connect 连接到已绑定的名字
func (t *Transport) Connect(_ context.Context, addr string, s pkgif.PipeAttacher) (io.Closer, error) {
	name, err := parseName(addr)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil, types.ErrClosed
	}
	l, ok := t.listeners[name]
	t.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrConnRefused, addr)
	}

	bound := l.socket
	if !s.SocketType().CompatibleWith(bound.SocketType()) {
		return nil, fmt.Errorf("%w: %s with %s", types.ErrIncompatibleSocket, s.SocketType(), bound.SocketType())
	}

	sendHWM, _ := s.HWM()
	boundSend, _ := bound.HWM()
	connEnd, bindEnd := pipe.NewPair(pipe.Config{
		HWM:       [2]int{sendHWM, boundSend},
		RoutingID: [2]types.RoutingID{s.RoutingID(), bound.RoutingID()},
		Endpoint:  Scheme + "://" + name,
	})

	c := &Conn{transport: t, pipe: connEnd}
	t.mu.Lock()
	t.conns[c] = struct{}{}
	t.mu.Unlock()

	bound.AttachPipe(bindEnd)
	s.AttachPipe(connEnd)
	logger.Debug("inproc 已连接", "name", name, "from", s.SocketType(), "to", bound.SocketType())
	return c, nil
}

// Close 解除所有绑定并断开所有连接
func (t *Transport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.listeners = make(map[string]*Listener)
	conns := make([]*Conn, 0, len(t.conns))
	for c := range t.conns {
		conns = append(conns, c)
	}
	t.mu.Unlock()

	var err error
	for _, c := range conns {
		err = multierr.Append(err, c.Close())
	}
	return err
}

// Bound 名字是否已绑定
func (t *Transport) Bound(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.listeners[name]
	return ok
}

// ============================================================================
//                              Listener / Conn
// ============================================================================

// Listener 已绑定的名字
type Listener struct {
	transport *Transport
	name      string
	socket    pkgif.PipeAttacher
	once      sync.Once
}

// Addr 返回地址
func (l *Listener) Addr() string {
	return Scheme + "://" + l.name
}

// Close 解除绑定；已建立的连接不受影响
func (l *Listener) Close() error {
	l.once.Do(func() {
		t := l.transport
		t.mu.Lock()
		if t.listeners[l.name] == l {
			delete(t.listeners, l.name)
		}
		t.mu.Unlock()
	})
	return nil
}

// Conn 一条进程内连接
type Conn struct {
	transport *Transport
	pipe      *pipe.Pipe // 连接方的管道端
	once      sync.Once
}

// Close 终止连接方的管道端
//
// 绑定方收到 Terminated 通知；连接方 socket 需自行回收已终止的管道。
func (c *Conn) Close() error {
	c.once.Do(func() {
		c.pipe.Terminate()
		t := c.transport
		t.mu.Lock()
		delete(t.conns, c)
		t.mu.Unlock()
	})
	return nil
}
