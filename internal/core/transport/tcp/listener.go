package tcp

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"

	pkgif "github.com/dep2p/go-zmsg/pkg/interfaces"
)

// ============================================================================
//                              Listener 实现
// ============================================================================

// Listener TCP 监听器
type Listener struct {
	transport *Transport
	listener  net.Listener
	addr      *Address
	socket    pkgif.PipeAttacher

	closed atomic.Bool
	wg     sync.WaitGroup // 接受循环与进行中的握手
}

// 确保实现接口
var _ pkgif.Listener = (*Listener)(nil)

func newListener(t *Transport, nl net.Listener, s pkgif.PipeAttacher) (*Listener, error) {
	// 获取实际监听地址（端口可能是 0）
	actual, err := NewAddressFromNetAddr(nl.Addr())
	if err != nil {
		return nil, err
	}
	return &Listener{
		transport: t,
		listener:  nl,
		addr:      actual,
		socket:    s,
	}, nil
}

// start 启动接受循环
func (l *Listener) start() {
	l.wg.Add(1)
	go l.acceptLoop()
}

// acceptLoop 接受连接，每个连接在独立 goroutine 中握手
func (l *Listener) acceptLoop() {
	defer l.wg.Done()

	for {
		nc, err := l.listener.Accept()
		if err != nil {
			if !l.closed.Load() && !errors.Is(err, net.ErrClosed) {
				logger.Warn("接受连接失败", "addr", l.Addr(), "error", err)
			}
			return
		}
		setOptions(nc)

		l.wg.Add(1)
		go func() {
			defer l.wg.Done()
			ctx, cancel := l.transport.dialContext(context.Background())
			defer cancel()

			if _, err := l.transport.setup(ctx, nc, l.Addr(), l.socket); err != nil {
				logger.Debug("入站握手失败", "addr", l.Addr(), "remote", nc.RemoteAddr(), "error", err)
				_ = nc.Close()
			}
		}()
	}
}

// Addr 返回实际监听地址
func (l *Listener) Addr() string {
	return l.addr.String()
}

// Close 关闭监听器并等待进行中的握手结束
func (l *Listener) Close() error {
	if !l.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := l.listener.Close()
	l.wg.Wait()
	l.transport.removeListener(l)
	return err
}

// IsClosed 检查监听器是否已关闭
func (l *Listener) IsClosed() bool {
	return l.closed.Load()
}
