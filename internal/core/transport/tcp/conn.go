package tcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-zmsg/internal/core/codec"
	"github.com/dep2p/go-zmsg/internal/core/pipe"
	pkgif "github.com/dep2p/go-zmsg/pkg/interfaces"
	"github.com/dep2p/go-zmsg/pkg/types"
)

// ============================================================================
//                              Conn 实现
// ============================================================================

// Conn 一条已握手的 TCP 连接
type Conn struct {
	nc       net.Conn
	endpoint string
	remoteID types.RoutingID
	linger   time.Duration

	pipe *pipe.Pipe // I/O 端
	enc  *codec.Encoder
	dec  *codec.Decoder

	readWake  chan struct{} // 入站队列恢复可写
	writeWake chan struct{} // 出站队列有新消息或 socket 端终止

	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
	onClose   func(*Conn)
}

// 确保实现接口
var _ pkgif.PipeEvents = (*Conn)(nil)

// handshake 交换握手并返回对端握手
func handshake(ctx context.Context, nc net.Conn, dec *codec.Decoder, s pkgif.PipeAttacher) (codec.Greeting, error) {
	if deadline, ok := ctx.Deadline(); ok {
		_ = nc.SetDeadline(deadline)
		defer nc.SetDeadline(time.Time{})
	}

	err := codec.WriteGreeting(nc, codec.Greeting{Type: s.SocketType(), RoutingID: s.RoutingID()})
	if err != nil {
		return codec.Greeting{}, fmt.Errorf("write greeting: %w", err)
	}
	g, err := codec.ReadGreeting(dec.Reader())
	if err != nil {
		return codec.Greeting{}, fmt.Errorf("read greeting: %w", err)
	}
	if !s.SocketType().CompatibleWith(g.Type) {
		return codec.Greeting{}, fmt.Errorf("%w: %s with %s", types.ErrIncompatibleSocket, s.SocketType(), g.Type)
	}
	return g, nil
}

// newConn 握手、建立管道对并挂接到 socket
//
// 成功后连接由读写 goroutine 驱动，直到任一方向出错或 socket 终止管道。
func newConn(ctx context.Context, nc net.Conn, endpoint string, cfg Config, s pkgif.PipeAttacher, onClose func(*Conn)) (*Conn, error) {
	dec := codec.NewDecoder(nc, cfg.ReadBufferSize, cfg.MaxFrameSize)
	g, err := handshake(ctx, nc, dec, s)
	if err != nil {
		return nil, err
	}

	send, recv := s.HWM()
	sockEnd, ioEnd := pipe.NewPair(pipe.Config{
		HWM:       [2]int{send, recv},
		RoutingID: [2]types.RoutingID{s.RoutingID(), g.RoutingID},
		Endpoint:  endpoint,
	})

	c := &Conn{
		nc:        nc,
		endpoint:  endpoint,
		remoteID:  g.RoutingID,
		linger:    cfg.Linger,
		pipe:      ioEnd,
		enc:       codec.NewEncoder(nc, cfg.WriteBufferSize),
		dec:       dec,
		readWake:  make(chan struct{}, 1),
		writeWake: make(chan struct{}, 1),
		done:      make(chan struct{}),
		onClose:   onClose,
	}
	ioEnd.SetEvents(c)

	runCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	go c.run(runCtx)

	s.AttachPipe(sockEnd)
	logger.Debug("TCP 连接已建立", "endpoint", endpoint, "remote", nc.RemoteAddr(), "peer", g.RoutingID, "peerType", g.Type)
	return c, nil
}

// run 驱动读写 goroutine，结束后终止管道
func (c *Conn) run(ctx context.Context) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.readLoop(gctx) })
	g.Go(func() error { return c.writeLoop(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		return c.nc.Close()
	})

	err := g.Wait()
	c.pipe.Terminate()
	close(c.done)

	if isNormalClose(err) {
		logger.Debug("TCP 连接已关闭", "endpoint", c.endpoint, "peer", c.remoteID)
	} else {
		logger.Debug("TCP 连接异常断开", "endpoint", c.endpoint, "peer", c.remoteID, "error", err)
	}
	if c.onClose != nil {
		c.onClose(c)
	}
}

func isNormalClose(err error) bool {
	return err == nil ||
		errors.Is(err, errPipeClosed) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, net.ErrClosed)
}

// readLoop 解码入站帧并写入管道
func (c *Conn) readLoop(ctx context.Context) error {
	for {
		f, err := c.dec.ReadFrame()
		if err != nil {
			return err
		}
		for !c.pipe.Push(f.Data, f.More) {
			if c.pipe.Terminated() || c.pipe.PeerTerminated() {
				return errPipeClosed
			}
			// 入站队列已满，等待 socket 读走消息
			select {
			case <-c.readWake:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// writeLoop 从管道取出帧并编码发送
func (c *Conn) writeLoop(ctx context.Context) error {
	for {
		if err := c.flushPending(); err != nil {
			return err
		}
		if c.pipe.PeerTerminated() {
			return c.drainOnClose()
		}
		select {
		case <-c.writeWake:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// flushPending 写出所有已提交的帧
func (c *Conn) flushPending() error {
	wrote := false
	for {
		f, ok := c.pipe.Pop()
		if !ok {
			break
		}
		if err := c.enc.WriteFrame(f); err != nil {
			return err
		}
		wrote = true
	}
	if wrote {
		return c.enc.Flush()
	}
	return nil
}

// drainOnClose socket 端终止后在限定时间内写完剩余消息
func (c *Conn) drainOnClose() error {
	if c.linger <= 0 {
		return errPipeClosed
	}
	_ = c.nc.SetWriteDeadline(time.Now().Add(c.linger))
	if err := c.flushPending(); err != nil {
		return err
	}
	return errPipeClosed
}

// ============================================================================
//                              PipeEvents 实现
// ============================================================================

// ReadActivated socket 提交了新消息
func (c *Conn) ReadActivated(pkgif.Pipe) {
	signal(c.writeWake)
}

// WriteActivated socket 读走了消息，入站队列可写
func (c *Conn) WriteActivated(pkgif.Pipe) {
	signal(c.readWake)
}

// Terminated socket 端终止了管道
func (c *Conn) Terminated(pkgif.Pipe) {
	signal(c.writeWake)
	signal(c.readWake)
}

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// ============================================================================
//                              io.Closer
// ============================================================================

// Close 关闭连接并等待读写 goroutine 退出
func (c *Conn) Close() error {
	c.closeOnce.Do(c.cancel)
	<-c.done
	return nil
}

// Done 连接结束时关闭
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// Endpoint 端点地址
func (c *Conn) Endpoint() string {
	return c.endpoint
}

// RemoteID 对端声明的路由标识
func (c *Conn) RemoteID() types.RoutingID {
	return c.remoteID
}

// RemoteAddr 对端网络地址
func (c *Conn) RemoteAddr() net.Addr {
	return c.nc.RemoteAddr()
}
