package socket

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-zmsg/internal/core/eventbus"
	"github.com/dep2p/go-zmsg/internal/core/metrics"
	"github.com/dep2p/go-zmsg/internal/core/pipe"
	"github.com/dep2p/go-zmsg/internal/core/req"
	"github.com/dep2p/go-zmsg/internal/core/router"
	pkgif "github.com/dep2p/go-zmsg/pkg/interfaces"
	"github.com/dep2p/go-zmsg/pkg/types"
	"github.com/dep2p/go-zmsg/tests/testutil"
)

// ============================================================================
// 辅助
// ============================================================================

func newReqBase(t *testing.T, cfg Config) (*Base, *req.Endpoint) {
	t.Helper()
	cfg.Type = types.SocketReq
	var ep *req.Endpoint
	b, err := New(cfg, func(b *Base) pkgif.PeerHandler {
		ep = req.New(req.WithDropHook(b.Dropped))
		return ep
	})
	require.NoError(t, err)
	return b, ep
}

func newRouterBase(t *testing.T, cfg Config, opts ...router.Option) (*Base, *router.Router) {
	t.Helper()
	cfg.Type = types.SocketRouter
	var r *router.Router
	b, err := New(cfg, func(b *Base) pkgif.PeerHandler {
		opts = append(opts, router.WithEvictHook(b.Evict), router.WithDropHook(b.Dropped))
		r = router.New(opts...)
		return r
	})
	require.NoError(t, err)
	return b, r
}

// connect 模拟传输层：返回 I/O 端，socket 端挂接到 b
func connect(b *Base, peerID types.RoutingID) *pipe.Pipe {
	io, sock := pipe.NewPair(pipe.Config{
		HWM:       [2]int{10, 10},
		RoutingID: [2]types.RoutingID{peerID, b.RoutingID()},
		Endpoint:  "inproc://test",
	})
	b.AttachPipe(sock)
	return io
}

func push(p *pipe.Pipe, parts ...string) bool {
	for i, s := range parts {
		if !p.Push([]byte(s), i < len(parts)-1) {
			p.Rollback()
			return false
		}
	}
	return true
}

func pop(p *pipe.Pipe) []string {
	var out []string
	for {
		f, ok := p.Pop()
		if !ok {
			return out
		}
		out = append(out, string(f.Data))
		if !f.More {
			return out
		}
	}
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// ============================================================================
// 挂接与收发
// ============================================================================

// TestBase_AttachAndRoundTrip 测试挂接后经状态机收发
func TestBase_AttachAndRoundTrip(t *testing.T) {
	b, ep := newReqBase(t, Config{})
	defer b.Close()

	io := connect(b, "srv")
	require.NoError(t, b.Do(func() error {
		return ep.Send(types.NewStringMessage("ABC"))
	}))
	assert.Equal(t, []string{"", "ABC"}, pop(io))

	require.True(t, push(io, "", "DEF"))
	var got types.Message
	require.NoError(t, b.Do(func() (err error) {
		got, err = ep.Recv()
		return err
	}))
	assert.Equal(t, []string{"DEF"}, got.Strings())
}

// TestBase_DrainThenDetach 测试对端断开后读完剩余消息再摘除
func TestBase_DrainThenDetach(t *testing.T) {
	b, ep := newReqBase(t, Config{})
	defer b.Close()

	io := connect(b, "srv")
	require.NoError(t, b.Do(func() error {
		return ep.Send(types.NewStringMessage("ABC"))
	}))
	require.True(t, push(io, "", "DEF"))
	io.Terminate()

	assert.Equal(t, 1, b.PeerCount(), "仍有未读应答")

	var got types.Message
	require.NoError(t, b.Do(func() (err error) {
		got, err = ep.Recv()
		return err
	}))
	assert.Equal(t, []string{"DEF"}, got.Strings())
	assert.Equal(t, 0, b.PeerCount())
}

// TestBase_PeerLost 测试等待应答时对端断开
func TestBase_PeerLost(t *testing.T) {
	b, ep := newReqBase(t, Config{})
	defer b.Close()

	io := connect(b, "srv")
	require.NoError(t, b.Do(func() error {
		return ep.Send(types.NewStringMessage("ABC"))
	}))
	io.Terminate()

	err := b.Do(func() error {
		_, err := ep.Recv()
		return err
	})
	assert.ErrorIs(t, err, types.ErrPeerLost)
	assert.Equal(t, req.PhaseReadyToSend, ep.Phase())
}

// TestBase_SelfTerminatedReaped 测试本端被传输层终止后被回收
func TestBase_SelfTerminatedReaped(t *testing.T) {
	b, _ := newReqBase(t, Config{})
	defer b.Close()

	io, sock := pipe.NewPair(pipe.Config{RoutingID: [2]types.RoutingID{"srv", ""}})
	b.AttachPipe(sock)
	require.Equal(t, 1, b.PeerCount())

	sock.Terminate()
	assert.Equal(t, 0, b.PeerCount())
	assert.True(t, io.PeerTerminated())
}

// ============================================================================
// 路由端挂接策略
// ============================================================================

// TestBase_DuplicateRejected 测试重复路由标识被拒绝并发布事件
func TestBase_DuplicateRejected(t *testing.T) {
	bus := eventbus.NewBus()
	defer bus.Close()
	sub, err := bus.Subscribe(new(types.EvtPeerRejected))
	require.NoError(t, err)

	b, r := newRouterBase(t, Config{Bus: bus})
	defer b.Close()

	first := connect(b, "dup")
	second := connect(b, "dup")
	assert.Equal(t, 1, b.PeerCount())
	assert.Equal(t, 1, r.Peers().Len())
	assert.False(t, first.PeerTerminated())
	assert.True(t, second.PeerTerminated())

	ctx := testutil.Context(t, time.Second)
	evt, err := eventbus.Next[types.EvtPeerRejected](ctx, sub)
	require.NoError(t, err)
	assert.Equal(t, types.RoutingID("dup"), evt.Peer)
	assert.ErrorIs(t, evt.Reason, types.ErrDuplicateRoutingID)
}

// TestBase_Handover 测试接管时旧管道被释放
func TestBase_Handover(t *testing.T) {
	b, r := newRouterBase(t, Config{}, router.WithHandover(true))
	defer b.Close()

	old := connect(b, "dup")
	require.Equal(t, 1, b.PeerCount())
	fresh := connect(b, "dup")

	assert.Equal(t, 1, b.PeerCount())
	assert.True(t, old.PeerTerminated())
	assert.False(t, fresh.PeerTerminated())

	require.NoError(t, b.Do(func() error {
		return r.Send("dup", types.NewStringMessage("DEF"))
	}))
	assert.Equal(t, []string{"", "DEF"}, pop(fresh))
}

// TestBase_DroppedEventAndMetrics 测试静默丢弃发布事件并计数
func TestBase_DroppedEventAndMetrics(t *testing.T) {
	bus := eventbus.NewBus()
	defer bus.Close()
	sub, err := bus.Subscribe(new(types.EvtMessageDropped))
	require.NoError(t, err)

	var col *metrics.Collectors
	m := col.Socket(types.SocketRouter, "r")
	b, r := newRouterBase(t, Config{Bus: bus, Metrics: m})
	defer b.Close()

	connect(b, "known")
	require.NoError(t, b.Do(func() error {
		return r.Send("unknown", types.NewStringMessage("x"))
	}))

	ctx := testutil.Context(t, time.Second)
	evt, err := eventbus.Next[types.EvtMessageDropped](ctx, sub)
	require.NoError(t, err)
	assert.Equal(t, types.DropUnroutable, evt.Reason)
	assert.Equal(t, b.ID(), evt.Socket)

	s := m.Snapshot()
	assert.EqualValues(t, 1, s.DroppedUnroutable)
	assert.EqualValues(t, 1, s.Peers)
}

// TestBase_ConnectedDisconnectedEvents 测试对端生命周期事件
func TestBase_ConnectedDisconnectedEvents(t *testing.T) {
	bus := eventbus.NewBus()
	defer bus.Close()
	conn, err := bus.Subscribe(new(types.EvtPeerConnected))
	require.NoError(t, err)
	disc, err := bus.Subscribe(new(types.EvtPeerDisconnected))
	require.NoError(t, err)

	b, _ := newRouterBase(t, Config{Bus: bus})
	defer b.Close()

	io := connect(b, "peer-1")
	require.Equal(t, 1, b.PeerCount())
	io.Terminate()
	require.Equal(t, 0, b.PeerCount())

	ctx := testutil.Context(t, time.Second)
	c, err := eventbus.Next[types.EvtPeerConnected](ctx, conn)
	require.NoError(t, err)
	assert.Equal(t, types.RoutingID("peer-1"), c.Peer)
	assert.Equal(t, types.SocketRouter, c.Type)

	d, err := eventbus.Next[types.EvtPeerDisconnected](ctx, disc)
	require.NoError(t, err)
	assert.Equal(t, types.RoutingID("peer-1"), d.Peer)
}

// ============================================================================
// 等待
// ============================================================================

// TestBase_WaitTimeout 测试没有对端时等待超时
func TestBase_WaitTimeout(t *testing.T) {
	b, ep := newReqBase(t, Config{})
	defer b.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	err := b.Wait(ctx, func() error {
		return ep.Send(types.NewStringMessage("ABC"))
	})
	assert.ErrorIs(t, err, types.ErrWouldBlock)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// TestBase_WaitWakesOnAttach 测试对端挂接唤醒等待者
func TestBase_WaitWakesOnAttach(t *testing.T) {
	b, ep := newReqBase(t, Config{})
	defer b.Close()

	var ioEnd atomic.Pointer[pipe.Pipe]
	go func() {
		time.Sleep(20 * time.Millisecond)
		ioEnd.Store(connect(b, "late"))
	}()

	ctx := testutil.Context(t, time.Second)
	require.NoError(t, b.Wait(ctx, func() error {
		return ep.Send(types.NewStringMessage("ABC"))
	}))

	require.NotNil(t, ioEnd.Load())
	assert.Equal(t, []string{"", "ABC"}, pop(ioEnd.Load()))
}

// TestBase_WaitWakesOnReply 测试应答到达唤醒等待者
func TestBase_WaitWakesOnReply(t *testing.T) {
	b, ep := newReqBase(t, Config{})
	defer b.Close()

	io := connect(b, "srv")
	require.NoError(t, b.Do(func() error {
		return ep.Send(types.NewStringMessage("ABC"))
	}))

	go func() {
		time.Sleep(20 * time.Millisecond)
		push(io, "", "DEF")
	}()

	ctx := testutil.Context(t, time.Second)
	var got types.Message
	require.NoError(t, b.Wait(ctx, func() (err error) {
		got, err = ep.Recv()
		return err
	}))
	assert.Equal(t, []string{"DEF"}, got.Strings())
}

// ============================================================================
// 端点与关闭
// ============================================================================

// TestBase_Disconnect 测试按端点断开
func TestBase_Disconnect(t *testing.T) {
	b, _ := newReqBase(t, Config{})
	defer b.Close()

	var closed atomic.Int32
	require.NoError(t, b.AddEndpoint("tcp://127.0.0.1:1", closerFunc(func() error {
		closed.Add(1)
		return nil
	})))
	assert.Equal(t, []string{"tcp://127.0.0.1:1"}, b.Endpoints())

	require.NoError(t, b.Disconnect("tcp://127.0.0.1:1"))
	assert.EqualValues(t, 1, closed.Load())
	assert.Empty(t, b.Endpoints())

	err := b.Disconnect("tcp://127.0.0.1:1")
	assert.ErrorIs(t, err, ErrUnknownEndpoint)
}

// TestBase_CloseWaitsForPeers 测试关闭后待对端终止才回收
func TestBase_CloseWaitsForPeers(t *testing.T) {
	b, _ := newReqBase(t, Config{})

	io := connect(b, "srv")
	require.Equal(t, 1, b.PeerCount())

	boom := errors.New("boom")
	require.NoError(t, b.AddEndpoint("inproc://x", closerFunc(func() error { return boom })))

	err := b.Close()
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, b.Close())
	assert.True(t, io.PeerTerminated())

	select {
	case <-b.Done():
		t.Fatal("I/O 端未终止前不应回收")
	default:
	}

	io.Terminate()
	testutil.Closed(t, b.Done(), time.Second, "socket 回收")

	assert.ErrorIs(t, b.Do(func() error { return nil }), types.ErrClosed)
}

// TestBase_AttachAfterClose 测试关闭后挂接的管道被立即终止
func TestBase_AttachAfterClose(t *testing.T) {
	b, _ := newReqBase(t, Config{})
	require.NoError(t, b.Close())
	testutil.Closed(t, b.Done(), time.Second, "socket 回收")

	io := connect(b, "late")
	assert.True(t, io.PeerTerminated())
}

// TestNew_Validation 测试配置校验
func TestNew_Validation(t *testing.T) {
	_, err := New(Config{}, func(*Base) pkgif.PeerHandler { return req.New() })
	assert.ErrorIs(t, err, types.ErrIncompatibleSocket)

	_, err = New(Config{Type: types.SocketReq}, func(*Base) pkgif.PeerHandler { return nil })
	assert.ErrorIs(t, err, ErrNoHandler)
}

// TestNew_ClosedBus 事件总线已关闭时创建失败并返回 ErrClosed
func TestNew_ClosedBus(t *testing.T) {
	bus := eventbus.NewBus()
	require.NoError(t, bus.Close())

	_, err := New(Config{Type: types.SocketReq, Bus: bus}, func(*Base) pkgif.PeerHandler { return req.New() })
	assert.ErrorIs(t, err, types.ErrClosed)
}
