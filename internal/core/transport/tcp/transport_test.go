package tcp

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgif "github.com/dep2p/go-zmsg/pkg/interfaces"
	"github.com/dep2p/go-zmsg/pkg/types"
	"github.com/dep2p/go-zmsg/tests/testutil"
)

const waitTimeout = 5 * time.Second

// fakeSocket 记录挂接的管道
type fakeSocket struct {
	typ   types.SocketType
	id    types.RoutingID
	hwm   int
	pipes chan pkgif.Pipe
}

func newFakeSocket(typ types.SocketType, id types.RoutingID, hwm int) *fakeSocket {
	return &fakeSocket{typ: typ, id: id, hwm: hwm, pipes: make(chan pkgif.Pipe, 16)}
}

func (s *fakeSocket) AttachPipe(p pkgif.Pipe)      { s.pipes <- p }
func (s *fakeSocket) SocketType() types.SocketType { return s.typ }
func (s *fakeSocket) RoutingID() types.RoutingID   { return s.id }
func (s *fakeSocket) HWM() (int, int)              { return s.hwm, s.hwm }

func (s *fakeSocket) nextPipe(t *testing.T) pkgif.Pipe {
	t.Helper()
	return testutil.Receive[pkgif.Pipe](t, s.pipes, waitTimeout, "等待管道挂接")
}

func pushMessage(p pkgif.Pipe, parts ...string) bool {
	for i, s := range parts {
		if !p.Push([]byte(s), i < len(parts)-1) {
			p.Rollback()
			return false
		}
	}
	return true
}

func popMessage(t *testing.T, p pkgif.Pipe) []string {
	t.Helper()
	testutil.Eventually(t, waitTimeout, p.ProbeReadable, "等待消息到达")
	var out []string
	for {
		f, ok := p.Pop()
		require.True(t, ok)
		out = append(out, string(f.Data))
		if !f.More {
			return out
		}
	}
}

// connectPair 建立一条 REQ→ROUTER 连接
func connectPair(t *testing.T, tr *Transport, hwm int) (reqPipe, routerPipe pkgif.Pipe) {
	t.Helper()
	router := newFakeSocket(types.SocketRouter, "", hwm)
	req := newFakeSocket(types.SocketReq, "client", hwm)

	l, err := tr.Bind(context.Background(), "tcp://127.0.0.1:0", router)
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	_, err = tr.Connect(context.Background(), l.Addr(), req)
	require.NoError(t, err)
	return req.nextPipe(t), router.nextPipe(t)
}

// TestTransport_RoundTrip 握手交换标识并双向传输消息
func TestTransport_RoundTrip(t *testing.T) {
	tr := New(DefaultConfig())
	defer tr.Close()

	reqPipe, routerPipe := connectPair(t, tr, 0)

	assert.Equal(t, types.RoutingID("client"), routerPipe.RoutingID(), "路由端看到请求端声明的标识")
	assert.True(t, reqPipe.RoutingID().IsAnonymous())

	require.True(t, pushMessage(reqPipe, "", "ABC"))
	assert.Equal(t, []string{"", "ABC"}, popMessage(t, routerPipe))

	require.True(t, pushMessage(routerPipe, "", "DEF"))
	assert.Equal(t, []string{"", "DEF"}, popMessage(t, reqPipe))

	assert.Equal(t, 2, tr.ConnCount())
	assert.Equal(t, 1, tr.ListenerCount())
}

// TestTransport_Backpressure 小高水位下消息不丢失且有序
func TestTransport_Backpressure(t *testing.T) {
	tr := New(DefaultConfig())
	defer tr.Close()

	reqPipe, routerPipe := connectPair(t, tr, 2)
	const n = 200

	go func() {
		for i := 0; i < n; {
			if pushMessage(reqPipe, "", fmt.Sprintf("m%d", i)) {
				i++
				continue
			}
			time.Sleep(time.Millisecond)
		}
	}()

	for i := 0; i < n; i++ {
		assert.Equal(t, []string{"", fmt.Sprintf("m%d", i)}, popMessage(t, routerPipe))
	}
}

// TestTransport_SocketTerminate socket 终止管道后连接关闭
func TestTransport_SocketTerminate(t *testing.T) {
	tr := New(DefaultConfig())
	defer tr.Close()

	reqPipe, routerPipe := connectPair(t, tr, 0)

	require.True(t, pushMessage(reqPipe, "", "bye"))
	reqPipe.Terminate()

	// 终止前提交的消息仍被送达
	assert.Equal(t, []string{"", "bye"}, popMessage(t, routerPipe))
	testutil.Eventually(t, waitTimeout, routerPipe.PeerTerminated, "路由端应感知断开")
	testutil.Eventually(t, waitTimeout, func() bool { return tr.ConnCount() == 0 }, "连接应被移除")
}

// TestTransport_Incompatible 类型不兼容的握手被拒绝
func TestTransport_Incompatible(t *testing.T) {
	tr := New(DefaultConfig())
	defer tr.Close()

	server := newFakeSocket(types.SocketReq, "", 0)
	l, err := tr.Bind(context.Background(), "tcp://127.0.0.1:0", server)
	require.NoError(t, err)
	defer l.Close()

	_, err = tr.Connect(context.Background(), l.Addr(), newFakeSocket(types.SocketReq, "", 0))
	assert.ErrorIs(t, err, types.ErrIncompatibleSocket)
	assert.Empty(t, server.pipes)
}

// TestTransport_ConnRefused 没有监听者
func TestTransport_ConnRefused(t *testing.T) {
	tr := New(DefaultConfig())
	defer tr.Close()

	l, err := tr.Bind(context.Background(), "tcp://127.0.0.1:0", newFakeSocket(types.SocketRouter, "", 0))
	require.NoError(t, err)
	addr := l.Addr()
	require.NoError(t, l.Close())

	_, err = tr.Connect(context.Background(), addr, newFakeSocket(types.SocketReq, "", 0))
	assert.ErrorIs(t, err, types.ErrConnRefused)
}

// TestTransport_AddrInUse 重复绑定
func TestTransport_AddrInUse(t *testing.T) {
	tr := New(DefaultConfig())
	defer tr.Close()

	l, err := tr.Bind(context.Background(), "tcp://127.0.0.1:0", newFakeSocket(types.SocketRouter, "", 0))
	require.NoError(t, err)

	_, err = tr.Bind(context.Background(), l.Addr(), newFakeSocket(types.SocketRouter, "", 0))
	assert.ErrorIs(t, err, types.ErrAddrInUse)
}

// TestTransport_Close 关闭传输层终止所有连接
func TestTransport_Close(t *testing.T) {
	tr := New(DefaultConfig())
	reqPipe, routerPipe := connectPair(t, tr, 0)

	require.NoError(t, tr.Close())
	assert.True(t, tr.IsClosed())
	assert.Equal(t, 0, tr.ListenerCount())
	testutil.Eventually(t, waitTimeout, reqPipe.PeerTerminated, "请求端管道应终止")
	testutil.Eventually(t, waitTimeout, routerPipe.PeerTerminated, "路由端管道应终止")

	_, err := tr.Bind(context.Background(), "tcp://127.0.0.1:0", newFakeSocket(types.SocketRouter, "", 0))
	assert.ErrorIs(t, err, ErrTransportClosed)
	assert.NoError(t, tr.Close())
}

// TestParseAddress 地址解析
func TestParseAddress(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"tcp://127.0.0.1:5555", "tcp://127.0.0.1:5555", false},
		{"127.0.0.1:5555", "tcp://127.0.0.1:5555", false},
		{"tcp://*:5555", "tcp://*:5555", false},
		{"tcp://[::1]:80", "tcp://[::1]:80", false},
		{"tcp://localhost", "", true},
		{"tcp://host:99999", "", true},
		{"tcp://host:abc", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			a, err := ParseAddress(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAddress)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, a.String())
		})
	}

	a, err := ParseAddress("tcp://*:7000")
	require.NoError(t, err)
	assert.Equal(t, ":7000", a.NetAddr())
	assert.Equal(t, 7000, a.Port())
}
