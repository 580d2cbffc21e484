package transport

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-zmsg/config"
	pkgif "github.com/dep2p/go-zmsg/pkg/interfaces"
	"github.com/dep2p/go-zmsg/pkg/types"
)

type fakeSocket struct {
	typ   types.SocketType
	pipes []pkgif.Pipe
}

func (s *fakeSocket) AttachPipe(p pkgif.Pipe)      { s.pipes = append(s.pipes, p) }
func (s *fakeSocket) SocketType() types.SocketType { return s.typ }
func (s *fakeSocket) RoutingID() types.RoutingID   { return "" }
func (s *fakeSocket) HWM() (int, int)              { return 0, 0 }

// TestSplitEndpoint 端点拆分
func TestSplitEndpoint(t *testing.T) {
	scheme, addr, err := SplitEndpoint("tcp://127.0.0.1:5555")
	require.NoError(t, err)
	assert.Equal(t, "tcp", scheme)
	assert.Equal(t, "127.0.0.1:5555", addr)

	for _, bad := range []string{"", "tcp", "://x", "tcp://"} {
		_, _, err := SplitEndpoint(bad)
		assert.ErrorIs(t, err, ErrInvalidEndpoint, bad)
	}
}

// TestManager_Resolve 按前缀分派
func TestManager_Resolve(t *testing.T) {
	m := NewManager(NewConfig())
	defer m.Close()

	tr, err := m.Resolve("tcp://127.0.0.1:1")
	require.NoError(t, err)
	assert.Equal(t, "tcp", tr.Scheme())

	tr, err = m.Resolve("inproc://x")
	require.NoError(t, err)
	assert.Equal(t, "inproc", tr.Scheme())
	assert.Same(t, tr, m.Transport("inproc"))

	_, err = m.Resolve("ipc:///tmp/x")
	assert.ErrorIs(t, err, types.ErrUnsupportedTransport)
}

// TestManager_BindConnect 通过管理器建立进程内连接
func TestManager_BindConnect(t *testing.T) {
	m := NewManager(NewConfig())
	router := &fakeSocket{typ: types.SocketRouter}
	req := &fakeSocket{typ: types.SocketReq}

	_, err := m.Bind(context.Background(), "inproc://svc", router)
	require.NoError(t, err)
	_, err = m.Connect(context.Background(), "inproc://svc", req)
	require.NoError(t, err)
	assert.Len(t, router.pipes, 1)
	assert.Len(t, req.pipes, 1)

	require.NoError(t, m.Close())
	assert.True(t, router.pipes[0].PeerTerminated())
}

// TestConfigFromUnified 统一配置转换
func TestConfigFromUnified(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Transport.TCP.DialTimeout = config.Duration(time.Second)
	cfg.Transport.TCP.MaxFrameSize = 1024
	cfg.Socket.Linger = 0

	c := ConfigFromUnified(cfg)
	assert.Equal(t, time.Second, c.TCP.DialTimeout)
	assert.Equal(t, 1024, c.TCP.MaxFrameSize)
	assert.Equal(t, time.Duration(0), c.TCP.Linger)

	assert.Equal(t, NewConfig(), ConfigFromUnified(nil))
}

// TestModule fx 模块启动与停止
func TestModule(t *testing.T) {
	var m *Manager
	app := fxtest.New(t,
		fx.Supply(config.NewConfig()),
		Module(),
		fx.Populate(&m),
	)
	app.RequireStart()
	require.NotNil(t, m)

	_, err := m.Bind(context.Background(), "tcp://127.0.0.1:0", &fakeSocket{typ: types.SocketRouter})
	require.NoError(t, err)

	app.RequireStop()
	_, err = m.Bind(context.Background(), "tcp://127.0.0.1:0", &fakeSocket{typ: types.SocketRouter})
	assert.Error(t, err)
}
