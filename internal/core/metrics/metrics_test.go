package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-zmsg/config"
	"github.com/dep2p/go-zmsg/pkg/types"
)

// ============================================================================
// RateMeter 测试
// ============================================================================

// TestRateMeter_Window 测试滑动窗口
func TestRateMeter_Window(t *testing.T) {
	mock := clock.NewMock()
	r := NewRateMeter(mock)

	r.Add(60)
	assert.InDelta(t, 1.0, r.Rate(), 1e-9)

	mock.Add(30 * time.Second)
	r.Add(60)
	assert.InDelta(t, 2.0, r.Rate(), 1e-9)

	// 第一个桶滑出窗口
	mock.Add(31 * time.Second)
	assert.InDelta(t, 1.0, r.Rate(), 1e-9)

	mock.Add(2 * time.Minute)
	assert.Zero(t, r.Rate())
}

// ============================================================================
// SocketMetrics 测试
// ============================================================================

// TestSocketMetrics_Prometheus 测试记录器写入 prometheus 收集器
func TestSocketMetrics_Prometheus(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollectors("zmsg", reg)
	require.NoError(t, err)

	m := c.Socket(types.SocketReq, "sock-1")
	m.MessageSent(2, 3)
	m.MessageSent(2, 5)
	m.MessageReceived(1, 3)
	m.MessageDropped(types.DropOffAffinity)
	m.SendFailed(fmt.Errorf("send: %w", types.ErrWouldBlock))
	m.PeersChanged(5)

	assert.Equal(t, 2.0, promtest.ToFloat64(c.sent.WithLabelValues("REQ")))
	assert.Equal(t, 8.0, promtest.ToFloat64(c.bytesSent.WithLabelValues("REQ")))
	assert.Equal(t, 1.0, promtest.ToFloat64(c.received.WithLabelValues("REQ")))
	assert.Equal(t, 1.0, promtest.ToFloat64(c.dropped.WithLabelValues("REQ", "off_affinity")))
	assert.Equal(t, 1.0, promtest.ToFloat64(c.sendFailures.WithLabelValues("REQ", "would_block")))
	assert.Equal(t, 5.0, promtest.ToFloat64(c.peers.WithLabelValues("REQ", "sock-1")))

	m.Release()
	assert.Equal(t, 0, promtest.CollectAndCount(c.peers))
}

// TestSocketMetrics_Snapshot 测试快照
func TestSocketMetrics_Snapshot(t *testing.T) {
	var c *Collectors
	m := c.Socket(types.SocketRouter, "sock-2")

	m.MessageSent(3, 10)
	m.MessageReceived(3, 7)
	m.MessageDropped(types.DropUnroutable)
	m.MessageDropped(types.DropMalformed)
	m.MessageDropped(types.DropMalformed)
	m.SendFailed(types.ErrUnroutable)
	m.PeersChanged(2)
	m.Release()

	s := m.Snapshot()
	assert.Equal(t, types.SocketID("sock-2"), s.Socket)
	assert.Equal(t, types.SocketRouter, s.Type)
	assert.EqualValues(t, 1, s.Sent)
	assert.EqualValues(t, 10, s.BytesSent)
	assert.EqualValues(t, 7, s.BytesRecv)
	assert.EqualValues(t, 1, s.DroppedUnroutable)
	assert.EqualValues(t, 2, s.DroppedMalformed)
	assert.EqualValues(t, 0, s.DroppedOffAffinity)
	assert.EqualValues(t, 1, s.SendFailures)
	assert.EqualValues(t, 2, s.Peers)
	assert.Greater(t, s.SendRate, 0.0)
}

// TestFailureKind 测试发送错误分类
func TestFailureKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{types.ErrWouldBlock, "would_block"},
		{fmt.Errorf("%w: %w: x", types.ErrUnroutable, types.ErrWouldBlock), "unroutable"},
		{types.ErrFSM, "fsm"},
		{types.ErrClosed, "closed"},
		{types.ErrEmptyMessage, "other"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, failureKind(tt.err), tt.err.Error())
	}
}

// TestNewCollectors_DuplicateRegister 测试同一 Registry 重复注册失败
func TestNewCollectors_DuplicateRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewCollectors("zmsg", reg)
	require.NoError(t, err)
	_, err = NewCollectors("zmsg", reg)
	assert.Error(t, err)
}

// ============================================================================
// Fx 模块测试
// ============================================================================

// TestModule_Disabled 测试关闭指标时不提供收集器
func TestModule_Disabled(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Metrics.Enable = false

	var c *Collectors
	app := fxtest.New(t,
		fx.Supply(cfg),
		Module(),
		fx.Populate(&c),
	)
	app.RequireStart()
	assert.Nil(t, c)
	app.RequireStop()
}

// TestModule_Enabled 测试默认配置注册收集器
func TestModule_Enabled(t *testing.T) {
	var (
		c   *Collectors
		gat prometheus.Gatherer
	)
	app := fxtest.New(t,
		Module(),
		fx.Populate(&c, &gat),
	)
	app.RequireStart()
	require.NotNil(t, c)

	c.Socket(types.SocketReq, "s").MessageSent(1, 1)
	families, err := gat.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "zmsg_messages_sent_total")
	app.RequireStop()
}
