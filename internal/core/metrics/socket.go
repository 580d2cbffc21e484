package metrics

import (
	"sync/atomic"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"

	pkgif "github.com/dep2p/go-zmsg/pkg/interfaces"
	"github.com/dep2p/go-zmsg/pkg/types"
)

// ============================================================================
// SocketMetrics - 单个 socket 的记录器
// ============================================================================

// SocketMetrics 单个 socket 的指标记录器
type SocketMetrics struct {
	typ types.SocketType
	id  types.SocketID

	sent      atomic.Int64
	received  atomic.Int64
	bytesSent atomic.Int64
	bytesRecv atomic.Int64
	failures  atomic.Int64
	peers     atomic.Int64
	dropped   [3]atomic.Int64 // 按 DropReason 索引

	sendRate *RateMeter
	recvRate *RateMeter

	// prometheus 子指标，Collectors 为 nil 时全为 nil
	col          *Collectors
	promSent     prometheus.Counter
	promRecv     prometheus.Counter
	promBytesOut prometheus.Counter
	promBytesIn  prometheus.Counter
	promPeers    prometheus.Gauge
}

// 确保实现接口
var _ pkgif.SocketMetrics = (*SocketMetrics)(nil)

func newSocketMetrics(c *Collectors, typ types.SocketType, id types.SocketID) *SocketMetrics {
	m := &SocketMetrics{
		typ:      typ,
		id:       id,
		sendRate: NewRateMeter(clock.New()),
		recvRate: NewRateMeter(clock.New()),
		col:      c,
	}
	if c != nil {
		t := typ.String()
		m.promSent = c.sent.WithLabelValues(t)
		m.promRecv = c.received.WithLabelValues(t)
		m.promBytesOut = c.bytesSent.WithLabelValues(t)
		m.promBytesIn = c.bytesRecv.WithLabelValues(t)
		m.promPeers = c.peers.WithLabelValues(t, string(id))
	}
	return m
}

// MessageSent 记录一条已发送消息
func (m *SocketMetrics) MessageSent(_ int, bytes int) {
	m.sent.Add(1)
	m.bytesSent.Add(int64(bytes))
	m.sendRate.Add(1)
	if m.col != nil {
		m.promSent.Inc()
		m.promBytesOut.Add(float64(bytes))
	}
}

// MessageReceived 记录一条已接收消息
func (m *SocketMetrics) MessageReceived(_ int, bytes int) {
	m.received.Add(1)
	m.bytesRecv.Add(int64(bytes))
	m.recvRate.Add(1)
	if m.col != nil {
		m.promRecv.Inc()
		m.promBytesIn.Add(float64(bytes))
	}
}

// MessageDropped 记录一条被静默丢弃的消息
func (m *SocketMetrics) MessageDropped(reason types.DropReason) {
	if int(reason) >= 0 && int(reason) < len(m.dropped) {
		m.dropped[reason].Add(1)
	}
	if m.col != nil {
		m.col.dropped.WithLabelValues(m.typ.String(), reason.String()).Inc()
	}
}

// SendFailed 记录一次发送失败
func (m *SocketMetrics) SendFailed(err error) {
	m.failures.Add(1)
	if m.col != nil {
		m.col.sendFailures.WithLabelValues(m.typ.String(), failureKind(err)).Inc()
	}
}

// PeersChanged 记录当前挂接的对端数
func (m *SocketMetrics) PeersChanged(n int) {
	m.peers.Store(int64(n))
	if m.col != nil {
		m.promPeers.Set(float64(n))
	}
}

// Release socket 关闭时删除其专属的 peers 序列
func (m *SocketMetrics) Release() {
	if m.col != nil {
		m.col.peers.DeleteLabelValues(m.typ.String(), string(m.id))
	}
}

// ============================================================================
// 快照
// ============================================================================

// Snapshot 指标快照
type Snapshot struct {
	Socket       types.SocketID   `json:"socket"`
	Type         types.SocketType `json:"type"`
	Sent         int64            `json:"sent"`
	Received     int64            `json:"received"`
	BytesSent    int64            `json:"bytesSent"`
	BytesRecv    int64            `json:"bytesRecv"`
	SendFailures int64            `json:"sendFailures"`
	Peers        int64            `json:"peers"`

	DroppedOffAffinity int64 `json:"droppedOffAffinity"`
	DroppedUnroutable  int64 `json:"droppedUnroutable"`
	DroppedMalformed   int64 `json:"droppedMalformed"`

	SendRate float64 `json:"sendRate"` // 条/秒，最近 60 秒平均
	RecvRate float64 `json:"recvRate"`
}

// Snapshot 返回当前快照
func (m *SocketMetrics) Snapshot() Snapshot {
	return Snapshot{
		Socket:             m.id,
		Type:               m.typ,
		Sent:               m.sent.Load(),
		Received:           m.received.Load(),
		BytesSent:          m.bytesSent.Load(),
		BytesRecv:          m.bytesRecv.Load(),
		SendFailures:       m.failures.Load(),
		Peers:              m.peers.Load(),
		DroppedOffAffinity: m.dropped[types.DropOffAffinity].Load(),
		DroppedUnroutable:  m.dropped[types.DropUnroutable].Load(),
		DroppedMalformed:   m.dropped[types.DropMalformed].Load(),
		SendRate:           m.sendRate.Rate(),
		RecvRate:           m.recvRate.Rate(),
	}
}
