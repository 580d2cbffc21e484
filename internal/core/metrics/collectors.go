package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dep2p/go-zmsg/pkg/types"
)

// 标签名
const (
	labelSocketType = "socket_type"
	labelSocket     = "socket"
	labelReason     = "reason"
	labelKind       = "kind"
)

// ============================================================================
// Collectors - prometheus 收集器集合
// ============================================================================

// Collectors 一个 Context 的全部 prometheus 收集器
type Collectors struct {
	reg prometheus.Registerer

	sent         *prometheus.CounterVec
	received     *prometheus.CounterVec
	bytesSent    *prometheus.CounterVec
	bytesRecv    *prometheus.CounterVec
	dropped      *prometheus.CounterVec
	sendFailures *prometheus.CounterVec
	peers        *prometheus.GaugeVec
}

// NewCollectors 创建并注册收集器
//
// reg 为 nil 时收集器不注册，仍可正常计数。
func NewCollectors(namespace string, reg prometheus.Registerer) (*Collectors, error) {
	c := &Collectors{
		reg: reg,
		sent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_sent_total",
			Help:      "Messages handed to a peer pipe.",
		}, []string{labelSocketType}),
		received: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_received_total",
			Help:      "Messages delivered to the application.",
		}, []string{labelSocketType}),
		bytesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_sent_total",
			Help:      "Payload bytes handed to a peer pipe.",
		}, []string{labelSocketType}),
		bytesRecv: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_received_total",
			Help:      "Payload bytes delivered to the application.",
		}, []string{labelSocketType}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_dropped_total",
			Help:      "Messages silently discarded by routing policy.",
		}, []string{labelSocketType, labelReason}),
		sendFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "send_failures_total",
			Help:      "Send calls that returned an error.",
		}, []string{labelSocketType, labelKind}),
		peers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "peers",
			Help:      "Peers currently attached to a socket.",
		}, []string{labelSocketType, labelSocket}),
	}

	if reg != nil {
		for _, col := range c.all() {
			if err := reg.Register(col); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

func (c *Collectors) all() []prometheus.Collector {
	return []prometheus.Collector{
		c.sent, c.received, c.bytesSent, c.bytesRecv,
		c.dropped, c.sendFailures, c.peers,
	}
}

// Unregister 从 Registry 注销全部收集器
func (c *Collectors) Unregister() {
	if c == nil || c.reg == nil {
		return
	}
	for _, col := range c.all() {
		c.reg.Unregister(col)
	}
}

// Socket 为一个 socket 创建指标记录器
//
// c 为 nil（指标关闭）时返回只维护快照的记录器。
func (c *Collectors) Socket(typ types.SocketType, id types.SocketID) *SocketMetrics {
	return newSocketMetrics(c, typ, id)
}

// failureKind 把发送错误归类为标签值
func failureKind(err error) string {
	switch {
	case errors.Is(err, types.ErrUnroutable):
		return "unroutable"
	case errors.Is(err, types.ErrWouldBlock):
		return "would_block"
	case errors.Is(err, types.ErrFSM):
		return "fsm"
	case errors.Is(err, types.ErrClosed):
		return "closed"
	default:
		return "other"
	}
}
