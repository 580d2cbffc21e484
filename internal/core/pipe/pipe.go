package pipe

import (
	"sync"
	"sync/atomic"

	"github.com/dep2p/go-zmsg/internal/core/refcount"
	pkgif "github.com/dep2p/go-zmsg/pkg/interfaces"
	"github.com/dep2p/go-zmsg/pkg/lib/log"
	"github.com/dep2p/go-zmsg/pkg/types"
)

var logger = log.Logger("core/pipe")

// Pipe 管道端点
type Pipe struct {
	in   *queue // 本端读
	out  *queue // 本端写
	peer *Pipe
	ref  *refcount.Ref

	routingID types.RoutingID
	endpoint  string

	eventsMu sync.RWMutex
	events   pkgif.PipeEvents

	terminated atomic.Bool
	termOnce   sync.Once
}

// 确保实现接口
var _ pkgif.Pipe = (*Pipe)(nil)

// Config 管道对配置
type Config struct {
	// HWM 两个方向的高水位（消息数），0 表示不限
	// HWM[0] 为 a→b 方向，HWM[1] 为 b→a 方向
	HWM [2]int

	// RoutingID 两端各自声明的路由标识（a 端声明的标识由 b 端看到）
	RoutingID [2]types.RoutingID

	// Endpoint 建立管道的端点地址
	Endpoint string

	// OnDispose 两端都终止后回调
	OnDispose func()
}

// NewPair 创建一对相连的管道端点
func NewPair(cfg Config) (a, b *Pipe) {
	ab := newQueue(cfg.HWM[0])
	ba := newQueue(cfg.HWM[1])

	ref := refcount.NewRef(2, func() {
		ab.reset()
		ba.reset()
		if cfg.OnDispose != nil {
			cfg.OnDispose()
		}
		logger.Debug("管道已回收", "endpoint", cfg.Endpoint)
	})

	a = &Pipe{in: ba, out: ab, ref: ref, routingID: cfg.RoutingID[1], endpoint: cfg.Endpoint}
	b = &Pipe{in: ab, out: ba, ref: ref, routingID: cfg.RoutingID[0], endpoint: cfg.Endpoint}
	a.peer = b
	b.peer = a
	return a, b
}

// Push 写入一帧
func (p *Pipe) Push(data []byte, more bool) bool {
	if p.terminated.Load() || p.peer.terminated.Load() {
		return false
	}
	accepted, committed, wasEmpty := p.out.push(types.Frame{Data: data, More: more})
	if committed && wasEmpty {
		if ev := p.peer.getEvents(); ev != nil {
			ev.ReadActivated(p.peer)
		}
	}
	return accepted
}

// Rollback 丢弃暂存帧
func (p *Pipe) Rollback() {
	p.out.rollback()
}

// Pop 读取一帧
func (p *Pipe) Pop() (types.Frame, bool) {
	if p.terminated.Load() {
		return types.Frame{}, false
	}
	f, ok, unblocked := p.in.pop()
	if unblocked {
		if ev := p.peer.getEvents(); ev != nil {
			ev.WriteActivated(p.peer)
		}
	}
	return f, ok
}

// ProbeWritable 是否可开始写新消息（对端终止后不可写）
func (p *Pipe) ProbeWritable() bool {
	return !p.terminated.Load() && !p.peer.terminated.Load() && p.out.canWrite()
}

// ProbeReadable 是否有完整消息可读
func (p *Pipe) ProbeReadable() bool {
	return !p.terminated.Load() && p.in.readable()
}

// Terminate 终止本端
//
// 本端停止写入（对端仍可读完已提交的消息），通知对端并释放本端引用。
func (p *Pipe) Terminate() {
	p.termOnce.Do(func() {
		p.terminated.Store(true)
		p.out.close()
		if ev := p.peer.getEvents(); ev != nil {
			ev.Terminated(p.peer)
		}
		p.ref.Release()
	})
}

// Terminated 本端是否已终止
func (p *Pipe) Terminated() bool {
	return p.terminated.Load()
}

// PeerTerminated 对端是否已终止
func (p *Pipe) PeerTerminated() bool {
	return p.peer.terminated.Load()
}

// SetEvents 设置通知接收者
func (p *Pipe) SetEvents(events pkgif.PipeEvents) {
	p.eventsMu.Lock()
	p.events = events
	p.eventsMu.Unlock()
}

func (p *Pipe) getEvents() pkgif.PipeEvents {
	p.eventsMu.RLock()
	defer p.eventsMu.RUnlock()
	return p.events
}

// RoutingID 对端声明的路由标识
func (p *Pipe) RoutingID() types.RoutingID {
	return p.routingID
}

// Endpoint 端点地址
func (p *Pipe) Endpoint() string {
	return p.endpoint
}

// Pending 本端待读消息数
func (p *Pipe) Pending() int {
	return p.in.pending()
}

// Peer 返回另一端
func (p *Pipe) Peer() *Pipe {
	return p.peer
}
