package req

import (
	"fmt"

	"github.com/dep2p/go-zmsg/internal/core/pipeset"
	pkgif "github.com/dep2p/go-zmsg/pkg/interfaces"
	"github.com/dep2p/go-zmsg/pkg/lib/log"
	"github.com/dep2p/go-zmsg/pkg/types"
)

var logger = log.Logger("core/req")

// Endpoint 请求端状态机
type Endpoint struct {
	peers *pipeset.PipeSet

	phase    Phase
	lastPeer *pipeset.Peer // 仅在 AwaitingReply 阶段有效
	lost     bool          // lastPeer 已被摘除

	onDrop pipeset.DropFunc
}

// 确保实现接口
var _ pkgif.ReqSocket = (*Endpoint)(nil)

// New 创建请求端
func New(opts ...Option) *Endpoint {
	e := &Endpoint{
		peers: pipeset.New(),
		phase: PhaseReadyToSend,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ============================================================================
//                              对端生命周期
// ============================================================================

// AttachPeer 挂接对端
func (e *Endpoint) AttachPeer(p pkgif.Pipe, id types.RoutingID) (types.RoutingID, error) {
	if err := e.peers.Attach(pipeset.NewPeer(id, p)); err != nil {
		return "", err
	}
	logger.Debug("对端已挂接", "peer", id, "endpoint", p.Endpoint(), "peers", e.peers.Len())
	return id, nil
}

// DetachPeer 摘除对端
func (e *Endpoint) DetachPeer(p pkgif.Pipe) {
	peer, ok := e.peers.Detach(p)
	if !ok {
		return
	}
	if e.phase == PhaseAwaitingReply && peer == e.lastPeer {
		e.lost = true
	}
	logger.Debug("对端已摘除", "peer", peer.ID, "endpoint", peer.Endpoint, "peers", e.peers.Len())
}

// PeerDraining 对端已断开但管道仍有未读数据
func (e *Endpoint) PeerDraining(p pkgif.Pipe) {
	if peer := e.peers.FindByPipe(p); peer != nil {
		peer.State = types.PeerDraining
	}
}

// ============================================================================
//                                 收发
// ============================================================================

// Send 发送请求
func (e *Endpoint) Send(msg types.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	if e.phase != PhaseReadyToSend {
		return fmt.Errorf("%w: send while %s", types.ErrFSM, e.phase)
	}

	peer := e.peers.NextWritable()
	if peer == nil {
		return types.ErrWouldBlock
	}
	if !peer.WriteMessage(msg.WithDelimiter()) {
		// 选择与写入之间对端被终止
		return types.ErrWouldBlock
	}

	e.lastPeer = peer
	e.lost = false
	e.phase = PhaseAwaitingReply
	return nil
}

// Recv 接收应答
func (e *Endpoint) Recv() (types.Message, error) {
	if e.phase != PhaseAwaitingReply {
		return nil, fmt.Errorf("%w: recv while %s", types.ErrFSM, e.phase)
	}

	e.discardOthers()

	peer := e.lastPeer
	if e.lost || (peer.State != types.PeerActive && !peer.Readable()) {
		e.reset()
		return nil, fmt.Errorf("%w: %s", types.ErrPeerLost, peer.ID)
	}

	msg, ok := peer.ReadMessage()
	if !ok {
		return nil, types.ErrWouldBlock
	}

	e.reset()
	if len(msg) < 2 || len(msg[0]) != 0 {
		logger.Warn("应答格式错误", "peer", peer.ID, "frames", len(msg))
		e.drop(peer.ID, types.DropMalformed, len(msg))
		return nil, types.ErrMalformedReply
	}
	return msg[1:], nil
}

// discardOthers 丢弃非目标对端的消息
func (e *Endpoint) discardOthers() {
	for _, p := range e.peers.Peers() {
		if p == e.lastPeer {
			continue
		}
		for _, frames := range p.Discard() {
			logger.Debug("丢弃非目标对端的应答", "peer", p.ID, "frames", frames)
			e.drop(p.ID, types.DropOffAffinity, frames)
		}
	}
}

func (e *Endpoint) drop(id types.RoutingID, reason types.DropReason, frames int) {
	if e.onDrop != nil {
		e.onDrop(id, reason, frames)
	}
}

func (e *Endpoint) reset() {
	e.phase = PhaseReadyToSend
	e.lastPeer = nil
	e.lost = false
}

// ============================================================================
//                                 查询
// ============================================================================

// Phase 当前阶段
func (e *Endpoint) Phase() Phase {
	return e.phase
}

// LastPeer 最近一次请求的对端，仅在 AwaitingReply 阶段有效
func (e *Endpoint) LastPeer() *pipeset.Peer {
	return e.lastPeer
}

// Peers 对端集合
func (e *Endpoint) Peers() *pipeset.PipeSet {
	return e.peers
}

// CanSend 是否可立即发送
func (e *Endpoint) CanSend() bool {
	return e.phase == PhaseReadyToSend && len(e.peers.Active()) > 0
}

// CanRecv 是否可立即接收（含会立即返回错误的情况）
func (e *Endpoint) CanRecv() bool {
	if e.phase != PhaseAwaitingReply {
		return false
	}
	p := e.lastPeer
	return e.lost || p.Readable() || p.State != types.PeerActive
}
