package router

import (
	"encoding/binary"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dep2p/go-zmsg/internal/core/idgen"
	"github.com/dep2p/go-zmsg/internal/core/pipeset"
	pkgif "github.com/dep2p/go-zmsg/pkg/interfaces"
	"github.com/dep2p/go-zmsg/pkg/lib/log"
	"github.com/dep2p/go-zmsg/pkg/types"
)

var logger = log.Logger("core/router")

// anonymousIDLen 匿名标识长度：前缀 0x00 加 4 字节计数
const anonymousIDLen = 5

// Router 路由端状态机
type Router struct {
	peers *pipeset.PipeSet

	mandatory bool
	handover  bool

	nextID uint32
	seeded bool

	departedSize int
	departed     *lru.Cache[types.RoutingID, time.Time]

	onDrop pipeset.DropFunc
	evict  func(pkgif.Pipe)
}

// 确保实现接口
var _ pkgif.RouterSocket = (*Router)(nil)

// New 创建路由端
func New(opts ...Option) *Router {
	r := &Router{
		peers:        pipeset.New(),
		departedSize: DefaultDepartedCacheSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	if !r.seeded {
		r.nextID = idgen.Next()
	}
	// 容量为正时不会出错
	r.departed, _ = lru.New[types.RoutingID, time.Time](r.departedSize)
	return r
}

// ============================================================================
//                              对端生命周期
// ============================================================================

// AttachPeer 挂接对端，返回最终采用的路由标识
func (r *Router) AttachPeer(p pkgif.Pipe, id types.RoutingID) (types.RoutingID, error) {
	if id.IsAnonymous() {
		id = r.mintID()
	} else {
		if err := id.Validate(); err != nil {
			return "", err
		}
		if existing := r.peers.Find(id); existing != nil {
			if !r.handover {
				logger.Debug("拒绝重复路由标识", "peer", id, "endpoint", p.Endpoint())
				return "", fmt.Errorf("%w: %s", types.ErrDuplicateRoutingID, id)
			}
			logger.Debug("路由标识被接管", "peer", id, "old", existing.Endpoint, "new", p.Endpoint())
			r.evictPeer(existing)
		}
	}

	if err := r.peers.Attach(pipeset.NewPeer(id, p)); err != nil {
		return "", err
	}
	if at, ok := r.departed.Get(id); ok {
		logger.Debug("对端重新连接", "peer", id, "away", time.Since(at))
		r.departed.Remove(id)
	}
	logger.Debug("对端已挂接", "peer", id, "endpoint", p.Endpoint(), "peers", r.peers.Len())
	return id, nil
}

// mintID 分配未被占用的匿名标识
func (r *Router) mintID() types.RoutingID {
	for {
		var buf [anonymousIDLen]byte
		binary.BigEndian.PutUint32(buf[1:], r.nextID)
		r.nextID++
		id := types.RoutingID(buf[:])
		if r.peers.Find(id) == nil {
			return id
		}
	}
}

func (r *Router) evictPeer(peer *pipeset.Peer) {
	if r.evict != nil {
		r.evict(peer.Pipe)
		// 处理函数应当已经回调 DetachPeer
		if r.peers.FindByPipe(peer.Pipe) == nil {
			return
		}
	}
	r.DetachPeer(peer.Pipe)
	peer.Pipe.Terminate()
}

// DetachPeer 摘除对端
func (r *Router) DetachPeer(p pkgif.Pipe) {
	peer, ok := r.peers.Detach(p)
	if !ok {
		return
	}
	r.departed.Add(peer.ID, time.Now())
	logger.Debug("对端已摘除", "peer", peer.ID, "endpoint", peer.Endpoint, "peers", r.peers.Len())
}

// PeerDraining 对端已断开但管道仍有未读数据
func (r *Router) PeerDraining(p pkgif.Pipe) {
	if peer := r.peers.FindByPipe(p); peer != nil {
		peer.State = types.PeerDraining
	}
}

// ============================================================================
//                                 收发
// ============================================================================

// Send 按路由标识发送正文
func (r *Router) Send(id types.RoutingID, msg types.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	return r.SendEnvelope(msg.WithEnvelope(id))
}

// SendEnvelope 发送完整信封 [标识][分隔帧][正文...]
//
// 标识帧选择目标管道后被消费，其余帧原样写入。
func (r *Router) SendEnvelope(envelope types.Message) error {
	if len(envelope) < 2 {
		return fmt.Errorf("%w: envelope needs identity and payload", types.ErrEmptyMessage)
	}
	id := types.RoutingID(envelope[0])
	payload := envelope[1:]

	peer := r.peers.Find(id)
	if peer == nil || peer.State != types.PeerActive {
		return r.unroutable(id, len(payload), nil)
	}
	if !peer.Writable() || !peer.WriteMessage(payload) {
		return r.unroutable(id, len(payload), types.ErrWouldBlock)
	}
	return nil
}

// unroutable 按策略处理无法投递的消息
func (r *Router) unroutable(id types.RoutingID, frames int, cause error) error {
	if r.mandatory {
		if cause != nil {
			return fmt.Errorf("%w: %w: %s", types.ErrUnroutable, cause, id)
		}
		return fmt.Errorf("%w: %s", types.ErrUnroutable, id)
	}
	logger.Debug("丢弃不可路由的消息", "peer", id, "frames", frames)
	if r.onDrop != nil {
		r.onDrop(id, types.DropUnroutable, frames)
	}
	return nil
}

// Recv 轮询接收任一对端的请求
func (r *Router) Recv() (types.RoutingID, types.Message, error) {
	peer := r.peers.NextReadable()
	if peer == nil {
		return "", nil, types.ErrWouldBlock
	}
	msg, ok := peer.ReadMessage()
	if !ok {
		return "", nil, types.ErrWouldBlock
	}
	if len(msg) < 2 || len(msg[0]) != 0 {
		logger.Warn("请求格式错误", "peer", peer.ID, "frames", len(msg))
		if r.onDrop != nil {
			r.onDrop(peer.ID, types.DropMalformed, len(msg))
		}
		return peer.ID, nil, fmt.Errorf("%w: from %s", types.ErrMalformedRequest, peer.ID)
	}
	return peer.ID, msg[1:], nil
}

// RecvEnvelope 接收并返回带标识的完整信封
func (r *Router) RecvEnvelope() (types.Message, error) {
	id, msg, err := r.Recv()
	if err != nil {
		return nil, err
	}
	return msg.WithEnvelope(id), nil
}

// ============================================================================
//                                 查询
// ============================================================================

// Mandatory 是否启用强制路由
func (r *Router) Mandatory() bool {
	return r.mandatory
}

// SetMandatory 修改强制路由策略
func (r *Router) SetMandatory(on bool) {
	r.mandatory = on
}

// Peers 对端集合
func (r *Router) Peers() *pipeset.PipeSet {
	return r.peers
}

// RecentlyDeparted 标识是否在最近离开的缓存中
func (r *Router) RecentlyDeparted(id types.RoutingID) bool {
	return r.departed.Contains(id)
}

// CanRecv 是否有可读对端
func (r *Router) CanRecv() bool {
	for _, p := range r.peers.Peers() {
		if p.Readable() {
			return true
		}
	}
	return false
}
