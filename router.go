package zmsg

import (
	"context"

	"github.com/dep2p/go-zmsg/config"
	"github.com/dep2p/go-zmsg/internal/core/idgen"
	"github.com/dep2p/go-zmsg/internal/core/router"
	"github.com/dep2p/go-zmsg/internal/core/socket"
	pkgif "github.com/dep2p/go-zmsg/pkg/interfaces"
	"github.com/dep2p/go-zmsg/pkg/types"
)

// RouterSocket 路由端 socket
//
// 按路由标识发送；接收时轮询各对端并返回来源标识。
type RouterSocket struct {
	*sock
	r *router.Router

	// discarded 当前发送被静默丢弃（只在 base.Do 内读写）
	discarded bool
}

// NewRouter 创建路由端 socket
func (c *Context) NewRouter(opts ...SocketOption) (*RouterSocket, error) {
	rs := &RouterSocket{}
	s, err := c.newSock(types.SocketRouter, opts, func(b *socket.Base, sc config.SocketConfig) pkgif.PeerHandler {
		rs.r = router.New(
			router.WithMandatory(sc.RouterMandatory),
			router.WithHandover(sc.RouterHandover),
			router.WithDropHook(func(peer types.RoutingID, reason types.DropReason, frames int) {
				if reason == types.DropUnroutable {
					rs.discarded = true
				}
				b.Dropped(peer, reason, frames)
			}),
			router.WithEvictHook(b.Evict),
			router.WithIDSeed(anonymousIDSeed()),
		)
		return rs.r
	})
	if err != nil {
		return nil, err
	}
	rs.sock = s
	return rs, nil
}

// Send 向 id 发送消息（不阻塞）
//
// 目标不存在或队列已满时：mandatory 关闭则静默丢弃并返回 nil，
// 开启则返回 ErrUnroutable（队列满时同时包装 ErrWouldBlock）。
func (rs *RouterSocket) Send(id RoutingID, msg Message) error {
	return rs.send(context.Background(), false, msg, rs.sendTo(func() error { return rs.r.Send(id, msg) }))
}

// SendCtx 向 id 发送，mandatory 模式下队列满时等待
func (rs *RouterSocket) SendCtx(ctx context.Context, id RoutingID, msg Message) error {
	return rs.send(ctx, true, msg, rs.sendTo(func() error { return rs.r.Send(id, msg) }))
}

// SendEnvelope 发送完整信封 [标识][分隔帧][正文...]
func (rs *RouterSocket) SendEnvelope(envelope Message) error {
	return rs.send(context.Background(), false, envelope, rs.sendTo(func() error { return rs.r.SendEnvelope(envelope) }))
}

// sendTo 把非强制模式下的静默丢弃转换为 errDiscarded
func (rs *RouterSocket) sendTo(fn func() error) func() error {
	return func() error {
		rs.discarded = false
		if err := fn(); err != nil {
			return err
		}
		if rs.discarded {
			return errDiscarded
		}
		return nil
	}
}

// anonymousIDSeed 匿名标识计数起点
//
// 优先取自进程级密码学随机源（Context 存活期间持有其引用），
// 随机源不可用时退回时间播种的生成器。
func anonymousIDSeed() uint32 {
	seed, _ := secureIDSeed()
	return seed
}

func secureIDSeed() (uint32, bool) {
	v, err := idgen.SecureNext()
	if err != nil {
		logger.Debug("密码学随机源不可用，匿名标识改用伪随机起点", "err", err)
		return idgen.Next(), false
	}
	return v, true
}

// Recv 接收任一对端的请求（不阻塞）
//
// 请求缺少分隔帧时返回来源标识与 ErrMalformedRequest，连接保持可用。
func (rs *RouterSocket) Recv() (RoutingID, Message, error) {
	return rs.recvFrom(context.Background(), false)
}

// RecvCtx 接收任一对端的请求，没有时等待
func (rs *RouterSocket) RecvCtx(ctx context.Context) (RoutingID, Message, error) {
	return rs.recvFrom(ctx, true)
}

func (rs *RouterSocket) recvFrom(ctx context.Context, block bool) (RoutingID, Message, error) {
	var (
		id  RoutingID
		msg Message
	)
	err := rs.recv(ctx, block, func() error {
		var err error
		id, msg, err = rs.r.Recv()
		return err
	}, func() Message { return msg })
	return id, msg, err
}

// RecvEnvelope 接收并返回带标识的完整信封
func (rs *RouterSocket) RecvEnvelope() (Message, error) {
	id, msg, err := rs.Recv()
	if err != nil {
		return nil, err
	}
	return msg.WithEnvelope(id), nil
}

// SetMandatory 修改强制路由策略
func (rs *RouterSocket) SetMandatory(on bool) {
	_ = rs.base.Do(func() error {
		rs.r.SetMandatory(on)
		return nil
	})
}

// Mandatory 是否启用强制路由
func (rs *RouterSocket) Mandatory() bool {
	var on bool
	_ = rs.base.Do(func() error {
		on = rs.r.Mandatory()
		return nil
	})
	return on
}

// PeerIDs 当前活跃对端的路由标识（按连接顺序）
func (rs *RouterSocket) PeerIDs() []RoutingID {
	var ids []RoutingID
	_ = rs.base.Do(func() error {
		for _, p := range rs.r.Peers().Active() {
			ids = append(ids, p.ID)
		}
		return nil
	})
	return ids
}
