package zmsg

import (
	"context"

	"github.com/dep2p/go-zmsg/config"
	"github.com/dep2p/go-zmsg/internal/core/req"
	"github.com/dep2p/go-zmsg/internal/core/socket"
	pkgif "github.com/dep2p/go-zmsg/pkg/interfaces"
	"github.com/dep2p/go-zmsg/pkg/types"
)

// ReqSocket 请求端 socket
//
// 严格交替 Send/Recv；按连接顺序轮询对端；只接受最近一次请求
// 所发往对端的应答。可被多个 goroutine 使用，调用会被串行化。
type ReqSocket struct {
	*sock
	ep *req.Endpoint
}

// NewReq 创建请求端 socket
func (c *Context) NewReq(opts ...SocketOption) (*ReqSocket, error) {
	r := &ReqSocket{}
	s, err := c.newSock(types.SocketReq, opts, func(b *socket.Base, _ config.SocketConfig) pkgif.PeerHandler {
		r.ep = req.New(req.WithDropHook(b.Dropped))
		return r.ep
	})
	if err != nil {
		return nil, err
	}
	r.sock = s
	return r, nil
}

// Send 发送请求（不阻塞）
//
// 没有可写对端时返回 ErrWouldBlock；上一请求尚未收到应答时返回 ErrFSM。
func (r *ReqSocket) Send(msg Message) error {
	return r.send(context.Background(), false, msg, func() error { return r.ep.Send(msg) })
}

// SendCtx 发送请求，没有可写对端时等待
func (r *ReqSocket) SendCtx(ctx context.Context, msg Message) error {
	return r.send(ctx, true, msg, func() error { return r.ep.Send(msg) })
}

// Recv 接收应答（不阻塞）
//
// 应答尚未到达时返回 ErrWouldBlock；等待期间对端断开返回 ErrPeerLost；
// 应答缺少分隔帧时返回 ErrMalformedReply。后两者都会使 socket 回到可发送状态。
func (r *ReqSocket) Recv() (Message, error) {
	var msg Message
	err := r.recv(context.Background(), false, r.recvInto(&msg), func() Message { return msg })
	return msg, err
}

// RecvCtx 接收应答，尚未到达时等待
func (r *ReqSocket) RecvCtx(ctx context.Context) (Message, error) {
	var msg Message
	err := r.recv(ctx, true, r.recvInto(&msg), func() Message { return msg })
	return msg, err
}

func (r *ReqSocket) recvInto(dst *Message) func() error {
	return func() error {
		m, err := r.ep.Recv()
		if err != nil {
			return err
		}
		*dst = m
		return nil
	}
}

// Request 发送请求并等待应答
func (r *ReqSocket) Request(ctx context.Context, msg Message) (Message, error) {
	if err := r.SendCtx(ctx, msg); err != nil {
		return nil, err
	}
	return r.RecvCtx(ctx)
}

// AwaitingReply 是否有尚未收到应答的请求
func (r *ReqSocket) AwaitingReply() bool {
	var awaiting bool
	_ = r.base.Do(func() error {
		awaiting = r.ep.Phase() == req.PhaseAwaitingReply
		return nil
	})
	return awaiting
}
