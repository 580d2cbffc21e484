package pipeset

import (
	"time"

	pkgif "github.com/dep2p/go-zmsg/pkg/interfaces"
	"github.com/dep2p/go-zmsg/pkg/types"
)

// DropFunc 消息被静默丢弃时的回调
type DropFunc func(peer types.RoutingID, reason types.DropReason, frames int)

// Peer 一个已连接的远端
type Peer struct {
	// ID 路由标识，空表示匿名
	ID types.RoutingID

	// Pipe 与该对端交换帧的管道，生命周期与 Peer 相同
	Pipe pkgif.Pipe

	// State 对端状态
	State types.PeerState

	// Endpoint 建立连接的端点地址
	Endpoint string

	// AttachedAt 挂接时间
	AttachedAt time.Time
}

// NewPeer 创建处于活跃状态的对端
func NewPeer(id types.RoutingID, p pkgif.Pipe) *Peer {
	return &Peer{
		ID:         id,
		Pipe:       p,
		State:      types.PeerActive,
		Endpoint:   p.Endpoint(),
		AttachedAt: time.Now(),
	}
}

// Writable 活跃且管道可写
func (p *Peer) Writable() bool {
	return p.State == types.PeerActive && p.Pipe.ProbeWritable()
}

// Readable 未终止且管道有完整消息
//
// 排空中的对端仍可读。
func (p *Peer) Readable() bool {
	return p.State != types.PeerTerminated && p.Pipe.ProbeReadable()
}

// WriteMessage 将帧序列作为一条消息原子写入
//
// 要么全部帧写入，要么一帧都不写入。
func (p *Peer) WriteMessage(m types.Message) bool {
	if len(m) == 0 {
		return false
	}
	for i, part := range m {
		if !p.Pipe.Push(part, i < len(m)-1) {
			p.Pipe.Rollback()
			return false
		}
	}
	return true
}

// ReadMessage 读出一条完整消息
func (p *Peer) ReadMessage() (types.Message, bool) {
	if !p.Readable() {
		return nil, false
	}
	var m types.Message
	for {
		f, ok := p.Pipe.Pop()
		if !ok {
			// 消息按整条提交，只有管道被并发终止才会走到这里
			return nil, false
		}
		m = append(m, f.Data)
		if !f.More {
			return m, true
		}
	}
}

// Discard 读出并丢弃所有已提交的消息，返回丢弃的消息帧数列表
func (p *Peer) Discard() []int {
	var dropped []int
	for {
		m, ok := p.ReadMessage()
		if !ok {
			return dropped
		}
		dropped = append(dropped, len(m))
	}
}
