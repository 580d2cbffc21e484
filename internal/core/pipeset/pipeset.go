package pipeset

import (
	pkgif "github.com/dep2p/go-zmsg/pkg/interfaces"
	"github.com/dep2p/go-zmsg/pkg/types"
)

// PipeSet 对端管道集合
type PipeSet struct {
	peers  []*Peer
	byPipe map[pkgif.Pipe]*Peer

	cursor     int // 发送游标
	readCursor int // 接收游标
}

// New 创建空集合
func New() *PipeSet {
	return &PipeSet{byPipe: make(map[pkgif.Pipe]*Peer)}
}

// Attach 追加对端，不改变游标
func (s *PipeSet) Attach(p *Peer) error {
	if p == nil || p.Pipe == nil {
		return ErrNilPipe
	}
	if _, ok := s.byPipe[p.Pipe]; ok {
		return ErrPipeAttached
	}
	s.peers = append(s.peers, p)
	s.byPipe[p.Pipe] = p
	return nil
}

// Detach 移除管道对应的对端并返回它
func (s *PipeSet) Detach(pipe pkgif.Pipe) (*Peer, bool) {
	p, ok := s.byPipe[pipe]
	if !ok {
		return nil, false
	}
	delete(s.byPipe, pipe)

	idx := s.index(p)
	copy(s.peers[idx:], s.peers[idx+1:])
	s.peers[len(s.peers)-1] = nil
	s.peers = s.peers[:len(s.peers)-1]

	s.cursor = adjustCursor(s.cursor, idx, len(s.peers))
	s.readCursor = adjustCursor(s.readCursor, idx, len(s.peers))
	p.State = types.PeerTerminated
	return p, true
}

// adjustCursor 移除下标 idx 后修正游标
func adjustCursor(cursor, idx, n int) int {
	if n == 0 {
		return 0
	}
	if idx <= cursor {
		cursor--
	}
	if cursor < 0 {
		cursor = 0
	}
	return cursor
}

func (s *PipeSet) index(p *Peer) int {
	for i, q := range s.peers {
		if q == p {
			return i
		}
	}
	return -1
}

// Find 按路由标识线性查找未终止的对端
func (s *PipeSet) Find(id types.RoutingID) *Peer {
	for _, p := range s.peers {
		if p.ID == id && p.State != types.PeerTerminated {
			return p
		}
	}
	return nil
}

// FindByPipe 按管道查找对端
func (s *PipeSet) FindByPipe(pipe pkgif.Pipe) *Peer {
	return s.byPipe[pipe]
}

// NextWritable 从发送游标开始环形查找第一个可写对端
//
// 成功时游标移到返回对端的下一位。没有可写对端时返回 nil，
// 本方法从不阻塞。
func (s *PipeSet) NextWritable() *Peer {
	n := len(s.peers)
	for i := 0; i < n; i++ {
		idx := (s.cursor + i) % n
		if p := s.peers[idx]; p.Writable() {
			s.cursor = (idx + 1) % n
			return p
		}
	}
	return nil
}

// NextReadable 从接收游标开始环形查找第一个可读对端
func (s *PipeSet) NextReadable() *Peer {
	n := len(s.peers)
	for i := 0; i < n; i++ {
		idx := (s.readCursor + i) % n
		if p := s.peers[idx]; p.Readable() {
			s.readCursor = (idx + 1) % n
			return p
		}
	}
	return nil
}

// Active 返回活跃且可写的对端
func (s *PipeSet) Active() []*Peer {
	var out []*Peer
	for _, p := range s.peers {
		if p.Writable() {
			out = append(out, p)
		}
	}
	return out
}

// Drained 返回已排空的排空中对端，调用方负责 Detach
func (s *PipeSet) Drained() []*Peer {
	var out []*Peer
	for _, p := range s.peers {
		if p.State == types.PeerDraining && !p.Pipe.ProbeReadable() {
			out = append(out, p)
		}
	}
	return out
}

// Peers 按挂接顺序返回对端快照
func (s *PipeSet) Peers() []*Peer {
	out := make([]*Peer, len(s.peers))
	copy(out, s.peers)
	return out
}

// Len 对端数
func (s *PipeSet) Len() int {
	return len(s.peers)
}

// Cursor 发送游标
func (s *PipeSet) Cursor() int {
	return s.cursor
}
