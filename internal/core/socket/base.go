package socket

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/dep2p/go-zmsg/internal/core/refcount"
	pkgif "github.com/dep2p/go-zmsg/pkg/interfaces"
	"github.com/dep2p/go-zmsg/pkg/lib/log"
	"github.com/dep2p/go-zmsg/pkg/types"
)

var logger = log.Logger("core/socket")

// ============================================================================
//                              命令与对端记录
// ============================================================================

type cmdKind int

const (
	cmdAttach cmdKind = iota
	cmdTerminated
)

// command 由 I/O goroutine 投递、由持有 socket 的 goroutine 执行
type command struct {
	kind cmdKind
	pipe pkgif.Pipe
}

// tracked 已挂接管道的记录
type tracked struct {
	pipe     pkgif.Pipe
	id       types.RoutingID
	draining bool
	release  sync.Once
}

// ============================================================================
//                                 Base
// ============================================================================

// Base socket 基座
type Base struct {
	id      types.SocketID
	cfg     Config
	handler pkgif.PeerHandler
	metrics pkgif.SocketMetrics
	events  *emitters

	// opMu 持有者锁：process 与状态机操作在其保护下串行执行
	opMu  sync.Mutex
	peers map[pkgif.Pipe]*tracked

	// mu 保护邮箱、唤醒通道、端点表与关闭状态
	mu        sync.Mutex
	mailbox   []command
	changed   chan struct{}
	endpoints map[string][]io.Closer
	closing   map[pkgif.Pipe]*tracked
	closed    bool

	ref  *refcount.Ref
	done chan struct{}
}

// 确保实现接口
var (
	_ pkgif.PipeAttacher = (*Base)(nil)
	_ pkgif.PipeEvents   = (*Base)(nil)
)

// New 创建 socket 基座
//
// build 接收基座并返回状态机，以便状态机的回调（丢弃、接管）指向基座。
func New(cfg Config, build func(*Base) pkgif.PeerHandler) (*Base, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.ID == "" {
		cfg.ID = types.SocketID(uuid.NewString())
	}
	b := &Base{
		id:        cfg.ID,
		cfg:       cfg,
		metrics:   cfg.Metrics,
		peers:     make(map[pkgif.Pipe]*tracked),
		changed:   make(chan struct{}),
		endpoints: make(map[string][]io.Closer),
		closing:   make(map[pkgif.Pipe]*tracked),
		done:      make(chan struct{}),
	}
	b.ref = refcount.NewRef(1, func() {
		close(b.done)
		logger.Debug("socket 已回收", "socket", b.id.ShortString())
	})

	events, err := newEmitters(cfg.Bus)
	if err != nil {
		return nil, err
	}
	b.events = events

	if build != nil {
		b.handler = build(b)
	}
	if b.handler == nil {
		events.close()
		return nil, ErrNoHandler
	}
	logger.Debug("socket 已创建", "socket", b.id.ShortString(), "type", cfg.Type)
	return b, nil
}

// ID socket 实例标识
func (b *Base) ID() types.SocketID {
	return b.id
}

// SocketType socket 类型
func (b *Base) SocketType() types.SocketType {
	return b.cfg.Type
}

// RoutingID 本端声明的路由标识
func (b *Base) RoutingID() types.RoutingID {
	return b.cfg.RoutingID
}

// HWM 发送/接收高水位
func (b *Base) HWM() (send, recv int) {
	return b.cfg.SendHWM, b.cfg.RecvHWM
}

// Handler 状态机
func (b *Base) Handler() pkgif.PeerHandler {
	return b.handler
}

// Done socket 关闭且所有管道回收后关闭
func (b *Base) Done() <-chan struct{} {
	return b.done
}

// ============================================================================
//                              传输层入口（任意 goroutine）
// ============================================================================

// AttachPipe 投递挂接命令
func (b *Base) AttachPipe(p pkgif.Pipe) {
	p.SetEvents(b)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		logger.Debug("socket 已关闭，拒绝新管道", "socket", b.id.ShortString(), "endpoint", p.Endpoint())
		p.Terminate()
		return
	}
	b.ref.Acquire()
	b.mailbox = append(b.mailbox, command{kind: cmdAttach, pipe: p})
	b.notifyLocked()
	b.mu.Unlock()
}

// ReadActivated 实现 PipeEvents
func (b *Base) ReadActivated(pkgif.Pipe) {
	b.notify()
}

// WriteActivated 实现 PipeEvents
func (b *Base) WriteActivated(pkgif.Pipe) {
	b.notify()
}

// Terminated 实现 PipeEvents：对端终止
func (b *Base) Terminated(p pkgif.Pipe) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		if t, ok := b.closing[p]; ok {
			delete(b.closing, p)
			b.release(t)
		}
		return
	}
	b.mailbox = append(b.mailbox, command{kind: cmdTerminated, pipe: p})
	b.notifyLocked()
}

// Changed 返回下一次状态变化时关闭的通道
//
// 调用方须在尝试操作之前获取通道，避免错过唤醒。
func (b *Base) Changed() <-chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.changed
}

func (b *Base) notify() {
	b.mu.Lock()
	b.notifyLocked()
	b.mu.Unlock()
}

func (b *Base) notifyLocked() {
	close(b.changed)
	b.changed = make(chan struct{})
}

// ============================================================================
//                              持有者操作
// ============================================================================

// Do 在持有者锁内处理邮箱后执行 fn
func (b *Base) Do(fn func() error) error {
	b.opMu.Lock()
	defer b.opMu.Unlock()

	if b.isClosed() {
		return types.ErrClosed
	}
	b.process()
	return fn()
}

// Wait 重复执行 fn 直到不再返回 ErrWouldBlock、ctx 结束或 socket 关闭
func (b *Base) Wait(ctx context.Context, fn func() error) error {
	for {
		ch := b.Changed()
		err := b.Do(fn)
		if !errors.Is(err, types.ErrWouldBlock) {
			return err
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", err, ctx.Err())
		}
	}
}

func (b *Base) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// process 执行邮箱命令并回收已读空或已自行终止的管道
func (b *Base) process() {
	b.mu.Lock()
	cmds := b.mailbox
	b.mailbox = nil
	b.mu.Unlock()

	for _, c := range cmds {
		switch c.kind {
		case cmdAttach:
			b.attach(c.pipe)
		case cmdTerminated:
			b.peerTerminated(c.pipe)
		}
	}

	for p, t := range b.peers {
		switch {
		case p.Terminated():
			// 本端被传输层关闭（如 inproc 连接方断开）
			b.detach(t)
		case t.draining && !p.ProbeReadable():
			b.detach(t)
		}
	}
}

func (b *Base) attach(p pkgif.Pipe) {
	t := &tracked{pipe: p}
	id, err := b.handler.AttachPeer(p, p.RoutingID())
	if err != nil {
		logger.Debug("对端被拒绝", "socket", b.id.ShortString(), "endpoint", p.Endpoint(), "err", err)
		p.Terminate()
		b.release(t)
		b.events.rejected(types.EvtPeerRejected{
			Socket:    b.id,
			Peer:      p.RoutingID(),
			Endpoint:  p.Endpoint(),
			Reason:    err,
			Timestamp: time.Now(),
		})
		return
	}
	t.id = id
	b.peers[p] = t
	b.peersChanged()
	b.events.connected(types.EvtPeerConnected{
		Socket:    b.id,
		Type:      b.cfg.Type,
		Peer:      id,
		Endpoint:  p.Endpoint(),
		Timestamp: time.Now(),
	})

	// 挂接命令处理前对端可能已经终止
	if p.PeerTerminated() {
		b.peerTerminated(p)
	}
}

func (b *Base) peerTerminated(p pkgif.Pipe) {
	t, ok := b.peers[p]
	if !ok || t.draining {
		return
	}
	if p.ProbeReadable() {
		t.draining = true
		b.handler.PeerDraining(p)
		logger.Debug("对端断开，等待读空", "socket", b.id.ShortString(), "peer", t.id)
		return
	}
	b.detach(t)
}

// detach 从状态机摘除对端并释放引用
func (b *Base) detach(t *tracked) {
	if _, ok := b.peers[t.pipe]; !ok {
		return
	}
	delete(b.peers, t.pipe)
	b.handler.DetachPeer(t.pipe)
	t.pipe.Terminate()
	b.release(t)
	b.peersChanged()
	b.events.disconnected(types.EvtPeerDisconnected{
		Socket:    b.id,
		Type:      b.cfg.Type,
		Peer:      t.id,
		Endpoint:  t.pipe.Endpoint(),
		Timestamp: time.Now(),
	})
}

// Evict 路由标识接管时释放旧管道（在持有者 goroutine 中由状态机回调）
func (b *Base) Evict(p pkgif.Pipe) {
	if t, ok := b.peers[p]; ok {
		b.detach(t)
	}
}

// Dropped 状态机静默丢弃消息的回调
func (b *Base) Dropped(peer types.RoutingID, reason types.DropReason, frames int) {
	if b.metrics != nil {
		b.metrics.MessageDropped(reason)
	}
	b.events.dropped(types.EvtMessageDropped{
		Socket:    b.id,
		Peer:      peer,
		Reason:    reason,
		Frames:    frames,
		Timestamp: time.Now(),
	})
}

func (b *Base) release(t *tracked) {
	t.release.Do(func() { b.ref.Release() })
}

func (b *Base) peersChanged() {
	if b.metrics != nil {
		b.metrics.PeersChanged(len(b.peers))
	}
}

// PeerCount 当前挂接的对端数（含 Draining）
func (b *Base) PeerCount() int {
	b.opMu.Lock()
	defer b.opMu.Unlock()
	b.process()
	return len(b.peers)
}

// ============================================================================
//                                 端点
// ============================================================================

// AddEndpoint 记录绑定或连接得到的可关闭对象
func (b *Base) AddEndpoint(endpoint string, c io.Closer) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return multierr.Append(types.ErrClosed, c.Close())
	}
	b.endpoints[endpoint] = append(b.endpoints[endpoint], c)
	b.mu.Unlock()
	return nil
}

// Disconnect 关闭端点上的监听或连接
func (b *Base) Disconnect(endpoint string) error {
	b.mu.Lock()
	closers, ok := b.endpoints[endpoint]
	delete(b.endpoints, endpoint)
	b.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEndpoint, endpoint)
	}

	var err error
	for _, c := range closers {
		err = multierr.Append(err, c.Close())
	}
	b.notify()
	return err
}

// Endpoints 已记录的端点（排序）
func (b *Base) Endpoints() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.endpoints))
	for e := range b.endpoints {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}

// ============================================================================
//                                 关闭
// ============================================================================

// Close 关闭所有端点并终止所有管道（幂等）
//
// 返回后 Done 在所有管道对端也终止时关闭。
func (b *Base) Close() error {
	b.opMu.Lock()
	defer b.opMu.Unlock()

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.mu.Unlock()

	// 先处理已投递的挂接，保证它们持有的引用被正确释放
	b.process()

	b.mu.Lock()
	b.closed = true
	endpoints := b.endpoints
	b.endpoints = make(map[string][]io.Closer)
	late := b.mailbox
	b.mailbox = nil
	b.mu.Unlock()

	// process 之后到达的挂接直接终止
	for _, c := range late {
		if c.kind == cmdAttach {
			c.pipe.Terminate()
			b.ref.Release()
		}
	}

	var err error
	for _, closers := range endpoints {
		for _, c := range closers {
			err = multierr.Append(err, c.Close())
		}
	}

	for p, t := range b.peers {
		delete(b.peers, p)
		b.handler.DetachPeer(p)
		p.Terminate()

		b.mu.Lock()
		if p.PeerTerminated() {
			b.release(t)
		} else {
			b.closing[p] = t
		}
		b.mu.Unlock()
	}
	b.peersChanged()

	b.mu.Lock()
	b.notifyLocked()
	b.mu.Unlock()

	b.events.close()
	b.ref.Release()
	logger.Debug("socket 已关闭", "socket", b.id.ShortString())
	return err
}
