package pipe

import (
	"sync"

	"github.com/dep2p/go-zmsg/pkg/types"
)

// queue 单方向有界帧队列
//
// 只有一个写入者和一个读取者，二者可在不同 goroutine。
type queue struct {
	mu sync.Mutex

	hwm    int // 0 表示不限
	frames []types.Frame
	head   int
	msgs   int // 已提交且未被完全读走的消息数

	staged []types.Frame
	closed bool // 写入者已终止
}

func newQueue(hwm int) *queue {
	return &queue{hwm: hwm}
}

// writable 是否可开始新消息（调用方持锁）
func (q *queue) writable() bool {
	return !q.closed && (q.hwm <= 0 || q.msgs < q.hwm)
}

// push 写入一帧，返回 (是否接受, 是否提交了消息, 提交前队列是否为空)
func (q *queue) push(f types.Frame) (accepted, committed, wasEmpty bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false, false, false
	}
	if len(q.staged) == 0 && !q.writable() {
		return false, false, false
	}

	q.staged = append(q.staged, f)
	if f.More {
		return true, false, false
	}

	wasEmpty = q.msgs == 0
	q.frames = append(q.frames, q.staged...)
	q.msgs++
	q.staged = q.staged[:0]
	return true, true, wasEmpty
}

// rollback 丢弃暂存帧
func (q *queue) rollback() {
	q.mu.Lock()
	q.staged = q.staged[:0]
	q.mu.Unlock()
}

// pop 读取一帧，返回 (帧, 是否成功, 是否使队列从满变为可写)
func (q *queue) pop() (types.Frame, bool, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.msgs == 0 {
		return types.Frame{}, false, false
	}

	f := q.frames[q.head]
	q.frames[q.head] = types.Frame{}
	q.head++

	unblocked := false
	if !f.More {
		full := q.hwm > 0 && q.msgs >= q.hwm
		q.msgs--
		unblocked = full && !q.closed
	}

	// 读完后压缩底层数组
	if q.head == len(q.frames) {
		q.frames = q.frames[:0]
		q.head = 0
	}
	return f, true, unblocked
}

func (q *queue) readable() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.msgs > 0
}

func (q *queue) canWrite() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.writable()
}

// close 写入者终止，丢弃暂存帧；已提交消息保留给读取者
func (q *queue) close() {
	q.mu.Lock()
	q.closed = true
	q.staged = nil
	q.mu.Unlock()
}

// reset 回收缓冲
func (q *queue) reset() {
	q.mu.Lock()
	q.frames = nil
	q.staged = nil
	q.head = 0
	q.msgs = 0
	q.mu.Unlock()
}

// pending 已提交未读的消息数
func (q *queue) pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.msgs
}
