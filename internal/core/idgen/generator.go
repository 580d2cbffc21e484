package idgen

import (
	"math/rand"
	"os"
	"sync"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-zmsg/internal/core/crypto"
)

// Generator 伪随机标识生成器
type Generator struct {
	clock clock.Clock
	pid   int
	rng   *rand.Rand
	seed  int64
}

// Option 生成器选项
type Option func(*Generator)

// WithClock 指定时钟（测试中使用 clock.NewMock）
func WithClock(c clock.Clock) Option {
	return func(g *Generator) {
		g.clock = c
	}
}

// WithPID 指定进程号（测试使用）
func WithPID(pid int) Option {
	return func(g *Generator) {
		g.pid = pid
	}
}

// New 创建并播种生成器
func New(opts ...Option) *Generator {
	g := &Generator{
		clock: clock.New(),
		pid:   os.Getpid(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.Seed()
	return g
}

// Seed 以当前微秒时间加进程号重新播种
func (g *Generator) Seed() {
	g.seed = g.clock.Now().UnixMicro() + int64(g.pid)
	g.rng = rand.New(rand.NewSource(g.seed))
}

// SeedValue 返回最近一次播种使用的种子
func (g *Generator) SeedValue() int64 {
	return g.seed
}

// Next 返回下一个伪随机 32 位值
//
// 底层每次抽样只有 31 位有效，高位抽样左移 31 位补齐最高位。
func (g *Generator) Next() uint32 {
	low := uint32(g.rng.Int31())
	high := uint32(g.rng.Int31())
	high <<= 31
	return high | low
}

// SecureNext 从进程级密码学随机源取 32 位值
//
// 调用方必须已持有 crypto.Acquire 的引用。
func SecureNext() (uint32, error) {
	return crypto.Default().Uint32()
}

// ============================================================================
//                              进程级实例
// ============================================================================

var (
	globalOnce sync.Once
	globalMu   sync.Mutex
	global     *Generator
)

func defaultGenerator() *Generator {
	globalOnce.Do(func() {
		global = New()
	})
	return global
}

// Next 从进程级生成器取值（并发安全）
func Next() uint32 {
	g := defaultGenerator()
	globalMu.Lock()
	defer globalMu.Unlock()
	return g.Next()
}

// Reseed 显式重新播种进程级生成器
func Reseed() {
	g := defaultGenerator()
	globalMu.Lock()
	defer globalMu.Unlock()
	g.Seed()
}
