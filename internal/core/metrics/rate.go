package metrics

import (
	"sync"

	"github.com/benbjohnson/clock"
)

// ============================================================================
// RateMeter - 速率计算器
// ============================================================================

// rateBuckets 滑动窗口桶数（每桶 1 秒）
const rateBuckets = 60

// RateMeter 速率计算器（基于滑动窗口）
//
// 使用 60 个 1 秒桶计算最近 60 秒的平均速率。
type RateMeter struct {
	mu      sync.Mutex
	clock   clock.Clock
	buckets [rateBuckets]int64
	idx     int
	tick    int64 // 当前桶对应的 Unix 秒
}

// NewRateMeter 创建速率计算器
func NewRateMeter(clk clock.Clock) *RateMeter {
	if clk == nil {
		clk = clock.New()
	}
	return &RateMeter{clock: clk, tick: clk.Now().Unix()}
}

// advance 把窗口推进到当前秒，清空经过的桶
func (r *RateMeter) advance() {
	now := r.clock.Now().Unix()
	elapsed := now - r.tick
	if elapsed <= 0 {
		return
	}
	if elapsed >= rateBuckets {
		r.buckets = [rateBuckets]int64{}
		r.idx = 0
	} else {
		for i := int64(0); i < elapsed; i++ {
			r.idx = (r.idx + 1) % rateBuckets
			r.buckets[r.idx] = 0
		}
	}
	r.tick = now
}

// Add 累加到当前桶
func (r *RateMeter) Add(n int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.advance()
	r.buckets[r.idx] += n
}

// Rate 返回最近 60 秒的平均速率（每秒）
func (r *RateMeter) Rate() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.advance()

	var total int64
	for _, v := range r.buckets {
		total += v
	}
	return float64(total) / rateBuckets
}
