package crypto

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"sync"

	"golang.org/x/crypto/chacha20"

	"github.com/dep2p/go-zmsg/internal/core/lazyinit"
	"github.com/dep2p/go-zmsg/pkg/types"
)

// Source 引用计数的 ChaCha20 随机源
type Source struct {
	res     *lazyinit.Resource
	entropy io.Reader

	mu     sync.Mutex
	cipher *chacha20.Cipher
	key    [chacha20.KeySize]byte
}

// NewSource 创建随机源，entropy 为 nil 时使用系统熵源
func NewSource(entropy io.Reader) *Source {
	if entropy == nil {
		entropy = crand.Reader
	}
	s := &Source{entropy: entropy}
	s.res = lazyinit.New("crypto", s.open, s.close)
	return s
}

func (s *Source) open() error {
	var nonce [chacha20.NonceSize]byte
	if _, err := io.ReadFull(s.entropy, s.key[:]); err != nil {
		return fmt.Errorf("read key: %w", err)
	}
	if _, err := io.ReadFull(s.entropy, nonce[:]); err != nil {
		return fmt.Errorf("read nonce: %w", err)
	}

	c, err := chacha20.NewUnauthenticatedCipher(s.key[:], nonce[:])
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.cipher = c
	s.mu.Unlock()
	return nil
}

func (s *Source) close() {
	s.mu.Lock()
	s.cipher = nil
	for i := range s.key {
		s.key[i] = 0
	}
	s.mu.Unlock()
}

// Acquire 获取随机源引用
func (s *Source) Acquire() error {
	return s.res.Acquire()
}

// Release 释放随机源引用
func (s *Source) Release() {
	s.res.Release()
}

// Refs 当前引用数
func (s *Source) Refs() int {
	return s.res.Refs()
}

// Read 读取密码学随机字节
//
// 随机源未获取时返回 types.ErrNotInitialized。
func (s *Source) Read(p []byte) (int, error) {
	err := s.res.With(func() error {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.cipher == nil {
			return types.ErrNotInitialized
		}
		for i := range p {
			p[i] = 0
		}
		s.cipher.XORKeyStream(p, p)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(p), nil
}

// Uint32 读取一个密码学随机的 32 位值
func (s *Source) Uint32() (uint32, error) {
	var b [4]byte
	if _, err := s.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

// ============================================================================
//                              进程级实例
// ============================================================================

var shared = NewSource(nil)

// Default 返回进程级随机源
func Default() *Source {
	return shared
}

// Acquire 获取进程级随机源引用
func Acquire() error {
	return shared.Acquire()
}

// Release 释放进程级随机源引用
func Release() {
	shared.Release()
}

// Read 从进程级随机源读取
func Read(p []byte) (int, error) {
	return shared.Read(p)
}
