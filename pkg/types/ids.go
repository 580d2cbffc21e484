package types

import (
	"encoding/hex"
	"fmt"
)

// MaxRoutingIDLen 路由标识最大长度
const MaxRoutingIDLen = 255

// RoutingID 对端路由标识
//
// 0 字节表示匿名对端，1-255 字节为显式标识。
// 以 string 存储以便作为 map 键并保持不可变。
type RoutingID string

// NewRoutingID 从字节创建路由标识并校验长度
func NewRoutingID(b []byte) (RoutingID, error) {
	if len(b) > MaxRoutingIDLen {
		return "", fmt.Errorf("%w: got %d", ErrInvalidRoutingID, len(b))
	}
	return RoutingID(b), nil
}

// Bytes 返回路由标识的字节副本
func (id RoutingID) Bytes() []byte {
	return []byte(id)
}

// IsAnonymous 是否为匿名标识
func (id RoutingID) IsAnonymous() bool {
	return len(id) == 0
}

// Validate 校验长度
func (id RoutingID) Validate() error {
	if len(id) > MaxRoutingIDLen {
		return fmt.Errorf("%w: got %d", ErrInvalidRoutingID, len(id))
	}
	return nil
}

// String 返回适合日志显示的形式
//
// 自动生成的标识以 0x00 开头，不可打印，此时使用十六进制。
func (id RoutingID) String() string {
	if id.IsAnonymous() {
		return "<anonymous>"
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x20 || id[i] > 0x7e {
			return "0x" + hex.EncodeToString([]byte(id))
		}
	}
	return string(id)
}

// SocketID socket 实例标识（用于日志、指标标签和事件）
type SocketID string

// ShortString 返回前 8 个字符
func (id SocketID) ShortString() string {
	if len(id) <= 8 {
		return string(id)
	}
	return string(id[:8])
}
