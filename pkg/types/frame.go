package types

import "bytes"

// Frame 多帧消息中的一帧
//
// More 为 true 表示后面还有帧属于同一条消息。
type Frame struct {
	Data []byte
	More bool
}

// IsDelimiter 是否为空分隔帧
func (f Frame) IsDelimiter() bool {
	return len(f.Data) == 0
}

// Message 多帧消息
//
// 不变量：至少一帧，且只有最后一帧 More=false。
// 应用层以 [][]byte 表示正文，More 标志由 Frames 生成。
type Message [][]byte

// NewMessage 从若干正文帧创建消息
func NewMessage(parts ...[]byte) Message {
	return Message(parts)
}

// NewStringMessage 从字符串创建消息（测试和示例常用）
func NewStringMessage(parts ...string) Message {
	m := make(Message, len(parts))
	for i, p := range parts {
		m[i] = []byte(p)
	}
	return m
}

// Validate 校验消息至少包含一帧
func (m Message) Validate() error {
	if len(m) == 0 {
		return ErrEmptyMessage
	}
	return nil
}

// Frames 将消息展开为带 More 标志的帧序列
func (m Message) Frames() []Frame {
	frames := make([]Frame, len(m))
	for i, p := range m {
		frames[i] = Frame{Data: p, More: i < len(m)-1}
	}
	return frames
}

// WithDelimiter 返回前置空分隔帧的新消息
func (m Message) WithDelimiter() Message {
	out := make(Message, 0, len(m)+1)
	out = append(out, []byte{})
	return append(out, m...)
}

// WithEnvelope 返回前置身份帧和空分隔帧的新消息
func (m Message) WithEnvelope(id RoutingID) Message {
	out := make(Message, 0, len(m)+2)
	out = append(out, id.Bytes(), []byte{})
	return append(out, m...)
}

// Strings 返回各帧的字符串形式
func (m Message) Strings() []string {
	out := make([]string, len(m))
	for i, p := range m {
		out[i] = string(p)
	}
	return out
}

// Equal 逐帧比较
func (m Message) Equal(other Message) bool {
	if len(m) != len(other) {
		return false
	}
	for i := range m {
		if !bytes.Equal(m[i], other[i]) {
			return false
		}
	}
	return true
}

// Size 正文总字节数
func (m Message) Size() int {
	n := 0
	for _, p := range m {
		n += len(p)
	}
	return n
}

// FromFrames 将帧序列折叠为消息
func FromFrames(frames []Frame) Message {
	m := make(Message, len(frames))
	for i, f := range frames {
		m[i] = f.Data
	}
	return m
}
