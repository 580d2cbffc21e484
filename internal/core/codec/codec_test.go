package codec

import (
	"bufio"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-zmsg/pkg/types"
)

// TestEncoder_WireLayout 帧的字节布局
func TestEncoder_WireLayout(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf, 0)
	require.NoError(t, enc.WriteMessage(types.NewStringMessage("", "ABC")))

	want := []byte{
		0x01, 0x00, // MORE，空分隔帧
		0x00, 0x03, 'A', 'B', 'C',
	}
	assert.Equal(t, want, buf.Bytes())
	assert.Equal(t, 0, enc.Buffered())

	appended := AppendFrame(nil, types.Frame{Data: []byte("ABC")})
	assert.Equal(t, want[2:], appended)
	assert.Equal(t, len(appended), EncodedSize(types.Frame{Data: []byte("ABC")}))
}

// TestDecoder_Message 多帧消息解码
func TestDecoder_Message(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf, 64)
	big := bytes.Repeat([]byte{'z'}, 300) // 两字节长度
	msgs := []types.Message{
		types.NewStringMessage("", "ABC"),
		types.NewMessage([]byte{}, big),
		types.NewStringMessage("single"),
	}
	for _, m := range msgs {
		require.NoError(t, enc.WriteMessage(m))
	}

	dec := NewDecoder(&buf, 0, 0)
	for _, want := range msgs {
		got, err := dec.ReadMessage()
		require.NoError(t, err)
		assert.True(t, want.Equal(got))
	}
	_, err := dec.ReadMessage()
	assert.ErrorIs(t, err, io.EOF)
}

// TestDecoder_Truncated 中途截断返回 ErrUnexpectedEOF
func TestDecoder_Truncated(t *testing.T) {
	full := AppendFrame(nil, types.Frame{Data: []byte("hello"), More: true})
	full = AppendFrame(full, types.Frame{Data: []byte("world")})

	tests := []struct {
		name string
		cut  int
	}{
		{"长度前截断", 1},
		{"正文中截断", 4},
		{"消息中途结束", 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec := NewDecoder(bytes.NewReader(full[:tt.cut]), 0, 0)
			_, err := dec.ReadMessage()
			assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
		})
	}
}

// TestDecoder_FrameTooLarge 超过帧上限
func TestDecoder_FrameTooLarge(t *testing.T) {
	data := AppendFrame(nil, types.Frame{Data: bytes.Repeat([]byte{1}, 11)})
	dec := NewDecoder(bytes.NewReader(data), 0, 10)
	_, err := dec.ReadFrame()
	assert.ErrorIs(t, err, types.ErrFrameTooLarge)
}

// TestDecoder_BadFlags 保留位非零
func TestDecoder_BadFlags(t *testing.T) {
	dec := NewDecoder(bytes.NewReader([]byte{0x80, 0x00}), 0, 0)
	_, err := dec.ReadFrame()
	assert.ErrorIs(t, err, ErrBadFlags)
}

// TestGreeting_RoundTrip 握手编解码
func TestGreeting_RoundTrip(t *testing.T) {
	ids := []types.RoutingID{"", "client-1", types.RoutingID([]byte{0, 1, 2, 3, 4})}
	for _, id := range ids {
		var buf bytes.Buffer
		require.NoError(t, WriteGreeting(&buf, Greeting{Type: types.SocketReq, RoutingID: id}))

		// 握手后紧跟的帧仍可从同一缓冲读取
		buf.Write(AppendFrame(nil, types.Frame{Data: []byte("after")}))
		br := bufio.NewReader(&buf)

		g, err := ReadGreeting(br)
		require.NoError(t, err)
		assert.Equal(t, Version, g.Version)
		assert.Equal(t, types.SocketReq, g.Type)
		assert.Equal(t, id, g.RoutingID)

		f, err := NewDecoder(br, 0, 0).ReadFrame()
		require.NoError(t, err)
		assert.Equal(t, "after", string(f.Data))
	}
}

// TestGreeting_Errors 握手错误
func TestGreeting_Errors(t *testing.T) {
	_, err := ReadGreeting(bufio.NewReader(bytes.NewReader([]byte("HTTP/1.1"))))
	assert.ErrorIs(t, err, ErrBadGreeting)

	_, err = ReadGreeting(bufio.NewReader(bytes.NewReader([]byte{'Z', 'M', 'S', 'G', 9, 1, 0})))
	assert.ErrorIs(t, err, ErrVersionMismatch)

	_, err = ReadGreeting(bufio.NewReader(bytes.NewReader([]byte{'Z', 'M'})))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	err = WriteGreeting(io.Discard, Greeting{RoutingID: types.RoutingID(make([]byte, 256))})
	assert.ErrorIs(t, err, types.ErrInvalidRoutingID)
}
