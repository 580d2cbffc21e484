package codec

import (
	"bufio"
	"fmt"
	"io"

	"github.com/multiformats/go-varint"

	"github.com/dep2p/go-zmsg/pkg/types"
)

const (
	flagMore     byte = 0x01
	reservedMask byte = ^flagMore

	// DefaultMaxFrameSize 默认单帧上限
	DefaultMaxFrameSize = 16 << 20
)

// AppendFrame 将一帧编码追加到 buf
func AppendFrame(buf []byte, f types.Frame) []byte {
	var flags byte
	if f.More {
		flags |= flagMore
	}
	buf = append(buf, flags)
	buf = append(buf, varint.ToUvarint(uint64(len(f.Data)))...)
	return append(buf, f.Data...)
}

// EncodedSize 一帧编码后的字节数
func EncodedSize(f types.Frame) int {
	return 1 + varint.UvarintSize(uint64(len(f.Data))) + len(f.Data)
}

// Encoder 帧编码器
type Encoder struct {
	w *bufio.Writer
}

// NewEncoder 创建编码器，size 为写缓冲大小（<=0 时使用默认值）
func NewEncoder(w io.Writer, size int) *Encoder {
	if size <= 0 {
		return &Encoder{w: bufio.NewWriter(w)}
	}
	return &Encoder{w: bufio.NewWriterSize(w, size)}
}

// WriteFrame 写入一帧（不刷新）
func (e *Encoder) WriteFrame(f types.Frame) error {
	var hdr [1 + varint.MaxLenUvarint63]byte
	n := 1
	if f.More {
		hdr[0] = flagMore
	}
	n += varint.PutUvarint(hdr[1:], uint64(len(f.Data)))
	if _, err := e.w.Write(hdr[:n]); err != nil {
		return err
	}
	_, err := e.w.Write(f.Data)
	return err
}

// WriteMessage 写入整条消息并刷新
func (e *Encoder) WriteMessage(m types.Message) error {
	for _, f := range m.Frames() {
		if err := e.WriteFrame(f); err != nil {
			return err
		}
	}
	return e.Flush()
}

// Flush 刷新缓冲
func (e *Encoder) Flush() error {
	return e.w.Flush()
}

// Buffered 缓冲中未刷新的字节数
func (e *Encoder) Buffered() int {
	return e.w.Buffered()
}

// Decoder 帧解码器
type Decoder struct {
	r        *bufio.Reader
	maxFrame int
}

// NewDecoder 创建解码器，maxFrame<=0 时使用 DefaultMaxFrameSize
func NewDecoder(r io.Reader, size, maxFrame int) *Decoder {
	if maxFrame <= 0 {
		maxFrame = DefaultMaxFrameSize
	}
	br, ok := r.(*bufio.Reader)
	if !ok {
		if size > 0 {
			br = bufio.NewReaderSize(r, size)
		} else {
			br = bufio.NewReader(r)
		}
	}
	return &Decoder{r: br, maxFrame: maxFrame}
}

// ReadFrame 读取一帧
//
// 流在帧边界结束时返回 io.EOF，帧中途结束时返回 io.ErrUnexpectedEOF。
func (d *Decoder) ReadFrame() (types.Frame, error) {
	flags, err := d.r.ReadByte()
	if err != nil {
		return types.Frame{}, err
	}
	if flags&reservedMask != 0 {
		return types.Frame{}, fmt.Errorf("%w: 0x%02x", ErrBadFlags, flags)
	}

	size, err := varint.ReadUvarint(d.r)
	if err != nil {
		return types.Frame{}, unexpected(err)
	}
	if size > uint64(d.maxFrame) {
		return types.Frame{}, fmt.Errorf("%w: %d > %d", types.ErrFrameTooLarge, size, d.maxFrame)
	}

	data := make([]byte, size)
	if _, err := io.ReadFull(d.r, data); err != nil {
		return types.Frame{}, unexpected(err)
	}
	return types.Frame{Data: data, More: flags&flagMore != 0}, nil
}

// ReadMessage 读取一条完整消息
func (d *Decoder) ReadMessage() (types.Message, error) {
	var m types.Message
	for {
		f, err := d.ReadFrame()
		if err != nil {
			if len(m) > 0 {
				err = unexpected(err)
			}
			return nil, err
		}
		m = append(m, f.Data)
		if !f.More {
			return m, nil
		}
	}
}

// Reader 底层缓冲读取器（握手后继续使用同一缓冲）
func (d *Decoder) Reader() *bufio.Reader {
	return d.r
}

func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
