package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/multiformats/go-varint"

	"github.com/dep2p/go-zmsg/pkg/types"
)

const (
	greetingMagic = "ZMSG"

	// Version 协议版本
	Version byte = 1
)

// Greeting 连接握手
type Greeting struct {
	Version   byte
	Type      types.SocketType
	RoutingID types.RoutingID
}

// Marshal 编码握手
func (g Greeting) Marshal() ([]byte, error) {
	if err := g.RoutingID.Validate(); err != nil {
		return nil, err
	}
	v := g.Version
	if v == 0 {
		v = Version
	}
	buf := make([]byte, 0, len(greetingMagic)+2+varint.UvarintSize(uint64(len(g.RoutingID)))+len(g.RoutingID))
	buf = append(buf, greetingMagic...)
	buf = append(buf, v, byte(g.Type))
	buf = append(buf, varint.ToUvarint(uint64(len(g.RoutingID)))...)
	return append(buf, g.RoutingID...), nil
}

// WriteGreeting 写出握手
func WriteGreeting(w io.Writer, g Greeting) error {
	b, err := g.Marshal()
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// ReadGreeting 读取并校验握手
func ReadGreeting(r io.ByteReader) (Greeting, error) {
	var hdr [len(greetingMagic) + 2]byte
	for i := range hdr {
		b, err := r.ReadByte()
		if err != nil {
			return Greeting{}, unexpected(err)
		}
		hdr[i] = b
	}
	if !bytes.Equal(hdr[:len(greetingMagic)], []byte(greetingMagic)) {
		return Greeting{}, fmt.Errorf("%w: magic %q", ErrBadGreeting, hdr[:len(greetingMagic)])
	}
	g := Greeting{
		Version: hdr[len(greetingMagic)],
		Type:    types.SocketType(hdr[len(greetingMagic)+1]),
	}
	if g.Version != Version {
		return Greeting{}, fmt.Errorf("%w: got %d want %d", ErrVersionMismatch, g.Version, Version)
	}

	n, err := varint.ReadUvarint(r)
	if err != nil {
		return Greeting{}, unexpected(err)
	}
	if n > types.MaxRoutingIDLen {
		return Greeting{}, fmt.Errorf("%w: routing id length %d", types.ErrInvalidRoutingID, n)
	}
	id := make([]byte, n)
	for i := range id {
		b, err := r.ReadByte()
		if err != nil {
			return Greeting{}, unexpected(err)
		}
		id[i] = b
	}
	g.RoutingID = types.RoutingID(id)
	return g, nil
}
