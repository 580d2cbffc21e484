package types

import (
	"bytes"
	"errors"
	"testing"
)

func TestRoutingID(t *testing.T) {
	t.Run("NewRoutingID", func(t *testing.T) {
		tests := []struct {
			name    string
			input   []byte
			wantErr bool
		}{
			{"anonymous", nil, false},
			{"one byte", []byte("A"), false},
			{"max length", bytes.Repeat([]byte{'x'}, MaxRoutingIDLen), false},
			{"too long", bytes.Repeat([]byte{'x'}, MaxRoutingIDLen+1), true},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := NewRoutingID(tt.input)
				if (err != nil) != tt.wantErr {
					t.Errorf("NewRoutingID() error = %v, wantErr %v", err, tt.wantErr)
				}
				if err != nil && !errors.Is(err, ErrInvalidRoutingID) {
					t.Errorf("error should wrap ErrInvalidRoutingID, got %v", err)
				}
			})
		}
	})

	t.Run("String", func(t *testing.T) {
		if got := RoutingID("").String(); got != "<anonymous>" {
			t.Errorf("String() = %q", got)
		}
		if got := RoutingID("peer-1").String(); got != "peer-1" {
			t.Errorf("String() = %q", got)
		}
		// 自动生成的标识不可打印，以十六进制显示
		if got := RoutingID([]byte{0, 0, 0, 0, 7}).String(); got != "0x0000000007" {
			t.Errorf("String() = %q", got)
		}
	})

	t.Run("Bytes is a copy", func(t *testing.T) {
		id := RoutingID("abc")
		b := id.Bytes()
		b[0] = 'z'
		if id != "abc" {
			t.Errorf("RoutingID 被修改: %q", id)
		}
	})
}

func TestSocketID_ShortString(t *testing.T) {
	if got := SocketID("0123456789abcdef").ShortString(); got != "01234567" {
		t.Errorf("ShortString() = %q", got)
	}
	if got := SocketID("abc").ShortString(); got != "abc" {
		t.Errorf("短 ID 应原样返回, got %q", got)
	}
}
