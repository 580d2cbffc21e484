package tcp

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// Scheme 地址前缀
const Scheme = "tcp"

// Address TCP 地址
type Address struct {
	host string // IP 或域名，空表示所有接口
	port int
}

// NewAddress 创建 TCP 地址
func NewAddress(host string, port int) *Address {
	return &Address{host: host, port: port}
}

// NewAddressFromNetAddr 从 net.Addr 创建地址
func NewAddressFromNetAddr(addr net.Addr) (*Address, error) {
	tcpAddr, ok := addr.(*net.TCPAddr)
	if !ok {
		return nil, fmt.Errorf("%w: not a tcp address: %T", ErrInvalidAddress, addr)
	}
	return &Address{host: tcpAddr.IP.String(), port: tcpAddr.Port}, nil
}

// ParseAddress 解析 "tcp://host:port" 或 "host:port"
//
// host 为 "*" 时表示所有接口。
func ParseAddress(addr string) (*Address, error) {
	s := strings.TrimPrefix(addr, Scheme+"://")
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidAddress, addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 || port > 65535 {
		return nil, fmt.Errorf("%w: bad port %q", ErrInvalidAddress, portStr)
	}
	if host == "*" {
		host = ""
	}
	return &Address{host: host, port: port}, nil
}

// Host 主机
func (a *Address) Host() string {
	return a.host
}

// Port 端口
func (a *Address) Port() int {
	return a.port
}

// NetAddr 返回 net 包使用的 "host:port"
func (a *Address) NetAddr() string {
	return net.JoinHostPort(a.host, strconv.Itoa(a.port))
}

// String 返回带前缀的地址
func (a *Address) String() string {
	host := a.host
	if host == "" {
		host = "*"
	}
	return Scheme + "://" + net.JoinHostPort(host, strconv.Itoa(a.port))
}
