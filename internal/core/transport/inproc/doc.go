// Package inproc 实现进程内传输
//
// 同一个 Transport 实例内，Bind 以名字登记 socket，Connect 直接创建
// 一对管道分别挂接到双方 socket，不经过编解码和 I/O goroutine。
// 地址格式：inproc://name。
//
// 连接时双方交换各自声明的路由标识，规则与 TCP 握手相同。
package inproc
