// Package interfaces 定义 go-zmsg 公共接口
//
// 本文件定义 socket 指标接口。
package interfaces

import "github.com/dep2p/go-zmsg/pkg/types"

// SocketMetrics 单个 socket 的指标记录器
type SocketMetrics interface {
	// MessageSent 记录一条已发送消息
	MessageSent(frames, bytes int)

	// MessageReceived 记录一条已接收消息
	MessageReceived(frames, bytes int)

	// MessageDropped 记录一条被静默丢弃的消息
	MessageDropped(reason types.DropReason)

	// SendFailed 记录一次发送失败（WouldBlock/Unroutable/FSM）
	SendFailed(err error)

	// PeersChanged 记录当前挂接的对端数
	PeersChanged(n int)
}
