// Package testutil 提供测试辅助工具
package testutil

// 测试数据固件
//
// 提供测试中常用的常量值，确保测试一致性。

const (
	// LoopbackEndpoint 本机随机端口的 TCP 端点
	LoopbackEndpoint = "tcp://127.0.0.1:0"

	// Request 端到端测试使用的请求正文
	Request = "ABC"

	// Reply 端到端测试使用的应答正文
	Reply = "DEF"
)
