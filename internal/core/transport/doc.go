// Package transport 管理 socket 可用的传输层
//
// Manager 按端点前缀分派 Bind/Connect：
//
//	tcp://host:port   -> tcp.Transport
//	inproc://name     -> inproc.Transport
//
// 每个 Context 拥有一个 Manager，随 fx 生命周期关闭。
package transport
