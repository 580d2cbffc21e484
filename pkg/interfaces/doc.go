// Package interfaces 定义 go-zmsg 的公共接口
//
// 接口按协作方划分，一个接口文件对应一个实现目录：
//   - pipe.go       - 管道（有界 SPSC 帧队列）及其通知回调 → internal/core/pipe
//   - transport.go  - 传输层（bind/connect、连接建立/断开回调）→ internal/core/transport/*
//   - socket.go     - socket 门面与管道挂接入口 → internal/core/socket
//   - eventbus.go   - 事件总线 → internal/core/eventbus
//   - metrics.go    - socket 指标 → internal/core/metrics
//
// 依赖方向：interfaces 只依赖 pkg/types。
package interfaces
