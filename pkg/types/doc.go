// Package types 定义 go-zmsg 的公共数据结构
//
// 这是整个系统的最底层包，不依赖任何其他 zmsg 内部包。
// 所有类型都是纯值类型，用于在各模块间传递数据。
//
// # 文件组织
//
// 基础类型:
//   - frame.go   - Frame, Message（多帧消息）
//   - ids.go     - RoutingID（路由标识）, SocketID
//   - enums.go   - SocketType, PeerState, DropReason
//   - errors.go  - 公共错误定义
//
// 事件类型:
//   - events.go  - 对端连接/断开、消息丢弃事件
//
// # 线格式约定
//
// 请求端发出:        [空分隔帧][正文帧 1]...[正文帧 N]
// 路由端应用层信封:  [身份帧][空分隔帧][正文帧 1]...[正文帧 N]
//
// 身份帧只在本地用于寻址，不会出现在入站请求的线格式中。
package types
