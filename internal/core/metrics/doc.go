// Package metrics 提供 socket 消息指标
//
// 每个 Context 持有一组 prometheus 收集器（Collectors），注册在独立的
// Registry 上，因此同一进程内的多个 Context 互不冲突。每个 socket 通过
// Collectors.Socket 获得一个 SocketMetrics 记录器：
//
//   - messages_sent_total / messages_received_total{socket_type}
//   - bytes_sent_total / bytes_received_total{socket_type}
//   - messages_dropped_total{socket_type,reason}
//   - send_failures_total{socket_type,kind}
//   - peers{socket_type,socket}
//
// SocketMetrics 同时维护原子计数和滑动窗口速率，Snapshot 返回
// 不依赖 prometheus 的快照，供日志和测试使用。
package metrics
