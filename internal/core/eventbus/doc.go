// Package eventbus 实现进程内事件总线
//
// socket 通过总线发布对端生命周期和消息丢弃事件：
//
//   - types.EvtPeerConnected     对端挂接
//   - types.EvtPeerDisconnected  对端摘除
//   - types.EvtPeerRejected      对端被拒绝（如重复路由标识）
//   - types.EvtMessageDropped    消息被静默丢弃（亲和性、不可路由、格式错误）
//
// # 快速开始
//
//	sub, _ := bus.Subscribe(new(types.EvtPeerConnected))
//	defer sub.Close()
//
//	for evt := range sub.Out() {
//	    e := evt.(types.EvtPeerConnected)
//	    // 处理事件
//	}
//
// 或使用类型化的 Next：
//
//	e, err := eventbus.Next[types.EvtPeerConnected](ctx, sub)
//
// # 背压
//
// 发射从不阻塞 socket：订阅者缓冲区满时事件被丢弃，
// 每丢弃 100 个事件记录一次慢消费者警告。
//
// # 并发安全
//
//   - 订阅/取消订阅：RWMutex 保护
//   - 发射器引用计数：refcount.Counter
//   - 通道关闭：closeOnce 防止重复
package eventbus
