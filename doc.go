// Package zmsg 提供无代理的请求/应答消息 socket
//
// 一个进程通常创建一个 Context，再由它创建 REQ 与 ROUTER socket：
//
//	zctx, err := zmsg.New()
//	if err != nil {
//	    return err
//	}
//	defer zctx.Close()
//
//	router, _ := zctx.NewRouter()
//	addr, _ := router.Bind("tcp://127.0.0.1:0")
//
//	req, _ := zctx.NewReq()
//	_ = req.Connect(addr)
//
//	reply, err := req.Request(ctx, zmsg.NewStringMessage("ABC"))
//
// # 语义
//
// REQ 严格交替 Send/Recv，按连接顺序轮询可写对端，只接受最近一次
// 请求所发往对端的应答，其他对端的数据被静默丢弃。
//
// ROUTER 按路由标识寻址发送，接收时以轮询方式公平读取各对端并返回
// 来源标识。目标不可达时默认静默丢弃；启用 mandatory 后返回 ErrUnroutable。
//
// # 阻塞
//
// Send/Recv 从不阻塞，没有可用对端时返回 ErrWouldBlock。SendCtx/RecvCtx
// 在 socket 状态变化时重试，直到成功、ctx 结束或 socket 关闭。
//
// # 传输
//
//   - tcp://host:port   TCP，"*" 表示所有网卡
//   - inproc://name     进程内
//
// # 错误
//
// 所有错误都可以用 errors.Is 与本包导出的哨兵错误比较。
package zmsg
