// Package tcp 实现 TCP 传输层
//
// 每条 TCP 连接对应一对管道：socket 端挂接到 socket，I/O 端由本包的
// 读写 goroutine 驱动。
//
// # 地址格式
//
//	tcp://127.0.0.1:5555
//	tcp://*:5555          // 监听所有接口
//	tcp://[::1]:5555
//
// # 连接流程
//
//  1. 建立 TCP 连接
//  2. 双方交换握手（codec.Greeting），携带各自声明的路由标识
//  3. 创建管道对，socket 端挂接到 socket
//  4. 启动读、写 goroutine（errgroup），任一结束即关闭连接并终止管道
//
// # 背压
//
// 读 goroutine 在入站队列满时停止读取 socket，等待 socket 读走消息后
// 的 WriteActivated 通知；写 goroutine 在出站队列空时等待 ReadActivated。
package tcp
