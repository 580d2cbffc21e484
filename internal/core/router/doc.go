// Package router 实现路由端（ROUTER）状态机
//
// 路由端没有收发阶段：每次发送都显式指定目标路由标识，
// 每次接收都带回来源路由标识。
//
// # 标识
//
// 对端在握手中声明的非空路由标识被直接采用；空标识时路由端为其分配
// 5 字节匿名标识 0x00 || uint32_be(n)，n 以 idgen.Next() 为起点递增。
// 声明的标识与现有对端重复时拒绝连接，除非启用了接管（handover），
// 此时旧对端被终止，新对端接管该标识。
//
// # 发送策略
//
// 目标不存在或不可写时：
//   - mandatory=false（默认）：静默丢弃并返回成功
//   - mandatory=true：返回 ErrUnroutable；对端存在但队列已满时
//     错误同时匹配 ErrWouldBlock
//
// # 线框格式
//
// 入站请求为 [空分隔帧][正文...]，来源标识由对端记录提供，不从线上解析。
// 出站信封为 [标识][空分隔帧][正文...]：标识帧用于选择管道并被消费，
// 分隔帧和正文写入管道。
package router
