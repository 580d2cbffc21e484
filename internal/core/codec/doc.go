// Package codec 多帧消息的字节编解码
//
// # 帧格式
//
//	+-------+----------------+-----------+
//	| flags | length(uvarint)|  payload  |
//	+-------+----------------+-----------+
//
// flags 的 bit0 为 MORE（后面还有帧属于同一条消息），其余位保留为 0。
// length 使用 multiformats 无符号 varint（最小编码）。
//
// # 握手
//
// 连接建立后双方各发送一次 Greeting：
//
//	"ZMSG" | version(1) | socket type(1) | id length(uvarint) | routing id
//
// 握手携带本端声明的路由标识，供路由端采用。
package codec
