package req

// Phase 请求端阶段
type Phase int

const (
	// PhaseReadyToSend 可以发送新请求
	PhaseReadyToSend Phase = iota
	// PhaseAwaitingReply 等待最近一次请求的应答
	PhaseAwaitingReply
)

// String 返回阶段名称
func (p Phase) String() string {
	switch p {
	case PhaseReadyToSend:
		return "ready_to_send"
	case PhaseAwaitingReply:
		return "awaiting_reply"
	default:
		return "unknown"
	}
}
