package eventbus

import pkgif "github.com/dep2p/go-zmsg/pkg/interfaces"

// subscriptionSettings 是 pkg/interfaces.SubscriptionSettings 的别名
type subscriptionSettings = pkgif.SubscriptionSettings

// emitterSettings 是 pkg/interfaces.EmitterSettings 的别名
type emitterSettings = pkgif.EmitterSettings

// BufSize 设置订阅缓冲区大小，与 pkg/interfaces.BufSize 等效
func BufSize(size int) pkgif.SubscriptionOpt {
	return pkgif.BufSize(size)
}

// Stateful 设置发射器为有状态模式，与 pkg/interfaces.Stateful 等效
func Stateful() pkgif.EmitterOpt {
	return pkgif.Stateful()
}
