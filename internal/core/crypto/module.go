package crypto

import (
	"context"

	"go.uber.org/fx"
)

// Module 返回 Fx 模块
//
// 启动时获取进程级随机源，停止时释放。获取失败使整个应用启动失败。
func Module() fx.Option {
	return fx.Module("crypto",
		fx.Provide(Default),
		fx.Invoke(registerLifecycle),
	)
}

func registerLifecycle(lc fx.Lifecycle, s *Source) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			return s.Acquire()
		},
		OnStop: func(_ context.Context) error {
			s.Release()
			return nil
		},
	})
}
