package zmsg

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-zmsg/config"
	"github.com/dep2p/go-zmsg/internal/core/crypto"
	"github.com/dep2p/go-zmsg/internal/core/eventbus"
	"github.com/dep2p/go-zmsg/internal/core/metrics"
	"github.com/dep2p/go-zmsg/internal/core/transport"
	"github.com/dep2p/go-zmsg/pkg/lib/log"
)

var fxLogger = log.Logger("zmsg/fx")

// buildFxApp 构建 Fx 应用
//
// 加载顺序（按依赖）：
//  1. crypto: 共享随机源（启动时获取，失败则整个 Context 创建失败）
//  2. eventbus / metrics: 事件与指标
//  3. transport: tcp + inproc 传输管理器
func buildFxApp(cfg *config.Config, o *options, c *Context) *fx.App {
	modules := []fx.Option{
		// 配置注入
		fx.Supply(cfg),

		// 基础组件
		crypto.Module(),
		eventbus.Module(),
		metrics.Module(),

		// 传输层
		transport.Module(),
	}

	// 用户扩展
	if len(o.fxOptions) > 0 {
		modules = append(modules, o.fxOptions...)
	}

	// 组件注入
	modules = append(modules, fx.Invoke(injectContextComponents(c)))

	// 容器日志
	modules = append(modules, fx.WithLogger(func() fxevent.Logger {
		return fxEventLogger(cfg.Log)
	}))

	return fx.New(modules...)
}

// fxEventLogger 默认静默；FxEvents 开启时输出到 zap 开发 logger
func fxEventLogger(lc config.LogConfig) fxevent.Logger {
	if !lc.FxEvents {
		return &fxevent.ZapLogger{Logger: zap.NewNop()}
	}
	zl, err := zap.NewDevelopment()
	if err != nil {
		fxLogger.Warn("创建 fx 事件 logger 失败", "err", err)
		return &fxevent.ZapLogger{Logger: zap.NewNop()}
	}
	return &fxevent.ZapLogger{Logger: zl}
}

// contextInjectParams Context 组件注入参数
type contextInjectParams struct {
	fx.In

	Transports *transport.Manager
	Bus        *eventbus.Bus
	Registry   *prometheus.Registry
	Collectors *metrics.Collectors `optional:"true"`
}

// injectContextComponents 把容器构建的组件注入 Context
func injectContextComponents(c *Context) interface{} {
	return func(p contextInjectParams) {
		c.transports = p.Transports
		c.bus = p.Bus
		c.registry = p.Registry
		c.collectors = p.Collectors
	}
}
