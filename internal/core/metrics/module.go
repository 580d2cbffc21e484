package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-zmsg/config"
	"github.com/dep2p/go-zmsg/pkg/lib/log"
)

var logger = log.Logger("core/metrics")

// Config 指标配置
type Config struct {
	// Enabled 是否记录 prometheus 指标
	Enabled bool

	// Namespace 指标名前缀
	Namespace string
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	d := config.DefaultMetricsConfig()
	return Config{Enabled: d.Enable, Namespace: d.Namespace}
}

// ConfigFromUnified 从统一配置创建指标配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return DefaultConfig()
	}
	return Config{
		Enabled:   cfg.Metrics.Enable,
		Namespace: cfg.Metrics.Namespace,
	}
}

// Params Metrics 依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
}

// Result Metrics 输出
type Result struct {
	fx.Out

	Registry   *prometheus.Registry
	Gatherer   prometheus.Gatherer
	Collectors *Collectors
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("metrics",
		fx.Provide(Provide),
		fx.Invoke(registerLifecycle),
	)
}

// Provide 创建独立 Registry 与收集器
//
// 指标关闭时 Collectors 为 nil，Collectors.Socket 仍返回可用记录器。
func Provide(p Params) (Result, error) {
	cfg := ConfigFromUnified(p.UnifiedCfg)
	reg := prometheus.NewRegistry()
	if !cfg.Enabled {
		logger.Debug("指标已禁用")
		return Result{Registry: reg, Gatherer: reg}, nil
	}
	c, err := NewCollectors(cfg.Namespace, reg)
	if err != nil {
		return Result{}, err
	}
	return Result{Registry: reg, Gatherer: reg, Collectors: c}, nil
}

type lifecycleInput struct {
	fx.In

	LC         fx.Lifecycle
	Collectors *Collectors `optional:"true"`
}

func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			input.Collectors.Unregister()
			return nil
		},
	})
}
