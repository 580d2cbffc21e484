// Package main 提供 zmsg 命令行入口
//
// 两种模式：
//
//	zmsg router -bind tcp://0.0.0.0:5555          # 应答服务，原样回显请求
//	zmsg req -connect tcp://127.0.0.1:5555 ABC    # 发送请求并打印应答
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	zmsg "github.com/dep2p/go-zmsg"
	"github.com/dep2p/go-zmsg/pkg/lib/log"
)

var logger = log.Logger("zmsg/cmd")

// ═══════════════════════════════════════════════════════════════════════════
// 命令行参数
// ═══════════════════════════════════════════════════════════════════════════
//
//   命令行参数：运行时覆盖（「这次运行」想怎么跑）
//   JSON 配置文件：socket / 传输层 / 日志 / 指标的固定配置
//
// ═══════════════════════════════════════════════════════════════════════════
var (
	// ─────────────────────────────────────────────────────────────────────
	// 端点
	// ─────────────────────────────────────────────────────────────────────
	bindAddrs    = flag.String("bind", "", "绑定端点，逗号分隔（router 模式）")
	connectAddrs = flag.String("connect", "", "连接端点，逗号分隔（req 模式）")
	routingID    = flag.String("id", "", "连接时声明的路由标识")

	// ─────────────────────────────────────────────────────────────────────
	// 行为
	// ─────────────────────────────────────────────────────────────────────
	configFile = flag.String("config", "", "配置文件路径")
	preset     = flag.String("preset", "", "预设配置 (default/reliable/throughput)")
	count      = flag.Int("count", 1, "req 模式发送的请求数")
	timeout    = flag.Duration("timeout", 5*time.Second, "req 模式每个请求的超时")
	reply      = flag.String("reply", "", "router 模式的固定应答（空 = 回显请求）")
	mandatory  = flag.Bool("mandatory", false, "router 模式启用强制路由")

	// ─────────────────────────────────────────────────────────────────────
	// 日志与指标
	// ─────────────────────────────────────────────────────────────────────
	logLevel    = flag.String("log-level", "", "日志级别 (debug/info/warn/error)")
	logFormat   = flag.String("log-format", "", "日志格式 (text/json)")
	metricsAddr = flag.String("metrics-addr", "", "prometheus 指标 HTTP 地址（空 = 不开启）")

	// ─────────────────────────────────────────────────────────────────────
	// 信息显示
	// ─────────────────────────────────────────────────────────────────────
	showVersion = flag.Bool("version", false, "显示版本信息")
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		printHelp()
		return errors.New("missing mode")
	}
	mode := args[0]
	if err := flag.CommandLine.Parse(args[1:]); err != nil {
		return err
	}

	if *showVersion || mode == "version" {
		printVersion()
		return nil
	}

	opts, err := buildOptions()
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}

	zctx, err := zmsg.New(opts...)
	if err != nil {
		return fmt.Errorf("创建 Context 失败: %w", err)
	}
	defer func() { _ = zctx.Close() }()

	logger.Info("启动 zmsg", "mode", mode, "version", zmsg.Version, "commit", zmsg.GitCommit)

	stopMetrics := serveMetrics(zctx)
	defer stopMetrics()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch mode {
	case "router":
		return runRouter(ctx, zctx)
	case "req":
		return runReq(ctx, zctx, flag.Args())
	case "help":
		printHelp()
		return nil
	default:
		printHelp()
		return fmt.Errorf("unknown mode: %s", mode)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// 模式
// ═══════════════════════════════════════════════════════════════════════════

// runRouter 绑定端点并回复收到的每个请求，直到收到退出信号
func runRouter(ctx context.Context, zctx *zmsg.Context) error {
	endpoints := splitAndTrim(*bindAddrs, ",")
	if len(endpoints) == 0 {
		return errors.New("router mode needs -bind")
	}

	var sockOpts []zmsg.SocketOption
	if isFlagSet("mandatory") {
		sockOpts = append(sockOpts, zmsg.WithMandatory(*mandatory))
	}
	rs, err := zctx.NewRouter(sockOpts...)
	if err != nil {
		return err
	}

	for _, ep := range endpoints {
		addr, err := rs.BindCtx(ctx, ep)
		if err != nil {
			return err
		}
		fmt.Printf("监听: %s\n", addr)
	}
	fmt.Println("按 Ctrl+C 退出")

	for {
		id, msg, err := rs.RecvCtx(ctx)
		switch {
		case errors.Is(err, zmsg.ErrMalformedRequest):
			logger.Warn("忽略格式错误的请求", "peer", id)
			continue
		case err != nil:
			if ctx.Err() != nil {
				fmt.Println("\n正在关闭...")
				return nil
			}
			return err
		}

		logger.Debug("收到请求", "peer", id, "frames", len(msg))
		out := msg
		if *reply != "" {
			out = zmsg.NewStringMessage(*reply)
		}
		if err := rs.Send(id, out); err != nil {
			logger.Warn("应答失败", "peer", id, "err", err)
		}
	}
}

// runReq 依次发送请求并打印应答
func runReq(ctx context.Context, zctx *zmsg.Context, body []string) error {
	endpoints := splitAndTrim(*connectAddrs, ",")
	if len(endpoints) == 0 {
		return errors.New("req mode needs -connect")
	}
	if len(body) == 0 {
		body = []string{"ping"}
	}

	var sockOpts []zmsg.SocketOption
	if *routingID != "" {
		sockOpts = append(sockOpts, zmsg.WithRoutingID(*routingID))
	}
	req, err := zctx.NewReq(sockOpts...)
	if err != nil {
		return err
	}
	for _, ep := range endpoints {
		if err := req.ConnectCtx(ctx, ep); err != nil {
			return err
		}
	}

	for i := 0; i < *count; i++ {
		rctx, cancel := context.WithTimeout(ctx, *timeout)
		start := time.Now()
		resp, err := req.Request(rctx, zmsg.NewStringMessage(body...))
		cancel()
		if err != nil {
			return fmt.Errorf("request %d: %w", i+1, err)
		}
		fmt.Printf("[%d] %s (%s)\n", i+1, strings.Join(resp.Strings(), " | "), time.Since(start).Round(time.Microsecond))
	}

	snap := req.Metrics()
	logger.Info("完成", "sent", snap.Sent, "received", snap.Received, "dropped", snap.DroppedOffAffinity+snap.DroppedMalformed)
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════
// 辅助
// ═══════════════════════════════════════════════════════════════════════════

// serveMetrics 按需开启 /metrics，返回关闭函数
func serveMetrics(zctx *zmsg.Context) func() {
	if *metricsAddr == "" {
		return func() {}
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(zctx.Gatherer(), promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: *metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("指标服务退出", "err", err)
		}
	}()
	fmt.Printf("指标: http://%s/metrics\n", *metricsAddr)
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func isFlagSet(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

func printVersion() {
	fmt.Printf("zmsg %s\n", zmsg.Version)
	if zmsg.GitCommit != "" {
		fmt.Printf("  commit: %s\n", zmsg.GitCommit)
	}
	if zmsg.BuildDate != "" {
		fmt.Printf("  built:  %s\n", zmsg.BuildDate)
	}
}

func printHelp() {
	fmt.Println("用法: zmsg <router|req|version> [参数] [请求帧...]")
	fmt.Println()
	flag.PrintDefaults()
}
