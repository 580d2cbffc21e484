package main

import (
	"fmt"
	"os"
	"strings"

	zmsg "github.com/dep2p/go-zmsg"
	"github.com/dep2p/go-zmsg/config"
)

// 环境变量（ZMSG_ 前缀）
const (
	envPrefix    = "ZMSG_"
	envPreset    = "PRESET"
	envLogLevel  = "LOG_LEVEL"
	envLogFormat = "LOG_FORMAT"
	envRouteID   = "ROUTING_ID"
)

// buildOptions 构建选项
//
// 配置优先级（从高到低）：
//  1. 命令行参数
//  2. 环境变量（ZMSG_* 前缀）
//  3. 配置文件
//  4. 预设默认值
func buildOptions() ([]zmsg.Option, error) {
	var opts []zmsg.Option

	if *configFile != "" {
		cfg, err := config.LoadFile(*configFile)
		if err != nil {
			return nil, fmt.Errorf("加载配置文件失败: %w", err)
		}
		opts = append(opts, zmsg.WithConfig(cfg))
	}

	if name := pick("preset", *preset, envPreset); name != "" {
		opts = append(opts, zmsg.WithPreset(name))
	}
	if level := pick("log-level", *logLevel, envLogLevel); level != "" {
		opts = append(opts, zmsg.WithLogLevel(level))
	}
	if format := pick("log-format", *logFormat, envLogFormat); format != "" {
		opts = append(opts, zmsg.WithLogFormat(format))
	}
	if id := pick("id", *routingID, envRouteID); id != "" {
		*routingID = id
	}
	if *metricsAddr != "" {
		opts = append(opts, zmsg.WithMetrics(true))
	}
	return opts, nil
}

// pick 命令行显式设置时取命令行值，否则取环境变量，最后取默认值
func pick(flagName, flagValue, env string) string {
	if isFlagSet(flagName) {
		return flagValue
	}
	if v := os.Getenv(envPrefix + env); v != "" {
		return v
	}
	return flagValue
}

func splitAndTrim(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
