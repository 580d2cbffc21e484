// Package log 提供 go-zmsg 统一日志接口
//
// 基于 Go 标准库 log/slog 封装。各组件以 Logger("core/xxx") 获取
// 懒加载 logger，输出目标、级别与格式可在运行时统一切换。
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// 日志级别常量（从 slog 导出，方便使用）
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Format 输出格式
type Format string

const (
	// FormatText key=value 文本
	FormatText Format = "text"
	// FormatJSON 每行一个 JSON 对象
	FormatJSON Format = "json"
)

var (
	mu     sync.Mutex
	level  = new(slog.LevelVar)
	output io.Writer = os.Stderr
	format           = FormatText
)

// ============================================================================
//                              全局配置
// ============================================================================

// SetDefault 设置默认 logger
func SetDefault(l *slog.Logger) {
	slog.SetDefault(l)
}

// Default 返回默认 logger
func Default() *slog.Logger {
	return slog.Default()
}

// New 创建文本格式的 logger
func New(w io.Writer, opts *slog.HandlerOptions) *slog.Logger {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// NewJSON 创建 JSON 格式的 logger
func NewJSON(w io.Writer, opts *slog.HandlerOptions) *slog.Logger {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// rebuild 按当前输出、格式与级别重建默认 logger（调用方持有 mu）
func rebuild() {
	opts := &slog.HandlerOptions{Level: level}
	if format == FormatJSON {
		slog.SetDefault(NewJSON(output, opts))
		return
	}
	slog.SetDefault(New(output, opts))
}

// SetOutput 设置日志输出目标
//
// 示例：
//
//	file, _ := os.OpenFile("zmsg.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
//	log.SetOutput(file)
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	rebuild()
}

// SetLevel 设置日志级别，立即对所有组件生效
func SetLevel(l slog.Level) {
	level.Set(l)
}

// GetLevel 返回当前日志级别
func GetLevel() slog.Level {
	return level.Level()
}

// SetFormat 设置输出格式
func SetFormat(f Format) {
	mu.Lock()
	defer mu.Unlock()
	format = f
	rebuild()
}

// Configure 一次设置级别与格式（空字符串表示保持不变）
func Configure(levelName, formatName string) error {
	if levelName != "" {
		l, err := ParseLevel(levelName)
		if err != nil {
			return err
		}
		SetLevel(l)
	}
	switch Format(formatName) {
	case "":
	case FormatText, FormatJSON:
		SetFormat(Format(formatName))
	default:
		return fmt.Errorf("unknown log format: %s", formatName)
	}
	return nil
}

// ParseLevel 解析 debug/info/warn/error（不区分大小写）
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level: %s", s)
	}
}

// ============================================================================
//                              LazyLogger
// ============================================================================

// LazyLogger 懒加载 logger
//
// 每次日志调用时都从 slog.Default() 获取最新的 handler，
// 支持在运行时动态切换日志输出目标。
//
// 使用方式：
//
//	var logger = log.Logger("core/pipe")
//	logger.Debug("管道已回收", "endpoint", ep)
type LazyLogger struct {
	component string
}

func (l *LazyLogger) get() *slog.Logger {
	return slog.Default().With("component", l.component)
}

// Debug 输出 Debug 级别日志
func (l *LazyLogger) Debug(msg string, args ...any) {
	l.get().Debug(msg, args...)
}

// Info 输出 Info 级别日志
func (l *LazyLogger) Info(msg string, args ...any) {
	l.get().Info(msg, args...)
}

// Warn 输出 Warn 级别日志
func (l *LazyLogger) Warn(msg string, args ...any) {
	l.get().Warn(msg, args...)
}

// Error 输出 Error 级别日志
func (l *LazyLogger) Error(msg string, args ...any) {
	l.get().Error(msg, args...)
}

// DebugContext 带 context 的 Debug 日志
func (l *LazyLogger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.get().DebugContext(ctx, msg, args...)
}

// WarnContext 带 context 的 Warn 日志
func (l *LazyLogger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.get().WarnContext(ctx, msg, args...)
}

// Enabled 当前级别下是否输出
func (l *LazyLogger) Enabled(lvl slog.Level) bool {
	return slog.Default().Enabled(context.Background(), lvl)
}

// With 添加额外的属性
func (l *LazyLogger) With(args ...any) *slog.Logger {
	return l.get().With(args...)
}

// Logger 返回带组件名的 LazyLogger
func Logger(component string) *LazyLogger {
	return &LazyLogger{component: component}
}

// ============================================================================
//                              快捷方法
// ============================================================================

// Debug 使用默认 logger 输出 Debug 日志
func Debug(msg string, args ...any) {
	slog.Default().Debug(msg, args...)
}

// Info 使用默认 logger 输出 Info 日志
func Info(msg string, args ...any) {
	slog.Default().Info(msg, args...)
}

// Warn 使用默认 logger 输出 Warn 日志
func Warn(msg string, args ...any) {
	slog.Default().Warn(msg, args...)
}

// Error 使用默认 logger 输出 Error 日志
func Error(msg string, args ...any) {
	slog.Default().Error(msg, args...)
}

func init() {
	level.Set(LevelInfo)
	mu.Lock()
	rebuild()
	mu.Unlock()
}
