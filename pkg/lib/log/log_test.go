package log

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// restore 测试结束后恢复默认设置
func restore(t *testing.T) {
	t.Cleanup(func() {
		SetLevel(LevelInfo)
		SetFormat(FormatText)
		SetOutput(os.Stderr)
	})
}

// TestParseLevel 测试级别解析
func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want string
		err  bool
	}{
		{"debug", "DEBUG", false},
		{"INFO", "INFO", false},
		{"", "INFO", false},
		{"warning", "WARN", false},
		{"error", "ERROR", false},
		{"trace", "", true},
	}
	for _, tt := range tests {
		l, err := ParseLevel(tt.in)
		if tt.err {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, l.String())
	}
}

// TestLazyLogger_ComponentAndLevel 测试组件属性与级别过滤
func TestLazyLogger_ComponentAndLevel(t *testing.T) {
	restore(t)
	var buf bytes.Buffer
	SetOutput(&buf)

	l := Logger("core/test")
	l.Debug("hidden")
	assert.Empty(t, buf.String())

	SetLevel(LevelDebug)
	l.Debug("shown", "peer", "abc")
	out := buf.String()
	assert.Contains(t, out, "component=core/test")
	assert.Contains(t, out, "peer=abc")
	assert.True(t, l.Enabled(LevelDebug))
}

// TestConfigure_JSON 测试切换为 JSON 格式
func TestConfigure_JSON(t *testing.T) {
	restore(t)
	var buf bytes.Buffer
	SetOutput(&buf)
	require.NoError(t, Configure("warn", "json"))

	Logger("core/json").Info("dropped")
	Logger("core/json").Warn("kept")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "kept", rec["msg"])
	assert.Equal(t, "core/json", rec["component"])

	assert.Error(t, Configure("", "xml"))
	assert.Error(t, Configure("loud", ""))
}
