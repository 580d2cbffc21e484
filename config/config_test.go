package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewConfig 测试创建默认配置
func TestNewConfig(t *testing.T) {
	cfg := NewConfig()
	require.NotNil(t, cfg)
	assert.NoError(t, cfg.Validate())

	assert.Equal(t, 1000, cfg.Socket.SendHWM)
	assert.Equal(t, 1000, cfg.Socket.RecvHWM)
	assert.False(t, cfg.Socket.RouterMandatory)
	assert.Equal(t, 5*time.Second, cfg.Transport.TCP.DialTimeout.Duration())
	assert.Equal(t, 16<<20, cfg.Transport.TCP.MaxFrameSize)
	assert.Equal(t, "zmsg", cfg.Metrics.Namespace)
}

// TestConfig_Validate 测试配置验证
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"负高水位", func(c *Config) { c.Socket.SendHWM = -1 }},
		{"路由标识过长", func(c *Config) { c.Socket.RoutingID = strings.Repeat("x", 256) }},
		{"负 linger", func(c *Config) { c.Socket.Linger = -1 }},
		{"负拨号超时", func(c *Config) { c.Transport.TCP.DialTimeout = -1 }},
		{"帧上限为 0", func(c *Config) { c.Transport.TCP.MaxFrameSize = 0 }},
		{"负缓冲", func(c *Config) { c.Transport.TCP.ReadBufferSize = -1 }},
		{"未知日志级别", func(c *Config) { c.Log.Level = "trace" }},
		{"未知日志格式", func(c *Config) { c.Log.Format = "xml" }},
		{"非法指标前缀", func(c *Config) { c.Metrics.Namespace = "1bad-name" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	// 禁用指标时不检查前缀
	cfg := NewConfig()
	cfg.Metrics.Enable = false
	cfg.Metrics.Namespace = ""
	assert.NoError(t, cfg.Validate())

	assert.Error(t, ValidateAll(nil))
	assert.Panics(t, func() { MustValidate(nil) })
}

// TestSocketConfig_With 测试链式设置
func TestSocketConfig_With(t *testing.T) {
	cfg := DefaultSocketConfig().
		WithHWM(10, 20).
		WithRoutingID("client").
		WithRouterMandatory(true).
		WithRouterHandover(true)

	assert.Equal(t, 10, cfg.SendHWM)
	assert.Equal(t, 20, cfg.RecvHWM)
	assert.Equal(t, "client", cfg.RoutingID)
	assert.True(t, cfg.RouterMandatory)
	assert.True(t, cfg.RouterHandover)
}

// TestFromJSON 部分 JSON 覆盖默认值
func TestFromJSON(t *testing.T) {
	data := []byte(`{
		"socket": {"send_hwm": 5, "router_mandatory": true, "linger": "250ms"},
		"transport": {"tcp": {"dial_timeout": 2000000000}},
		"log": {"level": "debug", "format": "json"}
	}`)
	cfg, err := FromJSON(data)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Socket.SendHWM)
	assert.Equal(t, 1000, cfg.Socket.RecvHWM, "未出现的字段保留默认值")
	assert.True(t, cfg.Socket.RouterMandatory)
	assert.Equal(t, 250*time.Millisecond, cfg.Socket.Linger.Duration())
	assert.Equal(t, 2*time.Second, cfg.Transport.TCP.DialTimeout.Duration())
	assert.Equal(t, "json", cfg.Log.Format)

	_, err = FromJSON([]byte(`{"socket": {"linger": "forever"}}`))
	assert.Error(t, err)
	_, err = FromJSON([]byte(`{"socket": {"linger": true}}`))
	assert.Error(t, err)
}

// TestToJSON 序列化后可重新加载
func TestToJSON(t *testing.T) {
	cfg := NewConfig()
	cfg.Socket.RoutingID = "svc"
	data, err := cfg.ToJSON()
	require.NoError(t, err)

	var raw map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "1s", raw["socket"]["linger"])

	back, err := FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}

// TestLoadFile 从文件加载
func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"socket": {"recv_hwm": 7}}`), 0o600))
	cfg, err := LoadFile(good)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Socket.RecvHWM)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"socket": {"recv_hwm": -7}}`), 0o600))
	_, err = LoadFile(bad)
	assert.Error(t, err)

	_, err = LoadFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

// TestApplyPreset 预设
func TestApplyPreset(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, ApplyPreset(cfg, "reliable"))
	assert.True(t, cfg.Socket.RouterMandatory)
	assert.True(t, cfg.Socket.RouterHandover)

	cfg = NewConfig()
	require.NoError(t, ApplyPreset(cfg, "throughput"))
	assert.Equal(t, 10000, cfg.Socket.SendHWM)
	assert.NoError(t, cfg.Validate())

	assert.NoError(t, ApplyPreset(cfg, ""))
	assert.Error(t, ApplyPreset(cfg, "turbo"))
	assert.Error(t, ApplyPreset(nil, "default"))
}

// TestCloneConfig 克隆互不影响
func TestCloneConfig(t *testing.T) {
	cfg := NewConfig()
	cloned := CloneConfig(cfg)
	cloned.Socket.SendHWM = 1

	assert.Equal(t, 1000, cfg.Socket.SendHWM)
	assert.Nil(t, CloneConfig(nil))
}
