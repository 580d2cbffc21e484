package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

// TestModule_AcquireRelease 测试模块在启动/停止时获取和释放随机源
func TestModule_AcquireRelease(t *testing.T) {
	var s *Source
	app := fxtest.New(t, Module(), fx.Populate(&s))

	before := s.Refs()
	app.RequireStart()
	assert.Equal(t, before+1, s.Refs())

	buf := make([]byte, 16)
	n, err := s.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 16, n)

	app.RequireStop()
	assert.Equal(t, before, s.Refs())
}
