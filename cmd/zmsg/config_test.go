package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitAndTrim(t *testing.T) {
	assert.Equal(t, []string{"tcp://a:1", "inproc://b"}, splitAndTrim(" tcp://a:1 ,, inproc://b ", ","))
	assert.Nil(t, splitAndTrim("", ","))
}

// TestPick 未显式设置命令行参数时环境变量优先于默认值
func TestPick(t *testing.T) {
	t.Setenv(envPrefix+envPreset, "reliable")
	assert.Equal(t, "reliable", pick("preset", "", envPreset))

	t.Setenv(envPrefix+envPreset, "")
	assert.Equal(t, "default", pick("preset", "default", envPreset))
}
