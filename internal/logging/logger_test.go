package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"":        zapcore.InfoLevel,
		"debug":   zapcore.DebugLevel,
		"WARNING": zapcore.WarnLevel,
		" error ": zapcore.ErrorLevel,
	}
	for raw, want := range cases {
		got, err := ParseLevel(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewWritesFileSink(t *testing.T) {
	dir := t.TempDir()
	logger, closeFn, err := New(Options{Level: "debug", Dir: dir, Quiet: true})
	require.NoError(t, err)
	Tenant(logger, "Mod A").Info("autoloaded banners", zap.Int("count", 1))
	require.NoError(t, logger.Sync())
	require.NoError(t, closeFn())

	data, err := os.ReadFile(filepath.Join(dir, LogFileName))
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))
	assert.Contains(t, line, `"tenant":"Mod A"`)
	assert.Contains(t, line, `"msg":"autoloaded banners"`)
}

func TestObserved(t *testing.T) {
	obs := NewObserved()
	Tenant(obs.Logger, "Mod A").Error("failed to resolve entity Slime")
	obs.AssertLogged(t, zapcore.ErrorLevel, "Slime")
	require.Len(t, obs.Find("resolve"), 1)
	assert.Equal(t, "Mod A", obs.Find("resolve")[0].ContextMap()["tenant"])
	assert.Empty(t, obs.Messages(zapcore.InfoLevel))
}
