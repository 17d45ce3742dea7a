package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		raw  string
		dev  bool
		want zapcore.Level
	}{
		{"", false, zapcore.InfoLevel},
		{"", true, zapcore.DebugLevel},
		{"WARN", false, zapcore.WarnLevel},
		{" error ", false, zapcore.ErrorLevel},
		{"loud", false, zapcore.InfoLevel},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseLevel(tc.raw, tc.dev), tc.raw)
	}
}

func TestNewJSON(t *testing.T) {
	t.Run("Should write JSON lines at or above the level", func(t *testing.T) {
		var buf bytes.Buffer
		log := newJSON(Config{Level: "warn"}, &buf)
		log.Info("dropped")
		log.Warn("kept", zap.String("account_id", "a1"))
		require.NoError(t, log.Sync())

		var entry map[string]any
		require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
		assert.Equal(t, "kept", entry["msg"])
		assert.Equal(t, "warn", entry["level"])
		assert.Equal(t, "a1", entry["account_id"])
		assert.Contains(t, entry, "ts")
	})
}

func TestNew(t *testing.T) {
	log, err := New(Config{Level: "debug", Dev: true})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))
}
