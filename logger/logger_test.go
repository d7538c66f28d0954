package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	require.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	require.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	require.Equal(t, zapcore.InfoLevel, parseLevel(""))
	require.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
}

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "stemhub.log")

	l, err := New(Config{Level: "info", OutputPath: path})
	require.NoError(t, err)

	Set(l)
	defer Set(nil)

	Debug("hidden")
	Info("track created", String("id", "t1"), Int("count", 2))
	_ = l.Sync()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	require.Equal(t, "track created", entry["msg"])
	require.Equal(t, "info", entry["level"])
	require.Equal(t, "t1", entry["id"])
	require.EqualValues(t, 2, entry["count"])
}

func TestSetNilFallsBackToNop(t *testing.T) {
	Set(nil)
	require.NotNil(t, L())
	Info("dropped")
	Set(zap.NewNop())
}
