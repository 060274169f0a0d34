package shared

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	c, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), c)
	assert.Equal(t, "./lexcheck.db", c.Database.DSN)
	assert.Equal(t, 10*time.Second, c.Classifier.Timeout)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	p := filepath.Join(t.TempDir(), "lexcheck.yaml")
	require.NoError(t, os.WriteFile(p, []byte(`
database:
  dsn: /tmp/x.db
analysis:
  document_type: NDA
  rule_packs: [packs/india.yaml]
classifier:
  endpoint: http://model:8000/classify
  timeout: 3s
server:
  addr: ":9090"
logging:
  level: debug
`), 0o644))

	t.Setenv("LEXCHECK_LOG_LEVEL", "warn")
	t.Setenv("LEXCHECK_ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	c, err := LoadConfig(p)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.db", c.Database.DSN)
	assert.Equal(t, "NDA", c.Analysis.DocumentType)
	assert.Equal(t, []string{"packs/india.yaml"}, c.Analysis.RulePacks)
	assert.Equal(t, 3*time.Second, c.Classifier.Timeout)
	assert.Equal(t, 3, c.Classifier.MaxAttempts)
	assert.Equal(t, ":9090", c.Server.Addr)
	assert.Equal(t, "warn", c.Logging.Level)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.Server.AllowedOrigins)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	p := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(p, []byte("database: [\n"), 0o644))
	_, err = LoadConfig(p)
	assert.Error(t, err)

	t.Setenv("LEXCHECK_WORKERS", "many")
	_, err = LoadConfig("")
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, "json", "warn")
	l.Info("hidden")
	l.Warn("shown", "k", 1)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	buf.Reset()
	NewLogger(&buf, "TEXT", "debug").Debug("dbg")
	assert.Contains(t, buf.String(), "msg=dbg")

	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
	assert.Equal(t, slog.LevelWarn, ParseLevel(" Warning "))
	assert.True(t, InitLogger("text", "debug").Enabled(context.Background(), slog.LevelDebug))
}

func TestLoadConfig_ShippedFile(t *testing.T) {
	c, err := LoadConfig(filepath.Join("..", "..", "configs", "lexcheck.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "./configs/rules/indian-contract.yaml", c.Analysis.RulePacks[0])
	assert.Equal(t, 16<<20, int(c.Server.MaxUploadBytes))
	assert.Equal(t, 500*time.Millisecond, c.Watch.Debounce)
}
