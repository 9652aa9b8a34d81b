package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/jakopako/pomgen/internal/codegen"
	"github.com/jakopako/pomgen/internal/naming"
	"github.com/jakopako/pomgen/internal/output"
	"github.com/jakopako/pomgen/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pomgen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewConfigFromFile(t *testing.T) {
	path := writeConfig(t, `
recorder:
  debounce_ms: 150
  store:
    type: sqlite
    path: /tmp/pomgen.db
watcher:
  dir: /tmp/drop
writer:
  type: stdout
codegen:
  format: chromedp
  package: e2e
`)
	c, err := NewConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 150, c.Recorder.DebounceMS)
	assert.Equal(t, store.SQLITE_STORE_TYPE, c.Recorder.Store.Type)
	assert.Equal(t, "/tmp/pomgen.db", c.Recorder.Store.Path)
	assert.Equal(t, "/tmp/drop", c.Watcher.Dir)
	assert.Equal(t, output.STDOUT_WRITER_TYPE, c.Writer.Type)
	assert.Equal(t, codegen.CHROMEDP_FORMAT_TYPE, c.Codegen.Format)
	assert.Equal(t, "e2e", c.Codegen.Package)

	// defaults fill what the file leaves out
	assert.Equal(t, "recordedActions", c.Recorder.ArtifactPrefix)
	assert.Equal(t, 500, c.Watcher.SettleMS)
	assert.Equal(t, naming.ENRICHER_TYPE_NONE, c.Enricher.Type)
}

func TestNewConfigMissingFile(t *testing.T) {
	t.Setenv("POMGEN_WRITER_TYPE", "stdout")
	c, err := NewConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, output.STDOUT_WRITER_TYPE, c.Writer.Type)
	assert.Equal(t, "output", c.Writer.FileDir)
	assert.Equal(t, 300, c.Recorder.DebounceMS)
	assert.Equal(t, store.FILE_STORE_TYPE, c.Recorder.Store.Type)
	assert.Equal(t, codegen.CYPRESS_FORMAT_TYPE, c.Codegen.Format)
}

func TestNewConfigInvalidFile(t *testing.T) {
	path := writeConfig(t, "recorder: [unclosed")
	_, err := NewConfig(path)
	assert.Error(t, err)
}

func TestWriteMasksSecrets(t *testing.T) {
	c, err := NewConfig(writeConfig(t, "enricher:\n  type: llm\n  api_key: sk-secret\n"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, c.Write(&buf))
	assert.NotContains(t, buf.String(), "sk-secret")
	assert.Contains(t, buf.String(), "********")
	assert.Equal(t, "sk-secret", c.Enricher.APIKey, "the config itself is not modified")
}
