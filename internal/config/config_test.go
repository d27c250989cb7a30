package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riftlabs/riftqa/internal/logging"
)

func TestLoadPipelineDefaults(t *testing.T) {
	cfg, err := LoadPipeline("")
	require.NoError(t, err)

	assert.Equal(t, 8003, cfg.Server.Port)
	assert.Equal(t, 1000, cfg.Chunking.Size)
	assert.Equal(t, 200, cfg.Chunking.Overlap)
	assert.Equal(t, 100, cfg.Embedding.BatchSize)
	assert.Equal(t, "pipeline_jobs", cfg.Queue.Name)
	assert.Equal(t, 5*time.Second, cfg.Queue.DequeueTimeout.Duration())
	assert.Equal(t, "chromem", cfg.Store.Provider)
}

func TestLoadRAGDefaults(t *testing.T) {
	cfg, err := LoadRAG("")
	require.NoError(t, err)

	assert.Equal(t, 8002, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Query.RetrievalK)
	assert.Equal(t, 3, cfg.Query.MinQuestionLength)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, 60*time.Second, cfg.LLM.RequestTimeout.Duration())
}

func TestLoadedLoggingSectionBuildsLogger(t *testing.T) {
	cfg, err := LoadPipeline("")
	require.NoError(t, err)

	logger, err := logging.New(cfg.Logging)
	require.NoError(t, err)
	require.NotNil(t, logger)
}

func TestLoadPipelineFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  port: 9999
chunking:
  size: 500
  overlap: 50
queue:
  name: custom_jobs
`)
	require.NoError(t, os.WriteFile(path, content, 0600))

	cfg, err := LoadPipeline(path)
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, 500, cfg.Chunking.Size)
	assert.Equal(t, 50, cfg.Chunking.Overlap)
	assert.Equal(t, "custom_jobs", cfg.Queue.Name)
}

func TestEnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chunking:\n  size: 500\n"), 0600))

	t.Setenv("CHUNKING_SIZE", "750")

	cfg, err := LoadPipeline(path)
	require.NoError(t, err)
	assert.Equal(t, 750, cfg.Chunking.Size)
}

func TestValidateRejectsOversizedOverlap(t *testing.T) {
	t.Setenv("CHUNKING_SIZE", "100")
	t.Setenv("CHUNKING_OVERLAP", "100")

	_, err := LoadPipeline("")
	assert.Error(t, err)
}

func TestSecretRedaction(t *testing.T) {
	s := Secret("super-secret")
	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "super-secret", s.Value())
	assert.True(t, s.IsSet())

	b, err := s.MarshalJSON()
	require.NoError(t, err)
	assert.NotContains(t, string(b), "super-secret")

	var empty Secret
	assert.Equal(t, "", empty.String())
	assert.False(t, empty.IsSet())
}

func TestDurationParsing(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("90s")))
	assert.Equal(t, 90*time.Second, d.Duration())

	assert.Error(t, d.UnmarshalText([]byte("-5s")))
	assert.Error(t, d.UnmarshalText([]byte("soon")))
}
