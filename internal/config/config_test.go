package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	yaml := `
general:
  instance_id: "test-node"
  environment: "development"
  log_level: "debug"

server:
  addr: ":9090"
  read_timeout_sec: 5

provider:
  endpoint: "https://indexer.example.com"
  api_key: "test-key"
  timeout_sec: 5
  rate_limit_rps: 2

analysis:
  history_limit: 50
  detail_concurrency: 2
  max_nodes: 10

narrative:
  enabled: true
  model: "gpt-4o"
`
	tmpFile, err := os.CreateTemp("", "provenance-config-*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpFile.Name())

	_, err = tmpFile.WriteString(yaml)
	require.NoError(t, err)
	tmpFile.Close()

	cfg, err := Load(tmpFile.Name())
	require.NoError(t, err)

	assert.Equal(t, "test-node", cfg.General.InstanceID)
	assert.Equal(t, "debug", cfg.General.LogLevel)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "https://indexer.example.com", cfg.Provider.Endpoint)
	assert.Equal(t, 50, cfg.Analysis.HistoryLimit)
	assert.True(t, cfg.Narrative.Enabled)
}

func TestLoadConfig_Defaults(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "provenance-config-*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpFile.Name())
	tmpFile.Close()

	cfg, err := Load(tmpFile.Name())
	require.NoError(t, err)

	assert.Equal(t, "provenance-1", cfg.General.InstanceID)
	assert.Equal(t, "info", cfg.General.LogLevel)
	assert.Equal(t, "json", cfg.General.LogFormat)
}

func TestLoadConfig_EnvExpansion(t *testing.T) {
	t.Setenv("PROVENANCE_TEST_API_KEY", "secret-from-env")

	yaml := `
provider:
  api_key: "${PROVENANCE_TEST_API_KEY}"
`
	tmpFile, err := os.CreateTemp("", "provenance-config-*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpFile.Name())

	_, err = tmpFile.WriteString(yaml)
	require.NoError(t, err)
	tmpFile.Close()

	cfg, err := Load(tmpFile.Name())
	require.NoError(t, err)
	assert.Equal(t, "secret-from-env", cfg.Provider.APIKey)
}

func TestConfigConversions(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	client := cfg.Provider.ClientConfig()
	assert.Equal(t, 10*time.Second, client.Timeout)
	assert.Equal(t, 2, client.MaxRetries)

	cfg.Provider.TimeoutSec = 3
	assert.Equal(t, 3*time.Second, cfg.Provider.ClientConfig().Timeout)

	agg := cfg.Analysis.AggregatorConfig()
	assert.Equal(t, 30, agg.MaxNodes)
	assert.Equal(t, 50, agg.MaxEdges)

	cfg.Analysis.MaxNodes = 12
	assert.Equal(t, 12, cfg.Analysis.AggregatorConfig().MaxNodes)

	an := cfg.Analysis.AnalyzerConfig()
	assert.Equal(t, 4, an.DetailConcurrency)
	assert.Equal(t, 10.0, an.LargeTransferSOL)
}
