package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadSample(t *testing.T) {
	t.Setenv("ORDERBOOK_API_KEY", "k1")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load("config.yaml")
	require.NoError(t, err)

	assert.Equal(t, "limit-orderbook", cfg.ServiceName)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "k1", cfg.HTTP.APIKey)
	assert.Equal(t, []string{"BTCZAR", "ETHZAR"}, cfg.Matching.SupportedPairs)
	assert.Equal(t, 50, cfg.Matching.TradeHistorySize)
	require.NotNil(t, cfg.Redis)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, int64(100000), cfg.Redis.StreamMaxLen)
	require.NotNil(t, cfg.Kafka)
	assert.Equal(t, "orderbook.trades", cfg.Kafka.Topic)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "http:\n  api_key: abc\n"))
	require.NoError(t, err)

	assert.Equal(t, "limit-orderbook", cfg.ServiceName)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 10, cfg.HTTP.ReadTimeoutSeconds)
	assert.Equal(t, []string{"BTCZAR"}, cfg.Matching.SupportedPairs)
	assert.Equal(t, 50, cfg.Matching.TradeHistorySize)
	assert.Nil(t, cfg.Redis)
	assert.Nil(t, cfg.Kafka)
}

func TestLoadRequiresAPIKey(t *testing.T) {
	_, err := Load(writeConfig(t, "service_name: x\n"))
	assert.ErrorIs(t, err, errMissingAPIKey)
}

func TestLoadFromEnvPath(t *testing.T) {
	t.Setenv("CONFIG_FILE", writeConfig(t, "http:\n  api_key: from-env\n"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.HTTP.APIKey)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateNormalizesPairs(t *testing.T) {
	cfg := &AppConfig{
		HTTP:     HTTPConfig{APIKey: "k"},
		Matching: MatchingConfig{SupportedPairs: []string{" ethzar", "", "ETHZAR", "btczar"}},
	}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, []string{"ETHZAR", "BTCZAR"}, cfg.Matching.SupportedPairs)
}

func TestValidateBlankPairsUseDefault(t *testing.T) {
	cfg := &AppConfig{
		HTTP:     HTTPConfig{APIKey: "k"},
		Matching: MatchingConfig{SupportedPairs: []string{"", "  "}},
	}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, []string{"BTCZAR"}, cfg.Matching.SupportedPairs)
}

func TestLoadUnsetPairVariable(t *testing.T) {
	t.Setenv("PAIR", "")
	cfg, err := Load(writeConfig(t, "http:\n  api_key: k\nmatching:\n  supported_pairs: [\"${PAIR}\"]\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"BTCZAR"}, cfg.Matching.SupportedPairs)
}
