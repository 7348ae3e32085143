package config

import (
	"errors"
	"os"
	"slices"

	redis_wrapper "github.com/joripage/limit-orderbook/pkg/infra/redis"
	"github.com/joripage/limit-orderbook/pkg/logging"
	"github.com/joripage/limit-orderbook/pkg/orderbook"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var errMissingAPIKey = errors.New("http.api_key must be set")

type AppConfig struct {
	ServiceName string                     `yaml:"service_name"`
	Logging     logging.Config             `yaml:"logging"`
	HTTP        HTTPConfig                 `yaml:"http"`
	Matching    MatchingConfig             `yaml:"matching"`
	Redis       *redis_wrapper.RedisConfig `yaml:"redis"`
	Kafka       *KafkaConfig               `yaml:"kafka"`
}

type HTTPConfig struct {
	Addr                string  `yaml:"addr"`
	APIKey              string  `yaml:"api_key"`
	ReadTimeoutSeconds  int     `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int     `yaml:"write_timeout_seconds"`
	RateLimitRPS        float64 `yaml:"rate_limit_rps"`
	RateLimitBurst      int     `yaml:"rate_limit_burst"`
}

type MatchingConfig struct {
	SupportedPairs   []string `yaml:"supported_pairs"`
	TradeHistorySize int      `yaml:"trade_history_size"`
}

type KafkaConfig struct {
	Enabled        bool     `yaml:"enabled"`
	Brokers        []string `yaml:"brokers"`
	Topic          string   `yaml:"topic"`
	BatchTimeoutMs int      `yaml:"batch_timeout_ms"`
}

// Load load config from file and environment variables.
func Load(filePath string) (*AppConfig, error) {
	if len(filePath) == 0 {
		filePath = os.Getenv("CONFIG_FILE")
	}

	fields := []interface{}{
		"func",
		"config.readFromFile",
		"filePath",
		filePath,
	}

	sugar := zap.S().With(fields...)

	sugar.Debug("Load config...")
	zap.S().Debugf("CONFIG_FILE=%v", filePath)

	configBytes, err := os.ReadFile(filePath)
	if err != nil {
		sugar.Error("Failed to load config file")
		return nil, err
	}
	configBytes = []byte(os.ExpandEnv(string(configBytes)))

	cfg := &AppConfig{}

	err = yaml.Unmarshal(configBytes, cfg)
	if err != nil {
		sugar.Error("Failed to parse config file")
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		sugar.Errorf("Invalid config: %v", err)
		return nil, err
	}

	zap.S().Debugf("config loaded: service=%s addr=%s pairs=%v", cfg.ServiceName, cfg.HTTP.Addr, cfg.Matching.SupportedPairs)

	return cfg, nil
}

// Validate fills defaults and rejects configs the server cannot run with.
func (c *AppConfig) Validate() error {
	if c.ServiceName == "" {
		c.ServiceName = "limit-orderbook"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.HTTP.ReadTimeoutSeconds <= 0 {
		c.HTTP.ReadTimeoutSeconds = 10
	}
	if c.HTTP.WriteTimeoutSeconds <= 0 {
		c.HTTP.WriteTimeoutSeconds = 10
	}
	if c.HTTP.APIKey == "" {
		return errMissingAPIKey
	}
	c.Matching.SupportedPairs = normalizePairs(c.Matching.SupportedPairs)
	if len(c.Matching.SupportedPairs) == 0 {
		c.Matching.SupportedPairs = []string{orderbook.DefaultCurrencyPair}
	}
	if c.Matching.TradeHistorySize <= 0 {
		c.Matching.TradeHistorySize = orderbook.DefaultTradeHistorySize
	}
	return nil
}

// normalizePairs upper-cases pairs and drops blanks and duplicates, so an
// unset ${VAR} entry does not count as a configured pair.
func normalizePairs(pairs []string) []string {
	out := make([]string, 0, len(pairs))
	for _, p := range pairs {
		p = orderbook.NormalizePair(p)
		if p == "" || slices.Contains(out, p) {
			continue
		}
		out = append(out, p)
	}
	return out
}
