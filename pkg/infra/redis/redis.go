package redis_wrapper

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type RedisConfig struct {
	Enabled             bool   `yaml:"enabled"`
	ConnectionURL       string `yaml:"connection_url"`
	PoolSize            int    `yaml:"pool_size"`
	DialTimeoutSeconds  int    `yaml:"dial_timeout_seconds"`
	ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `yaml:"write_timeout_seconds"`
	IdleTimeoutSeconds  int    `yaml:"idle_timeout_seconds"`
	// trade stream settings
	StreamPrefix      string `yaml:"stream_prefix"`
	StreamMaxLen      int64  `yaml:"stream_max_len"`
	MaxConnectSeconds int    `yaml:"max_connect_seconds"`
}

// InitRedis create a redis from config
func InitRedis(redisCfg *RedisConfig) (*redis.Client, error) {
	var redisClient *redis.Client

	opts, err := redis.ParseURL(redisCfg.ConnectionURL)
	if err != nil {
		zap.S().Debugf("parse redis url fail: %+v", err)
		return nil, err
	}

	if redisCfg.PoolSize > 0 {
		opts.PoolSize = redisCfg.PoolSize
	}
	if redisCfg.DialTimeoutSeconds > 0 {
		opts.DialTimeout = time.Duration(redisCfg.DialTimeoutSeconds) * time.Second
	}
	if redisCfg.ReadTimeoutSeconds > 0 {
		opts.ReadTimeout = time.Duration(redisCfg.ReadTimeoutSeconds) * time.Second
	}
	if redisCfg.WriteTimeoutSeconds > 0 {
		opts.WriteTimeout = time.Duration(redisCfg.WriteTimeoutSeconds) * time.Second
	}
	if redisCfg.IdleTimeoutSeconds > 0 {
		opts.ConnMaxIdleTime = time.Duration(redisCfg.IdleTimeoutSeconds) * time.Second
	}

	redisClient = redis.NewClient(opts)

	cmd := redisClient.Ping(context.Background())
	if cmd.Err() != nil {
		_ = redisClient.Close()
		return nil, cmd.Err()
	}

	zap.S().Debug("connect to redis successful")
	return redisClient, nil
}

// InitRedisWithBackoff retries InitRedis with exponential backoff for at
// most MaxConnectSeconds (default 30).
func InitRedisWithBackoff(cfg *RedisConfig) (*redis.Client, error) {
	var client *redis.Client

	boff := backoff.NewExponentialBackOff()
	boff.MaxElapsedTime = 30 * time.Second
	if cfg.MaxConnectSeconds > 0 {
		boff.MaxElapsedTime = time.Duration(cfg.MaxConnectSeconds) * time.Second
	}

	err := backoff.Retry(func() error {
		var err error
		client, err = InitRedis(cfg)
		if err != nil {
			zap.S().Warnf("connect redis error: %v", err)
		}
		return err
	}, boff)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	return client, nil
}
