package publisher

import (
	"context"
	"time"

	"github.com/joripage/limit-orderbook/pkg/orderbook"
	"github.com/redis/go-redis/v9"
)

const defaultStreamPrefix = "trades"

type redisPipeliner interface {
	Pipelined(ctx context.Context, fn func(redis.Pipeliner) error) ([]redis.Cmder, error)
	Close() error
}

// RedisSink appends trades to a capped stream per pair, "<prefix>:<pair>".
type RedisSink struct {
	client redisPipeliner
	prefix string
	maxLen int64
}

func NewRedisSink(client *redis.Client, prefix string, maxLen int64) *RedisSink {
	if prefix == "" {
		prefix = defaultStreamPrefix
	}
	return &RedisSink{client: client, prefix: prefix, maxLen: maxLen}
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) Publish(ctx context.Context, trades []orderbook.Trade) error {
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, t := range trades {
			pipe.XAdd(ctx, s.streamArgs(t))
		}
		return nil
	})
	return err
}

func (s *RedisSink) Close() error {
	return s.client.Close()
}

func (s *RedisSink) streamArgs(t orderbook.Trade) *redis.XAddArgs {
	args := &redis.XAddArgs{
		Stream: s.prefix + ":" + t.CurrencyPair,
		Values: map[string]interface{}{
			"id":           t.ID,
			"sequence_id":  t.SequenceID,
			"price":        t.Price.String(),
			"quantity":     t.Quantity.String(),
			"quote_volume": t.QuoteVolume.String(),
			"taker_side":   string(t.TakerSide),
			"pair":         t.CurrencyPair,
			"traded_at":    t.TradedAt.UTC().Format(time.RFC3339Nano),
		},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}
	return args
}
