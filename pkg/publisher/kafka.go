package publisher

import (
	"context"
	"encoding/json"
	"strconv"

	kafkawrapper "github.com/joripage/limit-orderbook/pkg/kafka_wrapper"
	"github.com/joripage/limit-orderbook/pkg/orderbook"
)

type kafkaProducer interface {
	Publish(ctx context.Context, msgs ...kafkawrapper.Message) error
	Close(ctx context.Context) error
}

// KafkaSink writes one JSON message per trade keyed by currency pair, so a
// pair's trades stay ordered within one partition.
type KafkaSink struct {
	producer kafkaProducer
}

func NewKafkaSink(producer *kafkawrapper.Producer) *KafkaSink {
	return &KafkaSink{producer: producer}
}

func (s *KafkaSink) Name() string { return "kafka" }

func (s *KafkaSink) Publish(ctx context.Context, trades []orderbook.Trade) error {
	msgs := make([]kafkawrapper.Message, 0, len(trades))
	for _, t := range trades {
		value, err := json.Marshal(t)
		if err != nil {
			return err
		}
		msgs = append(msgs, kafkawrapper.Message{
			Key:   []byte(t.CurrencyPair),
			Value: value,
			Headers: map[string]string{
				"sequence_id": strconv.FormatUint(t.SequenceID, 10),
				"trade_id":    t.ID,
			},
		})
	}
	return s.producer.Publish(ctx, msgs...)
}

func (s *KafkaSink) Close() error {
	return s.producer.Close(context.Background())
}
