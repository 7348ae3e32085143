// Package kafkawrapper publishes messages to Kafka.
package kafkawrapper

import (
	"context"
	"errors"
	"time"

	kafka "github.com/segmentio/kafka-go"
)

type ProducerConfig struct {
	Brokers      []string
	Topic        string
	Balancer     kafka.Balancer
	BatchSize    int
	BatchBytes   int64
	BatchTimeout time.Duration
	RequiredAcks kafka.RequiredAcks
	Async        bool
}

// messageWriter is the part of *kafka.Writer the producer uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	w     messageWriter
	topic string
}

var errProducerNotInitialized = errors.New("producer not initialized")

func NewProducer(cfg ProducerConfig) *Producer {
	if cfg.Balancer == nil {
		cfg.Balancer = &kafka.Hash{}
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.BatchBytes == 0 {
		cfg.BatchBytes = 1 << 20
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = 50 * time.Millisecond
	}
	if cfg.RequiredAcks == 0 {
		cfg.RequiredAcks = kafka.RequireAll
	}
	wr := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               cfg.Balancer,
		BatchSize:              cfg.BatchSize,
		BatchBytes:             cfg.BatchBytes,
		BatchTimeout:           cfg.BatchTimeout,
		AllowAutoTopicCreation: true,
		RequiredAcks:           cfg.RequiredAcks,
		Async:                  cfg.Async,
	}
	return &Producer{w: wr, topic: cfg.Topic}
}

// Message is one record to publish. Topic may be empty when the producer
// was configured with a default topic.
type Message struct {
	Topic   string
	Key     []byte
	Value   []byte
	Headers map[string]string
}

func (p *Producer) Publish(ctx context.Context, msgs ...Message) error {
	if p == nil || p.w == nil {
		return errProducerNotInitialized
	}
	out := make([]kafka.Message, 0, len(msgs))
	now := time.Now()
	for _, m := range msgs {
		var kh []kafka.Header
		for k, v := range m.Headers {
			kh = append(kh, kafka.Header{Key: k, Value: []byte(v)})
		}
		km := kafka.Message{
			Key:     m.Key,
			Value:   m.Value,
			Headers: kh,
			Time:    now,
		}
		// kafka.Writer rejects a per-message topic when it has its own
		if p.topic == "" {
			km.Topic = m.Topic
		}
		out = append(out, km)
	}
	return p.w.WriteMessages(ctx, out...)
}

func (p *Producer) Close(ctx context.Context) error {
	if p == nil || p.w == nil {
		return nil
	}
	return p.w.Close()
}
