// Package publisher exports executed trades to external sinks off the
// matching path.
package publisher

import (
	"context"
	"sync"
	"time"

	"github.com/joripage/limit-orderbook/pkg/logging"
	"github.com/joripage/limit-orderbook/pkg/orderbook"
	"go.uber.org/zap"
)

// Sink receives batches of trades in sequence order for one book.
type Sink interface {
	Name() string
	Publish(ctx context.Context, trades []orderbook.Trade) error
	Close() error
}

type DispatcherConfig struct {
	QueueSize      int
	PublishTimeout time.Duration
	// OnDrop is called for every batch dropped because the queue is full.
	OnDrop func()
}

// Dispatcher queues trade batches and publishes them to every sink from a
// single goroutine. Enqueue never blocks.
type Dispatcher struct {
	cfg   DispatcherConfig
	sinks []Sink
	log   *logging.Logger

	queue     chan []orderbook.Trade
	stopCh    chan struct{}
	done      chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
}

func NewDispatcher(cfg DispatcherConfig, log *logging.Logger, sinks ...Sink) *Dispatcher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1024
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = 5 * time.Second
	}
	if log == nil {
		log = logging.NewNop()
	}
	return &Dispatcher{
		cfg:    cfg,
		sinks:  sinks,
		log:    log.Named("publisher"),
		queue:  make(chan []orderbook.Trade, cfg.QueueSize),
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Enqueue is meant to be registered as a book trade callback.
func (d *Dispatcher) Enqueue(trades []orderbook.Trade) {
	if len(trades) == 0 {
		return
	}
	select {
	case d.queue <- trades:
	default:
		d.log.Warn(context.Background(), "publisher queue full, dropping trades",
			zap.Int("count", len(trades)),
			zap.Uint64("first_sequence_id", trades[0].SequenceID))
		if d.cfg.OnDrop != nil {
			d.cfg.OnDrop()
		}
	}
}

// Start launches the publishing goroutine. Calls after the first are no-ops.
func (d *Dispatcher) Start(ctx context.Context) {
	d.startOnce.Do(func() {
		go d.run(ctx)
	})
}

// Stop publishes what is already queued, then closes every sink. It also
// works when Start was never called.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		close(d.stopCh)
	})
	d.Start(context.Background())
	<-d.done
}

func (d *Dispatcher) run(ctx context.Context) {
	defer close(d.done)
	defer d.closeSinks()

	for {
		select {
		case batch := <-d.queue:
			d.publish(batch)
		case <-d.stopCh:
			d.drain()
			return
		case <-ctx.Done():
			d.drain()
			return
		}
	}
}

func (d *Dispatcher) drain() {
	for {
		select {
		case batch := <-d.queue:
			d.publish(batch)
		default:
			return
		}
	}
}

func (d *Dispatcher) publish(batch []orderbook.Trade) {
	for _, sink := range d.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), d.cfg.PublishTimeout)
		err := sink.Publish(ctx, batch)
		cancel()
		if err != nil {
			d.log.Error(context.Background(), "publish trades failed",
				zap.String("sink", sink.Name()),
				zap.Int("count", len(batch)),
				zap.Uint64("first_sequence_id", batch[0].SequenceID),
				zap.Error(err))
		}
	}
}

func (d *Dispatcher) closeSinks() {
	for _, sink := range d.sinks {
		if err := sink.Close(); err != nil {
			d.log.Warn(context.Background(), "close sink failed",
				zap.String("sink", sink.Name()), zap.Error(err))
		}
	}
}
