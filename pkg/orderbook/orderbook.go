package orderbook

import (
	"iter"
	"sync"
	"time"

	"github.com/google/uuid"
)

type orderBooker interface {
	submit(order *Order) ([]Trade, error)
	depth() Depth
	recentTrades() []Trade
	registerTradeCallback(fn func(trades []Trade))
}

type orderBookConfig struct {
	TradeHistorySize int
	Now              func() time.Time
	NewTradeID       func() string
}

// orderBook is the book of a single currency pair. mu serializes matching
// and queries so no reader ever sees a partially applied match.
type orderBook struct {
	symbol string

	bids *bookSide
	asks *bookSide

	trades  *tradeLog
	lastSeq uint64

	now        func() time.Time
	newTradeID func() string

	// callbacks run while mu is held and must not block.
	callbacks []func([]Trade)

	mu sync.Mutex
}

func newOrderBook(symbol string, cfg orderBookConfig) *orderBook {
	ob := &orderBook{
		symbol:     symbol,
		bids:       newBookSide(BUY),
		asks:       newBookSide(SELL),
		trades:     newTradeLog(cfg.TradeHistorySize),
		now:        cfg.Now,
		newTradeID: cfg.NewTradeID,
	}
	if ob.now == nil {
		ob.now = time.Now
	}
	if ob.newTradeID == nil {
		ob.newTradeID = func() string { return uuid.New().String() }
	}
	return ob
}

func (ob *orderBook) registerTradeCallback(fn func(trades []Trade)) {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	ob.callbacks = append(ob.callbacks, fn)
}

func (ob *orderBook) sideOf(side Side) *bookSide {
	if side == BUY {
		return ob.bids
	}
	return ob.asks
}

// oppositeSide returns the live levels an order of the given side matches
// against, best first.
func (ob *orderBook) oppositeSide(side Side) *bookSide {
	return ob.sideOf(side.opposite())
}

// upsertResting appends order to the end of its price level.
func (ob *orderBook) upsertResting(order *Order) error {
	if !order.Price.IsPositive() {
		return ErrInvalidPrice
	}
	if !order.Quantity.IsPositive() {
		return ErrInvalidQuantity
	}
	if !order.Side.valid() {
		return ErrInvalidSide
	}
	ob.sideOf(order.Side).upsert(order.Price).push(order)
	return nil
}

// purgeEmpty removes filled orders and then every level left empty.
func (ob *orderBook) purgeEmpty() {
	ob.bids.purge()
	ob.asks.purge()
}

// depthView returns lazy best-first sequences of both sides. The caller
// must hold mu while consuming them.
func (ob *orderBook) depthView() (asks, bids iter.Seq[DepthEntry]) {
	return ob.asks.depth(), ob.bids.depth()
}

var _ orderBooker = (*orderBook)(nil)
