package orderbook

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade records one match between a taker and a resting maker order.
// Price is always the maker's price. Trades are never mutated once created.
type Trade struct {
	Price        decimal.Decimal `json:"price"`
	Quantity     decimal.Decimal `json:"quantity"`
	TakerSide    Side            `json:"takerSide"`
	CurrencyPair string          `json:"currencyPair"`
	TradedAt     time.Time       `json:"tradedAt"`
	SequenceID   uint64          `json:"sequenceId"`
	ID           string          `json:"id"`
	QuoteVolume  decimal.Decimal `json:"quoteVolume"`
}

type DepthEntry struct {
	Price              decimal.Decimal `json:"price"`
	AggregatedQuantity decimal.Decimal `json:"aggregatedQuantity"`
	OrderCount         int             `json:"orderCount"`
	CurrencyPair       string          `json:"currencyPair"`
}

// Depth is the aggregated view of a book: asks ascending, bids descending.
type Depth struct {
	Asks []DepthEntry `json:"asks"`
	Bids []DepthEntry `json:"bids"`
}
