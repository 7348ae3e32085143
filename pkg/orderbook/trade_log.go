package orderbook

import "github.com/gammazero/deque"

const DefaultTradeHistorySize = 50

// tradeLog keeps the most recent trades in generation order.
type tradeLog struct {
	capacity int
	trades   deque.Deque[Trade]
}

func newTradeLog(capacity int) *tradeLog {
	if capacity <= 0 {
		capacity = DefaultTradeHistorySize
	}
	return &tradeLog{capacity: capacity}
}

func (l *tradeLog) record(trade Trade) {
	l.trades.PushBack(trade)
	for l.trades.Len() > l.capacity {
		l.trades.PopFront()
	}
}

// recent returns a copy, oldest first and most recent last.
func (l *tradeLog) recent() []Trade {
	out := make([]Trade, l.trades.Len())
	for i := range out {
		out[i] = l.trades.At(i)
	}
	return out
}

func (l *tradeLog) size() int {
	return l.trades.Len()
}
