package orderbook

import "slices"

// depth computes the aggregated view from live state on every call.
func (ob *orderBook) depth() Depth {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	asks, bids := ob.depthView()
	d := Depth{
		Asks: slices.Collect(asks),
		Bids: slices.Collect(bids),
	}
	if d.Asks == nil {
		d.Asks = []DepthEntry{}
	}
	if d.Bids == nil {
		d.Bids = []DepthEntry{}
	}
	return d
}

func (ob *orderBook) recentTrades() []Trade {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	return ob.trades.recent()
}
