package orderbook

import "github.com/shopspring/decimal"

// submit matches order against the opposite side, rests any remainder and
// returns the trades in generation order. order.Quantity holds the unfilled
// remainder afterwards.
func (ob *orderBook) submit(order *Order) ([]Trade, error) {
	if err := ob.validate(order); err != nil {
		return nil, err
	}

	ob.mu.Lock()
	defer ob.mu.Unlock()

	trades := ob.matchOrder(order, ob.oppositeSide(order.Side))

	if order.Quantity.IsPositive() {
		if err := ob.upsertResting(order); err != nil {
			panic("orderbook: resting a validated order: " + err.Error())
		}
	}

	for _, t := range trades {
		ob.trades.record(t)
	}

	ob.purgeEmpty()

	if len(trades) > 0 {
		for _, cb := range ob.callbacks {
			cb(trades)
		}
	}

	return trades, nil
}

func (ob *orderBook) validate(order *Order) error {
	if order == nil || !order.Side.valid() {
		return ErrInvalidSide
	}
	if !order.Quantity.IsPositive() {
		return ErrInvalidQuantity
	}
	if !order.Price.IsPositive() {
		return ErrInvalidPrice
	}
	if order.CurrencyPair != ob.symbol {
		return errUnsupportedPair(order.CurrencyPair)
	}
	return nil
}

func (ob *orderBook) matchOrder(order *Order, counter *bookSide) []Trade {
	trades := []Trade{}

	for lvl := range counter.all() {
		if !order.Quantity.IsPositive() || !counter.crossedBy(order.Price, lvl.price) {
			break
		}

		for lvl.orders.Len() > 0 && order.Quantity.IsPositive() {
			best := lvl.orders.Front()

			matchQty := decimal.Min(order.Quantity, best.Quantity)
			order.Quantity = order.Quantity.Sub(matchQty)
			best.Quantity = best.Quantity.Sub(matchQty)

			trades = append(trades, ob.newTrade(order, lvl.price, matchQty))

			if best.filled() {
				lvl.orders.PopFront()
			}
		}
	}

	return trades
}

func (ob *orderBook) newTrade(taker *Order, price, qty decimal.Decimal) Trade {
	ob.lastSeq++
	return Trade{
		Price:        price,
		Quantity:     qty,
		TakerSide:    taker.Side,
		CurrencyPair: taker.CurrencyPair,
		TradedAt:     ob.now(),
		SequenceID:   ob.lastSeq,
		ID:           ob.newTradeID(),
		QuoteVolume:  price.Mul(qty),
	}
}
