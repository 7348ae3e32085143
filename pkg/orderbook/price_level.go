package orderbook

import (
	"github.com/gammazero/deque"
	"github.com/shopspring/decimal"
)

// priceLevel holds the orders resting at one price, oldest first.
type priceLevel struct {
	price  decimal.Decimal
	orders *deque.Deque[*Order]
}

func newPriceLevel(price decimal.Decimal) *priceLevel {
	return &priceLevel{
		price:  price,
		orders: &deque.Deque[*Order]{},
	}
}

func (l *priceLevel) push(order *Order) {
	l.orders.PushBack(order)
}

func (l *priceLevel) empty() bool {
	return l.orders.Len() == 0
}

// purge drops filled orders and keeps the arrival order of the rest.
func (l *priceLevel) purge(side Side) {
	for i := 0; i < l.orders.Len(); {
		o := l.orders.At(i)
		if o.Side != side {
			panic("orderbook: " + string(o.Side) + " order resting on " + string(side) + " side")
		}
		if o.filled() {
			l.orders.Remove(i)
			continue
		}
		i++
	}
}

func (l *priceLevel) totalQty() decimal.Decimal {
	total := decimal.Zero
	for i := 0; i < l.orders.Len(); i++ {
		total = total.Add(l.orders.At(i).Quantity)
	}
	return total
}
