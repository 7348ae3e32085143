package orderbook

import (
	"iter"
	"slices"
	"sort"

	"github.com/shopspring/decimal"
)

// bookSide keeps the price levels of one side sorted best first:
// descending for bids, ascending for asks.
type bookSide struct {
	side   Side
	levels []*priceLevel
}

func newBookSide(side Side) *bookSide {
	return &bookSide{side: side}
}

// better reports whether price a has priority over price b on this side.
func (s *bookSide) better(a, b decimal.Decimal) bool {
	if s.side == BUY {
		return a.GreaterThan(b)
	}
	return a.LessThan(b)
}

// crossedBy reports whether an incoming order limited at limit can trade
// against a level of this side priced at levelPrice.
func (s *bookSide) crossedBy(limit, levelPrice decimal.Decimal) bool {
	if s.side == SELL {
		return limit.GreaterThanOrEqual(levelPrice)
	}
	return limit.LessThanOrEqual(levelPrice)
}

func (s *bookSide) search(price decimal.Decimal) int {
	return sort.Search(len(s.levels), func(i int) bool {
		return !s.better(s.levels[i].price, price)
	})
}

// upsert returns the level at price, creating it in priority position.
func (s *bookSide) upsert(price decimal.Decimal) *priceLevel {
	i := s.search(price)
	if i < len(s.levels) && s.levels[i].price.Equal(price) {
		return s.levels[i]
	}
	lvl := newPriceLevel(price)
	s.levels = slices.Insert(s.levels, i, lvl)
	return lvl
}

func (s *bookSide) find(price decimal.Decimal) *priceLevel {
	i := s.search(price)
	if i < len(s.levels) && s.levels[i].price.Equal(price) {
		return s.levels[i]
	}
	return nil
}

// all yields levels best to worst. Levels are never unlinked while
// iterating; emptied ones stay in place until purge.
func (s *bookSide) all() iter.Seq[*priceLevel] {
	return func(yield func(*priceLevel) bool) {
		for _, lvl := range s.levels {
			if !yield(lvl) {
				return
			}
		}
	}
}

func (s *bookSide) purge() {
	kept := s.levels[:0]
	for _, lvl := range s.levels {
		lvl.purge(s.side)
		if !lvl.empty() {
			kept = append(kept, lvl)
		}
	}
	clear(s.levels[len(kept):])
	s.levels = kept
}

func (s *bookSide) depth() iter.Seq[DepthEntry] {
	return func(yield func(DepthEntry) bool) {
		for lvl := range s.all() {
			if lvl.empty() {
				continue
			}
			entry := DepthEntry{
				Price:              lvl.price,
				AggregatedQuantity: lvl.totalQty(),
				OrderCount:         lvl.orders.Len(),
				CurrencyPair:       lvl.orders.Front().CurrencyPair,
			}
			if !yield(entry) {
				return
			}
		}
	}
}
