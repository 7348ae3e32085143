package orderbook

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Side string

const (
	BUY  Side = "buy"
	SELL Side = "sell"
)

// ParseSide accepts "buy" or "sell" in any letter case.
func ParseSide(s string) (Side, error) {
	switch Side(strings.ToLower(strings.TrimSpace(s))) {
	case BUY:
		return BUY, nil
	case SELL:
		return SELL, nil
	}
	return "", ErrInvalidSide
}

func (s Side) valid() bool {
	return s == BUY || s == SELL
}

func (s Side) opposite() Side {
	if s == BUY {
		return SELL
	}
	return BUY
}

// Order is a resting or incoming limit order. Quantity is the only field
// mutated after creation and holds the unfilled remainder.
type Order struct {
	Price        decimal.Decimal
	Quantity     decimal.Decimal
	Side         Side
	CurrencyPair string
}

func (o *Order) filled() bool {
	return !o.Quantity.IsPositive()
}

// NormalizePair upper-cases and trims an instrument identifier.
func NormalizePair(pair string) string {
	return strings.ToUpper(strings.TrimSpace(pair))
}
