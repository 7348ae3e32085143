package orderbook

import (
	"errors"
	"fmt"
)

// ErrInvalidOrder is the only error kind returned to callers. Every detailed
// cause below wraps it, so errors.Is(err, ErrInvalidOrder) holds for all of them.
var ErrInvalidOrder = errors.New("invalid order")

var (
	ErrInvalidSide     = fmt.Errorf("%w: side must be 'buy' or 'sell'", ErrInvalidOrder)
	ErrInvalidQuantity = fmt.Errorf("%w: quantity must be greater than zero", ErrInvalidOrder)
	ErrInvalidPrice    = fmt.Errorf("%w: price must be greater than zero", ErrInvalidOrder)
	ErrUnsupportedPair = fmt.Errorf("%w: unsupported currency pair", ErrInvalidOrder)
)

func errUnsupportedPair(pair string) error {
	return fmt.Errorf("%w: %q", ErrUnsupportedPair, pair)
}
