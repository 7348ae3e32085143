package orderbook

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

type OrderBookManagerConfig struct {
	// SupportedPairs is the allow-list of instruments. Defaults to BTCZAR.
	SupportedPairs   []string
	TradeHistorySize int

	// Now and NewTradeID override the trade clock and id generator.
	Now        func() time.Time
	NewTradeID func() string
}

const DefaultCurrencyPair = "BTCZAR"

// SubmitOrderRequest is a limit order as received from a transport.
type SubmitOrderRequest struct {
	Price        decimal.Decimal
	Quantity     decimal.Decimal
	Side         string
	CurrencyPair string
}

// OrderBookManager owns one independent book per supported pair. Books
// share no state, so operations on different pairs never block each other.
type OrderBookManager struct {
	books     sync.Map
	supported map[string]struct{}
	pairs     []string

	cbMu      sync.Mutex
	callbacks []func([]Trade)

	cfg *OrderBookManagerConfig
}

func NewOrderBookManager(cfg *OrderBookManagerConfig) *OrderBookManager {
	if cfg == nil {
		cfg = &OrderBookManagerConfig{}
	}

	s := &OrderBookManager{
		supported: make(map[string]struct{}),
		cfg:       cfg,
	}

	pairs := cfg.SupportedPairs
	if len(pairs) == 0 {
		pairs = []string{DefaultCurrencyPair}
	}
	for _, p := range pairs {
		p = NormalizePair(p)
		if p == "" {
			continue
		}
		if _, ok := s.supported[p]; ok {
			continue
		}
		s.supported[p] = struct{}{}
		s.pairs = append(s.pairs, p)
	}
	if len(s.pairs) == 0 {
		s.supported[DefaultCurrencyPair] = struct{}{}
		s.pairs = []string{DefaultCurrencyPair}
	}

	return s
}

// SubmitOrder validates req, matches it and returns the trades it produced.
// All validation failures wrap ErrInvalidOrder and leave the book untouched.
func (s *OrderBookManager) SubmitOrder(req SubmitOrderRequest) ([]Trade, error) {
	side, err := ParseSide(req.Side)
	if err != nil {
		return nil, err
	}
	if !req.Quantity.IsPositive() {
		return nil, ErrInvalidQuantity
	}
	if !req.Price.IsPositive() {
		return nil, ErrInvalidPrice
	}

	book, err := s.getBook(req.CurrencyPair)
	if err != nil {
		return nil, err
	}

	return book.submit(&Order{
		Price:        req.Price,
		Quantity:     req.Quantity,
		Side:         side,
		CurrencyPair: book.symbol,
	})
}

func (s *OrderBookManager) Depth(pair string) (Depth, error) {
	book, err := s.getBook(pair)
	if err != nil {
		return Depth{}, err
	}
	return book.depth(), nil
}

// RecentTrades returns up to the trade history size of the latest trades,
// oldest first.
func (s *OrderBookManager) RecentTrades(pair string) ([]Trade, error) {
	book, err := s.getBook(pair)
	if err != nil {
		return nil, err
	}
	return book.recentTrades(), nil
}

func (s *OrderBookManager) SupportedPairs() []string {
	out := make([]string, len(s.pairs))
	copy(out, s.pairs)
	return out
}

// DefaultPair is the first configured pair.
func (s *OrderBookManager) DefaultPair() string {
	return s.pairs[0]
}

// RegisterTradeCallback adds fn to every current and future book. fn is
// called with the trades of each submission while the book is locked, so
// it must return quickly and must not call back into the manager.
func (s *OrderBookManager) RegisterTradeCallback(fn func([]Trade)) {
	s.cbMu.Lock()
	defer s.cbMu.Unlock()

	s.callbacks = append(s.callbacks, fn)

	// apply callback to all books
	s.books.Range(func(_, v any) bool {
		book := v.(*orderBook)
		book.registerTradeCallback(fn)
		return true
	})
}

func (s *OrderBookManager) getBook(pair string) (*orderBook, error) {
	symbol := NormalizePair(pair)
	if _, ok := s.supported[symbol]; !ok {
		return nil, errUnsupportedPair(pair)
	}
	return s.getOrCreateBook(symbol), nil
}

func (s *OrderBookManager) getOrCreateBook(symbol string) *orderBook {
	if val, ok := s.books.Load(symbol); ok {
		return val.(*orderBook)
	}

	s.cbMu.Lock()
	defer s.cbMu.Unlock()

	if val, ok := s.books.Load(symbol); ok {
		return val.(*orderBook)
	}

	book := newOrderBook(symbol, orderBookConfig{
		TradeHistorySize: s.cfg.TradeHistorySize,
		Now:              s.cfg.Now,
		NewTradeID:       s.cfg.NewTradeID,
	})
	book.callbacks = append(book.callbacks, s.callbacks...)

	s.books.Store(symbol, book)
	return book
}
