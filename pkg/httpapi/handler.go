package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joripage/limit-orderbook/pkg/logging"
	"github.com/joripage/limit-orderbook/pkg/orderbook"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type limitOrderRequest struct {
	Price        *decimal.Decimal `json:"price"`
	Quantity     *decimal.Decimal `json:"quantity"`
	Side         string           `json:"side"`
	CurrencyPair string           `json:"currencyPair"`
}

// fieldErrors returns one message per missing or non-positive field.
func (r *limitOrderRequest) fieldErrors() map[string]string {
	errs := make(map[string]string)
	if r.Price == nil || !r.Price.IsPositive() {
		errs["price"] = "Price must be positive"
	}
	if r.Quantity == nil || !r.Quantity.IsPositive() {
		errs["quantity"] = "Quantity must be positive"
	}
	if strings.TrimSpace(r.Side) == "" {
		errs["side"] = "Side is required"
	}
	if strings.TrimSpace(r.CurrencyPair) == "" {
		errs["currencyPair"] = "Currency pair is required"
	}
	return errs
}

type submitResponse struct {
	Message string            `json:"message"`
	Trades  []orderbook.Trade `json:"trades"`
}

func (s *Server) pairParam(c *gin.Context) string {
	if pair := c.Query("currencyPair"); pair != "" {
		return pair
	}
	return s.manager.DefaultPair()
}

func (s *Server) getOrderBook(c *gin.Context) {
	depth, err := s.manager.Depth(s.pairParam(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, depth)
}

func (s *Server) getRecentTrades(c *gin.Context) {
	trades, err := s.manager.RecentTrades(s.pairParam(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, trades)
}

func (s *Server) submitLimitOrder(c *gin.Context) {
	var req limitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.metrics.ObserveRejected(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if errs := req.fieldErrors(); len(errs) > 0 {
		s.metrics.ObserveRejected(nil)
		c.JSON(http.StatusBadRequest, errs)
		return
	}

	start := time.Now()
	trades, err := s.manager.SubmitOrder(orderbook.SubmitOrderRequest{
		Price:        *req.Price,
		Quantity:     *req.Quantity,
		Side:         req.Side,
		CurrencyPair: req.CurrencyPair,
	})
	if err != nil {
		s.metrics.ObserveRejected(err)
		s.writeError(c, err)
		return
	}
	side, _ := orderbook.ParseSide(req.Side)
	s.metrics.ObserveSubmitted(orderbook.NormalizePair(req.CurrencyPair), side, time.Since(start))

	c.JSON(http.StatusCreated, submitResponse{
		Message: "Order placed successfully",
		Trades:  trades,
	})
}

func (s *Server) writeError(c *gin.Context, err error) {
	if errors.Is(err, orderbook.ErrInvalidOrder) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	logging.GetLogger(c.Request.Context(), s.log).Error(c.Request.Context(), "request failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
