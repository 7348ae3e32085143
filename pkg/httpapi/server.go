// Package httpapi exposes the order book manager over HTTP.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joripage/limit-orderbook/config"
	"github.com/joripage/limit-orderbook/pkg/logging"
	"github.com/joripage/limit-orderbook/pkg/metrics"
	"github.com/joripage/limit-orderbook/pkg/orderbook"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

type Server struct {
	cfg     config.HTTPConfig
	manager *orderbook.OrderBookManager
	metrics *metrics.Metrics
	log     *logging.Logger

	router *gin.Engine
	srv    *http.Server
}

func NewServer(cfg config.HTTPConfig, manager *orderbook.OrderBookManager, m *metrics.Metrics, log *logging.Logger) *Server {
	if log == nil {
		log = logging.NewNop()
	}
	if m == nil {
		m = metrics.New()
	}

	s := &Server{
		cfg:     cfg,
		manager: manager,
		metrics: m,
		log:     log.Named("http"),
	}
	s.router = s.routes()
	s.srv = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
	}
	return s
}

func (s *Server) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), accessLog(s.log))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	api := r.Group("/")
	if s.cfg.RateLimitRPS > 0 {
		burst := s.cfg.RateLimitBurst
		if burst <= 0 {
			burst = 1
		}
		api.Use(rateLimit(rate.NewLimiter(rate.Limit(s.cfg.RateLimitRPS), burst)))
	}
	api.Use(apiKeyAuth(s.cfg.APIKey))

	api.GET("/orderbook", s.getOrderBook)
	api.POST("/orders/limit", s.submitLimitOrder)
	api.GET("/trades/recent", s.getRecentTrades)

	return r
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run blocks serving HTTP until Shutdown is called.
func (s *Server) Run() error {
	s.log.Info(context.Background(), "http server listening", zap.String("addr", s.cfg.Addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
