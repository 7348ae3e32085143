package main

import (
	"flag"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joripage/limit-orderbook/pkg/orderbook"
	"github.com/shopspring/decimal"
)

const (
	minPrice = 100_000
	maxPrice = 100_500
	maxQty   = 100
)

var pairs = []string{"BTCZAR", "ETHZAR", "XRPZAR", "SOLZAR"}

func randomOrder(r *rand.Rand, pair string) orderbook.SubmitOrderRequest {
	side := "buy"
	if r.Intn(2) == 0 {
		side = "sell"
	}
	return orderbook.SubmitOrderRequest{
		Price:        decimal.NewFromInt(int64(minPrice + r.Intn(maxPrice-minPrice))),
		Quantity:     decimal.New(int64(r.Intn(maxQty)+1), -2),
		Side:         side,
		CurrencyPair: pair,
	}
}

func main() {
	var numOrders, workers int
	flag.IntVar(&numOrders, "orders", 1_000_000, "total orders to submit")
	flag.IntVar(&workers, "workers", len(pairs), "concurrent submitters, spread across pairs")
	flag.Parse()
	if workers < 1 {
		workers = 1
	}

	obm := orderbook.NewOrderBookManager(&orderbook.OrderBookManagerConfig{
		SupportedPairs: pairs,
	})

	var totalMatched atomic.Int64
	var mu sync.Mutex
	totalQty := decimal.Zero
	obm.RegisterTradeCallback(func(trades []orderbook.Trade) {
		totalMatched.Add(int64(len(trades)))
		mu.Lock()
		for _, t := range trades {
			totalQty = totalQty.Add(t.Quantity)
		}
		mu.Unlock()
	})

	perWorker := numOrders / workers
	var wg sync.WaitGroup
	start := time.Now()
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(int64(w) + time.Now().UnixNano()))
			pair := pairs[w%len(pairs)]
			for i := 0; i < perWorker; i++ {
				if _, err := obm.SubmitOrder(randomOrder(r, pair)); err != nil {
					panic(err)
				}
			}
		}(w)
	}
	wg.Wait()
	elapsed := time.Since(start)

	fmt.Println("--------")
	fmt.Printf("Total Orders     : %d\n", perWorker*workers)
	fmt.Printf("Total Matches    : %d\n", totalMatched.Load())
	fmt.Printf("Total Matched Qty: %s\n", totalQty.String())
	fmt.Printf("Time Taken       : %s\n", elapsed)
	fmt.Printf("Orders/sec       : %.0f\n", float64(perWorker*workers)/elapsed.Seconds())
	for _, p := range pairs {
		depth, _ := obm.Depth(p)
		fmt.Printf("%s depth        : %d asks, %d bids\n", p, len(depth.Asks), len(depth.Bids))
	}
}
