// Package orderbook resides offers against each other by price-time
// priority and hands every crossing pair to the exchange package's
// extended-precision core rather than computing fill quantities itself.
package orderbook

import (
	"container/heap"
	"sort"
	"sync"

	"github.com/jetafese/crossd/internal/exchange"
	"github.com/jetafese/crossd/internal/market"
)

// Side is which asset a resident offer is selling.
type Side int8

const (
	// Buy offers sell sheep for wheat (want wheat, pay sheep).
	Buy Side = iota
	// Sell offers sell wheat for sheep (want sheep, pay wheat).
	Sell
)

func (s Side) String() string {
	if s == Buy {
		return "Buy"
	}
	return "Sell"
}

// Offer is one resident or incoming order. Price.D must equal the market's
// Scale; only Price.N varies between offers in the same market, which is
// what lets the book bucket offers by a plain int32 price-level key instead
// of comparing rationals with different denominators.
type Offer struct {
	ID          string
	Side        Side
	Price       exchange.Price
	WheatAmount int64  // remaining wheat wanted (Buy) or offered (Sell)
	Type        string // "GTC" or "IOC"
	OwnerHex    string
}

// Fill is one crossing between a taker and a resident maker offer, with the
// exact integer quantities ExchangeV10 computed.
type Fill struct {
	TakerID     string
	MakerID     string
	Price       exchange.Price
	WheatAmount int64
	SheepAmount int64
}

// PriceLevel aggregates the remaining wheat across every offer resident at
// one price numerator.
type PriceLevel struct {
	PriceN      int32
	WheatAmount int64
}

// OrderBook holds the resident offers for one market and crosses incoming
// offers against them through ExchangeV10.
type OrderBook struct {
	mu sync.RWMutex

	bidHeap *MaxPriceHeap
	askHeap *MinPriceHeap

	bids map[int32][]*Offer
	asks map[int32][]*Offer

	orderIndex map[string]int32
	sideIndex  map[string]Side

	lastPrice int32
}

// NewOrderBook constructs an empty order book.
func NewOrderBook() *OrderBook {
	bidHeap := &MaxPriceHeap{}
	askHeap := &MinPriceHeap{}
	heap.Init(bidHeap)
	heap.Init(askHeap)

	return &OrderBook{
		bidHeap:    bidHeap,
		askHeap:    askHeap,
		bids:       make(map[int32][]*Offer),
		asks:       make(map[int32][]*Offer),
		orderIndex: make(map[string]int32),
		sideIndex:  make(map[string]Side),
	}
}

func (ob *OrderBook) bestBid() (int32, bool) {
	if ob.bidHeap.Len() == 0 {
		return 0, false
	}
	return ob.bidHeap.Peek(), true
}

func (ob *OrderBook) bestAsk() (int32, bool) {
	if ob.askHeap.Len() == 0 {
		return 0, false
	}
	return ob.askHeap.Peek(), true
}

func (ob *OrderBook) addBid(p int32, o *Offer) {
	if len(ob.bids[p]) == 0 {
		heap.Push(ob.bidHeap, p)
	}
	ob.bids[p] = append(ob.bids[p], o)
	ob.orderIndex[o.ID] = p
	ob.sideIndex[o.ID] = Buy
}

func (ob *OrderBook) addAsk(p int32, o *Offer) {
	if len(ob.asks[p]) == 0 {
		heap.Push(ob.askHeap, p)
	}
	ob.asks[p] = append(ob.asks[p], o)
	ob.orderIndex[o.ID] = p
	ob.sideIndex[o.ID] = Sell
}

func (ob *OrderBook) removeFromBidHeap(p int32) {
	for i := 0; i < ob.bidHeap.Len(); i++ {
		if (*ob.bidHeap)[i] == p {
			heap.Remove(ob.bidHeap, i)
			return
		}
	}
}

func (ob *OrderBook) removeFromAskHeap(p int32) {
	for i := 0; i < ob.askHeap.Len(); i++ {
		if (*ob.askHeap)[i] == p {
			heap.Remove(ob.askHeap, i)
			return
		}
	}
}

// Restore admits an offer directly into the book without crossing it
// against the opposite side, for rebuilding resident state from a durable
// store on startup.
func (ob *OrderBook) Restore(o *Offer) {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	if o.Side == Buy {
		ob.addBid(o.Price.N, o)
	} else {
		ob.addAsk(o.Price.N, o)
	}
}

// Lookup returns the resident offer with the given ID, its side, and
// whether it was found.
func (ob *OrderBook) Lookup(id string) (*Offer, Side, bool) {
	ob.mu.RLock()
	defer ob.mu.RUnlock()

	side, ok := ob.sideIndex[id]
	if !ok {
		return nil, 0, false
	}
	price := ob.orderIndex[id]
	book := ob.bids
	if side == Sell {
		book = ob.asks
	}
	for _, o := range book[price] {
		if o.ID == id {
			return o, side, true
		}
	}
	return nil, 0, false
}

// Cancel removes a resident offer by ID. Returns false if no such offer is
// resident in the book.
func (ob *OrderBook) Cancel(id string) bool {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	price, ok := ob.orderIndex[id]
	if !ok {
		return false
	}
	side := ob.sideIndex[id]

	book := ob.bids
	removeLevel := ob.removeFromBidHeap
	if side == Sell {
		book = ob.asks
		removeLevel = ob.removeFromAskHeap
	}

	arr := book[price]
	for i, o := range arr {
		if o.ID == id {
			book[price] = append(arr[:i], arr[i+1:]...)
			if len(book[price]) == 0 {
				delete(book, price)
				removeLevel(price)
			}
			delete(ob.orderIndex, id)
			delete(ob.sideIndex, id)
			return true
		}
	}
	return false
}

// Place validates the incoming offer against the market, crosses it against
// resident offers on the opposite side through ExchangeV10, and rests any
// remainder if the offer is GTC.
func (ob *OrderBook) Place(o *Offer, mkt *market.Market) ([]Fill, error) {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	if err := mkt.ValidateOffer(o.Price.N, o.Price.D, o.WheatAmount); err != nil {
		return nil, err
	}

	var fills []Fill
	if o.Side == Buy {
		fills = ob.crossBuy(o)
	} else {
		fills = ob.crossSell(o)
	}

	if o.WheatAmount > 0 && o.Type == "GTC" {
		cp := *o
		if o.Side == Buy {
			ob.addBid(o.Price.N, &cp)
		} else {
			ob.addAsk(o.Price.N, &cp)
		}
	}
	return fills, nil
}

// crossBuy matches a buy taker (pays sheep for wheat) against the resident
// ask side, cheapest price first, evicting whichever side of each crossing
// is the smaller offer per ExchangeV10's WheatStays flag.
func (ob *OrderBook) crossBuy(taker *Offer) []Fill {
	var fills []Fill
	for taker.WheatAmount > 0 {
		askP, ok := ob.bestAsk()
		if !ok || askP > taker.Price.N {
			break
		}
		level := ob.asks[askP]
		if len(level) == 0 {
			delete(ob.asks, askP)
			ob.removeFromAskHeap(askP)
			continue
		}
		maker := level[0]

		result := exchange.ExchangeV10(maker.Price, exchange.Limits{
			MaxWheatSend:    maker.WheatAmount,
			MaxWheatReceive: taker.WheatAmount,
			MaxSheepSend:    maxInt64,
			MaxSheepReceive: maxInt64,
		}, exchange.RoundingNormal)

		maker.WheatAmount -= result.WheatReceived
		taker.WheatAmount -= result.WheatReceived
		if result.WheatReceived > 0 || result.SheepSent > 0 {
			fills = append(fills, Fill{
				TakerID:     taker.ID,
				MakerID:     maker.ID,
				Price:       maker.Price,
				WheatAmount: result.WheatReceived,
				SheepAmount: result.SheepSent,
			})
			ob.lastPrice = maker.Price.N
		}

		if !result.WheatStays {
			ob.popAskHead(askP)
			continue
		}
		taker.WheatAmount = 0
		break
	}
	return fills
}

// crossSell matches a sell taker (offers wheat for sheep) against the
// resident bid side, richest price first.
func (ob *OrderBook) crossSell(taker *Offer) []Fill {
	var fills []Fill
	for taker.WheatAmount > 0 {
		bidP, ok := ob.bestBid()
		if !ok || bidP < taker.Price.N {
			break
		}
		level := ob.bids[bidP]
		if len(level) == 0 {
			delete(ob.bids, bidP)
			ob.removeFromBidHeap(bidP)
			continue
		}
		maker := level[0]

		result := exchange.ExchangeV10(maker.Price, exchange.Limits{
			MaxWheatSend:    taker.WheatAmount,
			MaxWheatReceive: maker.WheatAmount,
			MaxSheepSend:    maxInt64,
			MaxSheepReceive: maxInt64,
		}, exchange.RoundingNormal)

		maker.WheatAmount -= result.WheatReceived
		taker.WheatAmount -= result.WheatReceived
		if result.WheatReceived > 0 || result.SheepSent > 0 {
			fills = append(fills, Fill{
				TakerID:     taker.ID,
				MakerID:     maker.ID,
				Price:       maker.Price,
				WheatAmount: result.WheatReceived,
				SheepAmount: result.SheepSent,
			})
			ob.lastPrice = maker.Price.N
		}

		if result.WheatStays {
			ob.popBidHead(bidP)
			continue
		}
		taker.WheatAmount = 0
		break
	}
	return fills
}

// popAskHead removes the resident offer at the front of the ask queue for
// price level p, used when that offer was the smaller side of a crossing
// and is evicted regardless of any rounding dust left in its WheatAmount.
func (ob *OrderBook) popAskHead(p int32) {
	level := ob.asks[p]
	if len(level) == 0 {
		return
	}
	evicted := level[0]
	ob.asks[p] = level[1:]
	delete(ob.orderIndex, evicted.ID)
	delete(ob.sideIndex, evicted.ID)
	if len(ob.asks[p]) == 0 {
		delete(ob.asks, p)
		ob.removeFromAskHeap(p)
	}
}

func (ob *OrderBook) popBidHead(p int32) {
	level := ob.bids[p]
	if len(level) == 0 {
		return
	}
	evicted := level[0]
	ob.bids[p] = level[1:]
	delete(ob.orderIndex, evicted.ID)
	delete(ob.sideIndex, evicted.ID)
	if len(ob.bids[p]) == 0 {
		delete(ob.bids, p)
		ob.removeFromBidHeap(p)
	}
}

const maxInt64 = 1<<63 - 1

// GetBidLevels returns all bid price levels sorted best (highest) first.
func (ob *OrderBook) GetBidLevels() []PriceLevel {
	ob.mu.RLock()
	defer ob.mu.RUnlock()

	levels := make([]PriceLevel, 0, len(ob.bids))
	for price, offers := range ob.bids {
		var total int64
		for _, o := range offers {
			total += o.WheatAmount
		}
		levels = append(levels, PriceLevel{PriceN: price, WheatAmount: total})
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i].PriceN > levels[j].PriceN })
	return levels
}

// GetAskLevels returns all ask price levels sorted best (lowest) first.
func (ob *OrderBook) GetAskLevels() []PriceLevel {
	ob.mu.RLock()
	defer ob.mu.RUnlock()

	levels := make([]PriceLevel, 0, len(ob.asks))
	for price, offers := range ob.asks {
		var total int64
		for _, o := range offers {
			total += o.WheatAmount
		}
		levels = append(levels, PriceLevel{PriceN: price, WheatAmount: total})
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i].PriceN < levels[j].PriceN })
	return levels
}

// GetBestBid returns the highest resident bid price numerator, or 0 if
// there are no bids.
func (ob *OrderBook) GetBestBid() int32 {
	ob.mu.RLock()
	defer ob.mu.RUnlock()
	p, _ := ob.bestBid()
	return p
}

// GetBestAsk returns the lowest resident ask price numerator, or 0 if there
// are no asks.
func (ob *OrderBook) GetBestAsk() int32 {
	ob.mu.RLock()
	defer ob.mu.RUnlock()
	p, _ := ob.bestAsk()
	return p
}

// GetLastPrice returns the price numerator of the most recent fill, or 0 if
// no trade has occurred.
func (ob *OrderBook) GetLastPrice() int32 {
	ob.mu.RLock()
	defer ob.mu.RUnlock()
	return ob.lastPrice
}
