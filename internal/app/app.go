// Package app wires together a set of markets, each with its own order
// book and an optional persistent offer store, behind the handful of
// operations the API layer needs: list markets, look up a market's book,
// and submit or cancel an offer. Trade history is not kept here.
package app

import (
	"fmt"
	"sync"

	"github.com/jetafese/crossd/internal/exchange"
	"github.com/jetafese/crossd/internal/market"
	"github.com/jetafese/crossd/internal/offerstore"
	"github.com/jetafese/crossd/internal/orderbook"
)

// MarketBook bundles one market's parameters, its live order book, and its
// durable offer store.
type MarketBook struct {
	Market *market.Market
	Book   *orderbook.OrderBook
	store  *offerstore.Store
}

// App is the top-level in-process state a crossd node holds: every market
// it serves, keyed by symbol.
type App struct {
	mu      sync.RWMutex
	markets map[string]*MarketBook
}

// New constructs an empty App.
func New() *App {
	return &App{markets: make(map[string]*MarketBook)}
}

// AddMarket registers a market and, if store is non-nil, replays its
// resident offers from disk into a freshly built order book.
func (a *App) AddMarket(m *market.Market, store *offerstore.Store) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.markets[m.Symbol]; exists {
		return fmt.Errorf("app: market %s already registered", m.Symbol)
	}

	book := orderbook.NewOrderBook()
	if store != nil {
		offers, err := store.LoadResidentOffers(m.Symbol)
		if err != nil {
			return fmt.Errorf("app: replay offers for %s: %w", m.Symbol, err)
		}
		for _, o := range offers {
			book.Restore(o)
		}
	}

	a.markets[m.Symbol] = &MarketBook{Market: m, Book: book, store: store}
	return nil
}

// ListMarkets returns every registered market's parameters.
func (a *App) ListMarkets() []*market.Market {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]*market.Market, 0, len(a.markets))
	for _, mb := range a.markets {
		out = append(out, mb.Market)
	}
	return out
}

// GetMarketBook looks up one market's book bundle by symbol.
func (a *App) GetMarketBook(symbol string) (*MarketBook, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	mb, ok := a.markets[symbol]
	if !ok {
		return nil, fmt.Errorf("app: unknown market %s", symbol)
	}
	return mb, nil
}

// SubmitOffer validates and crosses an incoming offer against the named
// market, persisting the result before returning the fills produced.
func (a *App) SubmitOffer(symbol string, o *orderbook.Offer) ([]orderbook.Fill, error) {
	mb, err := a.GetMarketBook(symbol)
	if err != nil {
		return nil, err
	}

	fills, err := mb.Book.Place(o, mb.Market)
	if err != nil {
		return nil, err
	}

	if mb.store != nil {
		if err := mb.persistAfterPlace(o, fills); err != nil {
			return fills, err
		}
	}
	return fills, nil
}

// persistAfterPlace durably records every offer that changed state as a
// result of one Place call. A maker offer's side is always the opposite of
// the taker's, and its price never moves between fills, so the fill log
// alone is enough to know which durable key to rewrite or delete without
// re-deriving deltas from the book's post-match state.
func (mb *MarketBook) persistAfterPlace(taker *orderbook.Offer, fills []orderbook.Fill) error {
	makerSide := orderbook.Sell
	if taker.Side == orderbook.Sell {
		makerSide = orderbook.Buy
	}

	seen := make(map[string]bool)
	for _, f := range fills {
		if seen[f.MakerID] {
			continue
		}
		seen[f.MakerID] = true

		if o, _, ok := mb.Book.Lookup(f.MakerID); ok {
			if err := mb.store.SaveOffer(mb.Market.Symbol, o); err != nil {
				return err
			}
		} else if err := mb.store.DeleteOffer(mb.Market.Symbol, makerSide, f.Price.N, f.MakerID); err != nil {
			return err
		}
	}

	if taker.WheatAmount > 0 && taker.Type == "GTC" {
		if err := mb.store.SaveOffer(mb.Market.Symbol, taker); err != nil {
			return err
		}
	}
	return nil
}

// CancelOffer removes a resident offer from both the in-memory book and
// the durable store.
func (a *App) CancelOffer(symbol, id string) (bool, error) {
	mb, err := a.GetMarketBook(symbol)
	if err != nil {
		return false, err
	}

	o, side, ok := mb.Book.Lookup(id)
	if !ok {
		return false, nil
	}
	if !mb.Book.Cancel(id) {
		return false, nil
	}
	if mb.store != nil {
		if err := mb.store.DeleteOffer(symbol, side, o.Price.N, id); err != nil {
			return true, err
		}
	}
	return true, nil
}

// SubmitDirect runs a price-payment-style crossing directly against
// ExchangeV10, bypassing the resident order book entirely. It exists so
// every rounding mode — not only NORMAL, which the order book always
// uses — is reachable from the running process.
func SubmitDirect(price exchange.Price, limits exchange.Limits, mode exchange.RoundingMode) exchange.CrossingResult {
	return exchange.ExchangeV10(price, limits, mode)
}
