package orderbook

import (
	"testing"

	"github.com/jetafese/crossd/internal/exchange"
	"github.com/jetafese/crossd/internal/market"
)

func testMarket(t *testing.T) *market.Market {
	t.Helper()
	m, err := market.NewMarket("WHEAT/SHEEP", "WHEAT", "SHEEP", market.Params{
		TickSize: 1, LotSize: 1, MinNotional: 0, Scale: 1,
	})
	if err != nil {
		t.Fatalf("unexpected market error: %v", err)
	}
	return m
}

func TestPlaceRestsUnmatchedGTCOffer(t *testing.T) {
	ob := NewOrderBook()
	mkt := testMarket(t)

	ask := &Offer{ID: "ask1", Side: Sell, Price: exchange.Price{N: 10, D: 1}, WheatAmount: 100, Type: "GTC"}
	fills, err := ob.Place(ask, mkt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fills) != 0 {
		t.Fatalf("expected no fills against an empty book, got %v", fills)
	}
	if got := ob.GetBestAsk(); got != 10 {
		t.Fatalf("expected best ask 10, got %d", got)
	}
}

func TestPlaceCrossesExistingOffer(t *testing.T) {
	ob := NewOrderBook()
	mkt := testMarket(t)

	ask := &Offer{ID: "ask1", Side: Sell, Price: exchange.Price{N: 10, D: 1}, WheatAmount: 100, Type: "GTC"}
	if _, err := ob.Place(ask, mkt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	buy := &Offer{ID: "buy1", Side: Buy, Price: exchange.Price{N: 10, D: 1}, WheatAmount: 40, Type: "GTC"}
	fills, err := ob.Place(buy, mkt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fills) != 1 {
		t.Fatalf("expected exactly one fill, got %d", len(fills))
	}
	f := fills[0]
	if f.WheatAmount != 40 || f.SheepAmount != 400 {
		t.Fatalf("unexpected fill quantities: %+v", f)
	}
	if ob.GetBestAsk() != 10 {
		t.Fatalf("resident ask should remain at price 10, got %d", ob.GetBestAsk())
	}
	levels := ob.GetAskLevels()
	if len(levels) != 1 || levels[0].WheatAmount != 60 {
		t.Fatalf("expected 60 wheat remaining resident, got %+v", levels)
	}
}

func TestPlaceFullyConsumesSmallerResidentOffer(t *testing.T) {
	ob := NewOrderBook()
	mkt := testMarket(t)

	ask := &Offer{ID: "ask1", Side: Sell, Price: exchange.Price{N: 10, D: 1}, WheatAmount: 40, Type: "GTC"}
	if _, err := ob.Place(ask, mkt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	buy := &Offer{ID: "buy1", Side: Buy, Price: exchange.Price{N: 10, D: 1}, WheatAmount: 100, Type: "GTC"}
	fills, err := ob.Place(buy, mkt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fills) != 1 || fills[0].WheatAmount != 40 {
		t.Fatalf("unexpected fills: %+v", fills)
	}
	if ob.GetBestAsk() != 0 {
		t.Fatalf("resident ask should have been fully evicted, got %d", ob.GetBestAsk())
	}
	if ob.GetBestBid() != 10 {
		t.Fatalf("remaining buy quantity should rest at price 10, got %d", ob.GetBestBid())
	}
	levels := ob.GetBidLevels()
	if len(levels) != 1 || levels[0].WheatAmount != 60 {
		t.Fatalf("expected 60 wheat resting on the bid side, got %+v", levels)
	}
}

func TestPlaceIOCDoesNotRest(t *testing.T) {
	ob := NewOrderBook()
	mkt := testMarket(t)

	buy := &Offer{ID: "buy1", Side: Buy, Price: exchange.Price{N: 10, D: 1}, WheatAmount: 50, Type: "IOC"}
	fills, err := ob.Place(buy, mkt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fills) != 0 {
		t.Fatalf("expected no fills, got %v", fills)
	}
	if ob.GetBestBid() != 0 {
		t.Fatalf("IOC offer should never rest in the book, got best bid %d", ob.GetBestBid())
	}
}

func TestCancelRemovesRestingOffer(t *testing.T) {
	ob := NewOrderBook()
	mkt := testMarket(t)

	ask := &Offer{ID: "ask1", Side: Sell, Price: exchange.Price{N: 10, D: 1}, WheatAmount: 100, Type: "GTC"}
	if _, err := ob.Place(ask, mkt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ob.Cancel("ask1") {
		t.Fatal("expected Cancel to succeed for a resting offer")
	}
	if ob.Cancel("ask1") {
		t.Fatal("expected second Cancel of the same ID to fail")
	}
	if ob.GetBestAsk() != 0 {
		t.Fatalf("book should be empty after cancel, got best ask %d", ob.GetBestAsk())
	}
}

func TestPlaceRejectsOfferViolatingMarketRules(t *testing.T) {
	ob := NewOrderBook()
	mkt := testMarket(t)
	mkt.Pause()

	ask := &Offer{ID: "ask1", Side: Sell, Price: exchange.Price{N: 10, D: 1}, WheatAmount: 100, Type: "GTC"}
	if _, err := ob.Place(ask, mkt); err == nil {
		t.Fatal("expected error placing an offer into a paused market")
	}
}
