package offerstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jetafese/crossd/internal/exchange"
	"github.com/jetafese/crossd/internal/orderbook"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "offers")
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndLoadResidentOffers(t *testing.T) {
	s := openTestStore(t)

	offers := []*orderbook.Offer{
		{ID: "ask1", Side: orderbook.Sell, Price: exchange.Price{N: 10, D: 1}, WheatAmount: 100, Type: "GTC"},
		{ID: "bid1", Side: orderbook.Buy, Price: exchange.Price{N: 9, D: 1}, WheatAmount: 50, Type: "GTC"},
	}
	for _, o := range offers {
		if err := s.SaveOffer("WHEAT/SHEEP", o); err != nil {
			t.Fatalf("SaveOffer failed: %v", err)
		}
	}

	loaded, err := s.LoadResidentOffers("WHEAT/SHEEP")
	if err != nil {
		t.Fatalf("LoadResidentOffers failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 resident offers, got %d", len(loaded))
	}

	byID := make(map[string]*orderbook.Offer)
	for _, o := range loaded {
		byID[o.ID] = o
	}
	if byID["ask1"].WheatAmount != 100 || byID["ask1"].Price.N != 10 {
		t.Errorf("ask1 round-tripped incorrectly: %+v", byID["ask1"])
	}
	if byID["bid1"].Side != orderbook.Buy {
		t.Errorf("bid1 lost its side: %+v", byID["bid1"])
	}
}

func TestDeleteOfferRemovesIt(t *testing.T) {
	s := openTestStore(t)

	o := &orderbook.Offer{ID: "ask1", Side: orderbook.Sell, Price: exchange.Price{N: 10, D: 1}, WheatAmount: 100, Type: "GTC"}
	if err := s.SaveOffer("WHEAT/SHEEP", o); err != nil {
		t.Fatalf("SaveOffer failed: %v", err)
	}
	if err := s.DeleteOffer("WHEAT/SHEEP", o.Side, o.Price.N, o.ID); err != nil {
		t.Fatalf("DeleteOffer failed: %v", err)
	}

	loaded, err := s.LoadResidentOffers("WHEAT/SHEEP")
	if err != nil {
		t.Fatalf("LoadResidentOffers failed: %v", err)
	}
	if len(loaded) != 0 {
		t.Fatalf("expected no resident offers after delete, got %d", len(loaded))
	}
}

func TestSaveAndLoadRecentFills(t *testing.T) {
	s := openTestStore(t)

	fill := orderbook.Fill{TakerID: "taker1", MakerID: "maker1", Price: exchange.Price{N: 10, D: 1}, WheatAmount: 40, SheepAmount: 400}
	if err := s.SaveFill("WHEAT/SHEEP", fill, 1000); err != nil {
		t.Fatalf("SaveFill failed: %v", err)
	}
	fill2 := orderbook.Fill{TakerID: "taker2", MakerID: "maker1", Price: exchange.Price{N: 10, D: 1}, WheatAmount: 20, SheepAmount: 200}
	if err := s.SaveFill("WHEAT/SHEEP", fill2, 2000); err != nil {
		t.Fatalf("SaveFill failed: %v", err)
	}

	fills, err := s.LoadRecentFills("WHEAT/SHEEP", 10)
	if err != nil {
		t.Fatalf("LoadRecentFills failed: %v", err)
	}
	if len(fills) != 2 {
		t.Fatalf("expected 2 fills, got %d", len(fills))
	}
	if fills[0].TakerID != "taker2" {
		t.Errorf("expected most recent fill first, got %+v", fills[0])
	}
}

func TestOpenCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "offers")
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("expected pebble to create data directory: %v", err)
	}
}
