// Package offerstore durably records resident order-book offers and
// completed fills in an embedded Pebble database, so a crossd process can
// rebuild its in-memory order book after a restart without replaying a
// transaction log.
package offerstore

import (
	"fmt"

	"github.com/cockroachdb/pebble"

	"github.com/jetafese/crossd/internal/exchange"
	"github.com/jetafese/crossd/internal/orderbook"
)

// Store wraps a Pebble database holding resident offers and recent fills
// for every market a node serves.
type Store struct {
	db *pebble.DB
}

// Open opens (or creates) a Pebble database at path.
func Open(path string) (*Store, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("offerstore: open %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// offerRecord is the durable encoding of a resident offer. It mirrors
// orderbook.Offer field for field; kept separate so the wire encoding is
// insulated from internal renames in the order book package.
type offerRecord struct {
	ID          string
	Side        orderbook.Side
	PriceN      int32
	PriceD      int32
	WheatAmount int64
	Type        string
	OwnerHex    string
}

func offerKey(market string, side orderbook.Side, priceN int32, id string) []byte {
	k := []byte(fmt.Sprintf("o:%s:%d:", market, side))
	k = append(k, priceKey(priceN)...)
	k = append(k, ':')
	return append(k, []byte(id)...)
}

func offerPrefix(market string) []byte {
	return []byte(fmt.Sprintf("o:%s:", market))
}

// SaveOffer persists a resident offer's current state, keyed so that a full
// prefix scan of a market recovers every resident offer across both sides.
func (s *Store) SaveOffer(market string, o *orderbook.Offer) error {
	rec := offerRecord{
		ID:          o.ID,
		Side:        o.Side,
		PriceN:      o.Price.N,
		PriceD:      o.Price.D,
		WheatAmount: o.WheatAmount,
		Type:        o.Type,
		OwnerHex:    o.OwnerHex,
	}
	data, err := encodeGob(rec)
	if err != nil {
		return fmt.Errorf("offerstore: encode offer %s: %w", o.ID, err)
	}
	key := offerKey(market, o.Side, o.Price.N, o.ID)
	if err := s.db.Set(key, data, pebble.Sync); err != nil {
		return fmt.Errorf("offerstore: save offer %s: %w", o.ID, err)
	}
	return nil
}

// DeleteOffer removes a resident offer, called once it has been fully
// evicted from the in-memory order book.
func (s *Store) DeleteOffer(market string, side orderbook.Side, priceN int32, id string) error {
	key := offerKey(market, side, priceN, id)
	if err := s.db.Delete(key, pebble.Sync); err != nil {
		return fmt.Errorf("offerstore: delete offer %s: %w", id, err)
	}
	return nil
}

// LoadResidentOffers scans every offer persisted for a market, in key order
// (side, then price numerator, then ID); the caller re-admits each one into
// a fresh OrderBook to restore price priority. Arrival order is not stored,
// so offers sharing a price level come back ordered by ID.
func (s *Store) LoadResidentOffers(market string) ([]*orderbook.Offer, error) {
	prefix := offerPrefix(market)
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: keyUpperBound(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("offerstore: scan offers for %s: %w", market, err)
	}
	defer iter.Close()

	var offers []*orderbook.Offer
	for iter.First(); iter.Valid(); iter.Next() {
		var rec offerRecord
		if err := decodeGob(iter.Value(), &rec); err != nil {
			return nil, fmt.Errorf("offerstore: decode offer: %w", err)
		}
		offers = append(offers, &orderbook.Offer{
			ID:          rec.ID,
			Side:        rec.Side,
			Price:       exchange.Price{N: rec.PriceN, D: rec.PriceD},
			WheatAmount: rec.WheatAmount,
			Type:        rec.Type,
			OwnerHex:    rec.OwnerHex,
		})
	}
	return offers, nil
}

// fillRecord is the durable encoding of one completed crossing.
type fillRecord struct {
	TakerID     string
	MakerID     string
	PriceN      int32
	PriceD      int32
	WheatAmount int64
	SheepAmount int64
}

func fillKey(market string, at int64, f orderbook.Fill) []byte {
	k := []byte(fmt.Sprintf("f:%s:", market))
	k = append(k, timeKey(at)...)
	k = append(k, ':')
	return append(k, []byte(f.TakerID+":"+f.MakerID)...)
}

func fillPrefix(market string) []byte {
	return []byte(fmt.Sprintf("f:%s:", market))
}

// SaveFill persists one completed fill, timestamped by the caller so the
// package stays free of any clock dependence of its own.
func (s *Store) SaveFill(market string, f orderbook.Fill, at int64) error {
	rec := fillRecord{
		TakerID:     f.TakerID,
		MakerID:     f.MakerID,
		PriceN:      f.Price.N,
		PriceD:      f.Price.D,
		WheatAmount: f.WheatAmount,
		SheepAmount: f.SheepAmount,
	}
	data, err := encodeGob(rec)
	if err != nil {
		return fmt.Errorf("offerstore: encode fill: %w", err)
	}
	if err := s.db.Set(fillKey(market, at, f), data, pebble.NoSync); err != nil {
		return fmt.Errorf("offerstore: save fill: %w", err)
	}
	return nil
}

// LoadRecentFills returns up to limit of the most recently saved fills for
// a market, most recent first.
func (s *Store) LoadRecentFills(market string, limit int) ([]orderbook.Fill, error) {
	prefix := fillPrefix(market)
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: keyUpperBound(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("offerstore: scan fills for %s: %w", market, err)
	}
	defer iter.Close()

	var fills []orderbook.Fill
	for iter.Last(); iter.Valid() && len(fills) < limit; iter.Prev() {
		var rec fillRecord
		if err := decodeGob(iter.Value(), &rec); err != nil {
			return nil, fmt.Errorf("offerstore: decode fill: %w", err)
		}
		fills = append(fills, orderbook.Fill{
			TakerID:     rec.TakerID,
			MakerID:     rec.MakerID,
			Price:       exchange.Price{N: rec.PriceN, D: rec.PriceD},
			WheatAmount: rec.WheatAmount,
			SheepAmount: rec.SheepAmount,
		})
	}
	return fills, nil
}
