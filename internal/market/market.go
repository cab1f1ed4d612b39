// Package market defines the trading-pair parameters an order book checks
// an offer against before it is ever handed to the crossing core: which
// asset pair is traded, whether trading is currently halted, and the
// tick/lot/notional granularity resident offers must respect. None of this
// is part of the crossing core itself — the core only ever sees the price
// and the four limits it is already validated against — but a resident
// order book needs it the same way the reference system needs offer
// adjustment and trust-line checks before an offer is ever crossed.
package market

import "fmt"

// Status is the trading status of a market.
type Status int8

const (
	// Active markets accept new offers and cross them against the book.
	Active Status = iota
	// Paused markets reject new offers; existing resident offers are left
	// untouched until trading resumes.
	Paused
)

func (s Status) String() string {
	switch s {
	case Active:
		return "Active"
	case Paused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// Market describes one wheat/sheep asset pair: which two assets are traded,
// whether trading is halted, and the integer granularity resident offers on
// either side must respect.
type Market struct {
	Symbol     string
	WheatAsset string // the asset sold by resident wheat offers
	SheepAsset string // the asset resident wheat offers receive
	Status     Status

	// TickSize is the smallest price increment a resident offer's price
	// numerator may move in; LotSize is the smallest quantity increment a
	// resident offer's remaining wheat amount may move in. Both are
	// expressed in the same integer units CrossWithoutThreshold consumes.
	TickSize int64
	LotSize  int64

	// Scale is the fixed price denominator every resident offer in this
	// market quotes against. The order book buckets resident offers by
	// price numerator alone, so every offer admitted to one market must
	// share this denominator; only the numerator moves the price.
	Scale int32

	// MinNotional rejects dust offers: an offer whose wheat amount times
	// its price numerator falls below this is refused before it ever
	// reaches the book.
	MinNotional int64
}

// Params bundles the fields a caller supplies to NewMarket; Symbol,
// WheatAsset, and SheepAsset are taken as separate constructor arguments so
// that callers cannot accidentally default them to the empty string.
type Params struct {
	TickSize    int64
	LotSize     int64
	MinNotional int64
	Scale       int32
}

// DefaultParams returns reasonable tick/lot/notional defaults for a market
// quoted in integer cents-equivalent units, priced in whole units (scale 1).
func DefaultParams() Params {
	return Params{TickSize: 1, LotSize: 1, MinNotional: 0, Scale: 1}
}

// NewMarket validates params and constructs an Active market.
func NewMarket(symbol, wheatAsset, sheepAsset string, params Params) (*Market, error) {
	m := &Market{
		Symbol:      symbol,
		WheatAsset:  wheatAsset,
		SheepAsset:  sheepAsset,
		Status:      Active,
		TickSize:    params.TickSize,
		LotSize:     params.LotSize,
		MinNotional: params.MinNotional,
		Scale:       params.Scale,
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("market: invalid params for %s: %w", symbol, err)
	}
	return m, nil
}

// Validate checks the market's own parameters for sanity.
func (m *Market) Validate() error {
	if m.Symbol == "" {
		return fmt.Errorf("symbol cannot be empty")
	}
	if m.WheatAsset == "" || m.SheepAsset == "" {
		return fmt.Errorf("wheat and sheep assets must be specified")
	}
	if m.WheatAsset == m.SheepAsset {
		return fmt.Errorf("wheat and sheep assets must differ")
	}
	if m.TickSize <= 0 {
		return fmt.Errorf("tick size must be positive")
	}
	if m.LotSize <= 0 {
		return fmt.Errorf("lot size must be positive")
	}
	if m.MinNotional < 0 {
		return fmt.Errorf("min notional cannot be negative")
	}
	if m.Scale <= 0 {
		return fmt.Errorf("scale must be positive")
	}
	return nil
}

// ValidateOffer checks a candidate offer's price and wheat amount against
// this market's granularity, denominator, and trading status before it is
// admitted to the order book.
func (m *Market) ValidateOffer(priceN, priceD int32, wheatAmount int64) error {
	if m.Status != Active {
		return fmt.Errorf("market %s is not active (status: %s)", m.Symbol, m.Status)
	}
	if priceN <= 0 {
		return fmt.Errorf("price numerator must be positive")
	}
	if priceD != m.Scale {
		return fmt.Errorf("price denominator %d does not match market scale %d", priceD, m.Scale)
	}
	if wheatAmount <= 0 {
		return fmt.Errorf("wheat amount must be positive")
	}
	if int64(priceN)%m.TickSize != 0 {
		return fmt.Errorf("price numerator %d is not a multiple of tick size %d", priceN, m.TickSize)
	}
	if wheatAmount%m.LotSize != 0 {
		return fmt.Errorf("wheat amount %d is not a multiple of lot size %d", wheatAmount, m.LotSize)
	}
	notional := int64(priceN) * wheatAmount
	if notional < m.MinNotional {
		return fmt.Errorf("offer notional %d below minimum %d", notional, m.MinNotional)
	}
	return nil
}

// Pause halts new order admission for this market.
func (m *Market) Pause() { m.Status = Paused }

// Resume re-enables order admission for this market.
func (m *Market) Resume() { m.Status = Active }
