package api

// MarketInfo is a market's static admission parameters.
type MarketInfo struct {
	Symbol      string `json:"symbol"`
	WheatAsset  string `json:"wheatAsset"`
	SheepAsset  string `json:"sheepAsset"`
	Status      string `json:"status"`
	TickSize    int64  `json:"tickSize"`
	LotSize     int64  `json:"lotSize"`
	MinNotional int64  `json:"minNotional"`
	Scale       int32  `json:"scale"`
}

// PriceLevel is one resident price level's aggregate remaining wheat.
type PriceLevel struct {
	PriceN      int32 `json:"priceN"`
	WheatAmount int64 `json:"wheatAmount"`
}

// OrderbookSnapshot is the current resident state of one market's book.
type OrderbookSnapshot struct {
	Symbol    string       `json:"symbol"`
	Bids      []PriceLevel `json:"bids"`
	Asks      []PriceLevel `json:"asks"`
	Timestamp int64        `json:"timestamp"`
}

// FillInfo is one completed crossing, as returned from trade history.
type FillInfo struct {
	TakerID     string `json:"takerId"`
	MakerID     string `json:"makerId"`
	PriceN      int32  `json:"priceN"`
	PriceD      int32  `json:"priceD"`
	WheatAmount int64  `json:"wheatAmount"`
	SheepAmount int64  `json:"sheepAmount"`
}

// SubmitOfferRequest is the payload for POST /api/v1/offers.
type SubmitOfferRequest struct {
	ID          string `json:"id"`
	Side        string `json:"side"` // "buy" or "sell"
	PriceN      int32  `json:"priceN"`
	PriceD      int32  `json:"priceD"`
	WheatAmount int64  `json:"wheatAmount"`
	Type        string `json:"type"` // "GTC" or "IOC"
	OwnerHex    string `json:"ownerHex,omitempty"`
}

// SubmitOfferResponse reports the fills an offer produced.
type SubmitOfferResponse struct {
	Status string     `json:"status"`
	Fills  []FillInfo `json:"fills"`
}

// CancelOfferRequest is the payload for POST /api/v1/offers/cancel.
type CancelOfferRequest struct {
	OrderID string `json:"orderId"`
}

// CrossDirectRequest drives ExchangeV10 directly, bypassing the resident
// book, so every rounding mode is reachable over the API.
type CrossDirectRequest struct {
	PriceN          int32  `json:"priceN"`
	PriceD          int32  `json:"priceD"`
	MaxWheatSend    int64  `json:"maxWheatSend"`
	MaxWheatReceive int64  `json:"maxWheatReceive"`
	MaxSheepSend    int64  `json:"maxSheepSend"`
	MaxSheepReceive int64  `json:"maxSheepReceive"`
	Mode            string `json:"mode"` // "NORMAL" (or empty), "PATH_PAYMENT_STRICT_SEND", "PATH_PAYMENT_STRICT_RECEIVE"
}

// CrossDirectResponse is the raw CrossingResult from a direct crossing.
type CrossDirectResponse struct {
	WheatReceived int64 `json:"wheatReceived"`
	SheepSent     int64 `json:"sheepSent"`
	WheatStays    bool  `json:"wheatStays"`
}

// ErrorResponse is returned for all error conditions.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WSSubscribeRequest is sent by a client to manage channel subscriptions.
type WSSubscribeRequest struct {
	Op       string   `json:"op"` // "subscribe" or "unsubscribe"
	Channels []string `json:"channels"`
}

// FillUpdate is broadcast to subscribers of "fills:<symbol>" whenever a
// crossing produces a nonzero trade.
type FillUpdate struct {
	Type   string   `json:"type"`
	Symbol string   `json:"symbol"`
	Fill   FillInfo `json:"fill"`
}

// OrderbookUpdate is broadcast to subscribers of "orderbook:<symbol>" after
// every accepted offer submission, whether or not resident state changed.
type OrderbookUpdate struct {
	Type   string            `json:"type"`
	Symbol string            `json:"symbol"`
	Book   OrderbookSnapshot `json:"book"`
}
