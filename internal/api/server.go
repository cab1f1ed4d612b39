// Package api exposes crossd's order book and direct crossing operations
// over HTTP and WebSocket.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/jetafese/crossd/internal/app"
	"github.com/jetafese/crossd/internal/exchange"
	"github.com/jetafese/crossd/internal/market"
	"github.com/jetafese/crossd/internal/orderbook"
)

// Server wraps an App with REST handlers and a WebSocket broadcast hub.
type Server struct {
	app    *app.App
	router *mux.Router
	hub    *Hub
	log    *zap.Logger
}

// NewServer builds a Server and registers its routes.
func NewServer(a *app.App, log *zap.Logger) *Server {
	s := &Server{
		app:    a,
		router: mux.NewRouter(),
		hub:    NewHub(log),
		log:    log,
	}
	s.setupRoutes()
	go s.hub.Run()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(s.recoveryMiddleware)

	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/markets", s.handleListMarkets).Methods(http.MethodGet)
	api.HandleFunc("/markets/{symbol}", s.handleGetMarket).Methods(http.MethodGet)
	api.HandleFunc("/markets/{symbol}/orderbook", s.handleGetOrderbook).Methods(http.MethodGet)
	api.HandleFunc("/markets/{symbol}/trades", s.handleGetTrades).Methods(http.MethodGet)
	api.HandleFunc("/offers", s.handleSubmitOffer).Methods(http.MethodPost)
	api.HandleFunc("/offers/cancel", s.handleCancelOffer).Methods(http.MethodPost)
	api.HandleFunc("/cross", s.handleCrossDirect).Methods(http.MethodPost)
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// Start wraps the router with CORS and listens on addr. It blocks until the
// server stops or errors.
func (s *Server) Start(addr string) error {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})

	s.log.Info("starting REST/WebSocket server", zap.String("addr", addr))
	return http.ListenAndServe(addr, c.Handler(s.router))
}

// recoveryMiddleware converts a fatal ArithmeticError panic from the
// crossing core into an HTTP 500 instead of crashing the process, per the
// fatal/non-fatal error split the crossing core itself draws.
func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if aerr, ok := rec.(*exchange.ArithmeticError); ok {
					s.log.Error("arithmetic error", zap.String("op", aerr.Op), zap.Error(aerr))
					writeError(w, http.StatusInternalServerError, "arithmetic_error", aerr.Error())
					return
				}
				s.log.Error("panic in handler", zap.Any("recovered", rec))
				writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListMarkets(w http.ResponseWriter, r *http.Request) {
	markets := s.app.ListMarkets()
	out := make([]MarketInfo, 0, len(markets))
	for _, m := range markets {
		out = append(out, marketInfo(m))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetMarket(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	mb, err := s.app.GetMarketBook(symbol)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, marketInfo(mb.Market))
}

func (s *Server) handleGetOrderbook(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	mb, err := s.app.GetMarketBook(symbol)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", err.Error())
		return
	}

	snapshot := OrderbookSnapshot{
		Symbol:    symbol,
		Bids:      toAPILevels(mb.Book.GetBidLevels()),
		Asks:      toAPILevels(mb.Book.GetAskLevels()),
		Timestamp: time.Now().Unix(),
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleGetTrades(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	if _, err := s.app.GetMarketBook(symbol); err != nil {
		writeError(w, http.StatusNotFound, "not_found", err.Error())
		return
	}
	// This handler has no reference to the durable store, and no code path
	// of the running node records fills there, so the list is always empty.
	writeJSON(w, http.StatusOK, []FillInfo{})
}

func (s *Server) handleSubmitOffer(w http.ResponseWriter, r *http.Request) {
	var req SubmitOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}

	side, err := parseSide(req.Side)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	o := &orderbook.Offer{
		ID:          req.ID,
		Side:        side,
		Price:       exchange.Price{N: req.PriceN, D: req.PriceD},
		WheatAmount: req.WheatAmount,
		Type:        req.Type,
		OwnerHex:    req.OwnerHex,
	}

	symbol := r.URL.Query().Get("market")
	fills, err := s.app.SubmitOffer(symbol, o)
	if err != nil {
		writeError(w, http.StatusBadRequest, "rejected", err.Error())
		return
	}

	apiFills := make([]FillInfo, 0, len(fills))
	for _, f := range fills {
		fi := fillInfo(f)
		apiFills = append(apiFills, fi)
		s.hub.BroadcastToChannel("fills:"+symbol, FillUpdate{Type: "fill", Symbol: symbol, Fill: fi})
	}

	if mb, err := s.app.GetMarketBook(symbol); err == nil {
		snapshot := OrderbookSnapshot{
			Symbol:    symbol,
			Bids:      toAPILevels(mb.Book.GetBidLevels()),
			Asks:      toAPILevels(mb.Book.GetAskLevels()),
			Timestamp: time.Now().Unix(),
		}
		s.hub.BroadcastToChannel("orderbook:"+symbol, OrderbookUpdate{Type: "orderbook", Symbol: symbol, Book: snapshot})
	}

	writeJSON(w, http.StatusOK, SubmitOfferResponse{Status: "accepted", Fills: apiFills})
}

func (s *Server) handleCancelOffer(w http.ResponseWriter, r *http.Request) {
	var req CancelOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}

	symbol := r.URL.Query().Get("market")
	ok, err := s.app.CancelOffer(symbol, req.OrderID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "offer not resident")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"cancelled": true})
}

func (s *Server) handleCrossDirect(w http.ResponseWriter, r *http.Request) {
	var req CrossDirectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}

	mode, err := parseRoundingMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	price := exchange.Price{N: req.PriceN, D: req.PriceD}
	limits := exchange.Limits{
		MaxWheatSend:    req.MaxWheatSend,
		MaxWheatReceive: req.MaxWheatReceive,
		MaxSheepSend:    req.MaxSheepSend,
		MaxSheepReceive: req.MaxSheepReceive,
	}
	if err := price.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if err := limits.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	result := app.SubmitDirect(price, limits, mode)
	writeJSON(w, http.StatusOK, CrossDirectResponse{
		WheatReceived: result.WheatReceived,
		SheepSent:     result.SheepSent,
		WheatStays:    result.WheatStays,
	})
}

func marketInfo(m *market.Market) MarketInfo {
	return MarketInfo{
		Symbol:      m.Symbol,
		WheatAsset:  m.WheatAsset,
		SheepAsset:  m.SheepAsset,
		Status:      m.Status.String(),
		TickSize:    m.TickSize,
		LotSize:     m.LotSize,
		MinNotional: m.MinNotional,
		Scale:       m.Scale,
	}
}

func parseSide(s string) (orderbook.Side, error) {
	switch s {
	case "buy", "BUY":
		return orderbook.Buy, nil
	case "sell", "SELL":
		return orderbook.Sell, nil
	default:
		return 0, errInvalidSide
	}
}

func parseRoundingMode(s string) (exchange.RoundingMode, error) {
	switch s {
	case "NORMAL", "":
		return exchange.RoundingNormal, nil
	case "PATH_PAYMENT_STRICT_SEND":
		return exchange.RoundingPathPaymentStrictSend, nil
	case "PATH_PAYMENT_STRICT_RECEIVE":
		return exchange.RoundingPathPaymentStrictReceive, nil
	default:
		return 0, errInvalidMode
	}
}

func toAPILevels(levels []orderbook.PriceLevel) []PriceLevel {
	out := make([]PriceLevel, 0, len(levels))
	for _, l := range levels {
		out = append(out, PriceLevel{PriceN: l.PriceN, WheatAmount: l.WheatAmount})
	}
	return out
}

func fillInfo(f orderbook.Fill) FillInfo {
	return FillInfo{
		TakerID:     f.TakerID,
		MakerID:     f.MakerID,
		PriceN:      f.Price.N,
		PriceD:      f.Price.D,
		WheatAmount: f.WheatAmount,
		SheepAmount: f.SheepAmount,
	}
}

var (
	errInvalidSide = jsonError("offer side must be \"buy\" or \"sell\"")
	errInvalidMode = jsonError("mode must be NORMAL, PATH_PAYMENT_STRICT_SEND, or PATH_PAYMENT_STRICT_RECEIVE")
)

type jsonError string

func (e jsonError) Error() string { return string(e) }
