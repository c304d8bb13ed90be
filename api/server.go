package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"cosmossdk.io/math"

	"github.com/freQuensy23-coder/morphoEmergency/api/middleware"
	"github.com/freQuensy23-coder/morphoEmergency/api/websocket"
	"github.com/freQuensy23-coder/morphoEmergency/metrics"
	"github.com/freQuensy23-coder/morphoEmergency/x/vaultpool/types"
)

// Server represents the API server
type Server struct {
	httpServer *http.Server
	hub        *websocket.Hub
	service    *PoolService
	config     *Config

	rateLimiter *middleware.RateLimiter
}

// Config contains server configuration
type Config struct {
	Host             string
	Port             int
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	DisableRateLimit bool // For testing purposes
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// NewServer creates a new API server around a pool service
func NewServer(config *Config, service *PoolService) *Server {
	if config == nil {
		config = DefaultConfig()
	}

	hub := websocket.NewHub(websocket.DefaultHubConfig())
	service.SetHub(hub)

	return &Server{
		config:      config,
		hub:         hub,
		service:     service,
		rateLimiter: middleware.NewRateLimiter(middleware.DefaultRateLimitConfig()),
	}
}

// Hub returns the websocket hub
func (s *Server) Hub() *websocket.Hub {
	return s.hub
}

// Start starts the API server
func (s *Server) Start() error {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/v1/health", s.handleHealth)

	// Pool queries
	mux.HandleFunc("/v1/pools", s.instrument("/v1/pools", s.handlePools))
	mux.HandleFunc("/v1/pools/", s.instrument("/v1/pools/{id}", s.handlePoolRoutes))

	// Fee configuration
	mux.HandleFunc("/v1/fee-config", s.instrument("/v1/fee-config", s.handleFeeConfig))

	// Operator
	mux.HandleFunc("/v1/operator", s.instrument("/v1/operator", s.handleOperator))

	// User ledger records
	mux.HandleFunc("/v1/records/", s.instrument("/v1/records/{addr}", s.handleRecords))

	// Ledger writes
	mux.HandleFunc("/v1/deposit", s.instrument("/v1/deposit", s.handleDeposit))
	mux.HandleFunc("/v1/withdraw", s.instrument("/v1/withdraw", s.handleWithdraw))
	mux.HandleFunc("/v1/emergency/trigger", s.instrument("/v1/emergency/trigger", s.handleTriggerEmergency))
	mux.HandleFunc("/v1/emergency/claim", s.instrument("/v1/emergency/claim", s.handleEmergencyClaim))

	// WebSocket
	mux.HandleFunc("/ws", s.hub.ServeWS)

	// Prometheus metrics
	mux.Handle("/metrics", metrics.Handler())

	// Middleware chain: CORS -> RateLimit -> Handler
	var handler http.Handler
	if s.config.DisableRateLimit {
		handler = corsMiddleware(mux)
	} else {
		handler = corsMiddleware(
			middleware.RateLimitMiddleware(s.rateLimiter)(mux),
		)
	}

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	go s.hub.Run()

	log.Printf("API server starting on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	s.rateLimiter.Stop()
	return s.httpServer.Shutdown(ctx)
}

// instrument wraps a handler with request metrics
func (s *Server) instrument(path string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		timer := metrics.NewTimer()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next(sw, r)
		metrics.GetCollector().RecordAPIRequest(r.Method, path, strconv.Itoa(sw.status), timer.ElapsedMs())
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
		"clients":   s.hub.GetClientCount(),
	})
}

// handlePools handles GET /v1/pools
func (s *Server) handlePools(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	pools := s.service.Pools()
	if pools == nil {
		pools = []*types.Pool{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"pools": pools,
	})
}

// handlePoolRoutes handles /v1/pools/{id} and its sub-resources
func (s *Server) handlePoolRoutes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	// Parse path: /v1/pools/{id} or /v1/pools/{id}/{endpoint}[/{arg}]
	path := r.URL.Path[len("/v1/pools/"):]

	poolID := path
	endpoint := ""
	for i, c := range path {
		if c == '/' {
			poolID = path[:i]
			endpoint = path[i+1:]
			break
		}
	}

	if poolID == "" {
		writeError(w, http.StatusBadRequest, "Pool ID required")
		return
	}

	arg := ""
	for i, c := range endpoint {
		if c == '/' {
			arg = endpoint[i+1:]
			endpoint = endpoint[:i]
			break
		}
	}

	switch endpoint {
	case "":
		pool := s.service.Pool(poolID)
		if pool == nil {
			writeError(w, http.StatusNotFound, "Pool not found")
			return
		}
		writeJSON(w, http.StatusOK, pool)

	case "positions":
		if arg == "" {
			positions := s.service.PoolPositions(poolID)
			if positions == nil {
				positions = []*types.UserPosition{}
			}
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"positions": positions,
			})
			return
		}
		writeJSON(w, http.StatusOK, s.service.Position(poolID, arg))

	case "preview":
		if arg == "" {
			writeError(w, http.StatusBadRequest, "Address required")
			return
		}
		assets, err := s.service.Preview(poolID, arg)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"pool_id": poolID,
			"address": arg,
			"assets":  assets.String(),
		})

	default:
		writeError(w, http.StatusNotFound, "Endpoint not found")
	}
}

// handleFeeConfig handles GET and POST /v1/fee-config
func (s *Server) handleFeeConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.service.FeeConfig())

	case http.MethodPost:
		var req struct {
			Caller    string `json:"caller"`
			Recipient string `json:"recipient"`
			Rate      string `json:"rate"`
			Enabled   bool   `json:"enabled"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		rate, err := math.LegacyNewDecFromStr(req.Rate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid fee rate")
			return
		}

		config := types.FeeConfig{
			Recipient: req.Recipient,
			Rate:      rate,
			Enabled:   req.Enabled,
		}
		if err := s.service.SetFeeConfig(req.Caller, config); err != nil {
			writeKeeperError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s.service.FeeConfig())

	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleOperator handles GET /v1/operator
func (s *Server) handleOperator(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"operator": s.service.Operator(),
	})
}

// handleRecords handles GET /v1/records/{addr}?kind=
func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	address := r.URL.Path[len("/v1/records/"):]
	if address == "" {
		writeError(w, http.StatusBadRequest, "Address required")
		return
	}

	kind := r.URL.Query().Get("kind")
	records := s.service.UserRecords(address, kind)
	if records == nil {
		records = []*types.LedgerRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"records": records,
	})
}

// handleDeposit handles POST /v1/deposit
func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req struct {
		Address  string `json:"address"`
		PoolID   string `json:"pool_id"`
		Amount   string `json:"amount"`
		Receiver string `json:"receiver,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !s.allowTx(w, req.Address) {
		return
	}

	amount, ok := math.NewIntFromString(req.Amount)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid amount")
		return
	}

	record, err := s.service.Deposit(req.Address, req.PoolID, amount, req.Receiver)
	if err != nil {
		writeKeeperError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// handleWithdraw handles POST /v1/withdraw
func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req struct {
		Address  string `json:"address"`
		PoolID   string `json:"pool_id"`
		Shares   string `json:"shares"`
		Receiver string `json:"receiver,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !s.allowTx(w, req.Address) {
		return
	}

	shares, ok := math.NewIntFromString(req.Shares)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid shares")
		return
	}

	record, err := s.service.Withdraw(req.Address, req.PoolID, shares, req.Receiver)
	if err != nil {
		writeKeeperError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// handleTriggerEmergency handles POST /v1/emergency/trigger
func (s *Server) handleTriggerEmergency(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req struct {
		Caller string `json:"caller"`
		PoolID string `json:"pool_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !s.allowTx(w, req.Caller) {
		return
	}

	pool, err := s.service.TriggerEmergency(req.Caller, req.PoolID)
	if err != nil {
		writeKeeperError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pool)
}

// handleEmergencyClaim handles POST /v1/emergency/claim
func (s *Server) handleEmergencyClaim(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req struct {
		Address string `json:"address"`
		PoolID  string `json:"pool_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !s.allowTx(w, req.Address) {
		return
	}

	record, err := s.service.EmergencyClaim(req.Address, req.PoolID)
	if err != nil {
		writeKeeperError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// allowTx enforces the per-address write limit
func (s *Server) allowTx(w http.ResponseWriter, address string) bool {
	if s.config.DisableRateLimit {
		return true
	}
	return middleware.CheckTxLimit(s.rateLimiter, w, address)
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": message,
	})
}

// writeKeeperError maps keeper errors onto HTTP status codes
func writeKeeperError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	switch {
	case types.ErrPoolNotFound.Is(err):
		status = http.StatusNotFound
	case types.ErrUnauthorized.Is(err):
		status = http.StatusForbidden
	case types.ErrExchangeFailed.Is(err), types.ErrTransferFailed.Is(err):
		status = http.StatusBadGateway
	}
	writeError(w, status, err.Error())
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
