package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/freQuensy23-coder/morphoEmergency/metrics"
)

// Hub maintains the set of active clients and broadcasts ledger updates
type Hub struct {
	clients  map[*Client]bool
	channels map[string]map[*Client]bool // channel -> clients

	// Inbound messages from clients
	broadcast chan []byte

	// Register/unregister requests
	register   chan *Client
	unregister chan *Client

	// Channel subscription requests
	subscribe   chan *SubscriptionRequest
	unsubscribe chan *SubscriptionRequest

	// Latest pool state per pool, rebroadcast on an interval
	poolStateBuffer map[string]*PoolStateMessage

	mu sync.RWMutex

	config *HubConfig
}

// HubConfig contains hub configuration
type HubConfig struct {
	// How often buffered pool state is rebroadcast
	PoolStateInterval time.Duration

	// Connection limits
	MaxSubscriptions int

	// Messages per second per client
	MessageRateLimit int
}

// DefaultHubConfig returns default hub configuration
func DefaultHubConfig() *HubConfig {
	return &HubConfig{
		PoolStateInterval: time.Second,
		MaxSubscriptions:  50,
		MessageRateLimit:  100,
	}
}

// SubscriptionRequest represents a subscription request
type SubscriptionRequest struct {
	Client  *Client
	Channel string
	Action  string // "subscribe" or "unsubscribe"
}

// NewHub creates a new Hub
func NewHub(config *HubConfig) *Hub {
	if config == nil {
		config = DefaultHubConfig()
	}

	return &Hub{
		clients:         make(map[*Client]bool),
		channels:        make(map[string]map[*Client]bool),
		broadcast:       make(chan []byte, 256),
		register:        make(chan *Client),
		unregister:      make(chan *Client),
		subscribe:       make(chan *SubscriptionRequest, 256),
		unsubscribe:     make(chan *SubscriptionRequest, 256),
		poolStateBuffer: make(map[string]*PoolStateMessage),
		config:          config,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	stateTicker := time.NewTicker(h.config.PoolStateInterval)
	defer stateTicker.Stop()

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case req := <-h.subscribe:
			h.handleSubscription(req)

		case req := <-h.unsubscribe:
			h.handleUnsubscription(req)

		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case <-stateTicker.C:
			h.broadcastPoolStates()
		}
	}
}

// registerClient adds a new client
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true
	metrics.GetCollector().RecordWSConnection(1)
}

// unregisterClient removes a client
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)

		for channel, clients := range h.channels {
			delete(clients, client)
			if len(clients) == 0 {
				delete(h.channels, channel)
			}
		}

		close(client.send)
		metrics.GetCollector().RecordWSConnection(-1)
	}
}

// handleSubscription handles a subscription request
func (h *Hub) handleSubscription(req *SubscriptionRequest) {
	h.mu.Lock()
	defer h.mu.Unlock()

	channel := req.Channel
	client := req.Client

	if _, ok := h.channels[channel]; !ok {
		h.channels[channel] = make(map[*Client]bool)
	}
	h.channels[channel][client] = true

	confirmation := &WSMessage{
		Type:    "subscribed",
		Channel: channel,
		Data:    nil,
	}
	data, _ := json.Marshal(confirmation)
	client.send <- data
}

// handleUnsubscription handles an unsubscription request
func (h *Hub) handleUnsubscription(req *SubscriptionRequest) {
	h.mu.Lock()
	defer h.mu.Unlock()

	channel := req.Channel
	client := req.Client

	if clients, ok := h.channels[channel]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.channels, channel)
		}
	}

	confirmation := &WSMessage{
		Type:    "unsubscribed",
		Channel: channel,
		Data:    nil,
	}
	data, _ := json.Marshal(confirmation)
	client.send <- data
}

// broadcastMessage sends a message to all connected clients
func (h *Hub) broadcastMessage(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			// Client buffer is full, skip
		}
	}
}

// BroadcastToChannel sends a message to all clients subscribed to a channel
func (h *Hub) BroadcastToChannel(channel string, message interface{}) {
	h.mu.RLock()
	clients, ok := h.channels[channel]
	if !ok {
		h.mu.RUnlock()
		return
	}

	// Copy clients to avoid holding the lock during send
	clientList := make([]*Client, 0, len(clients))
	for client := range clients {
		clientList = append(clientList, client)
	}
	h.mu.RUnlock()

	data, err := json.Marshal(message)
	if err != nil {
		return
	}

	for _, client := range clientList {
		select {
		case client.send <- data:
		default:
			// Client buffer is full, skip
		}
	}
}

// ============ Channel-specific broadcasts ============

// UpdatePoolState updates the buffered state for a pool
func (h *Hub) UpdatePoolState(poolID string, state *PoolStateMessage) {
	h.mu.Lock()
	h.poolStateBuffer[poolID] = state
	h.mu.Unlock()
}

// broadcastPoolStates rebroadcasts all buffered pool states
func (h *Hub) broadcastPoolStates() {
	h.mu.RLock()
	states := make(map[string]*PoolStateMessage)
	for k, v := range h.poolStateBuffer {
		states[k] = v
	}
	h.mu.RUnlock()

	for poolID, state := range states {
		channel := "pool:" + poolID
		msg := &WSMessage{
			Type:    "pool_state",
			Channel: channel,
			Data:    state,
		}
		h.BroadcastToChannel(channel, msg)
		metrics.GetCollector().RecordWSMessage("pool_state")
	}
}

// BroadcastLedgerEvent broadcasts a ledger record to the pool channel and
// the affected user's channel
func (h *Hub) BroadcastLedgerEvent(event *LedgerEventMessage) {
	poolChannel := "pool:" + event.PoolID
	msg := &WSMessage{
		Type:    event.Kind,
		Channel: poolChannel,
		Data:    event,
	}
	h.BroadcastToChannel(poolChannel, msg)

	if event.User != "" {
		userChannel := "user:" + event.User
		userMsg := &WSMessage{
			Type:    event.Kind,
			Channel: userChannel,
			Data:    event,
		}
		h.BroadcastToChannel(userChannel, userMsg)
	}

	metrics.GetCollector().RecordWSMessage(event.Kind)
}

// BroadcastEmergency broadcasts an emergency freeze to the pool channel
func (h *Hub) BroadcastEmergency(event *EmergencyMessage) {
	channel := "pool:" + event.PoolID
	msg := &WSMessage{
		Type:    "emergency",
		Channel: channel,
		Data:    event,
	}
	h.BroadcastToChannel(channel, msg)
	metrics.GetCollector().RecordWSMessage("emergency")
}

// ============ Message Types ============

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Channel string      `json:"channel"`
	Data    interface{} `json:"data,omitempty"`
}

// PoolStateMessage represents a pool's ledger state
type PoolStateMessage struct {
	PoolID          string `json:"pool_id"`
	AssetDenom      string `json:"asset_denom"`
	TotalShares     string `json:"total_shares"`
	Emergency       bool   `json:"emergency"`
	WithdrawnAssets string `json:"withdrawn_assets"`
	Timestamp       int64  `json:"timestamp"`
}

// LedgerEventMessage represents a deposit, withdrawal or claim
type LedgerEventMessage struct {
	RecordID  string `json:"record_id"`
	Kind      string `json:"kind"` // "deposit", "withdrawal", "emergency_claim"
	PoolID    string `json:"pool_id"`
	User      string `json:"user"`
	Assets    string `json:"assets"`
	Shares    string `json:"shares"`
	Fee       string `json:"fee"`
	Timestamp int64  `json:"timestamp"`
}

// EmergencyMessage represents an emergency freeze
type EmergencyMessage struct {
	PoolID          string `json:"pool_id"`
	WithdrawnAssets string `json:"withdrawn_assets"`
	FrozenShares    string `json:"frozen_shares"`
	Timestamp       int64  `json:"timestamp"`
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// GetChannelClientCount returns the number of clients in a channel
func (h *Hub) GetChannelClientCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if clients, ok := h.channels[channel]; ok {
		return len(clients)
	}
	return 0
}

// ServeWS handles WebSocket upgrade requests
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	clientID := r.URL.Query().Get("client_id")
	if clientID == "" {
		clientID = uuid.NewString()
	}

	address := r.URL.Query().Get("address")
	ip := getClientIPFromRequest(r)

	client := NewClient(h, conn, clientID, address, ip)

	h.register <- client

	go client.writePump()
	go client.readPump()
}

// Helper function to get client IP
func getClientIPFromRequest(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for i := 0; i < len(xff); i++ {
			if xff[i] == ',' {
				return xff[:i]
			}
		}
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	ip := r.RemoteAddr
	for i := len(ip) - 1; i >= 0; i-- {
		if ip[i] == ':' {
			return ip[:i]
		}
	}
	return ip
}
