package websocket

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/HSouheill/branchstock_backend/models"
)

// Define notification types
const (
	NotificationTypeConnected    = "connected"
	NotificationTypeSaleRecorded = "sale_recorded"
	NotificationTypeLowStock     = "low_stock"
	NotificationTypeOwnerMessage = "owner_message"
)

const sendBuffer = 16

// Notification represents a message sent over WebSocket
type Notification struct {
	Type     string      `json:"type"`
	Message  string      `json:"message"`
	Data     interface{} `json:"data,omitempty"`
	BranchID string      `json:"branchId,omitempty"`
}

// Client represents a connected WebSocket client
type Client struct {
	UID      string
	Role     models.Role
	BranchID string
	Conn     *websocket.Conn
	send     chan Notification
}

func NewClient(conn *websocket.Conn, info *models.RoleInfo) *Client {
	c := &Client{
		UID:  info.UID,
		Role: info.Role,
		Conn: conn,
		send: make(chan Notification, sendBuffer),
	}
	if info.BranchID != nil {
		c.BranchID = *info.BranchID
	}
	return c
}

// Hub maintains the set of active clients and fans notifications out to them
type Hub struct {
	clients    map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop until stop is closed
func (h *Hub) Run(stop <-chan struct{}) {
	defer close(h.done)
	for {
		select {
		case <-stop:
			h.mu.Lock()
			for _, set := range h.clients {
				for client := range set {
					close(client.send)
				}
			}
			h.clients = make(map[string]map[*Client]bool)
			h.mu.Unlock()
			return
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.UID] == nil {
				h.clients[client.UID] = make(map[*Client]bool)
			}
			h.clients[client.UID][client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if set, ok := h.clients[client.UID]; ok && set[client] {
				delete(set, client)
				close(client.send)
				if len(set) == 0 {
					delete(h.clients, client.UID)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Register adds a client; its notifications flow once Run picks it up.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Disconnect closes every connection of uid and reports how many there were.
// The clients reconnect and pick up their current role.
func (h *Hub) Disconnect(uid string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.clients[uid]
	for client := range set {
		close(client.send)
	}
	delete(h.clients, uid)
	return len(set)
}

// deliver queues n for every client accepted by match. A client whose
// buffer is full misses the notification.
func (h *Hub) deliver(n Notification, match func(*Client) bool) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	for _, set := range h.clients {
		for client := range set {
			if !match(client) {
				continue
			}
			select {
			case client.send <- n:
				sent++
			default:
				log.Warn().Str("uid", client.UID).Str("type", n.Type).Msg("websocket client too slow, notification dropped")
			}
		}
	}
	return sent
}

// SendToUser queues a notification for every connection of uid
func (h *Hub) SendToUser(uid string, n Notification) int {
	return h.deliver(n, func(c *Client) bool { return c.UID == uid })
}

// BroadcastToAdmins queues a notification for every connected admin
func (h *Hub) BroadcastToAdmins(n Notification) int {
	return h.deliver(n, func(c *Client) bool { return c.Role == models.RoleAdmin })
}

// SaleRecorded tells admins about a committed sale.
func (h *Hub) SaleRecorded(receipt models.SaleReceipt) {
	h.BroadcastToAdmins(Notification{
		Type:     NotificationTypeSaleRecorded,
		Message:  "Sale recorded",
		Data:     receipt,
		BranchID: receipt.Sale.BranchID,
	})
}

// LowStock tells admins and the branch's workers that an item runs low.
func (h *Hub) LowStock(branchID string, item models.LowStockItem) {
	h.deliver(Notification{
		Type:     NotificationTypeLowStock,
		Message:  item.Label + " is running low",
		Data:     item,
		BranchID: branchID,
	}, func(c *Client) bool {
		return c.Role == models.RoleAdmin || (c.Role == models.RoleWorker && c.BranchID == branchID)
	})
}

// OwnerMessage forwards a worker's note to admins.
func (h *Hub) OwnerMessage(msg models.OwnerMessage) {
	h.BroadcastToAdmins(Notification{
		Type:     NotificationTypeOwnerMessage,
		Message:  "New message from " + msg.WorkerName,
		Data:     msg,
		BranchID: msg.BranchID,
	})
}
