package sse

import (
	"sync"

	domainSync "github.com/quotehub/quotehub/internal/domain/sync"
)

// Hub manages live sync subscriptions. Publishes never block: a client
// whose buffer is full misses the event and recovers via the
// reconciliation poll.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*domainSync.Client
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*domainSync.Client),
	}
}

func (h *Hub) Register(client *domainSync.Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ClientID] = client
}

func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[clientID]; ok {
		c.Close()
		delete(h.clients, clientID)
	}
}

func (h *Hub) GetClient(clientID string) *domainSync.Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.clients[clientID]
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) PublishToAccount(accountID string, ev *domainSync.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		if c.AccountID == accountID {
			trySend(c, ev)
		}
	}
}

func (h *Hub) PublishToAll(ev *domainSync.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		trySend(c, ev)
	}
}

func (h *Hub) SendToClient(clientID string, ev *domainSync.Event) error {
	h.mu.RLock()
	c := h.clients[clientID]
	h.mu.RUnlock()
	if c == nil {
		return domainSync.ErrClientNotFound
	}
	if !trySend(c, ev) {
		return domainSync.ErrChannelFull
	}
	return nil
}

func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		c.Close()
		delete(h.clients, id)
	}
}

func trySend(c *domainSync.Client, ev *domainSync.Event) bool {
	select {
	case c.EventChan <- ev:
		return true
	default:
		return false
	}
}
