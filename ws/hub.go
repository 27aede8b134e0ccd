package ws

import (
	"encoding/json"
	"log"
	"sync"
	"sync/atomic"

	"github.com/akinalp/pazar/models"
)

// Target, bir event'in kime gideceği. Alanlar birleşim (OR) olarak yorumlanır;
// bir bağlantı birden fazla kritere uysa bile event'i bir kez alır.
type Target struct {
	All     bool
	Roles   []models.UserRole
	UserIDs []string
}

func (t Target) matches(c *Client) bool {
	if t.All {
		return true
	}
	for _, id := range t.UserIDs {
		if c.userID == id {
			return true
		}
	}
	for _, role := range t.Roles {
		if c.role.Satisfies(role) {
			return true
		}
	}
	return false
}

// EventPublisher, service katmanının event yayınlamak için kullandığı interface.
// Service'ler Hub'a değil buna bağımlıdır; testlerde sahte publisher verilir.
type EventPublisher interface {
	Publish(target Target, event Event)
	BroadcastToAll(event Event)
	// DisconnectUser, kullanıcının tüm bağlantılarını kapatır. Rol değişikliği
	// veya hesap silme sonrası client yeni token ile tekrar bağlanmak zorunda kalır.
	DisconnectUser(userID string)
}

// Hub, tüm WebSocket bağlantılarını yönetir.
//
// clients map'i mu ile korunur: broadcast'ler RLock altında okur,
// register/unregister sadece Run goroutine'inde Lock ile yazar.
type Hub struct {
	clients map[string]map[*Client]bool
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client

	seq atomic.Int64

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewHub, yeni bir Hub oluşturur. Run ayrı goroutine'de başlatılmalıdır.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Run, Hub'ın event loop'u. Shutdown çağrılana kadar bloklar.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-h.stop:
			h.closeAll()
			return
		}
	}
}

// Shutdown, tüm bağlantıları kapatır ve Run'ın dönmesini bekler.
func (h *Hub) Shutdown() {
	h.stopOnce.Do(func() { close(h.stop) })
	<-h.done
}

// join, client'ı kaydeder ve kaydın tamamlanmasını bekler.
// Hub kapanmışsa false döner.
func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
	case <-h.stop:
		return false
	}
	select {
	case <-c.registered:
		return true
	case <-h.stop:
		return false
	}
}

// leave, client'ı kayıttan çıkarır. Hub kapanmışsa hiçbir şey yapmaz —
// closeAll zaten tüm send channel'larını kapatmıştır.
func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.stop:
	}
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c.userID]; !ok {
		h.clients[c.userID] = make(map[*Client]bool)
	}
	h.clients[c.userID][c] = true
	close(c.registered)

	log.Printf("[ws] client connected: user=%s role=%s (connections: %d)",
		c.userID, c.role, len(h.clients[c.userID]))
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.clients[c.userID]
	if !ok || !conns[c] {
		return
	}
	delete(conns, c)
	close(c.send)

	if len(conns) == 0 {
		delete(h.clients, c.userID)
	}
	log.Printf("[ws] client disconnected: user=%s (remaining: %d)", c.userID, len(conns))
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, conns := range h.clients {
		for c := range conns {
			close(c.send)
		}
	}
	h.clients = make(map[string]map[*Client]bool)
	log.Println("[ws] hub shut down, all connections closed")
}

// Publish, target'a uyan tüm bağlantılara event'i gönderir.
func (h *Hub) Publish(target Target, event Event) {
	event.Seq = h.seq.Add(1)

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[ws] failed to marshal %s event: %v", event.Op, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, conns := range h.clients {
		for c := range conns {
			if target.matches(c) {
				h.deliverLocked(c, data)
			}
		}
	}
}

// BroadcastToAll, tüm bağlantılara gönderir.
func (h *Hub) BroadcastToAll(event Event) {
	h.Publish(Target{All: true}, event)
}

// DisconnectUser, kullanıcının tüm bağlantılarını kapatır.
func (h *Hub) DisconnectUser(userID string) {
	h.mu.RLock()
	conns := make([]*Client, 0, len(h.clients[userID]))
	for c := range h.clients[userID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		go h.leave(c)
	}
}

// sendToClient, tek bir client'a (heartbeat_ack, ready) gönderir.
// Client kayıtlı değilse (zaten kapanmışsa) sessizce atlanır.
func (h *Hub) sendToClient(c *Client, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[ws] failed to marshal %s event: %v", event.Op, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.clients[c.userID][c] {
		h.deliverLocked(c, data)
	}
}

// deliverLocked, mu.RLock tutulurken çağrılmalıdır. Buffer'ı dolu client
// yavaştır — bloklamak yerine bağlantısı kapatılır.
func (h *Hub) deliverLocked(c *Client, data []byte) {
	select {
	case c.send <- data:
	default:
		log.Printf("[ws] send buffer full for user %s, dropping connection", c.userID)
		go h.leave(c)
	}
}

// OnlineUserCount, bağlı tekil kullanıcı sayısı.
func (h *Hub) OnlineUserCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
