package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/akinalp/pazar/models"
)

const (
	// writeWait, tek bir yazma işleminin en uzun süresi.
	writeWait = 10 * time.Second

	// pongWait, heartbeat gelmezse bağlantının kapanacağı süre.
	// Client 30sn'de bir heartbeat gönderir; 3 kaçırma tolere edilir.
	pongWait = 90 * time.Second

	// Client'tan sadece heartbeat beklenir, büyük mesaj gelmez.
	maxMessageSize = 1024

	sendBufferSize = 64
)

// Client, tek bir WebSocket bağlantısı.
//
// İki goroutine ile çalışır:
//   - ReadPump: client'tan gelenleri okur (heartbeat), bağlantı kopunca Hub'dan çıkar
//   - WritePump: send channel'ındaki mesajları bağlantıya yazar
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string
	role   models.UserRole
	send   chan []byte
	mu     sync.Mutex // conn yazmalarını korur

	registered chan struct{} // Hub'a eklenince kapanır
}

// ReadPump, bağlantı kapanana kadar bloklar.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.leave(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("[ws] failed to set read deadline for user %s: %v", c.userID, err)
		return
	}

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws] unexpected close for user %s: %v", c.userID, err)
			}
			return
		}

		var event Event
		if err := json.Unmarshal(raw, &event); err != nil {
			log.Printf("[ws] invalid message from user %s: %v", c.userID, err)
			continue
		}

		switch event.Op {
		case OpHeartbeat:
			if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
				return
			}
			c.hub.sendToClient(c, Event{Op: OpHeartbeatAck})
		default:
			log.Printf("[ws] unknown op from user %s: %s", c.userID, event.Op)
		}
	}
}

// WritePump, send channel kapanana kadar mesajları yazar. Channel Hub
// tarafından kapatılınca close frame gönderilir.
func (c *Client) WritePump() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.write(websocket.TextMessage, message); err != nil {
			// Bağlantıyı kapatmak ReadPump'ı hata ile döndürür, o da leave çağırır.
			// O zamana kadar send boşaltılır.
			c.conn.Close()
			for range c.send {
			}
			return
		}
	}
	_ = c.write(websocket.CloseMessage, nil)
}

func (c *Client) write(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}
