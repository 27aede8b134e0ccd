package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/akinalp/pazar/models"
)

// TokenValidator, WebSocket handler'ın JWT doğrulaması için ihtiyaç duyduğu tek method.
// services paketi ws'yi import ettiği için burada services.AuthService kullanılamaz
// (import cycle); AuthService bu interface'i implicit olarak karşılar.
type TokenValidator interface {
	ValidateAccessToken(tokenString string) (*models.TokenClaims, error)
}

// Handler, GET /ws isteklerini WebSocket'e yükseltir.
type Handler struct {
	hub            *Hub
	tokenValidator TokenValidator
	upgrader       websocket.Upgrader
}

// NewHandler, constructor. allowedOrigins boşsa her origin kabul edilir
// (development); doluysa Origin header'ı listede veya request host'uyla aynı olmalı.
func NewHandler(hub *Hub, tokenValidator TokenValidator, allowedOrigins []string) *Handler {
	return &Handler{
		hub:            hub,
		tokenValidator: tokenValidator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if strings.EqualFold(origin, a) {
				return true
			}
		}
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}

// HandleConnection, token'ı doğrular ve bağlantıyı Hub'a kaydeder.
//
// Tarayıcı WebSocket API'si header gönderemez, token query'den gelir:
//
//	wss://host/ws?token=JWT
func (h *Handler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.tokenValidator.ValidateAccessToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed for user %s: %v", claims.UserID, err)
		return
	}

	client := &Client{
		hub:    h.hub,
		conn:   conn,
		userID: claims.UserID,
		role:   claims.Role,
		send:   make(chan []byte, sendBufferSize),

		registered: make(chan struct{}),
	}

	// ready, kayıttan önce boş buffer'a konur: Hub'a eklendikten sonra
	// gelen broadcast'ler her zaman ready'den sonra sıralanır.
	ready, _ := json.Marshal(Event{Op: OpReady, Data: ReadyData{
		UserID:     claims.UserID,
		Role:       string(claims.Role),
		ServerTime: time.Now().UTC(),
	}})
	client.send <- ready

	if !h.hub.join(client) {
		conn.Close()
		return
	}

	go client.WritePump()
	client.ReadPump() // bağlantı kapanana kadar bloklar
}
