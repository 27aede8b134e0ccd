package ws

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/akinalp/pazar/models"
)

// fakeValidator, token string'ini "userID:role" olarak yorumlar.
type fakeValidator struct{}

func (fakeValidator) ValidateAccessToken(token string) (*models.TokenClaims, error) {
	id, role, ok := strings.Cut(token, ":")
	if !ok {
		return nil, errors.New("bad token")
	}
	return &models.TokenClaims{UserID: id, Role: models.UserRole(role)}, nil
}

type testEnv struct {
	hub    *Hub
	server *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	hub := NewHub()
	go hub.Run()

	handler := NewHandler(hub, fakeValidator{}, nil)
	server := httptest.NewServer(http.HandlerFunc(handler.HandleConnection))
	return &testEnv{hub: hub, server: server}
}

func (e *testEnv) close() {
	e.hub.Shutdown()
	e.server.Close()
}

func (e *testEnv) dial(t *testing.T, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(e.server.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	ev := readEvent(t, conn)
	require.Equal(t, OpReady, ev.Op)
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func expectNoEvent(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	var ev Event
	err := conn.ReadJSON(&ev)
	require.Error(t, err, "beklenmeyen event: %+v", ev)
}

func TestHub_HeartbeatAndTargets(t *testing.T) {
	defer goleak.VerifyNone(t)
	env := newTestEnv(t)
	defer env.close()

	admin := env.dial(t, "u-admin:admin")
	defer admin.Close()
	buyer := env.dial(t, "u-buyer:buyer")
	defer buyer.Close()
	customer := env.dial(t, "u-cust:customer")
	defer customer.Close()

	require.NoError(t, customer.WriteJSON(Event{Op: OpHeartbeat}))
	assert.Equal(t, OpHeartbeatAck, readEvent(t, customer).Op)

	// Admin rolü + buyer kullanıcısı; admin hem rol hem ID ile eşleşse de tek kopya alır.
	env.hub.Publish(Target{Roles: []models.UserRole{models.RoleAdmin}, UserIDs: []string{"u-buyer", "u-admin"}},
		Event{Op: OpOrderCreate, Data: map[string]string{"id": "o1"}})

	ev := readEvent(t, admin)
	assert.Equal(t, OpOrderCreate, ev.Op)
	assert.Positive(t, ev.Seq)
	expectNoEvent(t, admin)

	assert.Equal(t, OpOrderCreate, readEvent(t, buyer).Op)
	expectNoEvent(t, customer)

	env.hub.BroadcastToAll(CatalogInvalidate("p1", TagProducts))
	for _, c := range []*websocket.Conn{admin, buyer, customer} {
		ev := readEvent(t, c)
		assert.Equal(t, OpCatalogInvalidate, ev.Op)
	}

	assert.Equal(t, 3, env.hub.OnlineUserCount())
}

func TestHub_DisconnectUser(t *testing.T) {
	defer goleak.VerifyNone(t)
	env := newTestEnv(t)
	defer env.close()

	conn := env.dial(t, "u1:customer")
	defer conn.Close()

	env.hub.DisconnectUser("u1")

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNoStatusReceived, websocket.CloseNormalClosure) ||
		strings.Contains(err.Error(), "close"), "beklenen kapanış, alınan: %v", err)

	assert.Eventually(t, func() bool { return env.hub.OnlineUserCount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestHandler_RejectsMissingOrInvalidToken(t *testing.T) {
	env := newTestEnv(t)
	defer env.close()

	base := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(base, nil)
	require.Error(t, err)
	assert.Equal(t, 401, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(base+"?token=garbage", nil)
	require.Error(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://shop.example.com"})

	r := httptest.NewRequest("GET", "http://api.example.com/ws", nil)
	r.Header.Set("Origin", "https://shop.example.com")
	assert.True(t, check(r))

	r.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, check(r))

	r.Header.Set("Origin", "http://api.example.com")
	assert.True(t, check(r), "aynı host kabul edilir")

	assert.True(t, originChecker(nil)(r))
}
