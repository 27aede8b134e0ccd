package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func newTestLimiter(t *testing.T, max int, window time.Duration) (*Limiter, *time.Time) {
	t.Helper()
	l := New(max, window)
	t.Cleanup(l.Stop)

	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return clock }
	return l, &clock
}

func TestLimiter_AllowAndWindow(t *testing.T) {
	l, clock := newTestLimiter(t, 3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("1.2.3.4"), "deneme %d", i+1)
	}
	assert.False(t, l.Allow("1.2.3.4"))
	assert.True(t, l.Allow("5.6.7.8"), "anahtarlar birbirinden bağımsız")

	*clock = clock.Add(30 * time.Second)
	assert.Equal(t, 31, l.RetryAfterSeconds("1.2.3.4"))

	*clock = clock.Add(31 * time.Second)
	assert.True(t, l.Allow("1.2.3.4"), "pencere dolunca sayaç sıfırlanır")
}

func TestLimiter_Reset(t *testing.T) {
	l, _ := newTestLimiter(t, 1, time.Minute)

	require.True(t, l.Allow("u1"))
	require.False(t, l.Allow("u1"))
	l.Reset("u1")
	assert.True(t, l.Allow("u1"))
	assert.Equal(t, 0, l.RetryAfterSeconds("unknown"))
}

func TestLimiter_Evict(t *testing.T) {
	l, clock := newTestLimiter(t, 1, time.Minute)
	l.Allow("a")
	*clock = clock.Add(2 * time.Minute)
	l.Allow("b")

	l.evict()
	l.mu.Lock()
	defer l.mu.Unlock()
	assert.NotContains(t, l.buckets, "a")
	assert.Contains(t, l.buckets, "b")
}

func TestLimiter_StopNoLeak(t *testing.T) {
	defer goleak.VerifyNone(t)

	l := New(5, 10*time.Millisecond)
	l.Allow("x")
	l.Stop()
	l.Stop()
}

func TestExtractIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", ExtractIP(r))

	r.Header.Set("X-Real-IP", "9.9.9.9")
	assert.Equal(t, "9.9.9.9", ExtractIP(r))

	r.Header.Set("X-Forwarded-For", "1.1.1.1, 10.0.0.2")
	assert.Equal(t, "1.1.1.1", ExtractIP(r))
}

func TestFormatRetryMessage(t *testing.T) {
	assert.Equal(t, "45 second(s)", FormatRetryMessage(45))
	assert.Equal(t, "2 minute(s)", FormatRetryMessage(120))
	assert.Equal(t, "3 minute(s)", FormatRetryMessage(121))
}
