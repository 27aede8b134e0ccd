package cache

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestTTLCache_GetSetExpire(t *testing.T) {
	c := New[string, int](20*time.Millisecond, time.Hour)
	defer c.Close()

	c.Set("a", 1)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	time.Sleep(30 * time.Millisecond)
	_, ok = c.Get("a")
	assert.False(t, ok, "ttl sonrası okunamamalı")
	assert.Equal(t, 1, c.Len(), "fiziksel silme periyodik temizlikte")

	c.evictExpired()
	assert.Equal(t, 0, c.Len())
}

func TestTTLCache_GetOrLoad(t *testing.T) {
	c := New[string, string](time.Minute, time.Hour)
	defer c.Close()

	calls := 0
	load := func() (string, error) {
		calls++
		return "tree", nil
	}

	v, err := c.GetOrLoad("k", load)
	require.NoError(t, err)
	assert.Equal(t, "tree", v)
	_, _ = c.GetOrLoad("k", load)
	assert.Equal(t, 1, calls)

	c.Delete("k")
	_, _ = c.GetOrLoad("k", load)
	assert.Equal(t, 2, calls)

	boom := errors.New("db down")
	_, err = c.GetOrLoad("other", func() (string, error) { return "", boom })
	require.ErrorIs(t, err, boom)
	_, ok := c.Get("other")
	assert.False(t, ok, "hata cache'lenmemeli")
}

func TestTTLCache_DeleteFuncAndClear(t *testing.T) {
	c := New[string, int](time.Minute, time.Hour)
	defer c.Close()

	c.Set("cat:1", 1)
	c.Set("cat:2", 2)
	c.Set("settings", 3)

	c.DeleteFunc(func(k string) bool { return strings.HasPrefix(k, "cat:") })
	assert.Equal(t, 1, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestTTLCache_CloseStopsGoroutine(t *testing.T) {
	defer goleak.VerifyNone(t)

	c := New[int, int](time.Second, 5*time.Millisecond)
	c.Set(1, 1)
	time.Sleep(15 * time.Millisecond)
	c.Close()
	c.Close()
}
