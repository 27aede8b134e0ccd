// Package cache — generic, thread-safe in-memory TTL cache.
//
// Storefront'un sık okunan ama nadiren değişen verileri (sistem ayarları,
// kategori ağacı) her istekte DB'den okunmasın diye burada tutulur.
// Yazma işlemlerinde ilgili servis Delete/Clear ile invalidate eder.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLCache, her kaydın ttl süresi sonunda okunamaz olduğu cache.
//
//	c := cache.New[string, models.SystemSettings](time.Minute, 5*time.Minute)
//	defer c.Close()
//	s, err := c.GetOrLoad("settings", loadFromDB)
type TTLCache[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]entry[V]
	ttl     time.Duration

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// New, cache'i oluşturur ve süresi dolanları her cleanupInterval'da silen
// goroutine'i başlatır. Close() ile durdurulmalıdır.
func New[K comparable, V any](ttl, cleanupInterval time.Duration) *TTLCache[K, V] {
	c := &TTLCache[K, V]{
		entries: make(map[K]entry[V]),
		ttl:     ttl,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	go func() {
		defer close(c.done)
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.evictExpired()
			case <-c.stop:
				return
			}
		}
	}()

	return c
}

// Get, süresi dolmamış kaydı döner. Süresi dolan kayıt fiziksel olarak
// periyodik temizlikte silinir; Get sadece RLock alır.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set, kaydı ttl ile yazar.
func (c *TTLCache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[V]{value: value, expiresAt: time.Now().Add(c.ttl)}
}

// GetOrLoad, kayıt varsa döner; yoksa load'u çağırıp sonucu cache'ler.
// load hata dönerse hiçbir şey cache'lenmez.
//
// Aynı anda iki miss olursa load iki kez çalışabilir — ikisi de aynı
// DB durumunu okuduğu için sonuç tutarlıdır.
func (c *TTLCache[K, V]) GetOrLoad(key K, load func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, err := load()
	if err != nil {
		var zero V
		return zero, err
	}
	c.Set(key, v)
	return v, nil
}

// Delete, tek bir kaydı siler.
func (c *TTLCache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// DeleteFunc, predicate'i sağlayan tüm kayıtları siler.
func (c *TTLCache[K, V]) DeleteFunc(predicate func(key K) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.entries {
		if predicate(key) {
			delete(c.entries, key)
		}
	}
}

// Clear, tüm cache'i boşaltır.
func (c *TTLCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[K]entry[V])
}

// Len, süresi dolmuşlar dahil kayıt sayısı.
func (c *TTLCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close, temizlik goroutine'ini durdurur. Tekrar çağrılabilir.
func (c *TTLCache[K, V]) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
	<-c.done
}

func (c *TTLCache[K, V]) evictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}
