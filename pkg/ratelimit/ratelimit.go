// Package ratelimit, anahtar bazlı (IP, kullanıcı ID) sabit pencereli
// istek sınırlayıcı sağlar.
//
// Kullanım yerleri:
//   - Login: IP başına 2 dakikada 5 deneme (brute-force engeli)
//   - Review oluşturma: kullanıcı başına dakikada birkaç yorum (spam engeli)
//
// Tek instance deploy için in-memory yeterli; SQLite'a her istekte yazmak
// gereksiz contention yaratır. pkg/ratelimit proje içi hiçbir pakete bağımlı
// değildir — handlers ile middleware arasında import cycle oluşmaz.
package ratelimit

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// bucket, bir anahtar için pencere başlangıcı ve sayaç.
type bucket struct {
	count       int
	windowStart time.Time
}

// Limiter, anahtar başına window içinde en fazla max istek kabul eder.
//
//	limiter := ratelimit.New(5, 2*time.Minute)
//	defer limiter.Stop()
//	if !limiter.Allow(ip) { ... 429 ... }
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	max     int
	window  time.Duration
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// New, limiter oluşturur ve süresi dolan bucket'ları silen arka plan
// goroutine'ini başlatır. Stop() ile durdurulmalıdır.
func New(max int, window time.Duration) *Limiter {
	l := &Limiter{
		buckets: make(map[string]*bucket),
		max:     max,
		window:  window,
		now:     time.Now,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go l.cleanupLoop(cleanupInterval(window))
	return l
}

func cleanupInterval(window time.Duration) time.Duration {
	if window < time.Minute {
		return window
	}
	return time.Minute
}

// Allow, isteği sayar ve limit aşılmadıysa true döner.
func (l *Limiter) Allow(key string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok || now.Sub(b.windowStart) > l.window {
		l.buckets[key] = &bucket{count: 1, windowStart: now}
		return true
	}

	b.count++
	return b.count <= l.max
}

// Reset, anahtarın sayacını siler. Başarılı login sonrası çağrılır —
// yoksa meşru kullanıcı önceki hatalı denemeleri yüzünden bloke kalır.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, key)
}

// RetryAfterSeconds, pencere sonuna kalan süre (Retry-After header'ı için).
func (l *Limiter) RetryAfterSeconds(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		return 0
	}
	remaining := l.window - l.now().Sub(b.windowStart)
	if remaining <= 0 {
		return 0
	}
	return int(remaining.Seconds()) + 1
}

// Stop, temizlik goroutine'ini durdurur ve bitmesini bekler.
// Birden fazla çağrı güvenlidir.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
	<-l.done
}

func (l *Limiter) cleanupLoop(interval time.Duration) {
	defer close(l.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.evict()
		case <-l.stop:
			return
		}
	}
}

func (l *Limiter) evict() {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, b := range l.buckets {
		if now.Sub(b.windowStart) > l.window {
			delete(l.buckets, key)
		}
	}
}

// ExtractIP, request'ten client IP'sini çıkarır.
//
// Uygulama genelde nginx/Caddy arkasında çalışır, RemoteAddr proxy'nin
// adresidir. Bu yüzden önce X-Forwarded-For (ilk eleman), sonra X-Real-IP bakılır.
func ExtractIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// FormatRetryMessage, saniyeyi okunabilir mesaja çevirir: 130 → "3 minute(s)".
func FormatRetryMessage(seconds int) string {
	if seconds >= 60 {
		return fmt.Sprintf("%d minute(s)", (seconds+59)/60)
	}
	return fmt.Sprintf("%d second(s)", seconds)
}
