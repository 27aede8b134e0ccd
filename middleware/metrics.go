package middleware

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/akinalp/pazar/pkg/metrics"
)

// statusRecorder, handler'ın yazdığı status code'u yakalar.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Unwrap, http.ResponseController'ın alttaki writer'a ulaşması için.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Hijack, WebSocket upgrade'i (/ws) bu wrapper'ın arkasında da çalışsın diye.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// Metrics, her isteği Prometheus'a kaydeder. Mux'ın DIŞINA sarılır.
//
// route etiketi olarak path değil r.Pattern ("GET /api/products/{idOrSlug}")
// kullanılır — ID'ler label kardinalitesini patlatmaz. Mux eşleşme sonrası
// Pattern'i aynı *http.Request üzerine yazar, next döndükten sonra okunabilir.
func Metrics(m *metrics.Metrics, next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(r.Method, route, strconv.Itoa(rec.status), time.Since(start))
	})
}
