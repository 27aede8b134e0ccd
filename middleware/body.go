package middleware

import "net/http"

// MaxBody, request body'sini n byte ile sınırlar. Aşılırsa body okuması
// hata verir ve handler 400 döner — sınırsız upload diski/RAM'i dolduramaz.
func MaxBody(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, n)
			next.ServeHTTP(w, r)
		})
	}
}
