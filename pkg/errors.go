// Package pkg, projede paylaşılan utility'leri barındırır.
// Bu dosya domain-level error tanımlarını içerir.
//
// Error karşılaştırması string yerine referans ile yapılır:
//
//	if errors.Is(err, pkg.ErrNotFound) { ... }
package pkg

import "errors"

// Domain-level error'lar.
// Handler katmanı bu error'ları HTTP status code'larına map'ler.
// Service katmanı bunları wrap ederek döner: fmt.Errorf("%w: ...", pkg.ErrBadRequest)
var (
	ErrNotFound      = errors.New("not found")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrAlreadyExists = errors.New("already exists")
	ErrBadRequest    = errors.New("bad request")
	// ErrConflict, kaynağın mevcut durumu işlemi engellediğinde döner
	// (stok yetersiz, geçersiz sipariş durumu geçişi, bağlı kayıt var vb.).
	ErrConflict = errors.New("conflict")
	ErrInternal = errors.New("internal error")
	// ErrTooManyRequests, kullanıcı bazlı rate limit aşıldığında döner (429).
	ErrTooManyRequests = errors.New("too many requests")
)
