package models

import "github.com/golang-jwt/jwt/v5"

// TokenClaims, JWT access token'ın payload'ı.
//
// Role claim'i token'a gömülür ama yetki kontrolü her request'te DB'den
// okunan kullanıcı üzerinden yapılır — rolü düşürülen kullanıcı eski
// token'ı ile admin endpoint'lerine erişemez.
type TokenClaims struct {
	UserID   string   `json:"user_id"`
	Username string   `json:"username"`
	Role     UserRole `json:"role"`
	jwt.RegisteredClaims
}
