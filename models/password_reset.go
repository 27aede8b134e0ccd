// Package models — Password reset token ve ilgili request struct'ları.
//
// Token plaintext olarak SAKLANMAZ — SHA256 hash'i saklanır.
// DB sızsa bile token'lar kullanılamaz.
package models

import (
	"strings"
	"time"
)

// PasswordResetToken, şifre sıfırlama token'ının DB kaydı.
type PasswordResetToken struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TokenHash string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// ForgotPasswordRequest, "şifremi unuttum" isteği.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// Validate, ForgotPasswordRequest geçerlilik kontrolü.
func (r *ForgotPasswordRequest) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	return validateStruct(r)
}

// ResetPasswordRequest, email'deki token ile şifre sıfırlama isteği.
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=128"`
}

// Validate, ResetPasswordRequest geçerlilik kontrolü.
func (r *ResetPasswordRequest) Validate() error {
	r.Token = strings.TrimSpace(r.Token)
	return validateStruct(r)
}
