// Package models, uygulamanın domain modellerini (veri yapıları) tanımlar.
//
// Model, veritabanındaki bir tablonun Go karşılığıdır ve aynı zamanda
// API'den gelen/giden verilerin şeklini belirler.
//
// `json:"..."` tag'leri serialize edilecek adı, `validate:"..."` tag'leri
// ise go-playground/validator kurallarını belirler.
package models

import (
	"strings"
	"time"
)

// UserRole, kullanıcının back-office yetki seviyesi.
type UserRole string

const (
	// RoleCustomer, storefront'tan alışveriş yapan standart kullanıcı.
	RoleCustomer UserRole = "customer"
	// RoleBuyer, bir veya daha fazla mağaza işleten satıcı hesabı.
	// Dashboard'da sadece kendi mağazalarını ve ürünlerini yönetir.
	RoleBuyer UserRole = "buyer"
	// RoleAdmin, tüm kataloğu, siparişleri ve sistem ayarlarını yönetir.
	RoleAdmin UserRole = "admin"
)

// Valid, rolün tanımlı değerlerden biri olup olmadığını kontrol eder.
func (r UserRole) Valid() bool {
	switch r {
	case RoleCustomer, RoleBuyer, RoleAdmin:
		return true
	}
	return false
}

// Satisfies, bu rolün istenen rollerden birini karşılayıp karşılamadığını döner.
// Admin her rolü karşılar.
func (r UserRole) Satisfies(required ...UserRole) bool {
	if r == RoleAdmin {
		return true
	}
	for _, want := range required {
		if r == want {
			return true
		}
	}
	return false
}

// User, bir kullanıcıyı temsil eder.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	DisplayName  *string   `json:"display_name"`
	Phone        *string   `json:"phone"`
	AvatarURL    *string   `json:"avatar_url"`
	PasswordHash string    `json:"-"` // API response'a DAHİL EDİLMEZ
	Role         UserRole  `json:"role"`
	Language     string    `json:"language"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsAdmin, kısayol.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Summary, kullanıcının başka kayıtlara gömülen (review yazarı, sipariş
// müşterisi) kısa hali.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
	}
}

// UserSummary, kullanıcının public kısa gösterimi — email ve rol içermez.
type UserSummary struct {
	ID          string  `json:"id"`
	Username    string  `json:"username"`
	DisplayName *string `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
}

// CreateUserRequest, kayıt olurken frontend'den gelen veri.
// PasswordHash yerine Password alınır — hash'leme service katmanında yapılır.
type CreateUserRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=32,username"`
	Email       string `json:"email" validate:"required,email,max=254"`
	Password    string `json:"password" validate:"required,min=8,max=128"`
	DisplayName string `json:"display_name" validate:"max=64"`
	// Language boşsa handler Accept-Language'dan doldurur; email'ler bu dilde gider.
	Language string `json:"language" validate:"omitempty,oneof=en tr"`
}

// Validate, alanları normalize eder ve kuralları kontrol eder.
// Email küçük harfe çevrilir — unique index case-sensitive çalışır.
func (r *CreateUserRequest) Validate() error {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.DisplayName = strings.TrimSpace(r.DisplayName)
	r.Language = strings.ToLower(strings.TrimSpace(r.Language))
	return validateStruct(r)
}

// LoginRequest, giriş isteği. Login alanı kullanıcı adı veya email olabilir.
type LoginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Validate, LoginRequest'in geçerli olup olmadığını kontrol eder.
// Email ile girişte Login küçük harfe çevrilir; kayıtta da öyle saklanır.
func (r *LoginRequest) Validate() error {
	r.Login = strings.TrimSpace(r.Login)
	if r.IsEmail() {
		r.Login = strings.ToLower(r.Login)
	}
	return validateStruct(r)
}

// IsEmail, Login alanının email gibi görünüp görünmediğini döner.
func (r *LoginRequest) IsEmail() bool {
	return strings.Contains(r.Login, "@")
}

// UpdateProfileRequest, kullanıcının kendi profilini güncellemesi.
// Pointer alanlar: nil → değişmez (partial update).
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name" validate:"omitempty,max=64"`
	Phone       *string `json:"phone" validate:"omitempty,max=32"`
	Language    *string `json:"language" validate:"omitempty,oneof=en tr"`
}

// Validate, UpdateProfileRequest kontrolü.
func (r *UpdateProfileRequest) Validate() error {
	trimPtr(r.DisplayName)
	trimPtr(r.Phone)
	trimPtr(r.Language)
	return validateStruct(r)
}

// ChangePasswordRequest, oturum açmış kullanıcının şifre değişikliği.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
}

// Validate, ChangePasswordRequest kontrolü.
func (r *ChangePasswordRequest) Validate() error {
	return validateStruct(r)
}

// UpdateRoleRequest, admin'in bir kullanıcının rolünü değiştirmesi.
type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=customer buyer admin"`
}

// Validate, UpdateRoleRequest kontrolü.
func (r *UpdateRoleRequest) Validate() error {
	r.Role = strings.ToLower(strings.TrimSpace(r.Role))
	return validateStruct(r)
}

// UserFilter, admin kullanıcı listesi filtreleri.
type UserFilter struct {
	ListParams
	Role UserRole
}
