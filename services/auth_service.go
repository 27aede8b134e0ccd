// Package services, business logic katmanını barındırır.
//
// Service Layer Pattern nedir?
// Handler (HTTP) ile Repository (DB) arasında oturan katmandır.
// Tüm iş kuralları burada yaşar:
//   - Şifre hash'leme
//   - JWT token oluşturma
//   - Yetki kontrolleri (buyer sadece kendi mağazası)
//   - Stok, toplam ve sipariş durumu kuralları
//
// Service ASLA http.Request/Response bilmez — sadece domain modelleri alır/verir.
// Service ASLA doğrudan SQL çalıştırmaz — Repository interface'i kullanır.
package services

import (
	"cmp"
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"strings"
	"time"

	"github.com/akinalp/pazar/models"
	"github.com/akinalp/pazar/pkg"
	"github.com/akinalp/pazar/pkg/email"
	"github.com/akinalp/pazar/pkg/i18n"
	"github.com/akinalp/pazar/repository"
	"github.com/akinalp/pazar/ws"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	bcryptCost = 12

	// resetTokenTTL, şifre sıfırlama linkinin geçerlilik süresi.
	resetTokenTTL = 20 * time.Minute
	// resetCooldown, aynı kullanıcıya iki sıfırlama email'i arasındaki en kısa süre.
	resetCooldown = 90 * time.Second
)

// AuthService interface'i — dışarıya açık API.
// Handler bu interface'e bağımlıdır, concrete struct'a değil.
type AuthService interface {
	Register(ctx context.Context, req *models.CreateUserRequest) (*AuthTokens, error)
	Login(ctx context.Context, req *models.LoginRequest) (*AuthTokens, error)
	RefreshToken(ctx context.Context, refreshToken string) (*AuthTokens, error)
	Logout(ctx context.Context, refreshToken string) error
	ValidateAccessToken(tokenString string) (*models.TokenClaims, error)

	GetUser(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.User, error)
	ChangePassword(ctx context.Context, userID string, req *models.ChangePasswordRequest) error
	UpdateAvatar(ctx context.Context, userID string, file multipart.File, header *multipart.FileHeader) (*models.User, error)

	// ForgotPassword, kayıtlı email'e sıfırlama linki gönderir. Email kayıtlı
	// olmasa da nil döner — hangi email'lerin kayıtlı olduğu sızdırılmaz.
	ForgotPassword(ctx context.Context, req *models.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error

	// PurgeExpired, süresi dolmuş oturum ve sıfırlama token'larını siler (cleanup job).
	PurgeExpired(ctx context.Context) (int64, error)
}

// AuthTokens, login/register sonrası dönen token çifti.
type AuthTokens struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	User         models.User `json:"user"`
}

// authService, AuthService interface'inin implementasyonu.
type authService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	resetRepo   repository.PasswordResetRepository
	uploads     UploadService
	mail        *MailDispatcher
	hub         ws.EventPublisher
	jwtSecret   []byte
	accessExp   time.Duration
	refreshExp  time.Duration
}

// NewAuthService, constructor.
func NewAuthService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	resetRepo repository.PasswordResetRepository,
	uploads UploadService,
	mail *MailDispatcher,
	hub ws.EventPublisher,
	jwtSecret string,
	accessExpMinutes int,
	refreshExpDays int,
) AuthService {
	return &authService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		resetRepo:   resetRepo,
		uploads:     uploads,
		mail:        mail,
		hub:         hub,
		jwtSecret:   []byte(jwtSecret),
		accessExp:   time.Duration(accessExpMinutes) * time.Minute,
		refreshExp:  time.Duration(refreshExpDays) * 24 * time.Hour,
	}
}

// Register, yeni müşteri hesabı oluşturur ve oturum açar.
// Rol her zaman customer'dır; buyer/admin rolünü sadece admin verebilir.
func (s *authService) Register(ctx context.Context, req *models.CreateUserRequest) (*AuthTokens, error) {
	// 1. Validation
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	// 2. Bcrypt hash (cost=12)
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// 3. User oluştur
	var displayName *string
	if req.DisplayName != "" {
		displayName = &req.DisplayName
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		DisplayName:  displayName,
		PasswordHash: string(hash),
		Role:         models.RoleCustomer,
		Language:     cmp.Or(req.Language, i18n.DefaultLanguage),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err // ErrAlreadyExists olabilir
	}

	// 4. Token çifti oluştur
	return s.generateTokens(ctx, user)
}

// Login, kullanıcı adı veya email + şifre ile giriş yapar.
//
// Kullanıcı bulunamadığında da şifre yanlış olduğunda da aynı mesaj döner —
// hangi kullanıcı adlarının kayıtlı olduğu sızdırılmaz.
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*AuthTokens, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	var (
		user *models.User
		err  error
	)
	if req.IsEmail() {
		user, err = s.userRepo.GetByEmail(ctx, req.Login)
	} else {
		user, err = s.userRepo.GetByUsername(ctx, req.Login)
	}
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", pkg.ErrUnauthorized)
		}
		return nil, err
	}

	// Bcrypt şifre karşılaştırması
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", pkg.ErrUnauthorized)
	}

	return s.generateTokens(ctx, user)
}

// RefreshToken, refresh token ile yeni token çifti üretir.
// Eski session silinir (rotation) — çalınan bir refresh token bir kez kullanılabilir.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*AuthTokens, error) {
	session, err := s.sessionRepo.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid refresh token", pkg.ErrUnauthorized)
		}
		return nil, err
	}

	if time.Now().After(session.ExpiresAt) {
		if delErr := s.sessionRepo.DeleteByID(ctx, session.ID); delErr != nil {
			return nil, fmt.Errorf("failed to delete expired session: %w", delErr)
		}
		return nil, fmt.Errorf("%w: refresh token expired", pkg.ErrUnauthorized)
	}

	if err := s.sessionRepo.DeleteByID(ctx, session.ID); err != nil {
		return nil, fmt.Errorf("failed to delete old session: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	return s.generateTokens(ctx, user)
}

// Logout, refresh token'ı iptal eder (session siler).
// Bilinmeyen token hata değildir — client zaten çıkış yapmış sayılır.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	session, err := s.sessionRepo.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return nil
		}
		return err
	}

	return s.sessionRepo.DeleteByID(ctx, session.ID)
}

// ValidateAccessToken, JWT access token'ı doğrular ve claims'i döner.
func (s *authService) ValidateAccessToken(tokenString string) (*models.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.TokenClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("%w: invalid token", pkg.ErrUnauthorized)
	}

	claims, ok := token.Claims.(*models.TokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token claims", pkg.ErrUnauthorized)
	}

	return claims, nil
}

func (s *authService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// UpdateProfile, kullanıcının kendi profilini günceller (partial update).
func (s *authService) UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Boş string gönderilmişse alan temizlenir (NULL).
	if req.DisplayName != nil {
		user.DisplayName = emptyToNil(*req.DisplayName)
	}
	if req.Phone != nil {
		user.Phone = emptyToNil(*req.Phone)
	}
	if req.Language != nil && *req.Language != "" {
		user.Language = *req.Language
	}

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword, mevcut şifreyi doğrulayıp yenisini yazar.
func (s *authService) ChangePassword(ctx context.Context, userID string, req *models.ChangePasswordRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return fmt.Errorf("%w: current password is incorrect", pkg.ErrUnauthorized)
	}

	if req.CurrentPassword == req.NewPassword {
		return fmt.Errorf("%w: new password must be different from current password", pkg.ErrBadRequest)
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	return s.userRepo.UpdatePassword(ctx, userID, string(newHash))
}

// UpdateAvatar, yeni avatarı kaydeder ve eskisini diskten siler.
func (s *authService) UpdateAvatar(ctx context.Context, userID string, file multipart.File, header *multipart.FileHeader) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	url, err := s.uploads.SaveImage(file, header)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateAvatar(ctx, userID, &url); err != nil {
		s.uploads.Remove(url)
		return nil, err
	}

	if user.AvatarURL != nil {
		s.uploads.Remove(*user.AvatarURL)
	}
	user.AvatarURL = &url
	return user, nil
}

// ForgotPassword, sıfırlama token'ı üretir ve email'i arka planda gönderir.
//
// Akış:
//  1. Email kayıtlı değilse sessizce çık
//  2. Son token resetCooldown'dan yeniyse sessizce çık (email bombardımanı)
//  3. Eski token'ları sil, yenisini hash'leyip kaydet
//  4. Plaintext token sadece email'e yazılır
func (s *authService) ForgotPassword(ctx context.Context, req *models.ForgotPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return nil
		}
		return err
	}

	latest, err := s.resetRepo.GetLatestByUserID(ctx, user.ID)
	if err != nil && !errors.Is(err, pkg.ErrNotFound) {
		return err
	}
	if latest != nil && time.Since(latest.CreatedAt) < resetCooldown {
		return nil
	}

	if err := s.resetRepo.DeleteByUserID(ctx, user.ID); err != nil {
		return err
	}

	plain, err := randomHex(32)
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	token := &models.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: hashToken(plain),
		ExpiresAt: time.Now().Add(resetTokenTTL),
	}
	if err := s.resetRepo.Create(ctx, token); err != nil {
		return err
	}

	to := recipientOf(user)
	s.mail.Go("password reset", func(ctx context.Context, sender email.Sender) error {
		return sender.SendPasswordReset(ctx, to, plain)
	})
	return nil
}

// ResetPassword, token'ı tüketip yeni şifreyi yazar. Kullanıcının tüm
// oturumları kapatılır — şifresi çalınmış bir hesaptaki saldırgan da düşer.
func (s *authService) ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	token, err := s.resetRepo.GetByTokenHash(ctx, hashToken(req.Token))
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return fmt.Errorf("%w: invalid or expired reset token", pkg.ErrBadRequest)
		}
		return err
	}

	if time.Now().After(token.ExpiresAt) {
		if delErr := s.resetRepo.DeleteByID(ctx, token.ID); delErr != nil {
			log.Printf("[auth] failed to delete expired reset token: %v", delErr)
		}
		return fmt.Errorf("%w: invalid or expired reset token", pkg.ErrBadRequest)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, token.UserID, string(hash)); err != nil {
		return err
	}
	if err := s.resetRepo.DeleteByUserID(ctx, token.UserID); err != nil {
		return err
	}
	if err := s.sessionRepo.DeleteByUserID(ctx, token.UserID); err != nil {
		return err
	}

	s.hub.DisconnectUser(token.UserID)
	return nil
}

func (s *authService) PurgeExpired(ctx context.Context) (int64, error) {
	sessions, err := s.sessionRepo.DeleteExpired(ctx)
	if err != nil {
		return 0, err
	}
	tokens, err := s.resetRepo.DeleteExpired(ctx)
	if err != nil {
		return sessions, err
	}
	return sessions + tokens, nil
}

// ─── Private Helpers ───

func (s *authService) generateTokens(ctx context.Context, user *models.User) (*AuthTokens, error) {
	now := time.Now()
	accessClaims := &models.TokenClaims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessExp)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "pazar",
		},
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims)
	accessString, err := accessToken.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshString, err := randomHex(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	session := &models.Session{
		UserID:       user.ID,
		RefreshToken: refreshString,
		ExpiresAt:    now.Add(s.refreshExp),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	user.PasswordHash = ""

	return &AuthTokens{
		AccessToken:  accessString,
		RefreshToken: refreshString,
		User:         *user,
	}, nil
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// hashToken, sıfırlama token'ının DB'de saklanan SHA256 hex hash'i.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func emptyToNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// NewAdminUser, CLI'dan ("pazar admin create") oluşturulacak admin hesabını
// hazırlar: alanlar doğrulanır, şifre hash'lenir. Kaydetmek çağıranın işidir.
func NewAdminUser(req *models.CreateUserRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var displayName *string
	if req.DisplayName != "" {
		displayName = &req.DisplayName
	}

	return &models.User{
		Username:     req.Username,
		Email:        req.Email,
		DisplayName:  displayName,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		Language:     "en",
	}, nil
}

// EnsureAdmin, CLI'ın "admin create" komutu. Kullanıcı adı ya da email ile
// eşleşen hesap varsa admin'e yükseltilir (şifresi değişmez); yoksa
// NewAdminUser ile yeni hesap açılır. promoted, mevcut hesabın kullanıldığını bildirir.
func EnsureAdmin(ctx context.Context, users repository.UserRepository, req *models.CreateUserRequest) (user *models.User, promoted bool, err error) {
	user, err = users.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if errors.Is(err, pkg.ErrNotFound) {
		user, err = users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	}
	switch {
	case err == nil:
		if user.Role != models.RoleAdmin {
			if err := users.UpdateRole(ctx, user.ID, models.RoleAdmin); err != nil {
				return nil, false, err
			}
			user.Role = models.RoleAdmin
		}
		return user, true, nil
	case !errors.Is(err, pkg.ErrNotFound):
		return nil, false, err
	}

	user, err = NewAdminUser(req)
	if err != nil {
		return nil, false, err
	}
	if err := users.Create(ctx, user); err != nil {
		return nil, false, err
	}
	return user, false, nil
}
