package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/pazar/models"
	"github.com/akinalp/pazar/pkg"
)

func TestAuth_RegisterLoginRefresh(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	tokens, err := e.auth.Register(ctx, &models.CreateUserRequest{
		Username: "ayse",
		Email:    "  Ayse@Example.com ",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, tokens.User.Role)
	assert.Equal(t, "ayse@example.com", tokens.User.Email)
	assert.Equal(t, "en", tokens.User.Language)

	claims, err := e.auth.ValidateAccessToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, tokens.User.ID, claims.UserID)
	assert.Equal(t, models.RoleCustomer, claims.Role)

	_, err = e.auth.Register(ctx, &models.CreateUserRequest{Username: "AYSE", Email: "x@example.com", Password: "correct-horse"})
	require.ErrorIs(t, err, pkg.ErrAlreadyExists)

	// Kullanıcı adı veya email ile giriş.
	_, err = e.auth.Login(ctx, &models.LoginRequest{Login: "ayse", Password: "correct-horse"})
	require.NoError(t, err)
	_, err = e.auth.Login(ctx, &models.LoginRequest{Login: "ayse@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	// Kayıttaki yazımla (büyük harfli) email de çalışır.
	_, err = e.auth.Login(ctx, &models.LoginRequest{Login: " Ayse@Example.com", Password: "correct-horse"})
	require.NoError(t, err)
	_, err = e.auth.Login(ctx, &models.LoginRequest{Login: "ayse", Password: "wrong-horse"})
	require.ErrorIs(t, err, pkg.ErrUnauthorized)
	_, err = e.auth.Login(ctx, &models.LoginRequest{Login: "nobody", Password: "correct-horse"})
	require.ErrorIs(t, err, pkg.ErrUnauthorized)

	// Refresh token rotation: eski token ikinci kez kullanılamaz.
	rotated, err := e.auth.RefreshToken(ctx, tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)
	_, err = e.auth.RefreshToken(ctx, tokens.RefreshToken)
	require.ErrorIs(t, err, pkg.ErrUnauthorized)

	require.NoError(t, e.auth.Logout(ctx, rotated.RefreshToken))
	_, err = e.auth.RefreshToken(ctx, rotated.RefreshToken)
	require.ErrorIs(t, err, pkg.ErrUnauthorized)

	_, err = e.auth.ValidateAccessToken("not-a-jwt")
	require.ErrorIs(t, err, pkg.ErrUnauthorized)
}

func TestAuth_PasswordReset(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	tokens, err := e.auth.Register(ctx, &models.CreateUserRequest{Username: "mehmet", Email: "mehmet@example.com", Password: "old-password"})
	require.NoError(t, err)

	// Kayıtlı olmayan email: hata yok, email de yok.
	require.NoError(t, e.auth.ForgotPassword(ctx, &models.ForgotPasswordRequest{Email: "ghost@example.com"}))
	e.mail.Wait()
	assert.Empty(t, e.sender.resetTokens)

	require.NoError(t, e.auth.ForgotPassword(ctx, &models.ForgotPasswordRequest{Email: "Mehmet@example.com"}))
	// Cooldown içinde ikinci istek sessizce yoksayılır.
	require.NoError(t, e.auth.ForgotPassword(ctx, &models.ForgotPasswordRequest{Email: "mehmet@example.com"}))
	e.mail.Wait()
	require.Len(t, e.sender.resetTokens, 1)
	plain := e.sender.resetTokens[0]

	err = e.auth.ResetPassword(ctx, &models.ResetPasswordRequest{Token: "bogus", NewPassword: "new-password"})
	require.ErrorIs(t, err, pkg.ErrBadRequest)

	require.NoError(t, e.auth.ResetPassword(ctx, &models.ResetPasswordRequest{Token: plain, NewPassword: "new-password"}))

	// Token tek kullanımlık; eski oturumlar kapandı.
	err = e.auth.ResetPassword(ctx, &models.ResetPasswordRequest{Token: plain, NewPassword: "another-password"})
	require.ErrorIs(t, err, pkg.ErrBadRequest)
	_, err = e.auth.RefreshToken(ctx, tokens.RefreshToken)
	require.ErrorIs(t, err, pkg.ErrUnauthorized)
	assert.Contains(t, e.hub.disconnected, tokens.User.ID)

	_, err = e.auth.Login(ctx, &models.LoginRequest{Login: "mehmet", Password: "old-password"})
	require.ErrorIs(t, err, pkg.ErrUnauthorized)
	_, err = e.auth.Login(ctx, &models.LoginRequest{Login: "mehmet", Password: "new-password"})
	require.NoError(t, err)
}

func TestNewAdminUser(t *testing.T) {
	u, err := NewAdminUser(&models.CreateUserRequest{Username: "root", Email: "Root@Example.com", Password: "supersecret"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)
	assert.Equal(t, "root@example.com", u.Email)
	assert.NotEqual(t, "supersecret", u.PasswordHash)

	_, err = NewAdminUser(&models.CreateUserRequest{Username: "root", Email: "root@example.com", Password: "short"})
	require.ErrorIs(t, err, pkg.ErrBadRequest)
}

func TestEnsureAdmin_CreateOrPromote(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	created, promoted, err := EnsureAdmin(ctx, e.users, &models.CreateUserRequest{Username: "root", Email: "root@example.com", Password: "supersecret"})
	require.NoError(t, err)
	assert.False(t, promoted)
	assert.Equal(t, models.RoleAdmin, created.Role)

	// Mevcut kullanıcı email ile bulunur ve şifresiz yükseltilir.
	seller := e.user(t, "seller", models.RoleBuyer)
	got, promoted, err := EnsureAdmin(ctx, e.users, &models.CreateUserRequest{Username: "someone-else", Email: " Seller@Example.com "})
	require.NoError(t, err)
	assert.True(t, promoted)
	assert.Equal(t, seller.ID, got.ID)

	stored, err := e.users.GetByID(ctx, seller.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, stored.Role)
	assert.Equal(t, "x", stored.PasswordHash)

	// Yeni hesap için şifre zorunlu.
	_, _, err = EnsureAdmin(ctx, e.users, &models.CreateUserRequest{Username: "nopass", Email: "nopass@example.com"})
	require.ErrorIs(t, err, pkg.ErrBadRequest)
}

func TestAuth_RegisterKeepsLanguage(t *testing.T) {
	e := newEnv(t)

	tokens, err := e.auth.Register(context.Background(), &models.CreateUserRequest{
		Username: "mehmet", Email: "mehmet@example.com", Password: "correct-horse", Language: "TR",
	})
	require.NoError(t, err)
	assert.Equal(t, "tr", tokens.User.Language)

	_, err = e.auth.Register(context.Background(), &models.CreateUserRequest{
		Username: "hans", Email: "hans@example.com", Password: "correct-horse", Language: "de",
	})
	require.ErrorIs(t, err, pkg.ErrBadRequest)
}
