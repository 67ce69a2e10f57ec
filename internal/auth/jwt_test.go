package auth

import (
	"testing"
	"time"

	"hirepoint_backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *models.User {
	return &models.User{
		BaseModel: models.BaseModel{ID: "user-1"},
		UserName:  "alice",
		Email:     "alice@example.com",
		Role:      models.UserRoleApplicant,
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer([]byte("secret-a"))

	token, err := issuer.GenerateAccessToken(testUser())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := issuer.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "applicant", claims.Role)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "alice", claims.UserName)
	assert.WithinDuration(t, time.Now().Add(AccessTokenTTL), claims.ExpiresAt.Time, time.Minute)
}

func TestIssuedTokensAreUnique(t *testing.T) {
	issuer := NewTokenIssuer([]byte("secret-a"))
	user := testUser()

	// iat/exp имеют секундную точность: без jti два токена, выданные
	// в одну секунду, совпали бы байт в байт, и повторный вход не
	// заменил бы сохраненный токен
	first, err := issuer.GenerateAccessToken(user)
	require.NoError(t, err)
	second, err := issuer.GenerateAccessToken(user)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	claims, err := issuer.ParseToken(first)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)

	firstReset, err := issuer.GenerateForgotPasswordToken(user)
	require.NoError(t, err)
	secondReset, err := issuer.GenerateForgotPasswordToken(user)
	require.NoError(t, err)
	assert.NotEqual(t, firstReset, secondReset)
}

func TestForgotPasswordTokenHasNoSubject(t *testing.T) {
	issuer := NewTokenIssuer([]byte("secret-a"))

	token, err := issuer.GenerateForgotPasswordToken(testUser())
	require.NoError(t, err)

	claims, err := issuer.ParseToken(token)
	require.NoError(t, err)
	// Токен сброса не дает доступ к аккаунту: subject и role пустые
	assert.Empty(t, claims.Subject)
	assert.Empty(t, claims.Role)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.WithinDuration(t, time.Now().Add(ForgotPasswordTokenTTL), claims.ExpiresAt.Time, time.Minute)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenIssuer([]byte("secret-a"))
	other := NewTokenIssuer([]byte("secret-b"))

	token, err := issuer.GenerateAccessToken(testUser())
	require.NoError(t, err)

	_, err = other.ParseToken(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	issuer := NewTokenIssuer([]byte("secret-a"))

	now := time.Now()
	claims := Claims{
		Email:    "alice@example.com",
		UserName: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			IssuedAt:  jwt.NewNumericDate(now.Add(-time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Second)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret-a"))
	require.NoError(t, err)

	// Срок проверяется без допуска на рассинхронизацию часов
	_, err = issuer.ParseToken(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParseTokenRejectsMissingExpiry(t *testing.T) {
	issuer := NewTokenIssuer([]byte("secret-a"))

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret-a"))
	require.NoError(t, err)

	_, err = issuer.ParseToken(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	issuer := NewTokenIssuer([]byte("secret-a"))

	for _, token := range []string{"", "garbage", "a.b.c"} {
		_, err := issuer.ParseToken(token)
		assert.ErrorIs(t, err, ErrTokenInvalid, "token %q", token)
	}
}

func TestNewRefreshToken(t *testing.T) {
	first, err := NewRefreshToken("user-1")
	require.NoError(t, err)
	second, err := NewRefreshToken("user-1")
	require.NoError(t, err)

	assert.Equal(t, "user-1", first.UserID)
	assert.NotEmpty(t, first.ID)
	// 64 байта в base64 - 88 символов
	assert.Len(t, first.Token, 88)
	assert.NotEqual(t, first.Token, second.Token)
	assert.WithinDuration(t, time.Now().Add(RefreshTokenTTL), first.ExpiresAt, time.Minute)

	assert.False(t, first.Expired(time.Now()))
	assert.True(t, first.Expired(time.Now().Add(RefreshTokenTTL+time.Minute)))
}
