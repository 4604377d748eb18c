package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestService(t *testing.T, now time.Time) *TokenService {
	t.Helper()
	svc, err := NewTokenService(testSecret)
	require.NoError(t, err)
	svc.timeFunc = func() time.Time { return now }
	return svc
}

func TestNewTokenService(t *testing.T) {
	_, err := NewTokenService("short")
	assert.ErrorIs(t, err, ErrSecretTooShort)

	svc, err := NewTokenService(testSecret)
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestGenerateAndValidate(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := newTestService(t, now)
	ctx := context.Background()

	token, err := svc.GenerateToken(ctx, "mobile-app", time.Hour)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "mobile-app", claims.Subject)
	assert.Equal(t, now, claims.IssuedAt)
	assert.Equal(t, now.Add(time.Hour), claims.ExpiresAt)
	assert.NotEmpty(t, claims.ID)
}

func TestGenerateTokenValidation(t *testing.T) {
	svc := newTestService(t, time.Now())

	_, err := svc.GenerateToken(context.Background(), "", time.Hour)
	assert.Error(t, err)

	_, err = svc.GenerateToken(context.Background(), "client", 0)
	assert.Error(t, err)
}

func TestValidateTokenFailures(t *testing.T) {
	issuedAt := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	issuer := newTestService(t, issuedAt)
	ctx := context.Background()

	token, err := issuer.GenerateToken(ctx, "client", time.Hour)
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		later := newTestService(t, issuedAt.Add(2*time.Hour))
		_, err := later.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("within clock skew", func(t *testing.T) {
		later := newTestService(t, issuedAt.Add(time.Hour+time.Minute))
		_, err := later.ValidateToken(ctx, token)
		assert.NoError(t, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewTokenService("ffffffffffffffffffffffffffffffff")
		require.NoError(t, err)
		other.timeFunc = func() time.Time { return issuedAt }

		_, err = other.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := issuer.ValidateToken(ctx, "not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("none algorithm", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
			Subject:   "client",
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour)),
		})
		raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = issuer.ValidateToken(ctx, raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing expiry", func(t *testing.T) {
		noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "client"})
		raw, err := noExp.SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = issuer.ValidateToken(ctx, raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
