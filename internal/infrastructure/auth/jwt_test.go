package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(expiration time.Duration) *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:          "test-secret-at-least-32-characters!",
		TokenExpiration: expiration,
		Issuer:          "storefront-test",
	})
}

func TestJWTService_IssueAndVerify(t *testing.T) {
	svc := newTestService(time.Hour)
	userID := uuid.New()

	issued, err := svc.IssueToken(IssueTokenInput{
		UserID: userID,
		Email:  "alice@example.com",
		Role:   "USER",
	})
	require.NoError(t, err)
	require.NotEmpty(t, issued.Token)
	assert.Equal(t, "Bearer", issued.TokenType)

	claims, err := svc.VerifyToken(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "USER", claims.Role)

	parsed, err := claims.UserUUID()
	require.NoError(t, err)
	assert.Equal(t, userID, parsed)
}

func TestJWTService_VerifyExpiredToken(t *testing.T) {
	// Negative expiration issues a token that is already expired
	svc := newTestService(-time.Minute)

	issued, err := svc.IssueToken(IssueTokenInput{UserID: uuid.New(), Email: "a@b.co", Role: "USER"})
	require.NoError(t, err)

	_, err = svc.VerifyToken(issued.Token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_VerifyWrongSecret(t *testing.T) {
	issuer := newTestService(time.Hour)
	verifier := NewJWTService(config.JWTConfig{
		Secret:          "another-secret-entirely-32-chars!!!",
		TokenExpiration: time.Hour,
		Issuer:          "storefront-test",
	})

	issued, err := issuer.IssueToken(IssueTokenInput{UserID: uuid.New(), Email: "a@b.co", Role: "USER"})
	require.NoError(t, err)

	_, err = verifier.VerifyToken(issued.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_VerifyMalformedToken(t *testing.T) {
	svc := newTestService(time.Hour)

	_, err := svc.VerifyToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.VerifyToken("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestClaims_IsAdmin(t *testing.T) {
	assert.True(t, (&Claims{Role: "ADMIN"}).IsAdmin())
	assert.False(t, (&Claims{Role: "USER"}).IsAdmin())
}
