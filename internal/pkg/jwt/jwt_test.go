package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/auth"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSSEToken_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret")

	token, expiresIn, err := svc.GenerateSSEToken("user-1")
	require.NoError(t, err)
	assert.Equal(t, 300, expiresIn)

	userID, err := svc.ValidateSSEToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestValidateSSEToken_RejectsAccessToken(t *testing.T) {
	svc := NewJWTService("test-secret")

	token, _, err := svc.GenerateAccessToken("user-1", "admin", time.Hour)
	require.NoError(t, err)

	_, err = svc.ValidateSSEToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestValidateSSEToken_RejectsForeignSignature(t *testing.T) {
	other := NewJWTService("another-secret")
	token, _, err := other.GenerateSSEToken("user-1")
	require.NoError(t, err)

	_, err = NewJWTService("test-secret").ValidateSSEToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestUserIDFromContext(t *testing.T) {
	svc := NewJWTService("test-secret")

	_, err := UserIDFromContext(context.Background())
	assert.ErrorIs(t, err, auth.ErrNotAuthenticated)

	tokenString, _, err := svc.GenerateAccessToken("user-1", "worker", time.Hour)
	require.NoError(t, err)
	token, err := jwtauth.VerifyToken(svc.JWTAuth(), tokenString)
	require.NoError(t, err)

	ctx := jwtauth.NewContext(context.Background(), token, nil)
	userID, err := UserIDFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	sseString, _, err := svc.GenerateSSEToken("user-1")
	require.NoError(t, err)
	sseToken, err := jwtauth.VerifyToken(svc.JWTAuth(), sseString)
	require.NoError(t, err)
	_, err = UserIDFromContext(jwtauth.NewContext(context.Background(), sseToken, nil))
	assert.ErrorIs(t, err, auth.ErrNotAuthenticated, "change feed tokens are not access tokens")
}
