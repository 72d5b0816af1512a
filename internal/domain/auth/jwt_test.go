package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "tourledger/internal/core/context"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("secret"))

	token, expiresAt, err := svc.GenerateAccessToken(appctx.UserContext{
		UserID: "u-1",
		Email:  "acc@example.com",
		Roles:  []string{RoleAccountant},
	})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, time.Minute)

	user, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.UserID)
	assert.Equal(t, "acc@example.com", user.Email)
	assert.Equal(t, []string{RoleAccountant}, user.Roles)
	assert.False(t, user.IsAdmin)
}

func TestJWTService_Rejects(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("secret"))

	other := NewJWTService(DefaultJWTConfig("other-secret"))
	foreign, _, err := other.GenerateAccessToken(appctx.UserContext{UserID: "u-1"})
	require.NoError(t, err)

	expiredCfg := DefaultJWTConfig("secret")
	expiredCfg.AccessTokenTTL = -time.Minute
	expired, _, err := NewJWTService(expiredCfg).GenerateAccessToken(appctx.UserContext{UserID: "u-1"})
	require.NoError(t, err)

	wrongIssuerCfg := DefaultJWTConfig("secret")
	wrongIssuerCfg.Issuer = "someone-else"
	wrongIssuer, _, err := NewJWTService(wrongIssuerCfg).GenerateAccessToken(appctx.UserContext{UserID: "u-1"})
	require.NoError(t, err)

	noUser, _, err := svc.GenerateAccessToken(appctx.UserContext{})
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "u-1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": foreign,
		"expired":      expired,
		"wrong issuer": wrongIssuer,
		"no user":      noUser,
		"alg none":     none,
	} {
		t.Run(name, func(t *testing.T) {
			user, err := svc.ValidateToken(token)
			assert.Error(t, err)
			assert.Nil(t, user)
		})
	}
}
