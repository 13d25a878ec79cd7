package jwt

import (
	"errors"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collabtrack/internal/pkg/config"
	"collabtrack/pkg/constants"
	pkgErrors "collabtrack/pkg/errors"
)

func newTestManager() *Manager {
	return NewManager(config.JWTConfig{
		Secret:             "test-secret",
		Issuer:             "collabtrack-test",
		AccessTokenExpire:  60,
		RefreshTokenExpire: 3600,
	})
}

func TestGenerateAndParse(t *testing.T) {
	m := newTestManager()
	pair, err := m.GeneratePair(42, "alice", "admin")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.Equal(t, 60, pair.ExpiresIn)

	claims, err := m.Parse(pair.AccessToken, constants.JWTTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "alice", claims.Username)

	refresh, err := m.Parse(pair.RefreshToken, constants.JWTTypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, constants.JWTTypeRefresh, refresh.Type)
}

func TestParseRejectsWrongType(t *testing.T) {
	m := newTestManager()
	pair, err := m.GeneratePair(1, "alice", "admin")
	require.NoError(t, err)

	_, err = m.Parse(pair.RefreshToken, constants.JWTTypeAccess)
	assert.True(t, errors.Is(err, pkgErrors.ErrInvalidToken))
}

func TestParseRejectsOtherSecret(t *testing.T) {
	pair, err := newTestManager().GeneratePair(1, "alice", "admin")
	require.NoError(t, err)

	other := NewManager(config.JWTConfig{Secret: "another", AccessTokenExpire: 60})
	_, err = other.Parse(pair.AccessToken, constants.JWTTypeAccess)
	assert.Error(t, err)
	appErr, ok := pkgErrors.As(err)
	require.True(t, ok)
	assert.Equal(t, pkgErrors.CodeUnauthorized, appErr.Code)
}

func TestParseExpired(t *testing.T) {
	m := newTestManager()
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	pair, err := m.GeneratePair(1, "alice", "admin")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Parse(pair.AccessToken, constants.JWTTypeAccess)
	appErr, ok := pkgErrors.As(err)
	require.True(t, ok)
	assert.Equal(t, pkgErrors.ErrTokenExpired.Message, appErr.Message)
}

func TestParseRejectsNoneAlgorithm(t *testing.T) {
	claims := UserClaims{UserID: 1, Type: constants.JWTTypeAccess}
	claims.Subject = "1"
	token := gojwt.NewWithClaims(gojwt.SigningMethodNone, claims)
	signed, err := token.SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newTestManager().Parse(signed, constants.JWTTypeAccess)
	assert.Error(t, err)
}

func TestParseGarbage(t *testing.T) {
	_, err := newTestManager().Parse("not-a-token", "")
	assert.True(t, errors.Is(err, pkgErrors.ErrInvalidToken))
}
