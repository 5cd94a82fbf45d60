package auth

import (
	"testing"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testIdentity = domain.Identity{ID: "64b000000000000000000001", Email: "a@example.com", Role: domain.RoleAdmin, Sex: "F"}

func TestIssueAndParseAccess(t *testing.T) {
	m := NewTokenManager("access", "refresh", time.Hour, 24*time.Hour)

	token, err := m.IssueAccess(testIdentity)
	require.NoError(t, err)

	claims, err := m.ParseAccess(token)
	require.NoError(t, err)
	assert.Equal(t, testIdentity, claims.Identity())
	assert.True(t, claims.Identity().IsAdmin())
}

func TestParse_WrongSecretFamily(t *testing.T) {
	m := NewTokenManager("access", "refresh", time.Hour, 24*time.Hour)

	refresh, err := m.IssueRefresh(testIdentity)
	require.NoError(t, err)

	_, err = m.ParseAccess(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	claims, err := m.ParseRefresh(refresh)
	require.NoError(t, err)
	assert.Equal(t, testIdentity.ID, claims.ID)
}

func TestParse_Expired(t *testing.T) {
	m := NewTokenManager("access", "refresh", time.Minute, time.Hour)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Minute) }

	token, err := m.IssueAccess(testIdentity)
	require.NoError(t, err)

	_, err = m.ParseAccess(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_Garbage(t *testing.T) {
	m := NewTokenManager("access", "refresh", time.Hour, time.Hour)

	_, err := m.ParseAccess("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_RejectsNoneAlgorithm(t *testing.T) {
	m := NewTokenManager("access", "refresh", time.Hour, time.Hour)
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{ID: "x"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = m.ParseAccess(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
