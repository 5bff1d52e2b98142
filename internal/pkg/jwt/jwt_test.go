package jwt

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAccessToken(t *testing.T) {
	svc := NewJWTService("test-secret", "1h")
	issued := time.Now()
	svc.now = func() time.Time { return issued }

	tokenString, expiresAt, err := svc.GenerateAccessToken(user.Claims{UserID: "u1", CompanyID: "c1", Role: user.RoleDevice})
	require.NoError(t, err)
	assert.Equal(t, issued.Add(time.Hour).Unix(), expiresAt)

	token, err := svc.JWTAuth().Decode(tokenString)
	require.NoError(t, err)

	m, err := token.AsMap(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "access", m["type"])

	claims := ClaimsFromMap(m)
	assert.Equal(t, user.Claims{UserID: "u1", CompanyID: "c1", Role: user.RoleDevice}, claims)
}

func TestGenerateAccessToken_Errors(t *testing.T) {
	_, _, err := NewJWTService("s", "1h").GenerateAccessToken(user.Claims{UserID: "u1", Role: user.RoleOwner})
	assert.ErrorIs(t, err, user.ErrCompanyIDRequired)

	_, _, err = NewJWTService("s", "soon").GenerateAccessToken(user.Claims{CompanyID: "c1"})
	assert.Error(t, err)
}

func TestClaimsFromMap_MissingFields(t *testing.T) {
	claims := ClaimsFromMap(map[string]interface{}{"company_id": 42})
	assert.Equal(t, user.Claims{}, claims)
}
