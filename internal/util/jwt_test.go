package util

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestParseAdminToken(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"sub":  "admin-1",
		"role": "admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}, testSecret)

	sub, err := ParseAdminToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", sub)
}

func TestParseAdminTokenRejectsNonAdmin(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"sub":  "member-1",
		"role": "member",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}, testSecret)

	_, err := ParseAdminToken(token, testSecret)
	assert.Error(t, err)
}

func TestParseAdminTokenRejectsBadSignature(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"sub":  "admin-1",
		"role": "admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}, "other-secret")

	_, err := ParseAdminToken(token, testSecret)
	assert.Error(t, err)
}

func TestParseAdminTokenRejectsExpired(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"sub":  "admin-1",
		"role": "admin",
		"exp":  time.Now().Add(-time.Minute).Unix(),
	}, testSecret)

	_, err := ParseAdminToken(token, testSecret)
	assert.Error(t, err)
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"bearer", "Bearer abc.def.ghi", "abc.def.ghi"},
		{"lowercase scheme", "bearer abc", "abc"},
		{"missing header", "", ""},
		{"no scheme", "abc", ""},
		{"wrong scheme", "Basic abc", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.want, ExtractToken(req))
		})
	}
}
