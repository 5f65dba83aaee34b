package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomasfevre/chill-split/internal/transport/httpapi/middleware"
)

const (
	testWallet = "0x1111111111111111111111111111111111111111"
	testSecret = "0123456789abcdef0123456789abcdef"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := middleware.NewJWTService(testSecret)

	// Mixed-case input is normalized into the claim
	token, err := svc.GenerateToken("0x1111111111111111111111111111111111111111")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, testWallet, claims.Wallet)
	assert.Equal(t, "chill-split", claims.Issuer)
}

func TestJWTService_WrongSecret(t *testing.T) {
	token, err := middleware.NewJWTService(testSecret).GenerateToken(testWallet)
	require.NoError(t, err)

	_, err = middleware.NewJWTService("another-secret-another-secret-32").ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTMiddleware(t *testing.T) {
	svc := middleware.NewJWTService(testSecret)

	var gotWallet string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wallet, ok := middleware.GetWalletFromContext(r.Context())
		require.True(t, ok)
		gotWallet = wallet
		w.WriteHeader(http.StatusNoContent)
	})

	h := middleware.JWTMiddleware(svc)(next)

	token, err := svc.GenerateToken(testWallet)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, testWallet, gotWallet)
}

func TestJWTMiddleware_Rejections(t *testing.T) {
	svc := middleware.NewJWTService(testSecret)
	h := middleware.JWTMiddleware(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not-a-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}
