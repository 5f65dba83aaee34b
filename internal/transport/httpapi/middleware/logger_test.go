package middleware_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomasfevre/chill-split/internal/transport/httpapi/middleware"
	"github.com/thomasfevre/chill-split/pkg/logger"
)

func loggedChain(t *testing.T, buf *bytes.Buffer, jwtSvc *middleware.JWTService) http.Handler {
	t.Helper()

	log := logger.New("test", buf)
	return middleware.Logger(log)(middleware.JWTMiddleware(jwtSvc)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})))
}

func TestLogger_IncludesAuthenticatedWallet(t *testing.T) {
	var buf bytes.Buffer
	jwtSvc := middleware.NewJWTService(strings.Repeat("s", 32))

	token, err := jwtSvc.GenerateToken("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/groups", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	loggedChain(t, &buf, jwtSvc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, buf.String(), "wallet=0x5aae...eaed")
}

func TestLogger_NoWalletWhenUnauthenticated(t *testing.T) {
	var buf bytes.Buffer
	jwtSvc := middleware.NewJWTService(strings.Repeat("s", 32))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/groups", nil)
	rec := httptest.NewRecorder()

	loggedChain(t, &buf, jwtSvc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotContains(t, buf.String(), "wallet=")
}
