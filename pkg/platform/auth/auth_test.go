package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testConfig = Config{Secret: "test-secret", Issuer: "pulsely.identity"}

func TestIssueAndParseRoundTrip(t *testing.T) {
	token, err := Issue(testConfig, "user-1", []string{"recovery:write", "readiness:read"}, time.Hour)
	require.NoError(t, err)

	claims, err := Parse(token, testConfig)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.True(t, claims.HasScope("recovery:write"))
	require.True(t, claims.HasAnyScope("plans:read", "readiness:read"))
	require.False(t, claims.HasScope("plans:write"))
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	token, err := Issue(Config{Secret: testConfig.Secret, Issuer: "someone-else"}, "user-1", nil, time.Hour)
	require.NoError(t, err)

	_, err = Parse(token, testConfig)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	token, err := Issue(testConfig, "user-1", nil, -time.Minute)
	require.NoError(t, err)

	_, err = Parse(token, testConfig)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestMiddlewareSkipsAndRejects(t *testing.T) {
	var seen *Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	mw := NewMiddleware(testConfig, func(r *http.Request) bool { return r.URL.Path == "/healthz" })
	handler := mw.Wrap(next)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusNoContent, rr.Code)
	require.Nil(t, seen)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/plans", nil))
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	token, err := Issue(testConfig, "user-9", []string{"plans:read"}, time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/v1/plans", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusNoContent, rr.Code)
	require.NotNil(t, seen)
	require.Equal(t, "user-9", seen.UserID)
}
