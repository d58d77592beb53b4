package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spacedigitalia/jelajah-kode-sub000/internal/entity"
	"github.com/spacedigitalia/jelajah-kode-sub000/internal/session"
)

func protectedEndpoint(t *testing.T, issuer *session.Issuer, adminOnly bool) http.Handler {
	t.Helper()
	var next http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, _ := r.Context().Value(UserIDCtxKey).(string)
		w.Write([]byte(userID))
	})
	if adminOnly {
		next = RequireAdmin(next)
	}
	return SessionAuth(issuer, zap.NewNop())(next)
}

func requestWithCookie(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	}
	return req
}

func TestSessionAuth_NoCookie(t *testing.T) {
	issuer, err := session.NewIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	protectedEndpoint(t, issuer, false).ServeHTTP(rec, requestWithCookie(""))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionAuth_InvalidToken(t *testing.T) {
	issuer, err := session.NewIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	protectedEndpoint(t, issuer, false).ServeHTTP(rec, requestWithCookie("not-a-token"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionAuth_ValidTokenPopulatesContext(t *testing.T) {
	issuer, err := session.NewIssuer("test-secret", time.Hour)
	require.NoError(t, err)
	token, err := issuer.Issue("user-1", "ana@example.com", entity.RoleUser)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	protectedEndpoint(t, issuer, false).ServeHTTP(rec, requestWithCookie(token))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", rec.Body.String())
}

func TestRequireAdmin_RejectsRegularUser(t *testing.T) {
	issuer, err := session.NewIssuer("test-secret", time.Hour)
	require.NoError(t, err)
	token, err := issuer.Issue("user-1", "ana@example.com", entity.RoleUser)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	protectedEndpoint(t, issuer, true).ServeHTTP(rec, requestWithCookie(token))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireAdmin_AllowsAdmin(t *testing.T) {
	issuer, err := session.NewIssuer("test-secret", time.Hour)
	require.NoError(t, err)
	token, err := issuer.Issue("admin-1", "root@example.com", entity.RoleAdmin)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	protectedEndpoint(t, issuer, true).ServeHTTP(rec, requestWithCookie(token))
	assert.Equal(t, http.StatusOK, rec.Code)
}
