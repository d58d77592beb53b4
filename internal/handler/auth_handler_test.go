package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/spacedigitalia/jelajah-kode-sub000/internal/entity"
	"github.com/spacedigitalia/jelajah-kode-sub000/internal/middleware"
	"github.com/spacedigitalia/jelajah-kode-sub000/internal/platform/metrics"
	"github.com/spacedigitalia/jelajah-kode-sub000/internal/repository"
	"github.com/spacedigitalia/jelajah-kode-sub000/internal/session"
	"github.com/spacedigitalia/jelajah-kode-sub000/internal/usecase"
)

// memStore is an in-memory CredentialStore backing the wire-level tests.
type memStore struct {
	mu    sync.Mutex
	users []*entity.User
}

func cloneUser(u *entity.User) *entity.User {
	c := *u
	if u.VerificationTokenExpiry != nil {
		e := *u.VerificationTokenExpiry
		c.VerificationTokenExpiry = &e
	}
	if u.ResetTokenExpiry != nil {
		e := *u.ResetTokenExpiry
		c.ResetTokenExpiry = &e
	}
	return &c
}

func (s *memStore) Create(_ context.Context, user *entity.User) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, repository.ErrDuplicateEmail
		}
	}
	user.ID = primitive.NewObjectID()
	s.users = append(s.users, cloneUser(user))
	return user.ID, nil
}

func (s *memStore) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *memStore) FindByID(_ context.Context, userID primitive.ObjectID) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == userID {
			return cloneUser(u), nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *memStore) FindByVerificationToken(_ context.Context, token string, now time.Time) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if token != "" && u.VerificationToken == token &&
			u.VerificationTokenExpiry != nil && u.VerificationTokenExpiry.After(now) {
			return cloneUser(u), nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *memStore) FindByResetToken(_ context.Context, token string, now time.Time) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if token != "" && u.ResetToken == token &&
			u.ResetTokenExpiry != nil && u.ResetTokenExpiry.After(now) {
			return cloneUser(u), nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *memStore) SetVerificationToken(_ context.Context, userID primitive.ObjectID, token string, expiry time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == userID {
			u.VerificationToken = token
			e := expiry
			u.VerificationTokenExpiry = &e
			return nil
		}
	}
	return repository.ErrUserNotFound
}

func (s *memStore) MarkVerified(_ context.Context, userID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == userID {
			u.IsVerified = true
			u.VerificationToken = ""
			u.VerificationTokenExpiry = nil
			return nil
		}
	}
	return repository.ErrUserNotFound
}

func (s *memStore) SetResetToken(_ context.Context, userID primitive.ObjectID, token string, expiry time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == userID {
			u.ResetToken = token
			e := expiry
			u.ResetTokenExpiry = &e
			return nil
		}
	}
	return repository.ErrUserNotFound
}

func (s *memStore) ResetPassword(_ context.Context, userID primitive.ObjectID, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == userID {
			u.Password = passwordHash
			u.ResetToken = ""
			u.ResetTokenExpiry = nil
			return nil
		}
	}
	return repository.ErrUserNotFound
}

type capturingMailer struct {
	mu      sync.Mutex
	lastOTP string
}

func (m *capturingMailer) SendVerificationEmail(_, _, otp string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastOTP = otp
	return nil
}

func (m *capturingMailer) SendPasswordResetEmail(_, _, otp string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastOTP = otp
	return nil
}

func (m *capturingMailer) otp() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastOTP
}

func newAuthRouter(t *testing.T) (chi.Router, *capturingMailer) {
	t.Helper()
	issuer, err := session.NewIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	mail := &capturingMailer{}
	uc := usecase.NewAuthUsecase(&memStore{}, mail, issuer, metrics.New("test"), zap.NewNop())
	h := NewAuthHandler(uc, issuer, zap.NewNop())

	r := chi.NewRouter()
	r.Post("/api/auth/signup", h.Signup)
	r.Post("/api/auth/verify-email", h.VerifyEmail)
	r.Post("/api/auth/resend-verification", h.ResendVerification)
	r.Post("/api/auth/forget-password", h.ForgetPassword)
	r.Post("/api/auth/verify-reset-otp", h.VerifyResetOTP)
	r.Post("/api/auth/reset-password", h.ResetPassword)
	r.Post("/api/auth/signin", h.Signin)
	r.Post("/api/auth/signout", h.Signout)
	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionAuth(issuer, zap.NewNop()))
		r.Get("/api/auth/me", h.Me)
	})
	return r, mail
}

func doJSON(t *testing.T, r http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	return nil
}

func TestSignup_CreatesAccountAndRejectsDuplicate(t *testing.T) {
	r, _ := newAuthRouter(t)

	rec := doJSON(t, r, "/api/auth/signup", map[string]string{
		"email": "Ana@Example.com", "password": "password123", "name": "Ana",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["userId"])

	rec = doJSON(t, r, "/api/auth/signup", map[string]string{
		"email": "ana@example.com", "password": "password123", "name": "Ana",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email already registered", decodeBody(t, rec)["error"])
}

func TestSignup_MissingFields(t *testing.T) {
	r, _ := newAuthRouter(t)
	rec := doJSON(t, r, "/api/auth/signup", map[string]string{"email": "a@b.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerifyEmail_SetsSessionCookie(t *testing.T) {
	r, mail := newAuthRouter(t)
	doJSON(t, r, "/api/auth/signup", map[string]string{
		"email": "ana@example.com", "password": "password123", "name": "Ana",
	})

	rec := doJSON(t, r, "/api/auth/verify-email", map[string]string{"token": mail.otp()})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	user, ok := body["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "ana@example.com", user["email"])
	assert.Equal(t, true, user["isVerified"])

	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
}

func TestVerifyEmail_WrongCode(t *testing.T) {
	r, mail := newAuthRouter(t)
	doJSON(t, r, "/api/auth/signup", map[string]string{
		"email": "ana@example.com", "password": "password123", "name": "Ana",
	})

	wrong := "000000"
	if mail.otp() == wrong {
		wrong = "000001"
	}
	rec := doJSON(t, r, "/api/auth/verify-email", map[string]string{"token": wrong})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid or expired code", decodeBody(t, rec)["error"])
}

func TestPasswordResetFlow(t *testing.T) {
	r, mail := newAuthRouter(t)
	doJSON(t, r, "/api/auth/signup", map[string]string{
		"email": "ana@example.com", "password": "password123", "name": "Ana",
	})

	rec := doJSON(t, r, "/api/auth/forget-password", map[string]string{"email": "ana@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	otp := mail.otp()

	// The check-only step leaves the code valid.
	rec = doJSON(t, r, "/api/auth/verify-reset-otp", map[string]string{"token": otp})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OTP is valid", decodeBody(t, rec)["message"])

	rec = doJSON(t, r, "/api/auth/reset-password", map[string]string{
		"token": otp, "newPassword": "short",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, r, "/api/auth/reset-password", map[string]string{
		"token": otp, "newPassword": "newpassword456",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, sessionCookie(rec))

	// The code was consumed; replay must fail.
	rec = doJSON(t, r, "/api/auth/reset-password", map[string]string{
		"token": otp, "newPassword": "anotherpass789",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, r, "/api/auth/signin", map[string]string{
		"email": "ana@example.com", "password": "newpassword456",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, "/api/auth/signin", map[string]string{
		"email": "ana@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestForgetPassword_UnknownEmail(t *testing.T) {
	r, _ := newAuthRouter(t)
	rec := doJSON(t, r, "/api/auth/forget-password", map[string]string{"email": "ghost@example.com"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSignin_IdenticalErrorForUnknownAndWrongPassword(t *testing.T) {
	r, _ := newAuthRouter(t)
	doJSON(t, r, "/api/auth/signup", map[string]string{
		"email": "ana@example.com", "password": "password123", "name": "Ana",
	})

	unknown := doJSON(t, r, "/api/auth/signin", map[string]string{
		"email": "ghost@example.com", "password": "password123",
	})
	wrongPassword := doJSON(t, r, "/api/auth/signin", map[string]string{
		"email": "ana@example.com", "password": "wrongpassword",
	})

	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, unknown.Body.String(), wrongPassword.Body.String())
}

func TestSignin_Success(t *testing.T) {
	r, _ := newAuthRouter(t)
	doJSON(t, r, "/api/auth/signup", map[string]string{
		"email": "ana@example.com", "password": "password123", "name": "Ana",
	})

	rec := doJSON(t, r, "/api/auth/signin", map[string]string{
		"email": "ana@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, sessionCookie(rec))

	body := decodeBody(t, rec)
	user, ok := body["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "user", user["role"])
}

func TestMe_RequiresSessionAndReturnsProfile(t *testing.T) {
	r, _ := newAuthRouter(t)
	doJSON(t, r, "/api/auth/signup", map[string]string{
		"email": "ana@example.com", "password": "password123", "name": "Ana",
	})
	signin := doJSON(t, r, "/api/auth/signin", map[string]string{
		"email": "ana@example.com", "password": "password123",
	})
	cookie := sessionCookie(signin)
	require.NotNil(t, cookie)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	user, ok := decodeBody(t, rec)["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "ana@example.com", user["email"])
	assert.Equal(t, "Ana", user["name"])
}

func TestSignout_ClearsCookie(t *testing.T) {
	r, _ := newAuthRouter(t)
	rec := doJSON(t, r, "/api/auth/signout", map[string]string{})
	require.Equal(t, http.StatusOK, rec.Code)

	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Equal(t, -1, cookie.MaxAge)
}
