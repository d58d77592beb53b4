package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/spacedigitalia/jelajah-kode-sub000/internal/middleware"
	"github.com/spacedigitalia/jelajah-kode-sub000/internal/session"
	"github.com/spacedigitalia/jelajah-kode-sub000/internal/usecase"
)

// Each logical auth operation gets its own request shape; routing picks
// the operation, not field sniffing.
type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role,omitempty"`
}

type verifyEmailRequest struct {
	Token string `json:"token"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type confirmResetRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// userPayload is the account summary returned by verify and signin.
type userPayload struct {
	ID         string `json:"_id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Status     string `json:"status,omitempty"`
	IsVerified *bool  `json:"isVerified,omitempty"`
	Role       string `json:"role"`
	Picture    string `json:"picture,omitempty"`
}

type AuthHandler struct {
	usecase  *usecase.AuthUsecase
	sessions *session.Issuer
	logger   *zap.Logger
}

func NewAuthHandler(uc *usecase.AuthUsecase, sessions *session.Issuer, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{usecase: uc, sessions: sessions, logger: logger.Named("AuthHandler")}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "Email, password, and name are required")
		return
	}

	userID, err := h.usecase.Signup(r.Context(), req.Email, req.Password, req.Name, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrEmailTaken):
			writeError(w, http.StatusBadRequest, "Email already registered")
		case errors.Is(err, usecase.ErrPasswordTooShort):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, usecase.ErrEmailDelivery):
			writeError(w, http.StatusInternalServerError, "Failed to send verification email")
		default:
			h.logger.Error("Signup failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to create account")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "Account created. Check your email for the verification code",
		"userId":  userID,
	})
}

func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req verifyEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		writeError(w, http.StatusBadRequest, "Verification code is required")
		return
	}

	user, token, err := h.usecase.VerifyEmail(r.Context(), req.Token)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidOrExpired) {
			writeError(w, http.StatusBadRequest, "Invalid or expired code")
			return
		}
		h.logger.Error("Email verification failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to verify email")
		return
	}

	session.SetCookie(w, token, h.sessions.TTL())
	verified := user.IsVerified
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Email verified successfully",
		"user": userPayload{
			ID:         user.ID.Hex(),
			Email:      user.Email,
			Name:       user.Name,
			Status:     user.Status,
			IsVerified: &verified,
			Role:       user.Role,
			Picture:    user.Picture,
		},
	})
}

func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeError(w, http.StatusBadRequest, "Email is required")
		return
	}

	if err := h.usecase.ResendVerification(r.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, usecase.ErrAccountNotFound):
			writeError(w, http.StatusNotFound, "No account found for this email")
		case errors.Is(err, usecase.ErrEmailDelivery):
			writeError(w, http.StatusInternalServerError, "Failed to send verification email")
		default:
			h.logger.Error("Resend verification failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to resend verification code")
		}
		return
	}
	writeMessage(w, http.StatusOK, "Verification code sent")
}

func (h *AuthHandler) ForgetPassword(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeError(w, http.StatusBadRequest, "Email is required")
		return
	}

	if err := h.usecase.RequestReset(r.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, usecase.ErrAccountNotFound):
			writeError(w, http.StatusNotFound, "No account found for this email")
		case errors.Is(err, usecase.ErrEmailDelivery):
			writeError(w, http.StatusInternalServerError, "Failed to send reset email")
		default:
			h.logger.Error("Reset request failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to request password reset")
		}
		return
	}
	writeMessage(w, http.StatusOK, "Password reset code sent")
}

// VerifyResetOTP is the check-only step: it validates the code without
// consuming it.
func (h *AuthHandler) VerifyResetOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		writeError(w, http.StatusBadRequest, "Reset code is required")
		return
	}

	if err := h.usecase.VerifyResetOTP(r.Context(), req.Token); err != nil {
		if errors.Is(err, usecase.ErrInvalidOrExpired) {
			writeError(w, http.StatusBadRequest, "Invalid or expired code")
			return
		}
		h.logger.Error("Reset code check failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to verify reset code")
		return
	}
	writeMessage(w, http.StatusOK, "OTP is valid")
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req confirmResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "Reset code and new password are required")
		return
	}

	_, token, err := h.usecase.ResetPassword(r.Context(), req.Token, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidOrExpired):
			writeError(w, http.StatusBadRequest, "Invalid or expired code")
		case errors.Is(err, usecase.ErrPasswordTooShort):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("Password reset failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to reset password")
		}
		return
	}

	session.SetCookie(w, token, h.sessions.TTL())
	writeMessage(w, http.StatusOK, "Password reset successfully")
}

func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, token, err := h.usecase.Signin(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		h.logger.Error("Signin failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to sign in")
		return
	}

	session.SetCookie(w, token, h.sessions.TTL())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Signed in successfully",
		"user": userPayload{
			ID:    user.ID.Hex(),
			Email: user.Email,
			Name:  user.Name,
			Role:  user.Role,
		},
	})
}

// Me returns the profile of the authenticated account. Mounted behind
// session auth; the user id comes from the request context.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value(middleware.UserIDCtxKey).(string)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := h.usecase.Profile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, usecase.ErrAccountNotFound) {
			writeError(w, http.StatusNotFound, "Account not found")
			return
		}
		h.logger.Error("Profile fetch failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to load profile")
		return
	}

	verified := user.IsVerified
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user": userPayload{
			ID:         user.ID.Hex(),
			Email:      user.Email,
			Name:       user.Name,
			Status:     user.Status,
			IsVerified: &verified,
			Role:       user.Role,
			Picture:    user.Picture,
		},
	})
}

func (h *AuthHandler) Signout(w http.ResponseWriter, r *http.Request) {
	session.ClearCookie(w)
	writeMessage(w, http.StatusOK, "Signed out successfully")
}
