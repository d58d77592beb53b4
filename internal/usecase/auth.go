package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spacedigitalia/jelajah-kode-sub000/internal/entity"
	"github.com/spacedigitalia/jelajah-kode-sub000/internal/mailer"
	"github.com/spacedigitalia/jelajah-kode-sub000/internal/platform/metrics"
	"github.com/spacedigitalia/jelajah-kode-sub000/internal/repository"
	"github.com/spacedigitalia/jelajah-kode-sub000/internal/session"
)

const minPasswordLength = 8

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidOrExpired   = errors.New("invalid or expired code")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrEmailDelivery      = errors.New("failed to send email")
)

// CredentialStore is the persistence contract the auth flows need. Each
// operation touches exactly one account document.
type CredentialStore interface {
	Create(ctx context.Context, user *entity.User) (primitive.ObjectID, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByID(ctx context.Context, userID primitive.ObjectID) (*entity.User, error)
	FindByVerificationToken(ctx context.Context, token string, now time.Time) (*entity.User, error)
	FindByResetToken(ctx context.Context, token string, now time.Time) (*entity.User, error)
	SetVerificationToken(ctx context.Context, userID primitive.ObjectID, token string, expiry time.Time) error
	MarkVerified(ctx context.Context, userID primitive.ObjectID) error
	SetResetToken(ctx context.Context, userID primitive.ObjectID, token string, expiry time.Time) error
	ResetPassword(ctx context.Context, userID primitive.ObjectID, passwordHash string) error
}

// AuthUsecase drives the two OTP flows (signup → verify → session and
// forget-password → verify → reset → session) plus direct signin.
type AuthUsecase struct {
	store    CredentialStore
	mailer   mailer.Mailer
	sessions *session.Issuer
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewAuthUsecase(store CredentialStore, m mailer.Mailer, sessions *session.Issuer, mx *metrics.Metrics, logger *zap.Logger) *AuthUsecase {
	return &AuthUsecase{
		store:    store,
		mailer:   m,
		sessions: sessions,
		metrics:  mx,
		logger:   logger.Named("AuthUsecase"),
	}
}

// Signup creates an unverified account with a fresh verification code and
// dispatches it by email. A delivery failure surfaces as an error but the
// created account and code stay committed; resend recovers.
func (u *AuthUsecase) Signup(ctx context.Context, email, password, name, role string) (string, error) {
	email = normalizeEmail(email)
	if len(password) < minPasswordLength {
		return "", ErrPasswordTooShort
	}
	if role != entity.RoleAdmin {
		role = entity.RoleUser
	}

	if _, err := u.store.FindByEmail(ctx, email); err == nil {
		return "", ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	otp, err := GenerateOTP()
	if err != nil {
		return "", err
	}
	expiry := time.Now().Add(OTPValidity)

	user := &entity.User{
		Email:                   email,
		Password:                string(hash),
		Name:                    name,
		Role:                    role,
		Status:                  entity.StatusActive,
		IsVerified:              false,
		VerificationToken:       otp,
		VerificationTokenExpiry: &expiry,
	}

	userID, err := u.store.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return "", ErrEmailTaken
		}
		return "", err
	}
	u.metrics.SignupsTotal.Inc()
	u.metrics.OTPIssuedTotal.Inc()
	u.logger.Info("Account created, verification code issued", zap.String("userID", userID.Hex()))

	if err := u.mailer.SendVerificationEmail(email, name, otp); err != nil {
		u.logger.Error("Verification email dispatch failed after signup", zap.String("userID", userID.Hex()), zap.Error(err))
		return "", ErrEmailDelivery
	}
	return userID.Hex(), nil
}

// VerifyEmail consumes a verification code, marks the account verified
// and issues a session token. This is the sole transition out of the
// unverified state.
func (u *AuthUsecase) VerifyEmail(ctx context.Context, otp string) (*entity.User, string, error) {
	user, err := u.store.FindByVerificationToken(ctx, otp, time.Now())
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", ErrInvalidOrExpired
		}
		return nil, "", err
	}

	if err := u.store.MarkVerified(ctx, user.ID); err != nil {
		return nil, "", err
	}
	user.IsVerified = true
	user.VerificationToken = ""
	user.VerificationTokenExpiry = nil

	token, err := u.sessions.Issue(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		return nil, "", err
	}
	u.logger.Info("Email verified", zap.String("userID", user.ID.Hex()))
	return user, token, nil
}

// ResendVerification regenerates the verification code, discarding any
// prior one, and re-dispatches it. It never creates an account.
func (u *AuthUsecase) ResendVerification(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	user, err := u.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrAccountNotFound
		}
		return err
	}

	otp, err := GenerateOTP()
	if err != nil {
		return err
	}
	if err := u.store.SetVerificationToken(ctx, user.ID, otp, time.Now().Add(OTPValidity)); err != nil {
		return err
	}
	u.metrics.OTPIssuedTotal.Inc()

	if err := u.mailer.SendVerificationEmail(user.Email, user.Name, otp); err != nil {
		u.logger.Error("Verification email dispatch failed on resend", zap.String("userID", user.ID.Hex()), zap.Error(err))
		return ErrEmailDelivery
	}
	return nil
}

// RequestReset writes a fresh reset code, superseding any unconsumed one
// (the old code becomes invalid immediately), and dispatches it.
func (u *AuthUsecase) RequestReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	user, err := u.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrAccountNotFound
		}
		return err
	}

	otp, err := GenerateOTP()
	if err != nil {
		return err
	}
	if err := u.store.SetResetToken(ctx, user.ID, otp, time.Now().Add(OTPValidity)); err != nil {
		return err
	}
	u.metrics.OTPIssuedTotal.Inc()

	if err := u.mailer.SendPasswordResetEmail(user.Email, user.Name, otp); err != nil {
		u.logger.Error("Reset email dispatch failed", zap.String("userID", user.ID.Hex()), zap.Error(err))
		return ErrEmailDelivery
	}
	return nil
}

// VerifyResetOTP checks a reset code without consuming it; the code stays
// valid for the subsequent ResetPassword call.
func (u *AuthUsecase) VerifyResetOTP(ctx context.Context, otp string) error {
	_, err := u.store.FindByResetToken(ctx, otp, time.Now())
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrInvalidOrExpired
		}
		return err
	}
	return nil
}

// ResetPassword re-validates the reset code, rewrites the password and
// clears the code in the same update, consuming it, then issues a session
// token.
func (u *AuthUsecase) ResetPassword(ctx context.Context, otp, newPassword string) (*entity.User, string, error) {
	user, err := u.store.FindByResetToken(ctx, otp, time.Now())
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", ErrInvalidOrExpired
		}
		return nil, "", err
	}
	if len(newPassword) < minPasswordLength {
		return nil, "", ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}
	if err := u.store.ResetPassword(ctx, user.ID, string(hash)); err != nil {
		return nil, "", err
	}
	user.ResetToken = ""
	user.ResetTokenExpiry = nil
	u.metrics.PasswordResetsTotal.Inc()

	token, err := u.sessions.Issue(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		return nil, "", err
	}
	u.logger.Info("Password reset completed", zap.String("userID", user.ID.Hex()))
	return user, token, nil
}

// Signin authenticates email/password and issues a session token. Unknown
// email, passwordless account and wrong password all collapse into the
// same generic error so account existence cannot be probed.
func (u *AuthUsecase) Signin(ctx context.Context, email, password string) (*entity.User, string, error) {
	email = normalizeEmail(email)
	user, err := u.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !user.HasPassword() {
		return nil, "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := u.sessions.Issue(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		return nil, "", err
	}
	u.metrics.SigninsTotal.Inc()
	return user, token, nil
}

// Profile loads the account behind an authenticated session.
func (u *AuthUsecase) Profile(ctx context.Context, userID string) (*entity.User, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrAccountNotFound
	}
	user, err := u.store.FindByID(ctx, oid)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
