package service

import (
	"context"
	"errors"
	"strings"
	"time"

	apperrors "github.com/contactbook/api/internal/errors"
	"github.com/contactbook/api/internal/model"
	ctxutil "github.com/contactbook/api/pkg/context"
	"github.com/contactbook/api/pkg/logger"
	"gorm.io/gorm"
)

// ConfirmationMailer delivers the email confirmation link. It is an
// interface so tests can capture the send instead of talking SMTP.
type ConfirmationMailer interface {
	SendConfirmation(ctx context.Context, email, username, token string) error
}

// UserStore is the slice of the user repository the auth flow needs.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateRefreshToken(ctx context.Context, userID uint, token *string) error
	ConfirmEmail(ctx context.Context, email string) error
}

// AuthService implements signup, login, email confirmation and the
// refresh token rotation flow.
type AuthService struct {
	users  UserStore
	tokens *TokenService
	hasher *PasswordHasher
	mailer ConfirmationMailer
}

func NewAuthService(
	users UserStore,
	tokens *TokenService,
	hasher *PasswordHasher,
	mailer ConfirmationMailer,
) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		hasher: hasher,
		mailer: mailer,
	}
}

// Signup registers a new unconfirmed account and sends the confirmation
// email in the background.
func (s *AuthService) Signup(ctx context.Context, username, email, password string) (*model.User, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "Signup")
	email = normalizeEmail(email)

	logger.InfoWithContext(ctx, "Signing up new account").
		String("email", email).
		String("username", username).
		Log()

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if existing != nil && err == nil {
		logger.WarnWithContext(ctx, "Signup rejected, email already registered").
			String("email", email).
			Log()
		return nil, apperrors.ErrEmailExists
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	user := &model.User{
		Username: username,
		Email:    email,
		Password: hashed,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	s.sendConfirmationAsync(ctx, user.Email, user.Username)

	return user, nil
}

// Login verifies credentials and issues a new access/refresh token pair.
// The refresh token is persisted so rotation can detect reuse.
func (s *AuthService) Login(ctx context.Context, email, password string) (accessToken, refreshToken string, err error) {
	ctx = ctxutil.WithOperation(ctx, "service", "Login")
	email = normalizeEmail(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.WarnWithContext(ctx, "Login failed, unknown email").
				String("email", email).
				Log()
			return "", "", apperrors.ErrInvalidEmail
		}
		return "", "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if !user.Confirmed {
		logger.WarnWithContext(ctx, "Login failed, email not confirmed").
			String("email", email).
			Log()
		return "", "", apperrors.ErrEmailNotConfirmed
	}

	if !s.hasher.Verify(user.Password, password) {
		logger.WarnWithContext(ctx, "Login failed, wrong password").
			String("email", email).
			Log()
		return "", "", apperrors.ErrInvalidPassword
	}

	accessToken, err = s.tokens.IssueAccessToken(user.Email)
	if err != nil {
		return "", "", apperrors.WrapError(apperrors.ErrInternal, err)
	}
	refreshToken, err = s.tokens.IssueRefreshToken(user.Email)
	if err != nil {
		return "", "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.users.UpdateRefreshToken(ctx, user.ID, &refreshToken); err != nil {
		return "", "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Login successful").
		String("email", email).
		Int("user_id", int(user.ID)).
		Log()

	return accessToken, refreshToken, nil
}

// Refresh rotates the token pair. The presented refresh token must
// match the one stored for the account; a mismatch means the token was
// already rotated (or stolen), so the stored token is cleared and every
// outstanding refresh token for the account dies with it.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (newAccess, newRefresh string, err error) {
	ctx = ctxutil.WithOperation(ctx, "service", "Refresh")

	email, err := s.tokens.Decode(refreshToken, ScopeRefresh)
	if err != nil {
		return "", "", apperrors.ErrInvalidRefreshToken
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", apperrors.ErrInvalidRefreshToken
		}
		return "", "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if user.RefreshToken == nil || *user.RefreshToken != refreshToken {
		logger.WarnWithContext(ctx, "Refresh token mismatch, clearing stored token").
			String("email", email).
			Int("user_id", int(user.ID)).
			Log()
		if clearErr := s.users.UpdateRefreshToken(ctx, user.ID, nil); clearErr != nil {
			logger.ErrorWithContext(ctx, "Failed to clear stored refresh token").
				Int("user_id", int(user.ID)).
				Err(clearErr).
				Log()
		}
		return "", "", apperrors.ErrInvalidRefreshToken
	}

	newAccess, err = s.tokens.IssueAccessToken(user.Email)
	if err != nil {
		return "", "", apperrors.WrapError(apperrors.ErrInternal, err)
	}
	newRefresh, err = s.tokens.IssueRefreshToken(user.Email)
	if err != nil {
		return "", "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.users.UpdateRefreshToken(ctx, user.ID, &newRefresh); err != nil {
		return "", "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Token pair rotated").
		String("email", email).
		Int("user_id", int(user.ID)).
		Log()

	return newAccess, newRefresh, nil
}

// Confirm validates the confirmation token and marks the account
// confirmed. Confirming twice is not an error.
func (s *AuthService) Confirm(ctx context.Context, token string) (message string, err error) {
	ctx = ctxutil.WithOperation(ctx, "service", "Confirm")

	email, err := s.tokens.Decode(token, ScopeEmail)
	if err != nil {
		return "", apperrors.ErrVerificationFailed
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.ErrVerificationFailed
		}
		return "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if user.Confirmed {
		return "Your email is already confirmed", nil
	}

	if err := s.users.ConfirmEmail(ctx, email); err != nil {
		return "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	// A cached session may keep reporting the old confirmed flag until
	// its TTL runs out. That staleness window is accepted.
	return "Email confirmed", nil
}

// ResendConfirmation re-sends the confirmation email. Unknown addresses
// get the same response as a successful send, so the endpoint cannot be
// used to probe for accounts.
func (s *AuthService) ResendConfirmation(ctx context.Context, email string) (message string, err error) {
	ctx = ctxutil.WithOperation(ctx, "service", "ResendConfirmation")
	email = normalizeEmail(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.DebugWithContext(ctx, "Resend requested for unknown email").
				String("email", email).
				Log()
			return "Check your email for confirmation.", nil
		}
		return "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if user.Confirmed {
		return "Your email is already confirmed", nil
	}

	s.sendConfirmationAsync(ctx, user.Email, user.Username)

	return "Check your email for confirmation.", nil
}

// sendConfirmationAsync issues the confirmation token and fires the
// email off in a goroutine so the HTTP response never waits on SMTP.
func (s *AuthService) sendConfirmationAsync(ctx context.Context, email, username string) {
	token, err := s.tokens.IssueConfirmationToken(email)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to issue confirmation token").
			String("email", email).
			Err(err).
			Log()
		return
	}

	// Detached from the request context so the send survives the response.
	sendCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	go func() {
		defer cancel()
		// The mailer logs delivery failures itself.
		_ = s.mailer.SendConfirmation(sendCtx, email, username, token)
	}()
}

// Emails compare case-sensitively exactly as stored; only surrounding
// whitespace is stripped.
func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}
