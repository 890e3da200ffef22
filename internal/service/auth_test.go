package service

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/contactbook/api/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authFixture struct {
	store  *fakeUserStore
	mailer *fakeMailer
	tokens *TokenService
	auth   *AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	store := newFakeUserStore()
	mailer := newFakeMailer()
	tokens := newTestTokenService(t, time.Minute)
	auth := NewAuthService(store, tokens, NewPasswordHasher(), mailer)

	return &authFixture{
		store:  store,
		mailer: mailer,
		tokens: tokens,
		auth:   auth,
	}
}

func (f *authFixture) waitForEmail(t *testing.T) string {
	t.Helper()
	select {
	case <-f.mailer.sent:
		return f.mailer.lastToken()
	case <-time.After(2 * time.Second):
		t.Fatal("confirmation email was never sent")
		return ""
	}
}

func TestSignupCreatesUnconfirmedAccount(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	user, err := f.auth.Signup(ctx, "alice", " alice@example.com ", "password123")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email, "surrounding whitespace must be stripped")
	assert.False(t, user.Confirmed)
	assert.NotEqual(t, "password123", user.Password, "password must be hashed")

	token := f.waitForEmail(t)
	subject, err := f.tokens.Decode(token, ScopeEmail)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", subject)
}

func TestSignupDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.auth.Signup(ctx, "alice", "alice@example.com", "password123")
	require.NoError(t, err)
	f.waitForEmail(t)

	_, err = f.auth.Signup(ctx, "impostor", "alice@example.com", "hunter22222")
	assert.ErrorIs(t, err, apperrors.ErrEmailExists)
}

func TestLoginErrorVariants(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.auth.Signup(ctx, "alice", "alice@example.com", "password123")
	require.NoError(t, err)
	f.waitForEmail(t)

	_, _, err = f.auth.Login(ctx, "ghost@example.com", "password123")
	assert.ErrorIs(t, err, apperrors.ErrInvalidEmail)

	_, _, err = f.auth.Login(ctx, "alice@example.com", "password123")
	assert.ErrorIs(t, err, apperrors.ErrEmailNotConfirmed)

	require.NoError(t, f.store.ConfirmEmail(ctx, "alice@example.com"))

	_, _, err = f.auth.Login(ctx, "alice@example.com", "wrong-password")
	assert.ErrorIs(t, err, apperrors.ErrInvalidPassword)
}

func TestSignupConfirmLoginFlow(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.auth.Signup(ctx, "alice", "alice@example.com", "password123")
	require.NoError(t, err)
	token := f.waitForEmail(t)

	message, err := f.auth.Confirm(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "Email confirmed", message)

	// Confirming again is idempotent
	message, err = f.auth.Confirm(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "Your email is already confirmed", message)

	access, refresh, err := f.auth.Login(ctx, "alice@example.com", "password123")
	require.NoError(t, err)

	subject, err := f.tokens.Decode(access, ScopeAccess)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", subject)

	stored, err := f.store.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored.RefreshToken)
	assert.Equal(t, refresh, *stored.RefreshToken)
}

func TestConfirmRejectsWrongTokens(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.auth.Confirm(ctx, "garbage")
	assert.ErrorIs(t, err, apperrors.ErrVerificationFailed)

	// An access token must not confirm an email
	_, err = f.auth.Signup(ctx, "alice", "alice@example.com", "password123")
	require.NoError(t, err)
	f.waitForEmail(t)

	access, err := f.tokens.IssueAccessToken("alice@example.com")
	require.NoError(t, err)

	_, err = f.auth.Confirm(ctx, access)
	assert.ErrorIs(t, err, apperrors.ErrVerificationFailed)

	// Valid token shape for an account that does not exist
	unknown, err := f.tokens.IssueConfirmationToken("ghost@example.com")
	require.NoError(t, err)

	_, err = f.auth.Confirm(ctx, unknown)
	assert.ErrorIs(t, err, apperrors.ErrVerificationFailed)
}

func TestRefreshRotatesTokenPair(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.auth.Signup(ctx, "alice", "alice@example.com", "password123")
	require.NoError(t, err)
	f.waitForEmail(t)
	require.NoError(t, f.store.ConfirmEmail(ctx, "alice@example.com"))

	_, refresh, err := f.auth.Login(ctx, "alice@example.com", "password123")
	require.NoError(t, err)

	// Issued tokens embed second-granularity timestamps; make sure the
	// rotated token differs from the original.
	time.Sleep(1100 * time.Millisecond)

	newAccess, newRefresh, err := f.auth.Refresh(ctx, refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, newAccess)
	assert.NotEqual(t, refresh, newRefresh)

	stored, err := f.store.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored.RefreshToken)
	assert.Equal(t, newRefresh, *stored.RefreshToken)
}

func TestRefreshReuseClearsStoredToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.auth.Signup(ctx, "alice", "alice@example.com", "password123")
	require.NoError(t, err)
	f.waitForEmail(t)
	require.NoError(t, f.store.ConfirmEmail(ctx, "alice@example.com"))

	_, refresh, err := f.auth.Login(ctx, "alice@example.com", "password123")
	require.NoError(t, err)

	time.Sleep(1100 * time.Millisecond)

	_, newRefresh, err := f.auth.Refresh(ctx, refresh)
	require.NoError(t, err)

	// Replaying the rotated-away token invalidates the whole session
	_, _, err = f.auth.Refresh(ctx, refresh)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)

	stored, err := f.store.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Nil(t, stored.RefreshToken, "stored token must be cleared on reuse")

	// The fresh token died with it
	_, _, err = f.auth.Refresh(ctx, newRefresh)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	f := newAuthFixture(t)

	access, err := f.tokens.IssueAccessToken("alice@example.com")
	require.NoError(t, err)

	_, _, err = f.auth.Refresh(context.Background(), access)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
}

func TestResendConfirmation(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	// Unknown address: generic message, nothing sent
	msg, err := f.auth.ResendConfirmation(ctx, "ghost@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Check your email for confirmation.", msg)

	_, err = f.auth.Signup(ctx, "alice", "alice@example.com", "password123")
	require.NoError(t, err)
	f.waitForEmail(t)

	// Unconfirmed account gets another email
	msg, err = f.auth.ResendConfirmation(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Check your email for confirmation.", msg)
	f.waitForEmail(t)

	// Confirmed account: no email, distinct message
	require.NoError(t, f.store.ConfirmEmail(ctx, "alice@example.com"))
	msg, err = f.auth.ResendConfirmation(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Your email is already confirmed", msg)

	select {
	case <-f.mailer.sent:
		t.Fatal("no email should be sent for a confirmed account")
	case <-time.After(100 * time.Millisecond):
	}
}
