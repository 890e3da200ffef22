package service

import (
	"fmt"
	"time"

	"github.com/contactbook/api/config"
	domainErrors "github.com/contactbook/api/internal/errors"
	"github.com/golang-jwt/jwt/v5"
)

// Token scopes. A token is only accepted by the operation its scope
// was issued for.
const (
	ScopeAccess  = "access_token"
	ScopeRefresh = "refresh_token"
	ScopeEmail   = "email_token"
)

// TokenService issues and verifies the HMAC-signed JWTs used for API
// access, session refresh and email confirmation. The signing algorithm
// comes from configuration and defaults to HS256.
type TokenService struct {
	secret          []byte
	method          jwt.SigningMethod
	accessTTL       time.Duration
	refreshTTL      time.Duration
	confirmationTTL time.Duration
}

func NewTokenService(cfg *config.Config) *TokenService {
	return &TokenService{
		secret:          []byte(cfg.JWT.Secret),
		method:          signingMethod(cfg.JWT.SigningAlgorithm),
		accessTTL:       cfg.JWT.AccessTTL,
		refreshTTL:      cfg.JWT.RefreshTTL,
		confirmationTTL: cfg.JWT.ConfirmationTTL,
	}
}

// signingMethod resolves the configured algorithm name, accepting only
// HMAC variants since signing uses a shared secret.
func signingMethod(name string) jwt.SigningMethod {
	if m, ok := jwt.GetSigningMethod(name).(*jwt.SigningMethodHMAC); ok {
		return m
	}
	return jwt.SigningMethodHS256
}

func (s *TokenService) IssueAccessToken(email string) (string, error) {
	return s.issue(email, ScopeAccess, s.accessTTL)
}

func (s *TokenService) IssueRefreshToken(email string) (string, error) {
	return s.issue(email, ScopeRefresh, s.refreshTTL)
}

func (s *TokenService) IssueConfirmationToken(email string) (string, error) {
	return s.issue(email, ScopeEmail, s.confirmationTTL)
}

func (s *TokenService) issue(subject, scope string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   subject,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
		"scope": scope,
	}

	token := jwt.NewWithClaims(s.method, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Decode verifies the signature and expiry, checks that the token was
// issued with expectedScope and returns its subject (the user email).
func (s *TokenService) Decode(tokenString, expectedScope string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != s.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", domainErrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", domainErrors.ErrInvalidToken
	}

	scope, ok := claims["scope"].(string)
	if !ok || scope != expectedScope {
		return "", domainErrors.ErrWrongScope
	}

	subject, ok := claims["sub"].(string)
	if !ok || subject == "" {
		return "", domainErrors.ErrInvalidToken
	}

	return subject, nil
}
