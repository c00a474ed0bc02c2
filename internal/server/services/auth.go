// Package services contains server-side business logic. AuthService checks
// credentials against the fixed user table and mints/verifies access tokens;
// PaymentService owns the payment record lifecycle.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/checkpay/internal/common"
	"github.com/dmitrijs2005/checkpay/internal/metrics"
	"github.com/dmitrijs2005/checkpay/internal/server/auth"
)

// LoginResult is returned by a successful login.
type LoginResult struct {
	AccessToken string
	Username    string
	ExpiresAt   time.Time
}

type AuthService struct {
	users   *auth.CredentialStore
	tokens  *auth.TokenService
	metrics *metrics.Metrics
}

func NewAuthService(users *auth.CredentialStore, tokens *auth.TokenService, m *metrics.Metrics) *AuthService {
	return &AuthService{users: users, tokens: tokens, metrics: m}
}

// Login verifies the pair and issues a token whose subject is username.
// Any mismatch, including empty input, yields common.ErrorUnauthorized.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if !s.users.Verify(username, password) {
		s.count(metrics.OutcomeDenied)
		return nil, common.ErrorUnauthorized
	}

	token, expires, err := s.tokens.Issue(username)
	if err != nil {
		s.count(metrics.OutcomeFailure)
		return nil, fmt.Errorf("%w: issue token: %w", common.ErrorInternal, err)
	}

	s.count(metrics.OutcomeSuccess)
	return &LoginResult{AccessToken: token, Username: username, ExpiresAt: expires}, nil
}

// Authenticate resolves a bearer token to its username. Errors are always
// one of common.ErrInvalidToken, common.ErrTokenExpired or
// common.ErrUnknownSubject.
func (s *AuthService) Authenticate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", common.ErrInvalidToken
	}
	return s.tokens.Verify(token)
}

func (s *AuthService) count(outcome string) {
	if s.metrics != nil {
		s.metrics.Logins.WithLabelValues(outcome).Inc()
	}
}
