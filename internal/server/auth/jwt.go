package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/checkpay/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// TokenService issues and verifies HS256 access tokens whose subject is a
// username from the CredentialStore. Tokens are stateless: validity depends
// only on the signature, the expiry and the subject still being recognized.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	users  *CredentialStore
	now    func() time.Time
}

// TokenOption customizes a TokenService.
type TokenOption func(*TokenService)

// WithClock replaces time.Now, mainly for tests around the expiry boundary.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		s.now = now
	}
}

func NewTokenService(secret []byte, ttl time.Duration, users *CredentialStore, opts ...TokenOption) *TokenService {
	s := &TokenService{
		secret: secret,
		ttl:    ttl,
		users:  users,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue signs a token for username, valid for [now, now+ttl). The clock is
// truncated to whole seconds because JWT NumericDate has second precision.
// Issue does not check that username exists; callers authenticate first.
func (s *TokenService) Issue(username string) (string, time.Time, error) {
	issuedAt := s.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(s.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// Verify checks the token and returns its subject.
//
// Errors:
//   - common.ErrInvalidToken: undecodable, wrong algorithm, bad signature or no expiry.
//   - common.ErrTokenExpired: the current time is at or past the expiry.
//   - common.ErrUnknownSubject: the subject is not in the credential table.
func (s *TokenService) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		// the signature is checked before claims, so an expired token here
		// was genuinely issued by us
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if claims.Subject == "" || !s.users.Contains(claims.Subject) {
		return "", common.ErrUnknownSubject
	}

	return claims.Subject, nil
}

// TTL returns the configured token lifetime.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}
