// Package session issues anonymous shopper identities. An anonymous id keys a
// cart until the shopper signs in and the cart is migrated to their account.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid session token")

type Service struct {
	tokens *tokenManager
	ttl    time.Duration
}

func New() *Service {
	return &Service{
		tokens: newTokenManager(),
		ttl:    30 * 24 * time.Hour,
	}
}

// Issue mints a fresh anonymous identity and a bearer token for it. The
// client caches both and replays the token across visits, so the identity
// survives until sign-in.
func (s *Service) Issue(ctx context.Context) (token, anonymousID string, err error) {
	anonymousID = "anon_" + uuid.NewString()
	token, err = s.tokens.Issue(anonymousID, s.ttl)
	if err != nil {
		return "", "", err
	}
	return token, anonymousID, nil
}

// LookupByToken resolves a token back to its anonymous identity.
func (s *Service) LookupByToken(ctx context.Context, token string) (string, error) {
	anonymousID, ok := s.tokens.Validate(token)
	if !ok {
		return "", ErrInvalidToken
	}
	return anonymousID, nil
}

// Drop invalidates a token, used after its anonymous cart has been migrated
// into a signed-in account.
func (s *Service) Drop(token string) {
	s.tokens.Drop(token)
}

// TTLSeconds reports the token lifetime for response payloads.
func (s *Service) TTLSeconds() int {
	return int(s.ttl.Seconds())
}
