package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session decides locally whether the stored token is still usable. It reads
// the token's expiry without checking the signature, so it is a convenience
// for the client and never an authorization decision; the server verifies
// every request on its own.
type Session struct {
	store TokenStore
	now   func() time.Time
}

type Option func(*Session)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

func New(store TokenStore, opts ...Option) *Session {
	s := &Session{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store saves token, replacing any previous one.
func (s *Session) Store(token string) error {
	return s.store.Save(token)
}

// Token returns the stored token when IsAuthenticated would report true.
func (s *Session) Token() (string, bool) {
	token, err := s.store.Load()
	if err != nil {
		return "", false
	}
	exp, err := expiry(token)
	if err != nil || !s.now().Before(exp) {
		_ = s.store.Clear()
		return "", false
	}
	return token, true
}

// IsAuthenticated reports whether a token is stored and not yet expired.
// Expired or unreadable tokens are discarded.
func (s *Session) IsAuthenticated() bool {
	_, ok := s.Token()
	return ok
}

// Clear forgets the stored token.
func (s *Session) Clear() error {
	return s.store.Clear()
}

// Expiry returns the stored token's expiry time.
func (s *Session) Expiry() (time.Time, error) {
	token, err := s.store.Load()
	if err != nil {
		return time.Time{}, err
	}
	return expiry(token)
}

var errNoExpiry = errors.New("token has no exp claim")

func expiry(token string) (time.Time, error) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, errNoExpiry
	}
	return claims.ExpiresAt.Time, nil
}
