package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/toolrent/rental-system/internal/core/domain"
)

func TestTokenManager_IssueVerify(t *testing.T) {
	m := NewTokenManager("secret", 0)

	token, err := m.Issue(42)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	id, err := m.Verify(token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if id != 42 {
		t.Fatalf("expected 42, got %d", id)
	}
}

func TestTokenManager_DefaultTTL(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	m := NewTokenManager("secret", 0).WithClock(func() time.Time { return now })

	token, err := m.Issue(1)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	claims := &sessionClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if !claims.ExpiresAt.Time.Equal(now.Add(24 * time.Hour)) {
		t.Fatalf("expected exp %v, got %v", now.Add(24*time.Hour), claims.ExpiresAt.Time)
	}
	if !claims.IssuedAt.Time.Equal(now) {
		t.Fatalf("expected iat %v, got %v", now, claims.IssuedAt.Time)
	}
}

func TestTokenManager_MissingToken(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	if _, err := m.Verify(""); !errors.Is(err, domain.ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
}

func TestTokenManager_TamperedPayload(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	token, err := m.Issue(7)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	parts := strings.Split(token, ".")
	payload := []byte(parts[1])
	for i := range payload {
		tampered := append([]byte(nil), payload...)
		if tampered[i] == 'A' {
			tampered[i] = 'B'
		} else {
			tampered[i] = 'A'
		}
		forged := parts[0] + "." + string(tampered) + "." + parts[2]
		if _, err := m.Verify(forged); !errors.Is(err, domain.ErrInvalidToken) {
			t.Fatalf("byte %d: expected ErrInvalidToken, got %v", i, err)
		}
	}
}

func TestTokenManager_TruncatedToken(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	token, err := m.Issue(7)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := m.Verify(token[:len(token)-1]); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenManager_RejectsForeignTokens(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))

	otherSecret, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		UserID:           1,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp},
	}).SignedString([]byte("other"))

	noExpiry, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{UserID: 1}).SignedString([]byte("secret"))

	noUser, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp},
	}).SignedString([]byte("secret"))

	wrongAlg, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, sessionClaims{
		UserID:           1,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp},
	}).SignedString([]byte("secret"))

	cases := map[string]string{
		"other secret": otherSecret,
		"no expiry":    noExpiry,
		"no user":      noUser,
		"wrong alg":    wrongAlg,
		"garbage":      "not-a-token",
	}
	for name, token := range cases {
		if _, err := m.Verify(token); !errors.Is(err, domain.ErrInvalidToken) {
			t.Fatalf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}
