package session

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var issued = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("whatever-the-server-uses"))
	require.NoError(t, err)
	return tok
}

func freshToken(t *testing.T) string {
	return signed(t, jwt.MapClaims{
		"userId": 1,
		"iat":    issued.Unix(),
		"exp":    issued.Add(24 * time.Hour).Unix(),
	})
}

func at(ts time.Time) Option {
	return WithClock(func() time.Time { return ts })
}

func TestSession_FreshTokenIsAuthenticated(t *testing.T) {
	store := &MemoryStore{}
	s := New(store, at(issued.Add(time.Hour)))

	require.NoError(t, s.Store(freshToken(t)))
	assert.True(t, s.IsAuthenticated())

	tok, ok := s.Token()
	assert.True(t, ok)
	assert.NotEmpty(t, tok)

	exp, err := s.Expiry()
	require.NoError(t, err)
	assert.True(t, exp.Equal(issued.Add(24*time.Hour)))
}

func TestSession_AbsentToken(t *testing.T) {
	s := New(&MemoryStore{})
	assert.False(t, s.IsAuthenticated())
}

func TestSession_ExpiredTokenIsDiscarded(t *testing.T) {
	store := &MemoryStore{}
	s := New(store, at(issued.Add(24*time.Hour)))

	require.NoError(t, s.Store(freshToken(t)))
	assert.False(t, s.IsAuthenticated(), "now == exp counts as expired")

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestSession_MalformedTokenIsDiscarded(t *testing.T) {
	cases := map[string]string{
		"garbage":    "not-a-token",
		"two parts":  "abc.def",
		"no exp":     signed(t, jwt.MapClaims{"userId": 1}),
		"bad base64": "eyJhbGciOiJIUzI1NiJ9.!!!.sig",
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			store := &MemoryStore{}
			s := New(store, at(issued))
			require.NoError(t, s.Store(tok))

			assert.False(t, s.IsAuthenticated())
			_, err := store.Load()
			assert.ErrorIs(t, err, ErrNoToken)
		})
	}
}

func TestSession_SignatureIsNotChecked(t *testing.T) {
	tok := freshToken(t)
	s := New(&MemoryStore{}, at(issued))
	require.NoError(t, s.Store(tok[:len(tok)-2]+"xx"))

	assert.True(t, s.IsAuthenticated())
}

func TestSession_ClearLogsOut(t *testing.T) {
	s := New(&MemoryStore{}, at(issued))
	require.NoError(t, s.Store(freshToken(t)))
	require.NoError(t, s.Clear())

	assert.False(t, s.IsAuthenticated())
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token")
	store := NewFileStore(path)

	_, err := store.Load()
	require.ErrorIs(t, err, ErrNoToken)

	require.NoError(t, store.Save("first"))
	require.NoError(t, store.Save("second"))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "second", got)

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear(), "clearing twice is fine")
	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestFileStore_SessionAcrossRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	tok := freshToken(t)

	require.NoError(t, New(NewFileStore(path), at(issued)).Store(tok))

	later := New(NewFileStore(path), at(issued.Add(23*time.Hour)))
	got, ok := later.Token()
	require.True(t, ok)
	assert.Equal(t, tok, got)
}
