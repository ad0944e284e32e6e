package tokenx

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func mint(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-only-secret"))
	require.NoError(t, err)
	return s
}

func TestExpiry_ReadsExpClaimWithoutKey(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok := mint(t, jwt.MapClaims{"sub": "c-1", "exp": exp.Unix()})

	got, err := Expiry(tok)
	require.NoError(t, err)
	require.True(t, got.Equal(exp), "got %v want %v", got, exp)
}

func TestExpiry_ExpiredTokenStillDecodes(t *testing.T) {
	exp := time.Now().Add(-time.Hour).Truncate(time.Second)
	tok := mint(t, jwt.MapClaims{"exp": exp.Unix()})

	got, err := Expiry(tok)
	require.NoError(t, err)
	require.True(t, got.Equal(exp))
}

func TestExpiry_Errors(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		target error
	}{
		{name: "empty", raw: "  ", target: ErrEmptyToken},
		{name: "no exp", raw: mint(t, jwt.MapClaims{"sub": "x"}), target: ErrNoExpiry},
		{name: "malformed", raw: "not.a.jwt"},
		{name: "garbage", raw: "abc"},
		{name: "bad exp type", raw: mint(t, jwt.MapClaims{"exp": "tomorrow"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Expiry(tt.raw)
			require.Error(t, err)

			var de *DecodeError
			require.True(t, errors.As(err, &de), "want *DecodeError, got %T", err)
			if tt.target != nil {
				require.ErrorIs(t, err, tt.target)
			}
		})
	}
}

func TestDecode_ReturnsClaims(t *testing.T) {
	tok := mint(t, jwt.MapClaims{"sub": "w-7", "exp": time.Now().Add(time.Minute).Unix()})

	claims, err := Decode(tok)
	require.NoError(t, err)
	sub, err := claims.GetSubject()
	require.NoError(t, err)
	require.Equal(t, "w-7", sub)
}

func TestIsExpiringSoon(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	window := 10 * time.Minute

	require.False(t, IsExpiringSoon(now.Add(time.Hour), now, window))
	require.False(t, IsExpiringSoon(now.Add(window), now, window), "exactly at the boundary is not soon")
	require.True(t, IsExpiringSoon(now.Add(window-time.Millisecond), now, window))
	require.True(t, IsExpiringSoon(now.Add(-time.Second), now, window))
	require.True(t, IsExpiringSoon(time.Time{}, now, window))
}

func TestIsExpiringSoon_FreshTokenZeroOffset(t *testing.T) {
	tok := mint(t, jwt.MapClaims{"exp": time.Now().Add(30 * time.Minute).Unix()})

	exp, err := Expiry(tok)
	require.NoError(t, err)
	require.False(t, IsExpiringSoon(exp, time.Now(), 10*time.Minute))
}
