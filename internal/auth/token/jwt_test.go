package token

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIssueParse(t *testing.T) {
	m := New("test-secret", "ctrl-alt-vibe", time.Hour)

	raw, claims, err := m.Issue(context.Background(), 42, "gopher")
	require.NoError(t, err)
	require.NotEmpty(t, raw)
	require.Equal(t, int64(42), claims.UserID)
	require.Equal(t, "gopher", claims.Login)
	require.NotEmpty(t, claims.JTI)

	parsed, err := m.Parse(context.Background(), raw)
	require.NoError(t, err)
	require.Equal(t, claims.UserID, parsed.UserID)
	require.Equal(t, claims.Login, parsed.Login)
	require.Equal(t, claims.JTI, parsed.JTI)
}

func TestParseWrongSecret(t *testing.T) {
	m := New("secret-a", "ctrl-alt-vibe", time.Hour)
	raw, _, err := m.Issue(context.Background(), 1, "gopher")
	require.NoError(t, err)

	other := New("secret-b", "ctrl-alt-vibe", time.Hour)
	_, err = other.Parse(context.Background(), raw)
	require.Error(t, err)
}

func TestParseExpired(t *testing.T) {
	m := New("test-secret", "ctrl-alt-vibe", -time.Minute)
	raw, _, err := m.Issue(context.Background(), 1, "gopher")
	require.NoError(t, err)

	_, err = m.Parse(context.Background(), raw)
	require.Error(t, err)
}
