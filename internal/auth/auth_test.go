package auth

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skorin/webshop/internal/models"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("password1")
	require.NoError(t, err)
	require.NotEqual(t, "password1", hash)

	require.True(t, CheckPassword(hash, "password1"))
	require.False(t, CheckPassword(hash, "password2"))
}

func TestTokenRoundTrip(t *testing.T) {
	issuer := &TokenIssuer{Secret: []byte("test-secret")}

	token, err := issuer.Issue(&models.User{ID: 42, Role: "admin"})
	require.NoError(t, err)

	id, role, err := issuer.Parse(token)
	require.NoError(t, err)
	require.Equal(t, uint(42), id)
	require.Equal(t, "admin", role)
}

func TestTokenWrongSecret(t *testing.T) {
	issuer := &TokenIssuer{Secret: []byte("test-secret")}
	token, err := issuer.Issue(&models.User{ID: 1, Role: "user"})
	require.NoError(t, err)

	other := &TokenIssuer{Secret: []byte("different-secret")}
	_, _, err = other.Parse(token)
	require.Error(t, err)

	_, _, err = issuer.Parse("not.a.token")
	require.Error(t, err)
}
