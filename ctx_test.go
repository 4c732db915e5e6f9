package auth_test

import (
	"context"
	"testing"

	auth "github.com/Isra8Rubio/CocktailDockerizado"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserContext(t *testing.T) {
	user := &auth.User{Username: "pepe"}
	ctx := auth.WithContext(context.Background(), user)

	found, ok := auth.FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, user, found)

	_, ok = auth.FromContext(context.Background())
	assert.False(t, ok)
}

func TestClaimsContext(t *testing.T) {
	claims := &auth.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-123"},
		Extra:            map[string]string{auth.AdminClaim: auth.ClaimValueTrue},
	}

	ctx := auth.WithClaimsContext(context.Background(), claims)

	found, ok := auth.GetClaims(ctx)
	require.True(t, ok)
	assert.Equal(t, "user-123", found.UserID())

	assert.True(t, auth.IsAdminRequest(ctx))
	assert.False(t, auth.IsAdminRequest(context.Background()))
}
