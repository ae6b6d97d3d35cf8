package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/pagepace/internal/config"
	"github.com/phrazzld/pagepace/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAuth = config.AuthConfig{
	JWTSecret:                   "tokengen-test-secret-that-is-long-enough",
	TokenLifetimeMinutes:        5,
	RefreshTokenLifetimeMinutes: 10,
}

func TestMint(t *testing.T) {
	t.Parallel()
	userID := uuid.New()

	var out bytes.Buffer
	require.NoError(t, mint(context.Background(), testAuth, userID.String(), &out))

	var pair tokenPair
	require.NoError(t, json.Unmarshal(out.Bytes(), &pair))
	assert.Equal(t, userID, pair.UserID)

	svc, err := auth.NewJWTService(testAuth)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(context.Background(), pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)

	claims, err = svc.ValidateRefreshToken(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
}

func TestMint_RandomUser(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	require.NoError(t, mint(context.Background(), testAuth, "", &out))

	var pair tokenPair
	require.NoError(t, json.Unmarshal(out.Bytes(), &pair))
	assert.NotEqual(t, uuid.Nil, pair.UserID)
}

func TestMint_Errors(t *testing.T) {
	t.Parallel()

	err := mint(context.Background(), testAuth, "not-a-uuid", &bytes.Buffer{})
	assert.ErrorContains(t, err, "invalid user ID")

	weak := testAuth
	weak.JWTSecret = "short"
	err = mint(context.Background(), weak, "", &bytes.Buffer{})
	assert.Error(t, err)
}
