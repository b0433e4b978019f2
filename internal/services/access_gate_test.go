package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/justsurfingit/prep-pilot/internal/apierr"
	"github.com/justsurfingit/prep-pilot/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-signing-secret"

type stubRoles struct {
	roles map[uuid.UUID]string
	err   error
}

func (s *stubRoles) HasRole(_ context.Context, userID uuid.UUID, role string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.roles[userID] == role, nil
}

func signToken(t *testing.T, method jwt.SigningMethod, key any, subject string, expiresIn time.Duration) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
	}
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestAccessGate_Authorize(t *testing.T) {
	admin := uuid.New()
	member := uuid.New()
	roles := &stubRoles{roles: map[uuid.UUID]string{admin: "admin"}}
	gate := NewAccessGate(NewJWTIdentityResolver(testSecret), roles, "admin", logger.Nop())
	ctx := context.Background()

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"MissingToken", "", http.StatusUnauthorized},
		{"BlankToken", "   ", http.StatusUnauthorized},
		{"Garbage", "not-a-jwt", http.StatusUnauthorized},
		{"WrongSecret", signToken(t, jwt.SigningMethodHS256, []byte("other"), admin.String(), time.Hour), http.StatusUnauthorized},
		{"Expired", signToken(t, jwt.SigningMethodHS256, []byte(testSecret), admin.String(), -time.Hour), http.StatusUnauthorized},
		{"WrongAlgorithm", signToken(t, jwt.SigningMethodHS512, []byte(testSecret), admin.String(), time.Hour), http.StatusUnauthorized},
		{"SubjectNotUUID", signToken(t, jwt.SigningMethodHS256, []byte(testSecret), "someone", time.Hour), http.StatusUnauthorized},
		{"NoAdminRole", signToken(t, jwt.SigningMethodHS256, []byte(testSecret), member.String(), time.Hour), http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity, err := gate.Authorize(ctx, tt.token)
			assert.Nil(t, identity)
			require.Error(t, err)
			var apiErr *apierr.Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
		})
	}

	t.Run("Admin", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), admin.String(), time.Hour)
		identity, err := gate.Authorize(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, admin, identity.UserID)
	})
}

func TestAccessGate_RoleLookupFailure(t *testing.T) {
	roles := &stubRoles{err: errors.New("db down")}
	gate := NewAccessGate(NewJWTIdentityResolver(testSecret), roles, "admin", logger.Nop())
	token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), uuid.NewString(), time.Hour)

	_, err := gate.Authorize(context.Background(), token)
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, apierr.StatusOf(err))
	assert.ErrorIs(t, err, roles.err)
}

func TestJWTIdentityResolver_RequiresSecret(t *testing.T) {
	token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), uuid.NewString(), time.Hour)
	_, err := NewJWTIdentityResolver("").ResolveUser(context.Background(), token)
	assert.Error(t, err)
}

func TestJWTIdentityResolver_RequiresExpiry(t *testing.T) {
	claims := jwt.RegisteredClaims{Subject: uuid.NewString()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = NewJWTIdentityResolver(testSecret).ResolveUser(context.Background(), token)
	assert.Error(t, err)
}
