package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/justsurfingit/prep-pilot/internal/apierr"
	"github.com/justsurfingit/prep-pilot/internal/logger"
)

// IdentityResolver maps a bearer credential to a user id.
type IdentityResolver interface {
	ResolveUser(ctx context.Context, token string) (uuid.UUID, error)
}

// RoleChecker answers whether a user holds a role.
type RoleChecker interface {
	HasRole(ctx context.Context, userID uuid.UUID, role string) (bool, error)
}

type AdminIdentity struct {
	UserID uuid.UUID
}

// AccessGate admits only authenticated callers holding the admin role.
type AccessGate struct {
	identities IdentityResolver
	roles      RoleChecker
	adminRole  string
	log        *logger.Logger
}

func NewAccessGate(identities IdentityResolver, roles RoleChecker, adminRole string, log *logger.Logger) *AccessGate {
	if adminRole == "" {
		adminRole = "admin"
	}
	return &AccessGate{
		identities: identities,
		roles:      roles,
		adminRole:  adminRole,
		log:        log.With("service", "AccessGate"),
	}
}

// Authorize returns 401 for a missing or unresolvable token and 403 for a
// valid identity without the admin role, both as *apierr.Error.
func (g *AccessGate) Authorize(ctx context.Context, token string) (*AdminIdentity, error) {
	if strings.TrimSpace(token) == "" {
		return nil, apierr.Unauthorized("missing bearer token")
	}
	userID, err := g.identities.ResolveUser(ctx, token)
	if err != nil {
		g.log.Info("Rejected admin request: identity not resolved", "error", err)
		return nil, apierr.Unauthorized("invalid or expired token")
	}
	ok, err := g.roles.HasRole(ctx, userID, g.adminRole)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "role_lookup_failed", fmt.Errorf("role lookup: %w", err))
	}
	if !ok {
		g.log.Info("Rejected admin request: role missing", "user_id", userID.String(), "role", g.adminRole)
		return nil, apierr.Forbidden("admin role required")
	}
	return &AdminIdentity{UserID: userID}, nil
}

// JWTIdentityResolver verifies HS256 access tokens issued by the hosted auth
// provider and returns the subject as the user id.
type JWTIdentityResolver struct {
	secret []byte
}

func NewJWTIdentityResolver(secret string) *JWTIdentityResolver {
	return &JWTIdentityResolver{secret: []byte(secret)}
}

func (r *JWTIdentityResolver) ResolveUser(ctx context.Context, token string) (uuid.UUID, error) {
	if len(r.secret) == 0 {
		return uuid.Nil, errors.New("identity provider secret not configured")
	}
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return r.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse token: %w", err)
	}
	if !parsed.Valid {
		return uuid.Nil, errors.New("invalid token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid user id in token: %w", err)
	}
	return userID, nil
}
