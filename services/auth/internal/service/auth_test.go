package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Skotchmaster/storefront/pkg/db/dbtest"
	"github.com/Skotchmaster/storefront/pkg/hash"
	"github.com/Skotchmaster/storefront/pkg/identity"
	"github.com/Skotchmaster/storefront/pkg/tokens"
	"github.com/Skotchmaster/storefront/services/auth/internal/models"
	"github.com/Skotchmaster/storefront/services/auth/internal/repo"
)

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()
	db := dbtest.Open(t, &models.User{}, &models.RefreshToken{})
	return &AuthService{
		Repo:          &repo.GormRepo{DB: db},
		Hasher:        hash.Hasher{Cost: bcrypt.MinCost},
		JWTSecret:     []byte("test-jwt-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
	}
}

func register(t *testing.T, svc *AuthService, email string) *models.User {
	t.Helper()
	u, err := svc.Register(context.Background(), RegisterInput{Name: "Ann", Email: email, Password: "secret1"})
	require.NoError(t, err)
	return u
}

func TestAuthService_Register_Validation(t *testing.T) {
	t.Parallel()
	svc := newTestAuthService(t)

	tests := []struct {
		name string
		in   RegisterInput
	}{
		{name: "empty name", in: RegisterInput{Email: "a@b.co", Password: "secret1"}},
		{name: "bad email", in: RegisterInput{Name: "A", Email: "nope", Password: "secret1"}},
		{name: "short password", in: RegisterInput{Name: "A", Email: "a@b.co", Password: "123"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.in)
			require.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	t.Parallel()
	svc := newTestAuthService(t)

	u := register(t, svc, "Ann@Example.com")
	assert.Equal(t, "ann@example.com", u.Email)
	assert.Equal(t, identity.RoleUser, u.Role)

	_, err := svc.Register(context.Background(), RegisterInput{Name: "B", Email: "ann@example.com", Password: "secret1"})
	require.ErrorIs(t, err, ErrConflict)

	n, err := svc.CountUsers(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestAuthService_RegisterAdmin(t *testing.T) {
	t.Parallel()
	svc := newTestAuthService(t)
	ctx := context.Background()

	first, err := svc.RegisterAdmin(ctx, nil, RegisterInput{Name: "Root", Email: "root@shop.io", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, identity.RoleAdmin, first.Role)

	_, err = svc.RegisterAdmin(ctx, nil, RegisterInput{Name: "Eve", Email: "eve@shop.io", Password: "secret1"})
	require.ErrorIs(t, err, ErrForbidden)

	caller := &identity.Identity{UserID: first.ID.String(), Role: identity.RoleAdmin}
	_, err = svc.RegisterAdmin(ctx, caller, RegisterInput{Name: "Bob", Email: "bob@shop.io", Password: "secret1"})
	require.NoError(t, err)
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()
	svc := newTestAuthService(t)
	u := register(t, svc, "ann@example.com")

	_, err := svc.Login(context.Background(), "ann@example.com", "wrong")
	require.ErrorIs(t, err, ErrUnauthorized)
	_, err = svc.Login(context.Background(), "nobody@example.com", "secret1")
	require.ErrorIs(t, err, ErrUnauthorized)

	pair, err := svc.Login(context.Background(), "ANN@example.com", "secret1")
	require.NoError(t, err)

	claims, err := tokens.ParseAccess(pair.AccessToken, svc.JWTSecret)
	require.NoError(t, err)
	assert.Equal(t, u.ID.String(), claims.Subject)
	assert.Equal(t, "Ann", claims.Name)
	assert.Equal(t, identity.RoleUser, claims.Role)
}

func TestAuthService_Refresh_RotatesOnce(t *testing.T) {
	t.Parallel()
	svc := newTestAuthService(t)
	register(t, svc, "ann@example.com")
	ctx := context.Background()

	pair, err := svc.Login(ctx, "ann@example.com", "secret1")
	require.NoError(t, err)

	next, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Refresh(ctx, next.RefreshToken)
	require.NoError(t, err)
}

func TestAuthService_LogOut_RevokesRefresh(t *testing.T) {
	t.Parallel()
	svc := newTestAuthService(t)
	register(t, svc, "ann@example.com")
	ctx := context.Background()

	pair, err := svc.Login(ctx, "ann@example.com", "secret1")
	require.NoError(t, err)
	require.NoError(t, svc.LogOut(ctx, pair.RefreshToken))

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthService_Refresh_Garbage(t *testing.T) {
	t.Parallel()
	svc := newTestAuthService(t)
	_, err := svc.Refresh(context.Background(), "not-a-token")
	require.ErrorIs(t, err, ErrUnauthorized)
}
