package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lostfound/internal/pkg/jwt"
	"lostfound/internal/pkg/testdb"
)

func newTestService(t *testing.T) (*Service, *Repository) {
	t.Helper()
	repo := NewRepository(testdb.Open(t, &User{}))
	return NewService(repo, jwt.New("test-secret", time.Hour)), repo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, RegisterRequest{Name: "Asha", Email: "Asha@Campus.edu ", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "asha@campus.edu", reg.User.Email)
	assert.False(t, reg.User.IsAdmin)

	login, err := svc.Login(ctx, LoginRequest{Email: "asha@campus.edu", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, login.User.ID)

	_, err = svc.Login(ctx, LoginRequest{Email: "asha@campus.edu", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Register(ctx, RegisterRequest{Name: "Dup", Email: "asha@campus.edu", Password: "secret2"})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestEnsureAdmin_PromotesExisting(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, RegisterRequest{Name: "Ravi", Email: "ravi@campus.edu", Password: "secret1"})
	require.NoError(t, err)

	admin, err := svc.EnsureAdmin(ctx, "ignored", "ravi@campus.edu", "ignored")
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, admin.ID)

	stored, err := repo.GetByID(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsAdmin)
}

func TestResolve_MissingUserIsNotAnError(t *testing.T) {
	_, repo := newTestService(t)

	u, err := repo.Resolve(context.Background(), "no-such-user")
	assert.NoError(t, err)
	assert.Nil(t, u)
}
