package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/finrl-desk/internal/config"
	"github.com/finrl-desk/internal/models"
	"github.com/finrl-desk/internal/repository"
	"github.com/finrl-desk/pkg/crypto"
)

func newTestAuth(t *testing.T, adminEmail string) (*AuthService, *repository.MemoryAccountRepository) {
	t.Helper()
	repo := repository.NewMemoryAccountRepository()
	svc := NewAuthService(repo, config.AuthConfig{
		BootstrapAdminEmail: adminEmail,
		BcryptCost:          crypto.MinCost,
	}, zap.NewNop())
	return svc, repo
}

func TestAdminEmailPolicy(t *testing.T) {
	policy := AdminEmailPolicy("admin@finrl.ai")
	assert.Equal(t, models.RoleAdmin, policy("admin@finrl.ai"))
	assert.Equal(t, models.RoleUser, policy("Admin@finrl.ai"))
	assert.Equal(t, models.RoleUser, policy("a@x.com"))

	disabled := AdminEmailPolicy("")
	assert.Equal(t, models.RoleUser, disabled(""))
	assert.Equal(t, models.RoleUser, disabled("admin@finrl.ai"))
}

func TestAuthService_RegisterAndAuthenticate(t *testing.T) {
	svc, repo := newTestAuth(t, "admin@finrl.ai")
	ctx := context.Background()

	account, err := svc.Register(ctx, "a@x.com", "pw1")
	require.NoError(t, err)
	assert.NotEmpty(t, account.ID)
	assert.Equal(t, models.RoleUser, account.Role)
	assert.NotEqual(t, "pw1", account.SecretHash)

	stored, err := repo.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, crypto.CheckPassword("pw1", stored.SecretHash))

	got, err := svc.Authenticate(ctx, "a@x.com", "pw1")
	require.NoError(t, err)
	assert.Equal(t, account.ID, got.ID)

	_, err = svc.Authenticate(ctx, "a@x.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody@x.com", "pw1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_RegisterAdminEmail(t *testing.T) {
	svc, _ := newTestAuth(t, "admin@finrl.ai")

	account, err := svc.Register(context.Background(), "admin@finrl.ai", "pw")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, account.Role)
}

func TestAuthService_RegisterDuplicate(t *testing.T) {
	svc, repo := newTestAuth(t, "")
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@x.com", "pw1")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "a@x.com", "pw2")
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	accounts, _ := repo.List(ctx)
	assert.Len(t, accounts, 1)

	// emails are case-sensitive
	_, err = svc.Register(ctx, "A@x.com", "pw1")
	assert.NoError(t, err)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	svc, _ := newTestAuth(t, "")
	ctx := context.Background()

	_, err := svc.Register(ctx, "", "pw")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Register(ctx, "a@x.com", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAuthService_ConcurrentRegisterSameEmail(t *testing.T) {
	svc, repo := newTestAuth(t, "")
	ctx := context.Background()

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Register(ctx, "race@x.com", "pw")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrDuplicateEmail)
		}
	}
	assert.Equal(t, 1, succeeded)

	accounts, _ := repo.List(ctx)
	assert.Len(t, accounts, 1)
}

func TestAuthService_GetAndDelete(t *testing.T) {
	svc, _ := newTestAuth(t, "")
	ctx := context.Background()

	account, err := svc.Register(ctx, "a@x.com", "pw")
	require.NoError(t, err)

	got, err := svc.Get(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", got.Email)

	require.NoError(t, svc.Delete(ctx, account.ID))

	_, err = svc.Get(ctx, account.ID)
	assert.ErrorIs(t, err, ErrAccountNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, account.ID), ErrAccountNotFound)

	_, err = svc.Authenticate(ctx, "a@x.com", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Seed(t *testing.T) {
	svc, repo := newTestAuth(t, "admin@finrl.ai")
	ctx := context.Background()
	seeds := config.Default().Auth.BootstrapAccounts

	require.NoError(t, svc.Seed(ctx, seeds))
	require.NoError(t, svc.Seed(ctx, seeds))

	accounts, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, 3)

	admin, err := svc.Authenticate(ctx, "admin@finrl.ai", "admin123")
	require.NoError(t, err)
	assert.Equal(t, "admin_demo", admin.ID)
	assert.Equal(t, models.RoleAdmin, admin.Role)

	analyst, err := svc.Authenticate(ctx, "analyst1@mgx.world", "analyst123")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, analyst.Role)
}

func TestAuthService_SeedRejectsBadRole(t *testing.T) {
	svc, _ := newTestAuth(t, "")
	err := svc.Seed(context.Background(), []config.BootstrapAccount{
		{ID: "x", Email: "x@x.com", Password: "pw", Role: "root"},
	})
	assert.Error(t, err)
}
