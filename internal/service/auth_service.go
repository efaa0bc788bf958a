package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/finrl-desk/internal/config"
	"github.com/finrl-desk/internal/models"
	"github.com/finrl-desk/internal/repository"
	"github.com/finrl-desk/pkg/crypto"
	"github.com/finrl-desk/pkg/keygen"
)

// RolePolicy decides the role granted to a self-registered email
type RolePolicy func(email string) models.Role

// AdminEmailPolicy grants admin to exactly one reserved email and user to
// everyone else. An empty reserved email grants user to all.
func AdminEmailPolicy(reservedEmail string) RolePolicy {
	return func(email string) models.Role {
		if reservedEmail != "" && email == reservedEmail {
			return models.RoleAdmin
		}
		return models.RoleUser
	}
}

// AuthService is the credential store: it registers, authenticates and
// removes accounts.
type AuthService struct {
	accountRepo repository.AccountRepository
	rolePolicy  RolePolicy
	bcryptCost  int
	dummyHash   string
	now         func() time.Time
	logger      *zap.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(accountRepo repository.AccountRepository, cfg config.AuthConfig, logger *zap.Logger) *AuthService {
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = crypto.DefaultCost
	}
	// compared against when the email is unknown so both failure paths cost one bcrypt check
	dummyHash, err := crypto.HashPasswordWithCost("unknown-account-placeholder", cost)
	if err != nil {
		logger.Warn("Failed to prepare placeholder hash", zap.Error(err))
	}

	return &AuthService{
		accountRepo: accountRepo,
		rolePolicy:  AdminEmailPolicy(cfg.BootstrapAdminEmail),
		bcryptCost:  cost,
		dummyHash:   dummyHash,
		now:         time.Now,
		logger:      logger,
	}
}

// RegisterRequest represents the registration request
type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest represents the login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates an account with a hashed secret
func (s *AuthService) Register(ctx context.Context, email, secret string) (*models.Account, error) {
	if strings.TrimSpace(email) == "" || secret == "" {
		return nil, ErrValidation
	}

	hash, err := crypto.HashPasswordWithCost(secret, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &models.Account{
		ID:         keygen.NewAccountID(),
		Email:      email,
		SecretHash: hash,
		Role:       s.rolePolicy(email),
		CreatedAt:  s.now().UTC(),
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.logger.Info("Account registered",
		zap.String("account_id", account.ID),
		zap.String("role", string(account.Role)),
	)
	return account, nil
}

// Authenticate verifies an email and secret pair. Unknown email and wrong
// secret fail with the same error.
func (s *AuthService) Authenticate(ctx context.Context, email, secret string) (*models.Account, error) {
	account, err := s.accountRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			crypto.CheckPassword(secret, s.dummyHash)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	if !crypto.CheckPassword(secret, account.SecretHash) {
		return nil, ErrInvalidCredentials
	}

	return account, nil
}

// Get retrieves the live account record
func (s *AuthService) Get(ctx context.Context, id string) (*models.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return account, nil
}

// Delete removes an account. Its analysis records are kept.
func (s *AuthService) Delete(ctx context.Context, id string) error {
	if err := s.accountRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("delete account: %w", err)
	}

	s.logger.Info("Account deleted", zap.String("account_id", id))
	return nil
}

// ListAll returns every account in creation order
func (s *AuthService) ListAll(ctx context.Context) ([]models.Account, error) {
	accounts, err := s.accountRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

// Seed creates the bootstrap accounts. Emails already present are skipped.
func (s *AuthService) Seed(ctx context.Context, seeds []config.BootstrapAccount) error {
	for _, seed := range seeds {
		role := models.Role(seed.Role)
		if !role.Valid() {
			return fmt.Errorf("bootstrap account %s: invalid role %q", seed.Email, seed.Role)
		}
		if seed.Email == "" || seed.Password == "" {
			return fmt.Errorf("bootstrap account %q: email and password are required", seed.ID)
		}

		id := seed.ID
		if id == "" {
			id = keygen.NewAccountID()
		}

		hash, err := crypto.HashPasswordWithCost(seed.Password, s.bcryptCost)
		if err != nil {
			return fmt.Errorf("hash bootstrap password: %w", err)
		}

		err = s.accountRepo.Create(ctx, &models.Account{
			ID:         id,
			Email:      seed.Email,
			SecretHash: hash,
			Role:       role,
			CreatedAt:  s.now().UTC(),
		})
		switch {
		case err == nil:
			s.logger.Info("Bootstrap account created", zap.String("account_id", id), zap.String("role", seed.Role))
		case errors.Is(err, repository.ErrDuplicateEmail):
			s.logger.Debug("Bootstrap account exists", zap.String("account_id", id))
		default:
			return fmt.Errorf("create bootstrap account %s: %w", id, err)
		}
	}
	return nil
}
