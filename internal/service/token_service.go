package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/finrl-desk/internal/config"
	"github.com/finrl-desk/internal/models"
)

// DefaultTokenTTL is the session token validity window
const DefaultTokenTTL = 7 * 24 * time.Hour

// Claims is the verified content of a session token
type Claims struct {
	AccountID string
	Role      models.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService issues and verifies stateless session tokens.
// Tokens cannot be revoked; they expire after the configured TTL.
type TokenService interface {
	Issue(accountID string, role models.Role) (token string, expiresAt time.Time, err error)
	// Verify returns ErrTokenInvalid or ErrTokenExpired on failure
	Verify(token string) (*Claims, error)
}

// sessionClaims is the JWT payload
type sessionClaims struct {
	AccountID string      `json:"account_id"`
	Role      models.Role `json:"role"`
	jwt.RegisteredClaims
}

// JWTTokenService signs HS256 tokens with a process-wide secret
type JWTTokenService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewJWTTokenService creates a JWTTokenService from configuration
func NewJWTTokenService(cfg config.JWTConfig) *JWTTokenService {
	ttl := cfg.TTL()
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &JWTTokenService{
		secret: []byte(cfg.Secret),
		ttl:    ttl,
		issuer: cfg.Issuer,
		now:    time.Now,
	}
}

// WithClock returns a copy using the given clock for issuing and verifying
func (s *JWTTokenService) WithClock(now func() time.Time) *JWTTokenService {
	cp := *s
	cp.now = now
	return &cp
}

// Issue signs a token for the account
func (s *JWTTokenService) Issue(accountID string, role models.Role) (string, time.Time, error) {
	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.ttl)

	claims := &sessionClaims{
		AccountID: accountID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// Verify checks the signature, then the expiry
func (s *JWTTokenService) Verify(tokenString string) (*Claims, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		// jwt/v5 only reports expiry once the signature has been verified
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid || claims.AccountID == "" || !claims.Role.Valid() {
		return nil, ErrTokenInvalid
	}

	result := &Claims{
		AccountID: claims.AccountID,
		Role:      claims.Role,
	}
	if claims.IssuedAt != nil {
		result.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		result.ExpiresAt = claims.ExpiresAt.Time
	}
	return result, nil
}

var _ TokenService = (*JWTTokenService)(nil)
