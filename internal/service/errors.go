package service

import (
	"errors"

	"github.com/finrl-desk/internal/repository"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateEmail     = repository.ErrDuplicateEmail
	ErrAccountNotFound    = errors.New("account not found")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrScoringFailed      = errors.New("scoring failed")
	ErrMarketUnavailable  = errors.New("market data unavailable")
)
