package crypto

import (
	"golang.org/x/crypto/bcrypt"
)

// bcrypt ignores input past 72 bytes and newer releases reject it
const maxPasswordBytes = 72

const (
	// DefaultCost is the bcrypt cost used when none is configured
	DefaultCost = 10
	// MinCost is the cheapest accepted cost, for tests
	MinCost = bcrypt.MinCost
)

// HashPasswordWithCost hashes a password with bcrypt at the given cost
func HashPasswordWithCost(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword(truncate(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a password with a bcrypt hash
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), truncate(password)) == nil
}

func truncate(password string) []byte {
	b := []byte(password)
	if len(b) > maxPasswordBytes {
		b = b[:maxPasswordBytes]
	}
	return b
}
