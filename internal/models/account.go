package models

import (
	"time"
)

// Role is the authorization level of an account
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Account represents a registered login identity
type Account struct {
	ID         string    `gorm:"primaryKey;size:64" json:"id"`
	Email      string    `gorm:"uniqueIndex;size:320;not null" json:"email"`
	SecretHash string    `gorm:"size:255;not null" json:"-"`
	Role       Role      `gorm:"size:20;not null;default:'user'" json:"role"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for Account model
func (Account) TableName() string {
	return "accounts"
}

// AccountResponse is the output projection of an account. It never carries the secret hash.
type AccountResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// ToResponse redacts the account for output
func (a *Account) ToResponse() AccountResponse {
	return AccountResponse{
		ID:        a.ID,
		Email:     a.Email,
		Role:      a.Role,
		CreatedAt: a.CreatedAt,
	}
}

// ToAccountResponses redacts a list of accounts
func ToAccountResponses(accounts []Account) []AccountResponse {
	result := make([]AccountResponse, 0, len(accounts))
	for i := range accounts {
		result = append(result, accounts[i].ToResponse())
	}
	return result
}
