package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admins"

	StatusActive   = "active"
	StatusInactive = "inactive"
)

// User is the persisted account record. Token/expiry pairs are always
// written and cleared together: a non-empty token implies a future expiry.
type User struct {
	ID       primitive.ObjectID
	Email    string // unique, stored lowercased
	Password string // bcrypt hash; empty for externally-authenticated accounts
	Name     string
	Picture  string
	Role     string // "user" or "admins"
	Status   string // "active" or "inactive"

	IsVerified              bool
	VerificationToken       string
	VerificationTokenExpiry *time.Time
	ResetToken              string
	ResetTokenExpiry        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasPassword reports whether the account can authenticate with a password.
func (u *User) HasPassword() bool {
	return u.Password != ""
}
