package entity

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id    uuid.UUID
	Email string
	// PasswordHash is nil for accounts provisioned through an external identity provider.
	PasswordHash *string
	CreatedAt    time.Time
}

func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}
