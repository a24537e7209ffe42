package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatVisibility string

const (
	VisibilityPrivate ChatVisibility = "private"
	VisibilityPublic  ChatVisibility = "public"
)

func (v ChatVisibility) Valid() bool {
	return v == VisibilityPrivate || v == VisibilityPublic
}

type Chat struct {
	Id         uuid.UUID
	UserId     uuid.UUID
	Title      string
	Visibility ChatVisibility
	CreatedAt  time.Time
}

func (c *Chat) OwnedBy(userId uuid.UUID) bool {
	return c.UserId == userId
}
