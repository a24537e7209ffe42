package model

import "github.com/google/uuid"

// Vote is keyed by (chat_id, message_id): one mutable row per rated message.
type Vote struct {
	ChatId    uuid.UUID `gorm:"type:uuid;primaryKey"`
	MessageId uuid.UUID `gorm:"type:uuid;primaryKey"`
	IsUpvoted bool      `gorm:"not null"`
}

func (Vote) TableName() string {
	return "votes"
}
