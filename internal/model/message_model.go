package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Message struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey"`
	ChatId      uuid.UUID      `gorm:"type:uuid;not null;index:idx_messages_chat_created,priority:1"`
	Role        string         `gorm:"type:varchar(16);not null"`
	Parts       datatypes.JSON `gorm:"not null"`
	Attachments datatypes.JSON `gorm:"not null"`
	CreatedAt   time.Time      `gorm:"not null;index:idx_messages_chat_created,priority:2"`
}

func (Message) TableName() string {
	return "messages"
}
