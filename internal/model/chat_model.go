package model

import (
	"time"

	"github.com/google/uuid"
)

type Chat struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserId     uuid.UUID `gorm:"type:uuid;not null;index"`
	Title      string    `gorm:"type:text;not null"`
	Visibility string    `gorm:"type:varchar(16);not null;default:'private'"`
	CreatedAt  time.Time `gorm:"not null;index"`
}

func (Chat) TableName() string {
	return "chats"
}
